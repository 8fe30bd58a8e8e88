package id3v2

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// textEncoding is the one-byte discriminator that precedes every
// encoded-string/latin1Encoding frame entry.
type textEncoding byte

const (
	encISO88591 textEncoding = 0x00
	encUTF16BOM textEncoding = 0x01
	encUTF16BE  textEncoding = 0x02
	encUTF8     textEncoding = 0x03
)

func (e textEncoding) valid() bool {
	return e <= encUTF8
}

// isTwoByte reports whether e uses 2-byte code units and a double-NUL
// terminator, as opposed to a single NUL terminator.
func (e textEncoding) isTwoByte() bool {
	return e == encUTF16BOM || e == encUTF16BE
}

var (
	latin1Decoder = charmap.ISO8859_1.NewDecoder()
	latin1Encoder = charmap.ISO8859_1.NewEncoder()

	utf16LEDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	utf16BEDecoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	utf16BEEncoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
)

// decodeToUTF8 converts raw frame bytes (without the leading encoding byte)
// in enc to a UTF-8 string, resolving UTF-16 byte order from a leading BOM
// when enc is encUTF16BOM and defaulting to big-endian when the BOM is
// absent, per spec.md §4.1.
func decodeToUTF8(enc textEncoding, data []byte) (string, error) {
	switch enc {
	case encISO88591:
		out, _, err := transform.Bytes(latin1Decoder, data)
		if err != nil {
			return "", errors.Wrap(err, "id3v2: decode latin-1")
		}
		return string(out), nil
	case encUTF8:
		return string(data), nil
	case encUTF16BOM:
		dec := utf16BEDecoder
		if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
			dec = utf16LEDecoder
			data = data[2:]
		} else if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
			data = data[2:]
		}
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return "", errors.Wrap(err, "id3v2: decode utf-16")
		}
		return string(out), nil
	case encUTF16BE:
		out, _, err := transform.Bytes(utf16BEDecoder, data)
		if err != nil {
			return "", errors.Wrap(err, "id3v2: decode utf-16be")
		}
		return string(out), nil
	default:
		return "", errors.Wrapf(ErrEncoding, "unknown text encoding 0x%02x", byte(enc))
	}
}

// encodeFromUTF8 converts a UTF-8 string to raw bytes in the target
// encoding. UTF-16 output is big-endian with a prepended BOM for encUTF16BOM
// (and bare big-endian, no BOM, for encUTF16BE). Fails with ErrEncoding
// when s contains characters outside Latin-1 and enc is encISO88591.
func encodeFromUTF8(enc textEncoding, s string) ([]byte, error) {
	switch enc {
	case encISO88591:
		out, _, err := transform.Bytes(latin1Encoder, []byte(s))
		if err != nil {
			return nil, errors.Wrapf(ErrEncoding, "latin-1: %v", err)
		}
		return out, nil
	case encUTF8:
		return []byte(s), nil
	case encUTF16BOM:
		out, _, err := transform.Bytes(utf16BEEncoder, []byte(s))
		if err != nil {
			return nil, errors.Wrap(err, "id3v2: encode utf-16")
		}
		return append([]byte{0xFE, 0xFF}, out...), nil
	case encUTF16BE:
		out, _, err := transform.Bytes(utf16BEEncoder, []byte(s))
		if err != nil {
			return nil, errors.Wrap(err, "id3v2: encode utf-16be")
		}
		return out, nil
	default:
		return nil, errors.Wrapf(ErrEncoding, "unknown text encoding 0x%02x", byte(enc))
	}
}

// terminator returns the NUL terminator bytes for enc: one zero byte for
// 1-byte encodings, two for 2-byte encodings.
func terminator(enc textEncoding) []byte {
	if enc.isTwoByte() {
		return []byte{0x00, 0x00}
	}
	return []byte{0x00}
}

// encodedStringLen returns the length, in bytes, of the encoded string at
// the start of data up to (but not including) its NUL terminator. For
// 1-byte encodings this is the offset of the first 0x00; for 2-byte
// encodings it is the offset of the first 0x00 0x00 pair aligned on an even
// byte offset from the start of data. If no terminator is found, the full
// length of data is returned (the string runs to the end of the frame).
func encodedStringLen(enc textEncoding, data []byte) int {
	if !enc.isTwoByte() {
		if i := bytes.IndexByte(data, 0x00); i >= 0 {
			return i
		}
		return len(data)
	}

	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0x00 && data[i+1] == 0x00 {
			return i
		}
	}
	return len(data)
}

// stripBOM removes a single leading UTF-8-encoded BOM rune (U+FEFF) from s,
// if present.
func stripBOM(s string) string {
	const bom = "\xEF\xBB\xBF" // U+FEFF in UTF-8
	return strings.TrimPrefix(s, bom)
}

// escapeJSON escapes '"' and '\\' for embedding s in a JSON string literal
// body (without surrounding quotes).
func escapeJSON(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// detectEncoding sniffs a text encoding from raw bytes when no discriminator
// byte is available: a UTF-16 BOM, a valid-UTF-8 check, else Latin-1. Used
// by the generic fallback reader ("char" accessor) in frame.go.
func detectEncoding(data []byte) textEncoding {
	if len(data) >= 2 && ((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)) {
		return encUTF16BOM
	}
	if validUTF8(data) {
		return encUTF8
	}
	return encISO88591
}

func validUTF8(data []byte) bool {
	return utf8.Valid(data)
}

// decodeRawAsChar turns an arbitrary byte slice into a best-effort UTF-8
// string: sniff the encoding (BOM, UTF-8 validity, Latin-1 fallback),
// transcode, strip a leading BOM, and escape for JSON embedding. This is the
// behaviour of the frame cursor's "char" accessor (spec.md §4.4).
func decodeRawAsChar(data []byte) string {
	enc := detectEncoding(data)
	s, err := decodeToUTF8(enc, data)
	if err != nil {
		s = decodeLatin1Fallback(data)
	}
	s = stripBOM(s)
	return escapeJSON(s)
}

func decodeLatin1Fallback(data []byte) string {
	rs := make([]rune, len(data))
	for i, b := range data {
		rs[i] = rune(b)
	}
	return string(rs)
}
