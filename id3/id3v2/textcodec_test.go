package id3v2

import "testing"

func TestASCIITextEncodingRoundTrip(t *testing.T) {
	encodings := []textEncoding{encISO88591, encUTF16BOM, encUTF16BE, encUTF8}
	for _, enc := range encodings {
		raw, err := encodeFromUTF8(enc, "hello")
		if err != nil {
			t.Fatalf("encodeFromUTF8(%v, %q): %v", enc, "hello", err)
		}
		got, err := decodeToUTF8(enc, raw)
		if err != nil {
			t.Fatalf("decodeToUTF8(%v, %v): %v", enc, raw, err)
		}
		if got != "hello" {
			t.Errorf("round trip through encoding %v = %q, want %q", enc, got, "hello")
		}
	}
}

func TestEncodedStringLenSingleByte(t *testing.T) {
	if n := encodedStringLen(encISO88591, []byte("so\x00extra")); n != 2 {
		t.Errorf("encodedStringLen = %d, want 2", n)
	}
	if n := encodedStringLen(encISO88591, []byte("noterm")); n != 6 {
		t.Errorf("encodedStringLen with no terminator = %d, want 6", n)
	}
}

func TestEncodedStringLenTwoByte(t *testing.T) {
	data := []byte{0x00, 0x73, 0x00, 0x6F, 0x00, 0x00, 0xFF, 0xFF}
	if n := encodedStringLen(encUTF16BE, data); n != 4 {
		t.Errorf("encodedStringLen(utf16be) = %d, want 4", n)
	}
}

func TestLatin1EncodingFailsForNonRepresentable(t *testing.T) {
	if _, err := encodeFromUTF8(encISO88591, "日本語"); err == nil {
		t.Error("encodeFromUTF8(latin-1, non-latin1 text) should fail")
	}
}

func TestDecodeRawAsCharStripsBOM(t *testing.T) {
	raw := append([]byte{0xFF, 0xFE}, encodeUTF16LE(t, "hi")...)
	got := decodeRawAsChar(raw)
	if got != "hi" {
		t.Errorf("decodeRawAsChar(BOM-prefixed utf16le) = %q, want %q", got, "hi")
	}
}

// encodeUTF16LE is a small test helper building raw little-endian UTF-16
// code units for ASCII input, used only to construct BOM-prefixed fixtures.
func encodeUTF16LE(t *testing.T, s string) []byte {
	t.Helper()
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r), 0x00)
	}
	return out
}
