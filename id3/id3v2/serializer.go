package id3v2

import (
	"bytes"

	"github.com/pkg/errors"
)

// Serialize renders t to its ID3v2 binary wire form: header, optional
// extended header, every frame in tag order, extended-header padding, then
// an optional v2.4 footer (spec.md §4.6).
func Serialize(t *Tag) ([]byte, error) {
	if t == nil || t.Header == nil {
		return nil, errors.Wrap(ErrSerialize, "nil tag or header")
	}
	h := t.Header

	if h.Major == 2 && h.Extended != nil {
		return nil, errors.Wrap(ErrSerialize, "v2.2 tags cannot carry an extended header")
	}

	var body bytes.Buffer

	if h.Extended != nil {
		switch h.Major {
		case 4:
			body.Write(serializeExtendedHeaderV4(h.Extended))
		default:
			body.Write(serializeExtendedHeaderV3(h.Extended))
		}
	}

	for _, f := range t.frames {
		frameBody, err := serializeFrameBody(f)
		if err != nil {
			return nil, err
		}
		frameHeader, err := serializeFrameHeader(f.Header, len(frameBody), h.Major)
		if err != nil {
			return nil, err
		}
		body.Write(frameHeader)
		body.Write(frameBody)
	}

	if h.Extended != nil && h.Extended.PaddingSize > 0 {
		body.Write(make([]byte, h.Extended.PaddingSize))
	}

	out := body.Bytes()
	if unsync, _ := h.Unsynchronisation(); unsync {
		out = applyUnsynchronisation(out)
	}

	tagSize := len(out)
	headerBytes := serializeTagHeader(h, tagSize)

	final := make([]byte, 0, len(headerBytes)+len(out)+10)
	final = append(final, headerBytes...)
	final = append(final, out...)

	if footer, _ := h.Footer(); footer {
		final = append(final, serializeTagFooter(h, tagSize)...)
	}

	return final, nil
}

func serializeTagHeader(h *Header, tagSize int) []byte {
	out := make([]byte, 0, 10)
	out = append(out, 'I', 'D', '3')
	out = append(out, byte(h.Major), byte(h.Minor), h.Flags)
	sz := encodeSyncsafe(uint32(tagSize))
	return append(out, sz[:]...)
}

func serializeTagFooter(h *Header, tagSize int) []byte {
	out := make([]byte, 0, 10)
	out = append(out, '3', 'D', 'I')
	out = append(out, byte(h.Major), byte(h.Minor), h.Flags)
	sz := encodeSyncsafe(uint32(tagSize))
	return append(out, sz[:]...)
}

func serializeExtendedHeaderV3(ext *ExtendedHeader) []byte {
	var rest []byte
	flag := byte(0)
	if ext.CRCPresent {
		flag |= extFlagV3CRCPresent
	}
	rest = append(rest, flag, 0, 0) // 2 reserved bytes
	rest = append(rest, writeUintBE(uint32(ext.PaddingSize), 4)...)
	if ext.CRCPresent {
		rest = append(rest, writeUintBE(uint32(ext.CRC), 4)...)
	}
	sizeField := writeUintBE(uint32(len(rest)), 4)
	return append(sizeField, rest...)
}

func serializeExtendedHeaderV4(ext *ExtendedHeader) []byte {
	var rest []byte
	flags := byte(0)
	if ext.Update {
		flags |= extFlagV4Update
	}
	if ext.CRCPresent {
		flags |= extFlagV4CRCPresent
	}
	if ext.RestrictionsPresent {
		flags |= extFlagV4Restrictions
	}
	rest = append(rest, 0x01, flags)
	if ext.CRCPresent {
		crcBytes := encodeSyncsafe5(ext.CRC)
		rest = append(rest, crcBytes[:]...)
	}
	if ext.RestrictionsPresent {
		rest = append(rest, ext.Restrictions.PackByte())
	}
	sizeField := encodeSyncsafe(uint32(len(rest)))
	return append(sizeField[:], rest...)
}

// serializeFrameHeader dispatches to the version-specific frame header
// writer, the inverse of parseFrameHeader.
func serializeFrameHeader(fh FrameHeader, bodySize int, major int) ([]byte, error) {
	switch major {
	case 2:
		return serializeFrameHeaderV2(fh, bodySize)
	case 3:
		return serializeFrameHeaderV3(fh, bodySize), nil
	default:
		return serializeFrameHeaderV4(fh, bodySize), nil
	}
}

func serializeFrameHeaderV2(fh FrameHeader, bodySize int) ([]byte, error) {
	if len(fh.ID) != 3 {
		return nil, errors.Wrapf(ErrSerialize, "v2.2 frame identifier %q must be 3 bytes", fh.ID)
	}
	if bodySize > 0xFFFFFF {
		return nil, errors.Wrapf(ErrSerialize, "frame %q too large for 24-bit v2.2 size field", fh.ID)
	}
	out := []byte(fh.ID)
	return append(out, writeUintBE(uint32(bodySize), 3)...), nil
}

func serializeFrameHeaderV3(fh FrameHeader, bodySize int) []byte {
	out := []byte(fh.ID)
	out = append(out, writeUintBE(uint32(bodySize), 4)...)

	flag0, flag1 := byte(0), byte(0)
	if fh.TagAlterPreservation {
		flag0 |= 0x80
	}
	if fh.FileAlterPreservation {
		flag0 |= 0x40
	}
	if fh.ReadOnly {
		flag0 |= 0x20
	}
	if fh.Compressed != 0 {
		flag1 |= 0x80
	}
	if fh.Encryption != 0 {
		flag1 |= 0x40
	}
	if fh.Group != 0 {
		flag1 |= 0x20
	}
	out = append(out, flag0, flag1)

	if fh.Compressed != 0 {
		out = append(out, writeUintBE(uint32(fh.Compressed), 4)...)
	}
	if fh.Encryption != 0 {
		out = append(out, fh.Encryption)
	}
	if fh.Group != 0 {
		out = append(out, fh.Group)
	}
	return out
}

func serializeFrameHeaderV4(fh FrameHeader, bodySize int) []byte {
	out := []byte(fh.ID)
	sz := encodeSyncsafe(uint32(bodySize))
	out = append(out, sz[:]...)

	flag0, flag1 := byte(0), byte(0)
	if fh.TagAlterPreservation {
		flag0 |= 0x40
	}
	if fh.FileAlterPreservation {
		flag0 |= 0x20
	}
	if fh.ReadOnly {
		flag0 |= 0x10
	}
	if fh.Group != 0 {
		flag1 |= 0x40
	}
	if fh.Encryption != 0 {
		flag1 |= 0x04
	}
	if fh.Unsynchronisation {
		flag1 |= 0x02
	}
	if fh.Compressed != 0 {
		flag1 |= 0x08
	}
	out = append(out, flag0, flag1)

	if fh.Group != 0 {
		out = append(out, fh.Group)
	}
	if fh.Encryption != 0 {
		out = append(out, fh.Encryption)
	}
	if fh.Compressed != 0 {
		dl := encodeSyncsafe(uint32(fh.Compressed))
		out = append(out, dl[:]...)
	}
	return out
}

// serializeFrameBody is the inverse of parseFrameBody: it walks a frame's
// entries against their recorded per-entry contexts, re-packing bit runs
// and zero-padding numeric contexts to their full width. Every other
// context type's entry bytes are already in correct wire form (the core
// stores entries pre-encoded in their declared text encoding, matching
// how callers build frames — see DESIGN.md).
func serializeFrameBody(f *Frame) ([]byte, error) {
	if len(f.entries) != len(f.entryCtx) {
		return nil, errors.Wrap(ErrSerialize, "entry/context length mismatch")
	}

	var buf bytes.Buffer
	i := 0
	for i < len(f.entries) {
		c := f.entryCtx[i]

		if c.typ == ctxBit {
			j := i
			for j < len(f.entryCtx) && f.entryCtx[j].typ == ctxBit {
				j++
			}
			bw := &bitWriter{}
			for k := i; k < j; k++ {
				v := readUintBE(f.entries[k].Bytes())
				bw.writeBits(v, uint(f.entryCtx[k].max))
			}
			buf.Write(bw.flush())
			i = j
			continue
		}

		switch c.typ {
		case ctxNumeric, ctxPrecision:
			v := readUintBE(f.entries[i].Bytes())
			buf.Write(writeUintBE(v, c.max))
		case ctxUnknown:
			return nil, errors.Wrapf(ErrSchema, "cannot serialize unknown context %q", c.label)
		default:
			buf.Write(f.entries[i].Bytes())
		}
		i++
	}
	return buf.Bytes(), nil
}
