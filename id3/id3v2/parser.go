package id3v2

import (
	"bytes"

	"github.com/pkg/errors"
)

// ParseTag locates the first ID3v2 tag in data and parses it into a Tag.
// extra is a caller-supplied schema registry layered on top of the default
// registry for the tag's version at frame-resolution time (spec.md §4.2
// pass 2); it may be nil.
//
// A malformed tag header is fatal and returns (nil, err). A frame that
// fails to parse is dropped and parsing continues with the next frame
// (spec.md §4.5 "Partial-failure semantics").
func ParseTag(data []byte, extra *Registry) (*Tag, error) {
	idx := bytes.Index(data, []byte("ID3"))
	if idx < 0 {
		return nil, errors.Wrap(ErrIO, "no ID3 magic found")
	}
	if len(data) < idx+10 {
		return nil, errors.Wrap(ErrIO, "truncated tag header")
	}

	raw := data[idx : idx+10]
	major := int(raw[3])
	minor := int(raw[4])
	flags := raw[5]

	header, err := NewHeader(major, minor)
	if err != nil {
		return nil, err
	}
	header.Flags = flags

	if compressed, _ := header.Compression(); compressed {
		return nil, errors.Wrap(ErrVersion, "v2.2 tag has the compression flag set; no frame layout is defined for it")
	}

	tagSize := int(decodeSyncsafe(raw[6:10]))
	bodyStart := idx + 10
	bodyEnd := bodyStart + tagSize
	if bodyEnd > len(data) {
		bodyEnd = len(data)
	}
	body := data[bodyStart:bodyEnd]

	if unsync, _ := header.Unsynchronisation(); unsync {
		body = reverseUnsynchronisation(body)
	}
	header.Size = len(body)

	pos := 0

	if extHeaderPresent, _ := header.ExtendedHeaderPresent(); extHeaderPresent {
		ext, consumed, err := parseExtendedHeader(body[pos:], major)
		if err != nil {
			return nil, err
		}
		header.Extended = ext
		pos += consumed
	}

	def := DefaultRegistry(major)
	idLen := 4
	if major == 2 {
		idLen = 3
	}

	tag := CreateTag(header, nil)

	for pos < len(body) {
		if body[pos] == 0x00 {
			break // end-of-frames padding sentinel (invariant I6)
		}
		if pos+idLen > len(body) {
			break
		}

		fh, frameSize, consumed, err := parseFrameHeader(body[pos:], major)
		if err != nil {
			break // header-level corruption within the frame stream; stop
		}
		pos += consumed

		if pos+frameSize > len(body) {
			frameSize = len(body) - pos
		}
		payload := body[pos : pos+frameSize]
		pos += frameSize

		frame, err := parseFrame(def, extra, fh, payload, major)
		if err != nil {
			continue // frame-level failure: skip, keep parsing (spec.md §7)
		}
		tag.AttachFrame(frame)
	}

	return tag, nil
}

// parseFrame resolves fh's schema and walks payload according to it,
// short-circuiting to a single opaque binary entry for compressed or
// encrypted frames (spec.md §4.5 step d).
func parseFrame(def, extra *Registry, fh FrameHeader, payload []byte, major int) (*Frame, error) {
	if fh.IsCompressed() || fh.Encrypted() {
		sch := genericFrameSchema()
		return newFrame(fh, sch, []*ContentEntry{NewEntry(payload)}, []contentContext{sch[0]}), nil
	}

	sch := resolveSchema(def, extra, fh.ID)
	if sch == nil {
		return nil, errors.Wrapf(ErrSchema, "identifier %q", fh.ID)
	}

	entries, ctxs, err := parseFrameBody(sch, payload)
	if err != nil {
		return nil, err
	}
	return newFrame(fh, sch.clone(), entries, ctxs), nil
}

// parseFrameHeader dispatches to the version-specific frame header reader.
func parseFrameHeader(body []byte, major int) (FrameHeader, int, int, error) {
	switch major {
	case 2:
		return parseFrameHeaderV2(body)
	case 3:
		return parseFrameHeaderV3(body)
	default:
		return parseFrameHeaderV4(body)
	}
}

func parseFrameHeaderV2(body []byte) (FrameHeader, int, int, error) {
	if len(body) < 6 {
		return FrameHeader{}, 0, 0, errors.Wrap(ErrIO, "short v2.2 frame header")
	}
	id := string(body[0:3])
	size := int(readUintBE(body[3:6]))
	return FrameHeader{ID: id}, size, 6, nil
}

func parseFrameHeaderV3(body []byte) (FrameHeader, int, int, error) {
	if len(body) < 10 {
		return FrameHeader{}, 0, 0, errors.Wrap(ErrIO, "short v2.3 frame header")
	}
	h := FrameHeader{ID: string(body[0:4])}
	size := int(readUintBE(body[4:8]))
	flag0, flag1 := body[8], body[9]
	pos := 10

	h.TagAlterPreservation = flag0&0x80 != 0
	h.FileAlterPreservation = flag0&0x40 != 0
	h.ReadOnly = flag0&0x20 != 0

	if flag1&0x80 != 0 { // compression
		if pos+4 > len(body) {
			return h, size, pos, errors.Wrap(ErrIO, "truncated decompression size")
		}
		h.Compressed = int(readUintBE(body[pos : pos+4]))
		pos += 4
	}
	if flag1&0x40 != 0 { // encryption
		if pos+1 > len(body) {
			return h, size, pos, errors.Wrap(ErrIO, "truncated encryption symbol")
		}
		h.Encryption = body[pos]
		pos++
	}
	if flag1&0x20 != 0 { // grouping
		if pos+1 > len(body) {
			return h, size, pos, errors.Wrap(ErrIO, "truncated group symbol")
		}
		h.Group = body[pos]
		pos++
	}
	return h, size, pos, nil
}

func parseFrameHeaderV4(body []byte) (FrameHeader, int, int, error) {
	if len(body) < 10 {
		return FrameHeader{}, 0, 0, errors.Wrap(ErrIO, "short v2.4 frame header")
	}
	h := FrameHeader{ID: string(body[0:4])}
	size := int(decodeSyncsafe(body[4:8]))
	flag0, flag1 := body[8], body[9]
	pos := 10

	h.TagAlterPreservation = flag0&0x40 != 0
	h.FileAlterPreservation = flag0&0x20 != 0
	h.ReadOnly = flag0&0x10 != 0

	if flag1&0x40 != 0 { // grouping
		if pos+1 > len(body) {
			return h, size, pos, errors.Wrap(ErrIO, "truncated group symbol")
		}
		h.Group = body[pos]
		pos++
	}
	if flag1&0x04 != 0 { // encryption
		if pos+1 > len(body) {
			return h, size, pos, errors.Wrap(ErrIO, "truncated encryption symbol")
		}
		h.Encryption = body[pos]
		pos++
	}
	if flag1&0x02 != 0 {
		h.Unsynchronisation = true
	}
	if flag1&0x08 != 0 || h.Encryption != 0 || flag1&0x01 != 0 { // compression / data-length indicator
		if pos+4 > len(body) {
			return h, size, pos, errors.Wrap(ErrIO, "truncated data length")
		}
		h.Compressed = int(decodeSyncsafe(body[pos : pos+4]))
		pos += 4
	}
	return h, size, pos, nil
}

// parseExtendedHeader dispatches to the version-specific extended header
// reader (spec.md §4.5 step 4).
func parseExtendedHeader(rest []byte, major int) (*ExtendedHeader, int, error) {
	if major == 4 {
		return parseExtendedHeaderV4(rest)
	}
	return parseExtendedHeaderV3(rest)
}

func parseExtendedHeaderV3(rest []byte) (*ExtendedHeader, int, error) {
	if len(rest) < 11 {
		return nil, errors.Wrap(ErrIO, "short v2.3 extended header")
	}
	flag := rest[4]
	crcPresent := flag&extFlagV3CRCPresent != 0
	padding := int(readUintBE(rest[7:11]))
	consumed := 11

	var crc uint64
	if crcPresent {
		if len(rest) < 15 {
			return nil, errors.Wrap(ErrIO, "short v2.3 extended header CRC")
		}
		crc = uint64(readUintBE(rest[11:15]))
		consumed = 15
	}

	return &ExtendedHeader{PaddingSize: padding, CRCPresent: crcPresent, CRC: crc}, consumed, nil
}

func parseExtendedHeaderV4(rest []byte) (*ExtendedHeader, int, error) {
	if len(rest) < 6 {
		return nil, errors.Wrap(ErrIO, "short v2.4 extended header")
	}
	flags := rest[5]
	pos := 6

	ext := &ExtendedHeader{
		Update:              flags&extFlagV4Update != 0,
		CRCPresent:          flags&extFlagV4CRCPresent != 0,
		RestrictionsPresent: flags&extFlagV4Restrictions != 0,
	}

	if ext.CRCPresent {
		if pos+5 > len(rest) {
			return nil, errors.Wrap(ErrIO, "short v2.4 extended header CRC")
		}
		ext.CRC = decodeSyncsafe5(rest[pos : pos+5])
		pos += 5
	}
	if ext.RestrictionsPresent {
		if pos+1 > len(rest) {
			return nil, errors.Wrap(ErrIO, "short v2.4 extended header restrictions")
		}
		ext.Restrictions = UnpackRestrictions(rest[pos])
		pos++
	}
	return ext, pos, nil
}

// parseFrameBody walks sch against payload, expanding iter contexts and
// grouping consecutive bit contexts, producing a flattened entry list and
// its parallel per-entry context list (frame.go's entryCtx).
func parseFrameBody(sch schema, payload []byte) ([]*ContentEntry, []contentContext, error) {
	var entries []*ContentEntry
	var ctxs []contentContext
	curEncoding := encISO88591
	lastByKey := map[uint64][]byte{}
	pos := 0

	i := 0
	for i < len(sch) {
		if sch[i].typ == ctxIter {
			c := sch[i]
			n := c.min
			if n <= 0 || n > i {
				i++
				continue
			}
			group := sch[i-n : i]
			for pos < len(payload) {
				before := pos
				newPos, done, err := parseContextRun(group, payload, pos, &entries, &ctxs, &curEncoding, lastByKey)
				if err != nil || newPos <= before {
					break // incomplete trailing repetition: stop, keep what parsed so far
				}
				pos = newPos
				if done {
					break
				}
			}
			i++
			continue
		}

		j := i
		for j < len(sch) && sch[j].typ != ctxIter {
			j++
		}
		newPos, done, err := parseContextRun(sch[i:j], payload, pos, &entries, &ctxs, &curEncoding, lastByKey)
		if err != nil {
			return entries, ctxs, err
		}
		pos = newPos
		if done {
			break // an unknown context aborted the rest of the body parse
		}
		i = j
	}

	return entries, ctxs, nil
}

// parseContextRun walks a flat (non-iter) run of contexts, internally
// grouping consecutive bit contexts so they share one bitReader. The bool
// return reports whether an unknown context was hit, which aborts the rest
// of the frame's body parse after consuming the remaining payload into one
// entry (spec.md §4.2 "unknown" read behavior).
func parseContextRun(run []contentContext, payload []byte, pos int, entries *[]*ContentEntry, ctxs *[]contentContext, curEncoding *textEncoding, lastByKey map[uint64][]byte) (int, bool, error) {
	i := 0
	for i < len(run) {
		c := run[i]
		if c.typ == ctxBit {
			j := i
			for j < len(run) && run[j].typ == ctxBit {
				j++
			}
			br := newBitReader(payload[pos:])
			for k := i; k < j; k++ {
				bc := run[k]
				v, err := br.readBits(uint(bc.max))
				if err != nil {
					return pos, false, err
				}
				data := writeUintBE(v, bitsToBytes(bc.max))
				*entries = append(*entries, NewEntry(data))
				*ctxs = append(*ctxs, bc)
				lastByKey[bc.key] = data
			}
			pos += br.bytesConsumed()
			i = j
			continue
		}

		if c.typ == ctxUnknown {
			data := append([]byte(nil), payload[pos:]...)
			*entries = append(*entries, NewEntry(data))
			*ctxs = append(*ctxs, c)
			return pos + len(data), true, nil
		}

		newPos, err := parseOneContext(c, payload, pos, entries, ctxs, curEncoding, lastByKey)
		if err != nil {
			return pos, false, err
		}
		pos = newPos
		i++
	}
	return pos, false, nil
}

// bitsToBytes rounds n bits up to the number of bytes needed to hold them.
func bitsToBytes(n int) int {
	return (n + 7) / 8
}

// parseOneContext reads a single non-bit context from payload at pos,
// appending its entry and advancing pos per the read rules in spec.md §4.2.
func parseOneContext(c contentContext, payload []byte, pos int, entries *[]*ContentEntry, ctxs *[]contentContext, curEncoding *textEncoding, lastByKey map[uint64][]byte) (int, error) {
	remaining := len(payload) - pos
	if remaining < 0 {
		remaining = 0
	}

	switch c.typ {
	case ctxNumeric, ctxPrecision, ctxNoEncoding, ctxBinary:
		n := c.max
		if n > remaining {
			n = remaining
		}
		if n < 0 {
			n = 0
		}
		data := append([]byte(nil), payload[pos:pos+n]...)
		*entries = append(*entries, NewEntry(data))
		*ctxs = append(*ctxs, c)
		lastByKey[c.key] = data
		if c.key == keyEncoding {
			*curEncoding = textEncoding(readUintBE(data))
			if !(*curEncoding).valid() {
				*curEncoding = encISO88591
			}
		}
		return pos + n, nil

	case ctxAdjustment:
		n := int(readUintBE(lastByKey[keyAdjustment]))
		if n > remaining {
			n = remaining
		}
		if n < 0 {
			n = 0
		}
		data := append([]byte(nil), payload[pos:pos+n]...)
		*entries = append(*entries, NewEntry(data))
		*ctxs = append(*ctxs, c)
		return pos + n, nil

	case ctxLatin1:
		n := encodedStringLen(encISO88591, payload[pos:])
		if n > remaining {
			n = remaining
		}
		end := pos + n
		if end+1 <= len(payload) && payload[end] == 0x00 {
			end++ // include terminator in the stored entry (P7 tolerates its absence too)
		}
		data := append([]byte(nil), payload[pos:end]...)
		*entries = append(*entries, NewEntry(data))
		*ctxs = append(*ctxs, c)
		return end, nil

	case ctxEncodedString:
		enc := *curEncoding
		n := encodedStringLen(enc, payload[pos:])
		if n > remaining {
			n = remaining
		}
		end := pos + n
		if enc.isTwoByte() {
			if end+2 <= len(payload) && payload[end] == 0x00 && payload[end+1] == 0x00 {
				end += 2
			}
		} else if end+1 <= len(payload) && payload[end] == 0x00 {
			end++
		}
		data := append([]byte(nil), payload[pos:end]...)
		*entries = append(*entries, NewEntry(data))
		*ctxs = append(*ctxs, c)
		return end, nil

	default:
		return pos, errors.Errorf("id3v2: unhandled context type %d", c.typ)
	}
}
