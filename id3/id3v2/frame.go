package id3v2

import "bytes"

// Frame-header flag bits. Layout differs slightly between v2.3 and v2.4;
// FrameHeader exposes version-independent booleans and each version's
// parser/serializer translates to/from the wire bit positions itself.
type FrameHeader struct {
	ID string // 3 bytes (v2.2) or 4 bytes (v2.3/v2.4)

	TagAlterPreservation  bool
	FileAlterPreservation bool
	ReadOnly              bool

	// Unsynchronisation is the per-frame unsynchronisation flag. Only
	// meaningful for v2.4; always false otherwise.
	Unsynchronisation bool

	// Compressed, Encryption and Group carry the compression-size,
	// encryption symbol and group symbol fields. A frame is compressed iff
	// Compressed != 0 and encrypted iff Encryption != 0, per spec.md §3.
	Compressed int
	Encryption byte
	Group      byte
}

// Encrypted reports whether this frame's payload is opaque ciphertext.
func (h *FrameHeader) Encrypted() bool { return h.Encryption != 0 }

// IsCompressed reports whether this frame's payload is opaque compressed
// data.
func (h *FrameHeader) IsCompressed() bool { return h.Compressed != 0 }

// ContentEntry is one positionally-bound value within a frame's body: an
// opaque byte buffer plus its length (spec.md §3).
type ContentEntry struct {
	data []byte
}

// NewEntry copies data into a new ContentEntry.
func NewEntry(data []byte) *ContentEntry {
	return &ContentEntry{data: append([]byte(nil), data...)}
}

// Bytes returns a copy of the entry's underlying bytes.
func (e *ContentEntry) Bytes() []byte {
	if e == nil {
		return nil
	}
	return append([]byte(nil), e.data...)
}

func (e *ContentEntry) Len() int {
	if e == nil {
		return 0
	}
	return len(e.data)
}

// Equal implements the prefix-compare rule from spec.md §3: two entries
// compare equal iff their shared prefix is byte-identical over
// min(len_a, len_b). This tolerates authoring tools disagreeing about
// trailing NUL inclusion.
func (e *ContentEntry) Equal(other *ContentEntry) bool {
	if e == nil || other == nil {
		return e == other
	}
	n := len(e.data)
	if len(other.data) < n {
		n = len(other.data)
	}
	return bytes.Equal(e.data[:n], other.data[:n])
}

// Frame is one ID3v2 frame: a header, a private deep copy of the schema it
// was parsed or built against (so registry edits cannot corrupt it), and
// its parsed content entries in positional order.
type Frame struct {
	Header  FrameHeader
	schema  schema // the frame's nominal schema, as registered
	entries []*ContentEntry

	// entryCtx holds, for each entry, the content context that produced
	// it. Its length always matches len(entries): an iter context expands
	// to zero or more repetitions of the contexts it governs, so entries
	// can outnumber the nominal schema (invariant I1). Keeping a flattened
	// per-entry context list sidesteps re-deriving the repeat group from
	// cursor position on every access.
	entryCtx []contentContext

	cursor int // entry cursor position for Read*/Write* accessors
}

// newFrame builds a frame from a header, schema, entries and their
// per-entry contexts, taking ownership of all three slices.
func newFrame(h FrameHeader, sch schema, entries []*ContentEntry, entryCtx []contentContext) *Frame {
	return &Frame{Header: h, schema: sch, entries: entries, entryCtx: entryCtx}
}

// NewFrame builds a fresh frame for id, resolving its schema under major's
// 4-pass lookup rule (reg may be nil). Every non-iter context is seeded
// with a minimum-size placeholder entry (its context's min byte count,
// zero-filled); iter contexts start with zero repetitions. Callers fill
// entries with WriteEntry/WriteChar before attaching the frame to a tag
// (spec.md §4.4's write-cursor contract).
func NewFrame(id string, major int, reg *Registry) *Frame {
	sch := resolveSchema(DefaultRegistry(major), reg, id)
	var entries []*ContentEntry
	var entryCtx []contentContext
	for _, c := range sch {
		if c.typ == ctxIter {
			continue
		}
		entries = append(entries, NewEntry(make([]byte, c.min)))
		entryCtx = append(entryCtx, c)
	}
	return newFrame(FrameHeader{ID: id}, sch.clone(), entries, entryCtx)
}

// Entries returns the number of content entries the frame currently holds.
func (f *Frame) Entries() int { return len(f.entries) }

// Clone returns a deep copy of f. Frames retrieved via Tag.ReadFrameByID
// are clones, so caller mutations never affect the tag (spec.md §5
// "Lifetime rules").
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	entries := make([]*ContentEntry, len(f.entries))
	for i, e := range f.entries {
		entries[i] = NewEntry(e.Bytes())
	}
	ctx := make([]contentContext, len(f.entryCtx))
	copy(ctx, f.entryCtx)
	return &Frame{Header: f.Header, schema: f.schema.clone(), entries: entries, entryCtx: ctx}
}

// Equal implements spec.md P7 (frame equality): headers must match
// byte-for-byte and entry lists must be element-wise equal under the
// prefix-compare rule.
func (f *Frame) Equal(other *Frame) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.Header != other.Header {
		return false
	}
	if len(f.entries) != len(other.entries) {
		return false
	}
	for i := range f.entries {
		if !f.entries[i].Equal(other.entries[i]) {
			return false
		}
	}
	return true
}

// --- entry cursor ---

// Rewind resets the read/write cursor to the first entry.
func (f *Frame) Rewind() { f.cursor = 0 }

// currentContext returns the context governing the entry at the cursor.
func (f *Frame) currentContext() (contentContext, bool) {
	if f.cursor < 0 || f.cursor >= len(f.entryCtx) {
		return contentContext{}, false
	}
	return f.entryCtx[f.cursor], true
}

func (f *Frame) currentEntry() *ContentEntry {
	if f.cursor < 0 || f.cursor >= len(f.entries) {
		return nil
	}
	return f.entries[f.cursor]
}

// ReadByte returns the first byte of the entry at the cursor (0 if the
// entry is empty or the cursor is out of range) and advances the cursor.
func (f *Frame) ReadByte() byte {
	e := f.currentEntry()
	f.cursor++
	if e == nil || e.Len() == 0 {
		return 0
	}
	return e.data[0]
}

// ReadUint16 reads the entry at the cursor as a big-endian uint16,
// zero-extending short entries and truncating long ones, then advances the
// cursor.
func (f *Frame) ReadUint16() uint16 {
	e := f.currentEntry()
	f.cursor++
	if e == nil {
		return 0
	}
	data := e.data
	if len(data) > 2 {
		data = data[len(data)-2:]
	}
	return uint16(readUintBE(data))
}

// ReadUint32 is ReadUint16's 32-bit counterpart.
func (f *Frame) ReadUint32() uint32 {
	e := f.currentEntry()
	f.cursor++
	if e == nil {
		return 0
	}
	data := e.data
	if len(data) > 4 {
		data = data[len(data)-4:]
	}
	return readUintBE(data)
}

// ReadChar decodes the entry at the cursor as a UTF-8 string, sniffing its
// encoding, stripping a leading BOM and escaping '"'/'\\' for JSON safety
// (spec.md §4.4 "char" accessor), then advances the cursor.
func (f *Frame) ReadChar() string {
	e := f.currentEntry()
	f.cursor++
	if e == nil {
		return ""
	}
	return decodeRawAsChar(e.data)
}

// ReadRaw returns a copy of the entry at the cursor's bytes and advances
// the cursor.
func (f *Frame) ReadRaw() []byte {
	e := f.currentEntry()
	f.cursor++
	return e.Bytes()
}

// WriteEntry replaces the bytes of the entry at the cursor with data, whose
// length must lie within the governing context's [min, max] bound (data is
// never truncated or padded to fit), then advances the
// cursor (mirroring the Read* accessors, so callers can build a frame with
// one WriteEntry/WriteChar call per schema position in order). Returns a
// BoundError without mutating the frame or advancing the cursor if the
// cursor is out of range or size would fall outside the bound.
func (f *Frame) WriteEntry(data []byte) error {
	if f.cursor < 0 || f.cursor >= len(f.entries) {
		return &BoundError{Key: "<cursor>", Got: f.cursor}
	}
	ctx, ok := f.currentContext()
	if ok {
		if len(data) < ctx.min || len(data) > ctx.max {
			return &BoundError{Key: ctx.label, Min: ctx.min, Max: ctx.max, Got: len(data)}
		}
	}
	f.entries[f.cursor] = NewEntry(data)
	f.cursor++
	return nil
}

// WriteChar transcodes s from UTF-8 into the entry at the cursor, using the
// text encoding declared by this frame's "encoding" entry if one precedes
// the cursor (ISO-8859-1 for a latin1Encoding context, or if no "encoding"
// entry is present), and appends that encoding's terminator unless the
// cursor is on the frame's last entry (spec.md §4.2 encodedString/
// latin1Encoding write behavior). Advances the cursor like WriteEntry.
func (f *Frame) WriteChar(s string) error {
	ctx, ok := f.currentContext()
	if !ok {
		return &BoundError{Key: "<cursor>", Got: f.cursor}
	}

	enc := f.declaredEncoding()
	if ctx.typ == ctxLatin1 {
		enc = encISO88591
	}

	data, err := encodeFromUTF8(enc, s)
	if err != nil {
		return err
	}
	if f.cursor < len(f.entries)-1 {
		data = append(data, terminator(enc)...)
	}
	return f.WriteEntry(data)
}

// declaredEncoding returns the encoding declared by this frame's "encoding"
// entry (the schema's leading numeric context with key hash("encoding")),
// defaulting to ISO-8859-1 if none is present or its value is invalid.
func (f *Frame) declaredEncoding() textEncoding {
	for i, c := range f.entryCtx {
		if c.key == keyEncoding && f.entries[i].Len() > 0 {
			if e := textEncoding(f.entries[i].Bytes()[0]); e.valid() {
				return e
			}
			return encISO88591
		}
	}
	return encISO88591
}
