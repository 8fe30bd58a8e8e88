package id3v2

// Tag is the top-level ID3v2 aggregate: a header and an ordered sequence of
// frames. Frame uniqueness is not enforced — multiple frames sharing an
// identifier (TXXX, APIC, COMM, ...) are permitted, distinguished by a
// descriptor entry within each frame (spec.md §3).
type Tag struct {
	Header *Header
	frames []*Frame
}

// CreateTag builds a tag from an existing header and frame slice, taking
// ownership of both (spec.md §3 "Lifecycle").
func CreateTag(header *Header, frames []*Frame) *Tag {
	return &Tag{Header: header, frames: frames}
}

// Frames returns the tag's frames in insertion order. The slice is owned by
// the tag; callers must not mutate it in place — use AttachFrame/DetachFrame.
func (t *Tag) Frames() []*Frame {
	return t.frames
}

// AttachFrame transfers ownership of f into the tag's frame list, appending
// it after any existing frames.
func (t *Tag) AttachFrame(f *Frame) {
	t.frames = append(t.frames, f)
}

// DetachFrame removes the first frame deep-equal to f (per Frame.Equal) and
// returns it to the caller, who now owns it. Returns nil if no such frame
// is present.
func (t *Tag) DetachFrame(f *Frame) *Frame {
	for i, fr := range t.frames {
		if fr.Equal(f) {
			t.frames = append(t.frames[:i], t.frames[i+1:]...)
			return fr
		}
	}
	return nil
}

// ReadFrameByID returns a deep copy of the first frame with the given
// identifier, or nil if none is present. Mutating the returned frame never
// affects the tag (spec.md §5).
func (t *Tag) ReadFrameByID(id string) *Frame {
	for _, f := range t.frames {
		if f.Header.ID == id {
			return f.Clone()
		}
	}
	return nil
}

// ReadFramesByID returns deep copies of every frame with the given
// identifier, in tag order.
func (t *Tag) ReadFramesByID(id string) []*Frame {
	var out []*Frame
	for _, f := range t.frames {
		if f.Header.ID == id {
			out = append(out, f.Clone())
		}
	}
	return out
}

// RemoveFramesByID detaches every frame with the given identifier and
// returns them to the caller.
func (t *Tag) RemoveFramesByID(id string) []*Frame {
	var (
		kept    []*Frame
		removed []*Frame
	)
	for _, f := range t.frames {
		if f.Header.ID == id {
			removed = append(removed, f)
		} else {
			kept = append(kept, f)
		}
	}
	t.frames = kept
	return removed
}

// Clone returns a deep copy of the tag: a new header, new extended header
// (if any) and a clone of every frame.
func (t *Tag) Clone() *Tag {
	if t == nil {
		return nil
	}
	h := *t.Header
	if t.Header.Extended != nil {
		ext := *t.Header.Extended
		h.Extended = &ext
	}
	frames := make([]*Frame, len(t.frames))
	for i, f := range t.frames {
		frames[i] = f.Clone()
	}
	return &Tag{Header: &h, frames: frames}
}

// Equal reports whether t and other are deep-equal: same header fields and
// element-wise Frame.Equal frame lists in the same order.
func (t *Tag) Equal(other *Tag) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Header == nil || other.Header == nil {
		if t.Header != other.Header {
			return false
		}
	} else if *t.Header != *other.Header {
		if !headerExtendedEqual(t.Header, other.Header) {
			return false
		}
	}
	if len(t.frames) != len(other.frames) {
		return false
	}
	for i := range t.frames {
		if !t.frames[i].Equal(other.frames[i]) {
			return false
		}
	}
	return true
}

func headerExtendedEqual(a, b *Header) bool {
	if a.Major != b.Major || a.Minor != b.Minor || a.Flags != b.Flags || a.Size != b.Size {
		return false
	}
	if (a.Extended == nil) != (b.Extended == nil) {
		return false
	}
	if a.Extended == nil {
		return true
	}
	return *a.Extended == *b.Extended
}
