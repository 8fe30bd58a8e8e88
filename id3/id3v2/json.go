package id3v2

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
)

// entryJSON renders one content entry per its context type (spec.md §4.8).
// The second return value is false for iter/unknown contexts, which
// contribute no JSON output.
func entryJSON(c contentContext, e *ContentEntry) (string, bool) {
	switch c.typ {
	case ctxNumeric:
		return strconv.FormatUint(uint64(readUintBE(e.Bytes())), 10), true
	case ctxPrecision:
		v := math.Float32frombits(readUintBE(e.Bytes()))
		return strconv.FormatFloat(float64(v), 'g', -1, 32), true
	case ctxEncodedString, ctxLatin1:
		return `"` + decodeRawAsChar(e.Bytes()) + `"`, true
	case ctxBinary, ctxBit, ctxNoEncoding, ctxAdjustment:
		return `"` + base64.StdEncoding.EncodeToString(e.Bytes()) + `"`, true
	default: // ctxIter, ctxUnknown
		return "", false
	}
}

func frameHeaderJSON(fh FrameHeader) string {
	var b strings.Builder
	b.WriteString(`{"id":"`)
	b.WriteString(escapeJSON(fh.ID))
	b.WriteString(`","tagAlterPreservation":`)
	b.WriteString(strconv.FormatBool(fh.TagAlterPreservation))
	b.WriteString(`,"fileAlterPreservation":`)
	b.WriteString(strconv.FormatBool(fh.FileAlterPreservation))
	b.WriteString(`,"readOnly":`)
	b.WriteString(strconv.FormatBool(fh.ReadOnly))
	b.WriteString(`,"unsynchronisation":`)
	b.WriteString(strconv.FormatBool(fh.Unsynchronisation))
	b.WriteString(`,"compressed":`)
	b.WriteString(strconv.FormatBool(fh.IsCompressed()))
	b.WriteString(`,"encrypted":`)
	b.WriteString(strconv.FormatBool(fh.Encrypted()))
	b.WriteString(`,"group":`)
	b.WriteString(strconv.Itoa(int(fh.Group)))
	b.WriteString("}")
	return b.String()
}

// JSON renders f as {"header":...,"content":[...]} (spec.md §4.8).
func (f *Frame) JSON() string {
	var b strings.Builder
	b.WriteString(`{"header":`)
	b.WriteString(frameHeaderJSON(f.Header))
	b.WriteString(`,"content":[`)
	first := true
	for i, e := range f.entries {
		var c contentContext
		if i < len(f.entryCtx) {
			c = f.entryCtx[i]
		}
		v, ok := entryJSON(c, e)
		if !ok {
			continue
		}
		if !first {
			b.WriteString(",")
		}
		first = false
		b.WriteString(v)
	}
	b.WriteString("]}")
	return b.String()
}

func tagHeaderJSON(h *Header) string {
	var b strings.Builder
	b.WriteString(`{"major":`)
	b.WriteString(strconv.Itoa(h.Major))
	b.WriteString(`,"minor":`)
	b.WriteString(strconv.Itoa(h.Minor))
	b.WriteString(`,"flags":`)
	b.WriteString(strconv.Itoa(int(h.Flags)))
	b.WriteString(`,"size":`)
	b.WriteString(strconv.Itoa(h.Size))
	b.WriteString("}")
	return b.String()
}

// JSON renders t as {"header":...,"content":[frame, frame, ...]}
// (spec.md §4.8).
func (t *Tag) JSON() string {
	var b strings.Builder
	b.WriteString(`{"header":`)
	b.WriteString(tagHeaderJSON(t.Header))
	b.WriteString(`,"content":[`)
	for i, f := range t.frames {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(f.JSON())
	}
	b.WriteString("]}")
	return b.String()
}
