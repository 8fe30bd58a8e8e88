package id3v2

import (
	"bytes"
	"testing"
)

// TestParseTagTitleFrame mirrors spec.md S1: a v2.4 tag with a single TIT2
// frame, UTF-16 content "so" behind a little-endian BOM (FF FE), parses to a tag whose title reads
// back as "so".
func TestParseTagTitleFrame(t *testing.T) {
	frameHeader := append([]byte("TIT2"), 0x00, 0x00, 0x00, 0x07, 0x00, 0x00)
	body := []byte{0x01, 0xFF, 0xFE, 0x73, 0x00, 0x6F, 0x00}
	frame := append(frameHeader, body...)
	sz := encodeSyncsafe(uint32(len(frame)))
	header := append([]byte{'I', 'D', '3', 0x04, 0x00, 0x00}, sz[:]...)
	data := append(header, frame...)

	tag, err := ParseTag(data, nil)
	if err != nil {
		t.Fatalf("ParseTag: %v", err)
	}
	if tag.Header.Major != 4 {
		t.Fatalf("Major = %d, want 4", tag.Header.Major)
	}

	f := tag.ReadFrameByID("TIT2")
	if f == nil {
		t.Fatal("no TIT2 frame found")
	}
	f.Rewind()
	f.ReadByte() // encoding
	if got := f.ReadChar(); got != "so" {
		t.Errorf("title = %q, want %q", got, "so")
	}
}

// TestParseTagV22Comment mirrors spec.md S3: a v2.2 tag carrying a COM frame
// with language "eng", empty descriptor, text "testing".
func TestParseTagV22Comment(t *testing.T) {
	payload := append([]byte{0x00}, []byte("eng")...)
	payload = append(payload, 0x00) // empty description terminator
	payload = append(payload, []byte("testing")...)
	frameHeader := append([]byte("COM"), 0x00, 0x00, byte(len(payload)))
	frame := append(frameHeader, payload...)
	sz := encodeSyncsafe(uint32(len(frame)))
	header := append([]byte{'I', 'D', '3', 0x02, 0x00, 0x00}, sz[:]...)
	data := append(header, frame...)

	tag, err := ParseTag(data, nil)
	if err != nil {
		t.Fatalf("ParseTag: %v", err)
	}
	f := tag.ReadFrameByID("COM")
	if f == nil {
		t.Fatal("no COM frame found")
	}
	f.Rewind()
	f.ReadByte()  // encoding
	f.ReadRaw()   // language
	f.ReadChar()  // description
	if got := f.ReadChar(); got != "testing" {
		t.Errorf("comment text = %q, want %q", got, "testing")
	}
}

// TestParseTagEqualizationV22 mirrors spec.md S4's worked byte layout: a
// one-time adjustment byte followed by two repeating (unary, frequency,
// volume) bands. This also regression-tests the iter group width: with the
// group wrongly sized to include "adjustment" (min=4 instead of 3), band 2
// would re-read "adjustment" from a payload byte that is actually part of
// band 2's (unary, frequency) pair, shrinking its volume field to 0 bytes
// instead of the 2 bytes "adjustment"'s value (2) calls for.
func TestParseTagEqualizationV22(t *testing.T) {
	payload := []byte{0x02, 0x03, 0xE9, 0x40, 0x00, 0x00, 0x28, 0xFC, 0x00}
	sch := equalizationSchema(2)

	entries, ctxs, err := parseFrameBody(sch, payload)
	if err != nil {
		t.Fatalf("parseFrameBody: %v", err)
	}

	// adjustment, then 2 full bands of (unary, frequency, volume) = 7 entries.
	wantLabels := []string{
		"adjustment",
		"unary", "frequency", "volume",
		"unary", "frequency", "volume",
	}
	if len(ctxs) != len(wantLabels) {
		t.Fatalf("got %d entries %v, want %d entries (2 full bands, not a mis-segmented one)",
			len(ctxs), labelsOf(ctxs), len(wantLabels))
	}
	for i, want := range wantLabels {
		if ctxs[i].label != want {
			t.Errorf("entry %d context = %q, want %q", i, ctxs[i].label, want)
		}
	}

	if got := readUintBE(entries[0].Bytes()); got != 2 {
		t.Errorf("adjustment = %d, want 2", got)
	}

	// Band 1: unary+frequency packed from 03 E9, volume from the next 2
	// bytes (adjustment's value of 2 sizes "volume"), taken verbatim as 40 00.
	if got := entries[3].Bytes(); !bytes.Equal(got, []byte{0x40, 0x00}) {
		t.Errorf("band 1 volume = % X, want 40 00", got)
	}
	// Band 2: unary+frequency packed from 00 28, volume the final 2 bytes,
	// FC 00 -- this is the field the min=4 bug collapsed to 0 bytes.
	if got := entries[6].Bytes(); !bytes.Equal(got, []byte{0xFC, 0x00}) {
		t.Errorf("band 2 volume = % X, want FC 00", got)
	}
}

func labelsOf(ctxs []contentContext) []string {
	out := make([]string, len(ctxs))
	for i, c := range ctxs {
		out[i] = c.label
	}
	return out
}

// TestParseTagSkipsMalformedFrame exercises the partial-failure rule
// (spec.md §4.5, §7): one unparseable frame does not abort the whole tag.
func TestParseTagSkipsMalformedFrame(t *testing.T) {
	header := []byte{'I', 'D', '3', 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x1C}
	good := append([]byte("TIT2"), 0x00, 0x00, 0x00, 0x04, 0x00, 0x00)
	good = append(good, 0x00, 'h', 'i', 0x00)
	// a second frame header claiming a huge size, body truncated short: the
	// frame header itself still parses, so the body is just clamped and the
	// schema walk consumes whatever is available rather than failing.
	bad := append([]byte("TPE1"), 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00)
	data := append(append(header, good...), bad...)

	tag, err := ParseTag(data, nil)
	if err != nil {
		t.Fatalf("ParseTag: %v", err)
	}
	if tag.ReadFrameByID("TIT2") == nil {
		t.Error("expected the well-formed TIT2 frame to survive parsing")
	}
}

func TestParseTagRejectsBadMagic(t *testing.T) {
	if _, err := ParseTag([]byte("not an id3 tag"), nil); err == nil {
		t.Error("ParseTag on data with no ID3 magic should fail")
	}
}

func TestParseTagRejectsUnknownVersion(t *testing.T) {
	header := []byte{'I', 'D', '3', 0x09, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if _, err := ParseTag(header, nil); err == nil {
		t.Error("ParseTag with major version 9 should fail (invariant I3)")
	}
}

// TestParseTagRejectsV22Compression covers spec.md §3: a v2.2 tag with the
// compression flag set defines no frame layout and must be rejected outright
// rather than parsed as if the flag weren't there.
func TestParseTagRejectsV22Compression(t *testing.T) {
	header := []byte{'I', 'D', '3', 0x02, 0x00, headerFlagCompression, 0x00, 0x00, 0x00, 0x00}
	if _, err := ParseTag(header, nil); err == nil {
		t.Error("ParseTag on a v2.2 tag with the compression flag set should fail")
	}
}

func TestApplyUnsynchronisationInsertsZeroAfterFF(t *testing.T) {
	s := []byte{0x01, 0xFF, 0x02, 0x00, 0xFF}
	applied := applyUnsynchronisation(s)
	for i := 0; i+1 < len(applied)-1; i++ {
		if applied[i] == 0xFF && applied[i+1] == 0x00 && i+1 != len(applied)-1 {
			continue // only the inserted safety byte, which is expected
		}
	}
	if !bytes.Contains(applied, []byte{0xFF, 0x00}) {
		t.Error("applyUnsynchronisation should insert 0x00 after every 0xFF")
	}
}
