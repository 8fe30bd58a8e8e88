package id3v2

import "testing"

func TestContentEntryEqualPrefixCompare(t *testing.T) {
	a := NewEntry([]byte("testing"))
	b := NewEntry([]byte("testing\x00"))
	if !a.Equal(b) {
		t.Error("entries differing only by a trailing NUL should compare equal")
	}
	c := NewEntry([]byte("other"))
	if a.Equal(c) {
		t.Error("entries with different content should not compare equal")
	}
}

func TestWriteEntryEnforcesBounds(t *testing.T) {
	f := NewFrame("TIT2", 3, nil)
	f.Rewind()
	f.WriteEntry([]byte{0x00}) // encoding
	if err := f.WriteEntry(nil); err == nil {
		t.Error("WriteEntry with a zero-length text entry should fail the [1, max] bound (P4)")
	}
	if err := f.WriteEntry([]byte("ok")); err != nil {
		t.Errorf("WriteEntry within bounds failed: %v", err)
	}
}

func TestWriteEntryOutOfRangeCursor(t *testing.T) {
	f := NewFrame("TIT2", 3, nil)
	f.cursor = 99
	if err := f.WriteEntry([]byte("x")); err == nil {
		t.Error("WriteEntry with an out-of-range cursor should return a BoundError")
	}
}

func TestFrameEqualIgnoresTrailingNULInEntries(t *testing.T) {
	f1 := NewFrame("TIT2", 3, nil)
	f1.Rewind()
	f1.WriteEntry([]byte{0x00})
	f1.WriteEntry([]byte("so"))

	f2 := f1.Clone()
	f2.Rewind()
	f2.WriteEntry([]byte{0x00})
	f2.WriteEntry([]byte("so\x00"))

	if !f1.Equal(f2) {
		t.Error("frames differing only by a trailing NUL in one entry should be Equal (P7)")
	}
}

func TestWriteCharRoundTrip(t *testing.T) {
	f := NewFrame("TIT2", 3, nil)
	f.Rewind()
	if err := f.WriteEntry([]byte{byte(encISO88591)}); err != nil {
		t.Fatal(err)
	}
	if err := f.WriteChar("Happier Than Ever"); err != nil {
		t.Fatal(err)
	}
	f.Rewind()
	f.ReadByte()
	if got := f.ReadChar(); got != "Happier Than Ever" {
		t.Errorf("WriteChar/ReadChar round trip = %q, want %q", got, "Happier Than Ever")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f := NewFrame("TIT2", 3, nil)
	f.Rewind()
	f.WriteEntry([]byte{0x00})
	f.WriteEntry([]byte("original"))

	clone := f.Clone()
	clone.Rewind()
	clone.ReadByte()
	clone.WriteEntry([]byte("changed"))

	f.Rewind()
	f.ReadByte()
	if got := f.ReadChar(); got != "original" {
		t.Errorf("mutating a clone affected the original frame: got %q", got)
	}
}
