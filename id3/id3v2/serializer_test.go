package id3v2

import "testing"

// TestRoundTripFreshTagV3 mirrors spec.md S2: build a fresh v2.3 tag, write
// title/artist/year, serialize, reparse, and confirm the values survive.
func TestRoundTripFreshTagV3(t *testing.T) {
	header, err := NewHeader(3, 0)
	if err != nil {
		t.Fatal(err)
	}
	tag := CreateTag(header, nil)

	set := func(id, value string) {
		f := NewFrame(id, 3, nil)
		f.Rewind()
		if err := f.WriteEntry([]byte{byte(encISO88591)}); err != nil {
			t.Fatalf("write encoding for %s: %v", id, err)
		}
		if err := f.WriteChar(value); err != nil {
			t.Fatalf("write text for %s: %v", id, err)
		}
		tag.AttachFrame(f)
	}
	set("TIT2", "Happier Than Ever")
	set("TPE1", "Billie Eilish")
	set("TYER", "2021")

	out, err := Serialize(tag)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	reparsed, err := ParseTag(out, nil)
	if err != nil {
		t.Fatalf("ParseTag(serialized): %v", err)
	}

	read := func(id string) string {
		f := reparsed.ReadFrameByID(id)
		if f == nil {
			t.Fatalf("reparsed tag missing frame %s", id)
		}
		f.Rewind()
		f.ReadByte()
		return f.ReadChar()
	}
	if got := read("TIT2"); got != "Happier Than Ever" {
		t.Errorf("title = %q", got)
	}
	if got := read("TPE1"); got != "Billie Eilish" {
		t.Errorf("artist = %q", got)
	}
	if got := read("TYER"); got != "2021" {
		t.Errorf("year = %q", got)
	}
}

// TestRoundTripPicture mirrors spec.md S5: write a picture frame, serialize,
// reparse, and confirm the raw bytes survive exactly.
func TestRoundTripPicture(t *testing.T) {
	header, err := NewHeader(3, 0)
	if err != nil {
		t.Fatal(err)
	}
	tag := CreateTag(header, nil)

	raw := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x01, 0x02, 0x03}

	f := NewFrame("APIC", 3, nil)
	f.Rewind()
	f.WriteEntry([]byte{byte(encISO88591)})
	f.WriteChar("image/png")
	f.WriteEntry([]byte{0x03})
	f.WriteChar("")
	if err := f.WriteEntry(raw); err != nil {
		t.Fatalf("write picture data: %v", err)
	}
	tag.AttachFrame(f)

	out, err := Serialize(tag)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	reparsed, err := ParseTag(out, nil)
	if err != nil {
		t.Fatalf("ParseTag(serialized): %v", err)
	}

	pic := reparsed.ReadFrameByID("APIC")
	if pic == nil {
		t.Fatal("reparsed tag missing APIC frame")
	}
	pic.Rewind()
	pic.ReadByte()
	pic.ReadRaw()
	typeByte := pic.ReadByte()
	if typeByte != 0x03 {
		t.Errorf("picture type = %d, want 3", typeByte)
	}
	pic.ReadChar()
	data := pic.ReadRaw()
	if string(data) != string(raw) {
		t.Errorf("picture data = %v, want %v", data, raw)
	}
}

func TestSerializeRejectsV22ExtendedHeader(t *testing.T) {
	header, _ := NewHeader(2, 0)
	header.Extended = &ExtendedHeader{}
	tag := CreateTag(header, nil)
	if _, err := Serialize(tag); err == nil {
		t.Error("Serialize should reject a v2.2 tag carrying an extended header")
	}
}

func TestSerializeNumericZeroPadsToMax(t *testing.T) {
	f := NewFrame("SEEK", 4, nil)
	f.Rewind()
	if err := f.WriteEntry([]byte{0x00, 0x00, 0x00, 0x05}); err != nil {
		t.Fatal(err)
	}
	// a short numeric entry, as parsing a truncated SEEK payload leaves one
	f.entries[0] = NewEntry([]byte{0x05})
	body, err := serializeFrameBody(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(body) != 4 {
		t.Errorf("SEEK offset serialized to %d bytes, want 4 (its context max)", len(body))
	}
	if readUintBE(body) != 5 {
		t.Errorf("serialized SEEK offset = %d, want 5", readUintBE(body))
	}
}
