package id3v1

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tag := &Tag{
		Title:   "Kid A",
		Artist:  "Radiohead",
		Album:   "Kid A",
		Year:    2000,
		Comment: "ripped",
		Track:   1,
		Genre:   "Alternative Rock",
	}

	encoded := tag.Encode()
	if len(encoded) != Size {
		t.Fatalf("Encode produced %d bytes, want %d", len(encoded), Size)
	}
	if string(encoded[:3]) != "TAG" {
		t.Fatalf("Encode missing TAG marker, got %q", encoded[:3])
	}

	got, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Title != tag.Title {
		t.Errorf("Title = %q, want %q", got.Title, tag.Title)
	}
	if got.Artist != tag.Artist {
		t.Errorf("Artist = %q, want %q", got.Artist, tag.Artist)
	}
	if got.Album != tag.Album {
		t.Errorf("Album = %q, want %q", got.Album, tag.Album)
	}
	if got.Year != tag.Year {
		t.Errorf("Year = %d, want %d", got.Year, tag.Year)
	}
	if got.Comment != tag.Comment {
		t.Errorf("Comment = %q, want %q", got.Comment, tag.Comment)
	}
	if got.Track != tag.Track {
		t.Errorf("Track = %d, want %d", got.Track, tag.Track)
	}
	if got.Genre != tag.Genre {
		t.Errorf("Genre = %q, want %q", got.Genre, tag.Genre)
	}
}

func TestDecodeNoMarkerReturnsErrNoTag(t *testing.T) {
	data := make([]byte, Size)
	copy(data, bytes.Repeat([]byte{'x'}, len(data)))
	_, err := Decode(bytes.NewReader(data))
	if err != ErrNoTag {
		t.Errorf("err = %v, want ErrNoTag", err)
	}
}

func TestEncodeUnknownGenreUsesUnknownByte(t *testing.T) {
	tag := &Tag{Genre: "Not A Real Genre"}
	encoded := tag.Encode()
	got, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Genre != "" {
		t.Errorf("Genre = %q, want empty for unknown genre byte", got.Genre)
	}
}

func TestEncodeTruncatesOverlongFields(t *testing.T) {
	title := "this title is definitely longer than thirty bytes long"
	tag := &Tag{Title: title}
	encoded := tag.Encode()
	got, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Title) > 30 {
		t.Errorf("decoded title length = %d, want <= 30", len(got.Title))
	}
	if got.Title != title[:30] {
		t.Errorf("Title = %q, want %q", got.Title, title[:30])
	}
}
