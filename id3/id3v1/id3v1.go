// Package id3v1 reads and writes the legacy 128-byte fixed-layout ID3v1 tag
// appended to the end of an MP3 file. It is a thin collaborator alongside
// the ID3v2 codec (id3/id3v2): no schema, no context dispatch, just a fixed
// struct and a genre lookup table.
package id3v1

import (
	"bytes"
	"encoding/binary"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

const Size = 128

var ErrNoTag = errors.New("id3v1: no TAG marker found")

var genres = []string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient", "Trip-Hop",
	"Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical", "Instrumental", "Acid",
	"House", "Game", "Sound Clip", "Gospel", "Noise", "Alternative Rock", "Bass",
	"Soul", "Punk", "Space", "Meditative", "Instrumental Pop", "Instrumental Rock",
	"Ethnic", "Gothic", "Darkwave", "Techno-Industrial", "Electronic", "Pop-Folk",
	"Eurodance", "Dream", "Southern Rock", "Comedy", "Cult", "Gangsta", "Top 40",
	"Christian Rap", "Pop/Funk", "Jungle", "Native US", "Cabaret", "New Wave",
	"Psychadelic", "Rave", "Showtunes", "Trailer", "Lo-Fi", "Tribal", "Acid Punk",
	"Acid Jazz", "Polka", "Retro", "Musical", "Rock & Roll", "Hard Rock", "Folk",
	"Folk-Rock", "National Folk", "Swing", "Fast Fusion", "Bebop", "Latin",
	"Revival", "Celtic", "Bluegrass", "Avantgarde", "Gothic Rock",
	"Progressive Rock", "Psychedelic Rock", "Symphonic Rock", "Slow Rock",
	"Big Band", "Chorus", "Easy Listening", "Acoustic", "Humour", "Speech",
	"Chanson", "Opera", "Chamber Music", "Sonata", "Symphony", "Booty Bass",
	"Primus", "Porn Groove", "Satire", "Slow Jam", "Club", "Tango", "Samba",
	"Folklore", "Ballad", "Power Ballad", "Rhytmic Soul", "Freestyle", "Duet",
	"Punk Rock", "Drum Solo", "Acapella", "Euro-House", "Dance Hall", "Goa",
	"Drum & Bass",
}

// Tag is the 128-byte ID3v1 fixed layout, decoded into plain fields.
type Tag struct {
	Title   string
	Artist  string
	Album   string
	Year    int
	Comment string
	Track   int // 0 if the comment field carries no ID3v1.1 track byte
	Genre   string
}

// wireTag is the exact 128-byte on-disk layout (minus the 3-byte "TAG"
// marker), little-endian per the ID3v1 standard.
type wireTag struct {
	Title      [30]byte
	Artist     [30]byte
	Album      [30]byte
	Year       [4]byte
	Comment    [29]byte
	AlbumTrack byte
	Genre      byte
}

// Decode reads a 128-byte ID3v1 tag from the last 128 bytes of r. Returns
// ErrNoTag if no "TAG" marker is present there.
func Decode(r io.Reader) (*Tag, error) {
	var (
		t   wireTag
		err error
	)

	if seeker, ok := r.(io.Seeker); ok {
		if _, err := seeker.Seek(-Size, io.SeekEnd); err != nil {
			return nil, errors.Wrap(err, "id3v1: seek to tag")
		}
	} else {
		r, err = seekEnd(r, Size)
		if err != nil {
			return nil, errors.Wrap(err, "id3v1: locate tag")
		}
	}

	marker := make([]byte, 3)
	if _, err := io.ReadFull(r, marker); err != nil {
		return nil, errors.Wrap(err, "id3v1: read marker")
	}
	if string(marker) != "TAG" {
		return nil, ErrNoTag
	}

	if err := binary.Read(r, binary.LittleEndian, &t); err != nil {
		return nil, errors.Wrap(err, "id3v1: read body")
	}

	var genre string
	if int(t.Genre) < len(genres) {
		genre = genres[t.Genre]
	}

	year, _ := strconv.Atoi(trimString(t.Year[:]))

	track := 0
	if t.Comment[len(t.Comment)-1] == 0 { // ID3v1.1: NUL before the track byte
		track = int(t.AlbumTrack)
	}

	return &Tag{
		Title:   trimString(t.Title[:]),
		Artist:  trimString(t.Artist[:]),
		Album:   trimString(t.Album[:]),
		Year:    year,
		Comment: trimString(t.Comment[:]),
		Track:   track,
		Genre:   genre,
	}, nil
}

// Encode renders t as a 128-byte ID3v1 tag (the "TAG" marker followed by
// the fixed-width wire layout), truncating fields that overflow their
// slots. The genre byte is 0xFF ("unknown") if t.Genre isn't found in the
// standard genre table.
func (t *Tag) Encode() []byte {
	var w wireTag
	copy(w.Title[:], t.Title)
	copy(w.Artist[:], t.Artist)
	copy(w.Album[:], t.Album)
	copy(w.Year[:], strconv.Itoa(t.Year))
	copy(w.Comment[:], t.Comment)
	w.AlbumTrack = byte(t.Track)
	w.Genre = 0xFF
	for i, g := range genres {
		if g == t.Genre {
			w.Genre = byte(i)
			break
		}
	}

	var buf bytes.Buffer
	buf.WriteString("TAG")
	binary.Write(&buf, binary.LittleEndian, &w)
	return buf.Bytes()
}

func seekEnd(r io.Reader, pos int) (io.Reader, error) {
	var (
		buf  []byte
		buf1 = make([]byte, 1<<15)
		buf2 = make([]byte, 1<<15)
		n    int
		err  error
	)

	for {
		n, err = r.Read(buf1)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		buf1, buf2 = buf2, buf1
	}

	if n < pos {
		buf = make([]byte, pos)
		m := copy(buf, buf2[len(buf2)-(pos-n):])
		copy(buf[m:], buf1[:n])
	} else {
		buf = buf1[n-pos : n]
	}

	return bytes.NewReader(buf), nil
}

func trimString(s []byte) string {
	i := bytes.IndexByte(s, 0)
	if i < 0 {
		return string(s)
	}
	return string(s[:i])
}
