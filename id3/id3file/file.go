// Package id3file implements the write-to-file orchestrator: given a path
// and a tag, decide whether to write fresh, prepend, or replace in place
// (spec.md §4.7). It is a thin collaborator around id3/id3v2's parser and
// serializer, not part of the core codec.
package id3file

import (
	"bytes"
	"io"
	"os"

	"github.com/halfwit/id3tag/id3/id3v2"
	"github.com/pkg/errors"
)

// ReadTag opens path and parses the ID3v2 tag at its start, if any. extra is
// an optional caller-supplied schema registry, passed straight through to
// id3v2.ParseTag.
func ReadTag(path string, extra *id3v2.Registry) (*id3v2.Tag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, id3v2.ErrIO.Error())
	}
	return id3v2.ParseTag(data, extra)
}

// WriteTag writes t to path, choosing among four strategies (spec.md §4.7):
//
//   - path does not exist: write the serialized tag alone.
//   - path exists but carries no "ID3" magic in its first 10 bytes: prepend
//     the serialized tag to the existing content.
//   - path carries a tag and t's v2.4 extended-header "update" flag is set:
//     prepend t in front of the existing tag, keeping the existing tag and
//     audio bytes untouched.
//   - otherwise: replace the existing tag in place, preserving every byte
//     that followed it.
func WriteTag(path string, t *id3v2.Tag) error {
	serialized, err := id3v2.Serialize(t)
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return writeFile(path, serialized)
		}
		return errors.Wrap(err, id3v2.ErrIO.Error())
	}

	tagLen, hasTag := existingTagLength(existing)
	if !hasTag {
		return writeFile(path, append(serialized, existing...))
	}

	if t.Header.Extended != nil && t.Header.Extended.Update {
		return writeFile(path, append(serialized, existing...))
	}

	rest := existing[tagLen:]
	out := make([]byte, 0, len(serialized)+len(rest))
	out = append(out, serialized...)
	out = append(out, rest...)
	return writeFile(path, out)
}

// existingTagLength reports the total byte length (header + body, plus
// footer if present) of the ID3v2 tag at the start of data, if any.
func existingTagLength(data []byte) (int, bool) {
	if len(data) < 10 || !bytes.Equal(data[:3], []byte("ID3")) {
		return 0, false
	}
	size := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 | int(data[8]&0x7F)<<7 | int(data[9]&0x7F)
	total := 10 + size
	if data[5]&0x10 != 0 { // footer present (v2.4 header flag bit 4)
		total += 10
	}
	if total > len(data) {
		total = len(data)
	}
	return total, true
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, id3v2.ErrIO.Error())
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return errors.Wrap(err, id3v2.ErrIO.Error())
	}
	return nil
}

// ReadTagFrom parses a tag directly out of an io.Reader, useful for callers
// that already hold an open handle.
func ReadTagFrom(r io.Reader, extra *id3v2.Registry) (*id3v2.Tag, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, id3v2.ErrIO.Error())
	}
	return id3v2.ParseTag(data, extra)
}
