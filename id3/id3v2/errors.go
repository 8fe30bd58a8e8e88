package id3v2

import "github.com/pkg/errors"

// Sentinel errors, one per kind in the error taxonomy. Wrap these with
// errors.Wrap/Wrapf as they cross package boundaries so errors.Is still
// matches the sentinel while the message carries call-site context.
var (
	// ErrVersion means a tag's major version is outside {2,3,4}, or a flag
	// was set that is illegal for the tag's version.
	ErrVersion = errors.New("id3v2: unsupported or invalid tag version")

	// ErrSchema means no schema resolved for a frame identifier, even after
	// wildcard and generic-fallback resolution. Unreachable so long as the
	// "?" fallback stays registered, but returned defensively. The
	// serializer also returns it for an entry whose context is of the
	// unknown type.
	ErrSchema = errors.New("id3v2: no schema resolved for frame identifier")

	// ErrBound means an entry cursor pointed outside the entry list, or a
	// write would have produced an entry outside its context's [min, max].
	ErrBound = errors.New("id3v2: value out of bounds for context")

	// ErrEncoding means a lossless transcode was impossible, e.g. writing a
	// non-Latin-1 string into a latin1Encoding context.
	ErrEncoding = errors.New("id3v2: text cannot be losslessly transcoded")

	// ErrSerialize means the serializer could not emit a valid stream for
	// a frame or tag (schema/version mismatch, entry/context mismatch).
	ErrSerialize = errors.New("id3v2: cannot serialize tag or frame")

	// ErrIO wraps failures from the caller-visible file operations.
	ErrIO = errors.New("id3v2: I/O failure")
)

// SchemaError names the frame identifier that failed schema resolution.
// Nothing in this package constructs it: resolution always falls back to
// the default registry's "?" entry, and parseFrame reports a failed
// resolution by wrapping ErrSchema.
type SchemaError struct {
	ID string
}

func (e *SchemaError) Error() string {
	return "id3v2: no schema resolved for frame identifier " + e.ID
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// BoundError names the context key and the bounds that were violated.
type BoundError struct {
	Key      string
	Min, Max int
	Got      int
}

func (e *BoundError) Error() string {
	return errors.Errorf("id3v2: entry %q has size %d, want [%d, %d]", e.Key, e.Got, e.Min, e.Max).Error()
}

func (e *BoundError) Unwrap() error { return ErrBound }
