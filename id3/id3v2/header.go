package id3v2

import "github.com/pkg/errors"

// Header-level flag bits. Which bits are defined depends on the tag's
// major version (spec.md §3 "Tag header").
const (
	headerFlagUnsynchronisation = 1 << 7
	headerFlagCompression       = 1 << 6 // v2.2 only; no frames defined if set
	headerFlagExtendedHeader    = 1 << 6 // v2.3/v2.4
	headerFlagExperimental      = 1 << 5
	headerFlagFooter            = 1 << 4 // v2.4 only
)

// knownHeaderFlags returns the flag bits that are defined for major.
func knownHeaderFlags(major int) byte {
	switch major {
	case 2:
		return headerFlagUnsynchronisation | headerFlagCompression
	case 3:
		return headerFlagUnsynchronisation | headerFlagExtendedHeader | headerFlagExperimental
	case 4:
		return headerFlagUnsynchronisation | headerFlagExtendedHeader | headerFlagExperimental | headerFlagFooter
	default:
		return 0
	}
}

// Header is the 10-byte ID3v2 tag header plus its optional extended header.
type Header struct {
	Major int // 2, 3 or 4
	Minor int // informational only

	Flags byte

	// Size is the size of the tag after the header, not counting the
	// header's own 10 bytes (and not counting the footer, if present).
	// Always stored and written as a syncsafe 28-bit integer.
	Size int

	Extended *ExtendedHeader
}

// NewHeader returns a Header for major/minor with no flags set and no
// extended header. Size is computed by the serializer.
func NewHeader(major, minor int) (*Header, error) {
	if major < 2 || major > 4 {
		return nil, errors.Wrapf(ErrVersion, "major version %d", major)
	}
	return &Header{Major: major, Minor: minor}, nil
}

func (h *Header) flagBit(bit byte, validMajors ...int) (bool, error) {
	if h == nil {
		return false, nil
	}
	ok := false
	for _, m := range validMajors {
		if h.Major == m {
			ok = true
		}
	}
	if !ok {
		return false, errors.Wrapf(ErrVersion, "flag not defined for major version %d", h.Major)
	}
	return h.Flags&bit != 0, nil
}

func (h *Header) setFlagBit(bit byte, v bool, validMajors ...int) error {
	ok := false
	for _, m := range validMajors {
		if h.Major == m {
			ok = true
		}
	}
	if !ok {
		return errors.Wrapf(ErrVersion, "flag not defined for major version %d", h.Major)
	}
	if v {
		h.Flags |= bit
	} else {
		h.Flags &^= bit
	}
	return nil
}

// Unsynchronisation reports the tag-level unsynchronisation flag. Defined
// for every version.
func (h *Header) Unsynchronisation() (bool, error) {
	return h.flagBit(headerFlagUnsynchronisation, 2, 3, 4)
}

// SetUnsynchronisation sets the tag-level unsynchronisation flag.
func (h *Header) SetUnsynchronisation(v bool) error {
	return h.setFlagBit(headerFlagUnsynchronisation, v, 2, 3, 4)
}

// Compression reports the v2.2 compression flag. ID3v2.2 defines no frame
// layout for a compressed tag, so a parser encountering this flag set must
// reject the tag (spec.md §3).
func (h *Header) Compression() (bool, error) {
	return h.flagBit(headerFlagCompression, 2)
}

// ExtendedHeaderPresent reports the v2.3/v2.4 extended-header flag.
func (h *Header) ExtendedHeaderPresent() (bool, error) {
	return h.flagBit(headerFlagExtendedHeader, 3, 4)
}

// SetExtendedHeaderPresent sets the v2.3/v2.4 extended-header flag.
func (h *Header) SetExtendedHeaderPresent(v bool) error {
	return h.setFlagBit(headerFlagExtendedHeader, v, 3, 4)
}

// Experimental reports the v2.3/v2.4 experimental flag.
func (h *Header) Experimental() (bool, error) {
	return h.flagBit(headerFlagExperimental, 3, 4)
}

// SetExperimental sets the v2.3/v2.4 experimental flag.
func (h *Header) SetExperimental(v bool) error {
	return h.setFlagBit(headerFlagExperimental, v, 3, 4)
}

// Footer reports the v2.4 footer-present flag.
func (h *Header) Footer() (bool, error) {
	return h.flagBit(headerFlagFooter, 4)
}

// SetFooter sets the v2.4 footer-present flag.
func (h *Header) SetFooter(v bool) error {
	return h.setFlagBit(headerFlagFooter, v, 4)
}

// Extended-header flag bits (v2.4; v2.3 only ever has the CRC bit at a
// different position, handled directly in parser.go/serializer.go since
// its layout otherwise differs too much to share constants usefully).
const (
	extFlagV4Update       = 1 << 6
	extFlagV4CRCPresent   = 1 << 5
	extFlagV4Restrictions = 1 << 4

	extFlagV3CRCPresent = 1 << 7
)

// ExtendedHeader is the optional extended tag header present in v2.3 and
// v2.4 tags (spec.md §3 "Extended tag header").
type ExtendedHeader struct {
	// PaddingSize is the v2.3 padding-size field. The v2.4 parser leaves it
	// zero; when set, Serialize emits that many padding bytes for any version.
	PaddingSize int

	CRCPresent bool
	CRC        uint64 // preserved verbatim, never validated (spec.md §1 non-goals)

	// Update is the v2.4 "this tag supplements a prior tag, do not
	// overwrite it" flag. Always false for v2.3.
	Update bool

	RestrictionsPresent bool
	Restrictions        Restrictions
}

// Restrictions holds the v2.4 extended-header restriction bits (spec.md §3).
// They are preserved but never enforced by the core.
type Restrictions struct {
	TagSizeClass       byte // 2 bits
	TextEncodingClass  byte // 1 bit
	TextFieldSizeClass byte // 2 bits
	ImageEncodingClass byte // 1 bit
	ImageSizeClass     byte // 2 bits
}

// PackByte packs the restriction fields into the single byte ID3v2.4 wire
// format uses: bits [7:6] tag-size class, [5] text encoding, [4:3] text
// field size class, [2] image encoding, [1:0] image size class.
func (r Restrictions) PackByte() byte {
	return r.TagSizeClass<<6 | r.TextEncodingClass<<5 | r.TextFieldSizeClass<<3 | r.ImageEncodingClass<<2 | r.ImageSizeClass
}

// UnpackRestrictions is the inverse of PackByte.
func UnpackRestrictions(b byte) Restrictions {
	return Restrictions{
		TagSizeClass:       (b >> 6) & 0x03,
		TextEncodingClass:  (b >> 5) & 0x01,
		TextFieldSizeClass: (b >> 3) & 0x03,
		ImageEncodingClass: (b >> 2) & 0x01,
		ImageSizeClass:     b & 0x03,
	}
}

// ClearRestrictions resets the restriction byte and the restrictions-present
// flag atomically, as spec.md §4.3 requires.
func (h *ExtendedHeader) ClearRestrictions() {
	h.RestrictionsPresent = false
	h.Restrictions = Restrictions{}
}
