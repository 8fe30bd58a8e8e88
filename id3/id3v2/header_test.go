package id3v2

import "testing"

func TestNewHeaderRejectsUnknownMajor(t *testing.T) {
	if _, err := NewHeader(5, 0); err == nil {
		t.Error("NewHeader(5, 0) should fail (invariant I3)")
	}
}

func TestHeaderFlagUndefinedForVersion(t *testing.T) {
	h, err := NewHeader(2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Footer(); err == nil {
		t.Error("Footer() should be undefined on a v2.2 header")
	}
	if _, err := h.ExtendedHeaderPresent(); err == nil {
		t.Error("ExtendedHeaderPresent() should be undefined on a v2.2 header")
	}
}

func TestSetUnsynchronisationRoundTrip(t *testing.T) {
	h, err := NewHeader(4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.SetUnsynchronisation(true); err != nil {
		t.Fatal(err)
	}
	got, err := h.Unsynchronisation()
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("Unsynchronisation() = false after SetUnsynchronisation(true)")
	}
}

func TestRestrictionsPackUnpackRoundTrip(t *testing.T) {
	r := Restrictions{
		TagSizeClass:       2,
		TextEncodingClass:  1,
		TextFieldSizeClass: 3,
		ImageEncodingClass: 1,
		ImageSizeClass:     2,
	}
	got := UnpackRestrictions(r.PackByte())
	if got != r {
		t.Errorf("UnpackRestrictions(PackByte()) = %+v, want %+v", got, r)
	}
}

func TestClearRestrictionsResetsBoth(t *testing.T) {
	ext := &ExtendedHeader{
		RestrictionsPresent: true,
		Restrictions:        Restrictions{TagSizeClass: 3},
	}
	ext.ClearRestrictions()
	if ext.RestrictionsPresent {
		t.Error("RestrictionsPresent should be false after ClearRestrictions")
	}
	if ext.Restrictions != (Restrictions{}) {
		t.Error("Restrictions should be zeroed after ClearRestrictions")
	}
}
