package id3v2

import "github.com/halfwit/id3tag/id3/container"

// Registry maps a frame identifier to the schema used to parse and
// serialize it. The zero value is not usable; construct one with
// NewRegistry or DefaultRegistry.
type Registry struct {
	byID *container.OrderedMap[string, schema]
}

// NewRegistry returns an empty registry, for callers building a private
// extension registry (the "caller-supplied registry" extensibility hook in
// spec.md §4.2, pass 2/4).
func NewRegistry() *Registry {
	return &Registry{byID: container.NewOrderedMap[string, schema]()}
}

// Register associates id with sch. Re-registering an id replaces its
// schema.
func (r *Registry) Register(id string, sch schema) {
	r.byID.Set(id, sch)
}

func (r *Registry) lookup(id string) (schema, bool) {
	return r.byID.Get(id)
}

// DefaultRegistry builds the built-in identifier -> schema table for the
// given tag major version (2, 3 or 4), grounded on
// id3v2CreateDefaultIdentifierContextPairings in the reference source.
// It always carries the "T", "W" and "?" wildcard/fallback entries.
func DefaultRegistry(version int) *Registry {
	r := NewRegistry()

	r.Register("?", genericFrameSchema())
	r.Register("T", textFrameSchema())
	r.Register("W", urlFrameSchema())

	if version <= 2 {
		registerV22(r)
	} else {
		registerV3V4(r, version)
	}

	return r
}

func registerV22(r *Registry) {
	text := func(id string) { r.Register(id, textFrameSchema()) }
	url := func(id string) { r.Register(id, urlFrameSchema()) }

	r.Register("BUF", recommendedBufferSizeSchema())
	r.Register("CNT", playCounterSchema())
	r.Register("COM", commentSchema())
	r.Register("CRA", audioEncryptionSchema())
	r.Register("CRM", encryptedMetaSchema())
	r.Register("ETC", eventTimingCodesSchema())
	r.Register("EQU", equalizationSchema(2))
	r.Register("GEO", generalEncapsulatedObjectSchema())
	r.Register("IPL", involvedPeopleListSchema())
	r.Register("LNK", linkedInformationSchema())
	r.Register("MCI", musicCDIdentifierSchema())
	r.Register("MLL", mpegLocationLookupTableSchema())
	r.Register("PIC", attachedPictureSchema(2))
	r.Register("POP", popularimeterSchema())
	r.Register("REV", reverbSchema())
	r.Register("RVA", relativeVolumeAdjustmentSchema())
	r.Register("SLT", synchronisedLyricSchema())
	r.Register("STC", synchronisedTempoCodesSchema())
	r.Register("TXX", userTextFrameSchema())
	r.Register("UFI", uniqueFileIdentifierSchema())
	r.Register("ULT", unsynchronisedLyricSchema())
	r.Register("WXX", userURLFrameSchema())

	for _, id := range []string{
		"TAL", "TBP", "TCM", "TCO", "TCR", "TDA", "TDY", "TEN", "TFT", "TIM",
		"TKE", "TLA", "TLE", "TMT", "TOA", "TOF", "TOL", "TOR", "TOT", "TP1",
		"TP2", "TP3", "TP4", "TPA", "TPB", "TRC", "TRD", "TRK", "TSI", "TSS",
		"TT1", "TT2", "TT3", "TXT", "TYE",
	} {
		text(id)
	}

	for _, id := range []string{"WAF", "WAR", "WAS", "WCM", "WCP", "WPB"} {
		url(id)
	}
}

func registerV3V4(r *Registry, version int) {
	text := func(id string) { r.Register(id, textFrameSchema()) }
	url := func(id string) { r.Register(id, urlFrameSchema()) }

	r.Register("AENC", audioEncryptionSchema())
	r.Register("APIC", attachedPictureSchema(3))
	r.Register("COMM", commentSchema())
	r.Register("COMR", commercialSchema())
	r.Register("ENCR", registrationSchema())
	r.Register("EQUA", equalizationSchema(3))
	if version >= 4 {
		r.Register("EQU2", equalizationSchema(4))
		r.Register("ASPI", audioSeekPointIndexSchema())
		r.Register("SEEK", seekSchema())
		r.Register("SIGN", signatureSchema())
		r.Register("TIPL", involvedPeopleListSchema())
		r.Register("TMCL", involvedPeopleListSchema())
		r.Register("RVA2", relativeVolumeAdjustmentSchema())
	} else {
		r.Register("IPLS", involvedPeopleListSchema())
		r.Register("RVAD", relativeVolumeAdjustmentSchema())
		r.Register("EXTC", genericFrameSchema())
	}
	r.Register("ETCO", eventTimingCodesSchema())
	r.Register("GEOB", generalEncapsulatedObjectSchema())
	r.Register("GRID", registrationSchema())
	r.Register("LINK", linkedInformationSchema())
	r.Register("MCDI", musicCDIdentifierSchema())
	r.Register("MLLT", mpegLocationLookupTableSchema())
	r.Register("OWNE", ownershipSchema())
	r.Register("PCNT", playCounterSchema())
	r.Register("POPM", popularimeterSchema())
	r.Register("POSS", positionSynchronisationSchema())
	r.Register("PRIV", privateSchema())
	r.Register("RBUF", recommendedBufferSizeSchema())
	r.Register("RVRB", reverbSchema())
	r.Register("SYLT", synchronisedLyricSchema())
	r.Register("SYTC", synchronisedTempoCodesSchema())
	r.Register("TXXX", userTextFrameSchema())
	r.Register("UFID", uniqueFileIdentifierSchema())
	r.Register("USER", termsOfUseSchema())
	r.Register("USLT", unsynchronisedLyricSchema())
	r.Register("WXXX", userURLFrameSchema())

	for _, id := range []string{
		"TALB", "TBPM", "TCOM", "TCON", "TCOP", "TDEN", "TDLY", "TDOR",
		"TDRC", "TDRL", "TDTG", "TENC", "TEXT", "TFLT", "TIT1", "TIT2",
		"TIT3", "TKEY", "TLAN", "TLEN", "TMED", "TMOO", "TOAL", "TOFN",
		"TOLY", "TOPE", "TOWN", "TPE1", "TPE2", "TPE3", "TPE4", "TPOS",
		"TPRO", "TPUB", "TRCK", "TRSN", "TRSO", "TSO2", "TSOA", "TSOP",
		"TSOT", "TSRC", "TSSE", "TYER", "TDAT", "TIME", "TORY", "TSIZ",
		"TCMP",
	} {
		text(id)
	}

	for _, id := range []string{"WCOM", "WCOP", "WOAF", "WOAR", "WOAS", "WORS", "WPAY", "WPUB"} {
		url(id)
	}
}

// resolveSchema applies the 4-pass resolution rule from spec.md §4.2:
// exact match in the default registry, exact match in the caller-supplied
// registry, "T"/"W" prefix wildcard, then the "?" generic fallback. extra
// may be nil.
func resolveSchema(def *Registry, extra *Registry, id string) schema {
	if sch, ok := def.lookup(id); ok {
		return sch
	}

	if extra != nil {
		if sch, ok := extra.lookup(id); ok {
			return sch
		}
	}

	if len(id) > 0 {
		switch id[0] {
		case 'T':
			if sch, ok := def.lookup("T"); ok {
				return sch
			}
		case 'W':
			if sch, ok := def.lookup("W"); ok {
				return sch
			}
		}
	}

	sch, _ := def.lookup("?")
	return sch
}
