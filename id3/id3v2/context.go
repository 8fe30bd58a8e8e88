package id3v2

// contextType is the tagged-variant discriminator for a content context
// (spec.md §3, §4.2).
type contextType int

const (
	ctxNumeric contextType = iota
	ctxEncodedString
	ctxLatin1
	ctxNoEncoding
	ctxBinary
	ctxPrecision
	ctxBit
	ctxIter
	ctxAdjustment
	ctxUnknown
)

// djb2 computes Daniel J. Bernstein's string hash (hash = hash*33 + c,
// seeded at 5381), used to turn a human-readable context label such as
// "encoding" or "text" into a stable numeric key for cross-field lookup
// within a frame's schema (spec.md §3 "Content context").
func djb2(s string) uint64 {
	var hash uint64 = 5381
	for i := 0; i < len(s); i++ {
		hash = ((hash << 5) + hash) + uint64(s[i])
	}
	return hash
}

// Well-known context keys, hashed once at init so callers can compare
// against them without recomputing djb2 on every lookup.
var (
	keyEncoding   = djb2("encoding")
	keyText       = djb2("text")
	keyDesc       = djb2("desc")
	keyURL        = djb2("url")
	keyData       = djb2("data")
	keyAdjustment = djb2("adjustment")
	keyIter       = djb2("iter")
)

// contentContext describes one positional field of a frame body: its
// semantic type, a djb2-hashed key for cross-field lookup, and inclusive
// size bounds in bytes (spec.md §3, invariant I2).
type contentContext struct {
	typ      contextType
	label    string // human-readable label the key was hashed from (debug/JSON)
	key      uint64
	min, max int
}

func newContext(typ contextType, label string, min, max int) contentContext {
	return contentContext{typ: typ, label: label, key: djb2(label), min: min, max: max}
}

const maxSize = int(^uint32(0) >> 1) // effectively unbounded (UINT_MAX in the reference source)

// schema is an ordered sequence of contexts describing one frame's layout.
// Schemas are deep-copied into every parsed frame (frame.go) so later edits
// to the registry's constructors cannot corrupt already-parsed frames.
type schema []contentContext

func (s schema) clone() schema {
	out := make(schema, len(s))
	copy(out, s)
	return out
}

// --- schema constructors, one per frame family (spec.md §4.2) ---

func textFrameSchema() schema {
	return schema{
		newContext(ctxNumeric, "encoding", 1, 1),
		newContext(ctxEncodedString, "text", 1, maxSize),
	}
}

func userTextFrameSchema() schema {
	return schema{
		newContext(ctxNumeric, "encoding", 1, 1),
		newContext(ctxEncodedString, "desc", 1, maxSize),
		newContext(ctxEncodedString, "text", 1, maxSize),
	}
}

func urlFrameSchema() schema {
	return schema{
		newContext(ctxLatin1, "url", 1, maxSize),
	}
}

func userURLFrameSchema() schema {
	return schema{
		newContext(ctxNumeric, "encoding", 1, 1),
		newContext(ctxEncodedString, "desc", 1, maxSize),
		newContext(ctxLatin1, "url", 1, maxSize),
	}
}

// attachedPictureSchema covers APIC (v2.3/v2.4, Latin-1 MIME string) and PIC
// (v2.2, fixed 3-byte format code).
func attachedPictureSchema(version int) schema {
	s := schema{newContext(ctxNumeric, "encoding", 1, 1)}
	if version == 2 {
		s = append(s, newContext(ctxNoEncoding, "format", 1, 3))
	} else {
		s = append(s, newContext(ctxLatin1, "format", 1, maxSize))
	}
	s = append(s,
		newContext(ctxNumeric, "type", 1, 1),
		newContext(ctxEncodedString, "desc", 1, maxSize),
		newContext(ctxBinary, "data", 1, maxSize),
	)
	return s
}

func audioSeekPointIndexSchema() schema {
	return schema{newContext(ctxBinary, "data", 1, maxSize)}
}

func audioEncryptionSchema() schema {
	return schema{
		newContext(ctxLatin1, "identifier", 1, maxSize),
		newContext(ctxNumeric, "start", 2, 2),
		newContext(ctxNumeric, "length", 2, 2),
		newContext(ctxBinary, "data", 1, maxSize),
	}
}

func commentSchema() schema {
	return schema{
		newContext(ctxNumeric, "encoding", 1, 1),
		newContext(ctxNoEncoding, "language", 1, 3),
		newContext(ctxEncodedString, "desc", 1, maxSize),
		newContext(ctxEncodedString, "text", 1, maxSize),
	}
}

func commercialSchema() schema {
	return schema{
		newContext(ctxNumeric, "encoding", 1, 1),
		newContext(ctxLatin1, "price", 1, maxSize),
		newContext(ctxLatin1, "date", 1, 8),
		newContext(ctxLatin1, "url", 1, maxSize),
		newContext(ctxNumeric, "type", 1, 1),
		newContext(ctxEncodedString, "name", 1, maxSize),
		newContext(ctxEncodedString, "desc", 1, maxSize),
		newContext(ctxLatin1, "format", 1, maxSize),
		newContext(ctxBinary, "data", 1, maxSize),
	}
}

func encryptedMetaSchema() schema {
	return schema{
		newContext(ctxLatin1, "identifier", 1, maxSize),
		newContext(ctxLatin1, "content", 1, maxSize),
		newContext(ctxBinary, "data", 1, maxSize),
	}
}

// registrationSchema covers ENCR and GRID, which share an owner-identifier
// + 1-byte symbol + opaque-data layout.
func registrationSchema() schema {
	return schema{
		newContext(ctxLatin1, "identifier", 1, maxSize),
		newContext(ctxNumeric, "symbol", 1, 1),
		newContext(ctxBinary, "data", 1, maxSize),
	}
}

func musicCDIdentifierSchema() schema {
	return schema{newContext(ctxBinary, "data", 1, 804)}
}

func playCounterSchema() schema {
	return schema{newContext(ctxBinary, "data", 4, maxSize)}
}

// equalizationSchema covers EQU/EQUA (v2.2/v2.3) and EQU2 (v2.4). Versions
// prior to v2.4 iterate a bit-packed (unary sign, 15-bit frequency)
// adjustment pair; v2.4 replaces the bit packing with a 1-byte symbol and a
// 2-byte volume (spec.md S4 walks the v2.2 case byte for byte).
func equalizationSchema(version int) schema {
	if version >= 4 {
		return schema{
			newContext(ctxNumeric, "symbol", 1, 1),
			newContext(ctxLatin1, "identifier", 1, maxSize),
			newContext(ctxNumeric, "volume", 2, 2),
			newContext(ctxIter, "iter", 2, maxSize),
		}
	}
	// adjustment is read once, up front; the repeat group is the trailing
	// (unary, frequency, volume) frequency-band record, so iter's min is 3,
	// not 4 (spec.md §9 flags the reference source's own bit-packing as
	// known-buggy; this module derives the grouping from the ID3v2 informal
	// spec instead of mimicking the source's count here too).
	return schema{
		newContext(ctxNumeric, "adjustment", 1, 1),
		newContext(ctxBit, "unary", 1, 1),
		newContext(ctxBit, "frequency", 15, 15),
		newContext(ctxAdjustment, "volume", 1, maxSize),
		newContext(ctxIter, "iter", 3, maxSize),
	}
}

func eventTimingCodesSchema() schema {
	return schema{
		newContext(ctxNumeric, "symbol", 1, 1),
		newContext(ctxNumeric, "type", 1, 1),
		newContext(ctxNumeric, "stamp", 4, 4),
		newContext(ctxIter, "iter", 2, maxSize), // repeats (type, stamp) pairs
	}
}

func generalEncapsulatedObjectSchema() schema {
	return schema{
		newContext(ctxNumeric, "encoding", 1, 1),
		newContext(ctxLatin1, "format", 1, maxSize),
		newContext(ctxEncodedString, "name", 1, maxSize),
		newContext(ctxEncodedString, "desc", 1, maxSize),
		newContext(ctxBinary, "data", 1, maxSize),
	}
}

func involvedPeopleListSchema() schema {
	return schema{
		newContext(ctxNumeric, "encoding", 1, 1),
		newContext(ctxEncodedString, "name", 1, maxSize),
		newContext(ctxEncodedString, "text", 1, maxSize),
		newContext(ctxIter, "iter", 2, maxSize), // repeats (name, text) pairs
	}
}

func linkedInformationSchema() schema {
	return schema{
		newContext(ctxLatin1, "url", 1, maxSize),
		newContext(ctxNoEncoding, "data", 0, maxSize),
	}
}

func mpegLocationLookupTableSchema() schema {
	return schema{newContext(ctxBinary, "data", 1, maxSize)}
}

func ownershipSchema() schema {
	return schema{
		newContext(ctxNumeric, "encoding", 1, 1),
		newContext(ctxLatin1, "price", 1, maxSize),
		newContext(ctxLatin1, "date", 8, 8),
		newContext(ctxEncodedString, "name", 1, maxSize),
	}
}

func popularimeterSchema() schema {
	return schema{
		newContext(ctxLatin1, "identifier", 1, maxSize),
		newContext(ctxNumeric, "symbol", 1, 1),
		newContext(ctxBinary, "data", 0, maxSize),
	}
}

func positionSynchronisationSchema() schema {
	return schema{
		newContext(ctxNumeric, "format", 1, 1),
		newContext(ctxNumeric, "stamp", 4, 4),
	}
}

func privateSchema() schema {
	return schema{
		newContext(ctxLatin1, "identifier", 1, maxSize),
		newContext(ctxBinary, "data", 1, maxSize),
	}
}

func recommendedBufferSizeSchema() schema {
	return schema{
		newContext(ctxNumeric, "buffer", 3, 3),
		newContext(ctxNumeric, "flag", 1, 1),
		newContext(ctxNumeric, "offset", 0, 4),
	}
}

// relativeVolumeAdjustmentSchema covers RVA/RVAD (v2.2/v2.3) and RVA2
// (v2.4). The reference source treats the whole body as a single opaque
// blob with a TODO; spec.md §9 says to follow that choice absent a test
// suite that demands otherwise, so this does too.
func relativeVolumeAdjustmentSchema() schema {
	return schema{newContext(ctxBinary, "data", 1, maxSize)}
}

func reverbSchema() schema {
	return schema{
		newContext(ctxNumeric, "left", 2, 2),
		newContext(ctxNumeric, "right", 2, 2),
		newContext(ctxNumeric, "bounce left", 1, 1),
		newContext(ctxNumeric, "bounce right", 1, 1),
		newContext(ctxNumeric, "feedback ll", 1, 1),
		newContext(ctxNumeric, "feedback lr", 1, 1),
		newContext(ctxNumeric, "feedback rr", 1, 1),
		newContext(ctxNumeric, "feedback rl", 1, 1),
		newContext(ctxNumeric, "p left", 1, 1),
		newContext(ctxNumeric, "p right", 1, 1),
	}
}

func seekSchema() schema {
	return schema{newContext(ctxNumeric, "offset", 4, 4)}
}

func signatureSchema() schema {
	return schema{
		newContext(ctxNumeric, "symbol", 1, 1),
		newContext(ctxBinary, "data", 1, maxSize),
	}
}

func synchronisedLyricSchema() schema {
	return schema{
		newContext(ctxNumeric, "encoding", 1, 1),
		newContext(ctxNoEncoding, "language", 3, 3),
		newContext(ctxNumeric, "format", 1, 1),
		newContext(ctxNumeric, "symbol", 1, 1),
		newContext(ctxEncodedString, "desc", 1, maxSize),
		newContext(ctxEncodedString, "text", 1, maxSize),
		newContext(ctxNumeric, "stamp", 4, 4),
		newContext(ctxIter, "iter", 2, maxSize), // repeats (text, stamp) pairs
	}
}

func synchronisedTempoCodesSchema() schema {
	return schema{
		newContext(ctxNumeric, "format", 1, 1),
		newContext(ctxBinary, "data", 1, maxSize),
	}
}

func uniqueFileIdentifierSchema() schema {
	return schema{
		newContext(ctxLatin1, "url", 1, maxSize),
		newContext(ctxBinary, "data", 1, 64),
	}
}

func termsOfUseSchema() schema {
	return schema{
		newContext(ctxNumeric, "encoding", 1, 1),
		newContext(ctxNoEncoding, "language", 1, 3),
		newContext(ctxEncodedString, "text", 1, maxSize),
	}
}

func unsynchronisedLyricSchema() schema {
	return schema{
		newContext(ctxNumeric, "encoding", 1, 1),
		newContext(ctxNoEncoding, "language", 3, 3),
		newContext(ctxEncodedString, "desc", 1, maxSize),
		newContext(ctxEncodedString, "text", 1, maxSize),
	}
}

func genericFrameSchema() schema {
	return schema{newContext(ctxBinary, "?", 0, maxSize)}
}
