package id3v2

import "testing"

func TestResolveSchemaWildcardFallback(t *testing.T) {
	def := DefaultRegistry(3)

	tests := []struct {
		name string
		id   string
		want schema
	}{
		{"unregistered T-frame falls back to generic text", "TXYZ", textFrameSchema()},
		{"unregistered W-frame falls back to generic url", "WXYZ", urlFrameSchema()},
		{"unregistered other falls back to generic binary", "ZZZZ", genericFrameSchema()},
		{"explicitly registered frame wins over wildcard", "TALB", textFrameSchema()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveSchema(def, nil, tt.id)
			if len(got) != len(tt.want) {
				t.Fatalf("resolveSchema(%q) has %d contexts, want %d", tt.id, len(got), len(tt.want))
			}
			for i := range got {
				if got[i].typ != tt.want[i].typ {
					t.Errorf("resolveSchema(%q)[%d].typ = %v, want %v", tt.id, i, got[i].typ, tt.want[i].typ)
				}
			}
		})
	}
}

func TestResolveSchemaExtraRegistryTakesPriorityOverWildcard(t *testing.T) {
	def := DefaultRegistry(3)
	extra := NewRegistry()
	priv := schema{newContext(ctxBinary, "data", 1, maxSize)}
	extra.Register("TPRV", priv)

	got := resolveSchema(def, extra, "TPRV")
	if len(got) != 1 || got[0].typ != ctxBinary {
		t.Errorf("resolveSchema did not prefer the caller-supplied registry entry")
	}
}

func TestDefaultRegistryCarriesWildcards(t *testing.T) {
	for _, version := range []int{2, 3, 4} {
		def := DefaultRegistry(version)
		for _, id := range []string{"T", "W", "?"} {
			if _, ok := def.lookup(id); !ok {
				t.Errorf("DefaultRegistry(%d) missing wildcard entry %q", version, id)
			}
		}
	}
}
