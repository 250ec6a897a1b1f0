package shape

import "github.com/textshaping/engine/font"

// fakeLookup is a minimal font.Lookup. GSUB dispatch tests fill it with
// subtables parsed from real *ot.GSUB data (wrapGSUBLookupAsFont in
// gsub_test.go).
type fakeLookup struct {
	idx       int
	typ       font.LookupType
	flags     font.LookupFlags
	subtables []font.Subtable
	features  []font.Tag
}

func (l *fakeLookup) Index() int               { return l.idx }
func (l *fakeLookup) Type() font.LookupType    { return l.typ }
func (l *fakeLookup) Flags() font.LookupFlags  { return l.flags }
func (l *fakeLookup) Subtables() []font.Subtable { return l.subtables }
func (l *fakeLookup) Features() []font.Tag     { return l.features }

type fakeSubtable struct{ raw interface{} }

func (s fakeSubtable) Raw() interface{} { return s.raw }

// fakeAdapter is a bare-bones font.Adapter test double: a codepoint-to-glyph
// map each test fills in, plus whatever lookups/metrics a given test wires
// in, letting shape package tests exercise Analyze/ApplySubstitution/
// ApplyPositioning without a real font file (none exist in this
// workspace; see DESIGN.md).
type fakeAdapter struct {
	cmap            map[rune]uint32
	advance         map[uint32]int32
	upem            int32
	extents         font.Extents
	gsubLookups     []font.Lookup
	gposLookups     []font.Lookup
	defaultFeatures map[font.Tag]bool
	hasKerning      bool
	kernPairs       map[[2]uint32]int32
	glyphClass      map[uint32]font.GlyphClass
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		cmap:            map[rune]uint32{},
		advance:         map[uint32]int32{},
		upem:            1000,
		defaultFeatures: map[font.Tag]bool{},
		kernPairs:       map[[2]uint32]int32{},
		glyphClass:      map[uint32]font.GlyphClass{},
	}
}

func (a *fakeAdapter) MapCodepoint(cp rune) (uint32, bool) {
	g, ok := a.cmap[cp]
	return g, ok
}

func (a *fakeAdapter) Metrics(glyphID uint32) font.Metrics {
	return font.Metrics{AdvanceX: a.advance[glyphID]}
}

func (a *fakeAdapter) UnitsPerEm() int32   { return a.upem }
func (a *fakeAdapter) Extents() font.Extents { return a.extents }

func (a *fakeAdapter) Lookups(stage font.Stage, script, lang font.Tag) []font.Lookup {
	if stage == font.Positioning {
		return a.gposLookups
	}
	return a.gsubLookups
}

func (a *fakeAdapter) FeatureEnabledByDefault(tag font.Tag) bool {
	return a.defaultFeatures[tag]
}

func (a *fakeAdapter) HasKerning() bool { return a.hasKerning }

func (a *fakeAdapter) KernPair(left, right uint32) int32 {
	return a.kernPairs[[2]uint32{left, right}]
}

func (a *fakeAdapter) GlyphClass(glyphID uint32) font.GlyphClass {
	return a.glyphClass[glyphID]
}

func (a *fakeAdapter) MarkAttachClass(glyphID uint32) uint8 { return 0 }

func (a *fakeAdapter) IsInMarkFilteringSet(glyphID uint32, setIndex uint16) bool {
	return false
}
