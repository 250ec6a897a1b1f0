// Package font defines the FontAdapter contract (SPEC_FULL.md §6) that
// decouples the shaping core (shape, layout) from any particular binary
// font parser, and ships a default implementation backed by this module's
// own ot package.
package font

// Stage distinguishes substitution lookups from positioning lookups, the
// two stages spec.md §4.2 asks Adapter.Lookups to be scoped by.
type Stage uint8

const (
	Substitution Stage = iota
	Positioning
)

// Tag is a four-byte OpenType tag (script, language, or feature).
type Tag uint32

// MakeTag builds a Tag from four ASCII bytes, following the teacher's
// ot.MakeTag convention so tags round-trip identically between packages.
func MakeTag(a, b, c, d byte) Tag {
	return Tag(uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d))
}

func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}

// Common script/language tags used when no specific script/language is
// known; the adapter's default LangSys applies.
var (
	ScriptDefault = MakeTag('D', 'F', 'L', 'T')
	LangDefault   = MakeTag('d', 'f', 'l', 't')
)

// LookupType enumerates the OpenType GSUB/GPOS subtable types the engine
// dispatches on, unified across both stages (spec.md §4.4/§4.5).
type LookupType uint8

const (
	LookupUnknown LookupType = iota
	GSUBSingle
	GSUBMultiple
	GSUBAlternate
	GSUBLigature
	GSUBContext
	GSUBChainContext
	GSUBReverseChainSingle
	GPOSSingle
	GPOSPair
	GPOSCursive
	GPOSMarkToBase
	GPOSMarkToLigature
	GPOSMarkToMark
	GPOSContext
	GPOSChainContext
)

// LookupFlags mirrors the OpenType lookup flag bitfield: skip-filter
// semantics (ignore base/ligature/mark), mark-attachment-type filtering,
// and mark-filtering-set usage, per spec.md §4.2/§4.4.
type LookupFlags struct {
	IgnoreBaseGlyphs     bool
	IgnoreLigatures      bool
	IgnoreMarks          bool
	MarkAttachmentType   uint8
	UseMarkFilteringSet  bool
	MarkFilteringSet     uint16
	RightToLeft          bool
}

// Metrics holds a glyph's font-unit metrics, as returned by Adapter.Metrics.
type Metrics struct {
	AdvanceX int32
	AdvanceY int32
	BearingX int32
	BearingY int32
	BBoxXMin int32
	BBoxYMin int32
	BBoxXMax int32
	BBoxYMax int32
}

// Extents holds font-wide vertical metrics in font design units, the
// line-height inputs textshaping's C6 translation needs and which have no
// per-glyph equivalent (spec.md §4.6's line advance).
type Extents struct {
	Ascender  int32
	Descender int32
	LineGap   int32
}

// Lookup is a single OpenType lookup: its type, flags, and ordered
// subtables. The engine treats Subtable as opaque rule data and dispatches
// by Type(), per spec.md §4.2.
type Lookup interface {
	Index() int
	Type() LookupType
	Flags() LookupFlags
	Subtables() []Subtable
	// Features reports which feature tags reference this lookup, the
	// association spec.md §4.4 needs to decide per-lookup eligibility
	// ("a lookup is eligible if any of its features is active"). The font
	// table itself carries this association (FeatureList -> lookup
	// indices); it is exposed here rather than added as a separate
	// Adapter method so callers keep a single Lookup value as the unit of
	// both dispatch and eligibility testing.
	Features() []Tag
}

// Subtable is the opaque marker spec.md §4.2 describes. Concrete adapters
// additionally let shape recover the underlying rule data via Raw(), since
// the OpenType subtable formats are too varied to generalize behind a
// single narrow interface without losing information the engine needs.
type Subtable interface {
	// Raw returns the concrete *ot.SingleSubst / *ot.PairPos / ... value
	// backing this subtable. shape type-switches on it by LookupType.
	Raw() interface{}
}

// GlyphClass mirrors the GDEF glyph-class values spec.md §4.4's skip
// filter tests against (ignore-base/ligature/mark).
type GlyphClass uint8

const (
	GlyphClassUnclassified GlyphClass = iota
	GlyphClassBase
	GlyphClassLigature
	GlyphClassMark
	GlyphClassComponent
)

// Adapter is the FontAdapter external collaborator (spec.md §4.2, §6): it
// answers codepoint-to-glyph mapping, metrics, and lookup queries without
// exposing any binary table layout to the shaping core.
type Adapter interface {
	MapCodepoint(cp rune) (glyphID uint32, ok bool)
	Metrics(glyphID uint32) Metrics
	UnitsPerEm() int32
	Extents() Extents
	Lookups(stage Stage, script, lang Tag) []Lookup
	FeatureEnabledByDefault(tag Tag) bool
	HasKerning() bool
	KernPair(left, right uint32) int32

	// GlyphClass and MarkAttachClass expose the GDEF classification spec.md
	// §4.4's skip filter needs per-glyph (ignore-base/ligature/mark and
	// mark-attachment-type filtering). [NEW]: not in SPEC_FULL.md's literal
	// Adapter sketch, added for the same reason Lookup.Features() was —
	// the skip filter is otherwise unimplementable against the interface
	// alone. Fonts with no GDEF table answer GlyphClassUnclassified/0 for
	// every glyph, which disables class-based skipping, matching spec.md
	// §4.2's "queries return empty, engine degrades" policy.
	GlyphClass(glyphID uint32) GlyphClass
	MarkAttachClass(glyphID uint32) uint8
	// IsInMarkFilteringSet reports whether glyphID belongs to the font's
	// mark glyph set at the given index (GDEF MarkGlyphSetsDef).
	IsInMarkFilteringSet(glyphID uint32, setIndex uint16) bool
}
