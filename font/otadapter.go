package font

import (
	"fmt"

	"github.com/textshaping/engine/ot"
)

// OTAdapter is the default font.Adapter backing, grounded on the teacher's
// own ot package (trimmed per SPEC_FULL.md §4.2a). Construction parses
// cmap/hmtx/hhea/GDEF/GSUB/GPOS/kern once; lookup queries after that are
// pure in-memory traversal.
type OTAdapter struct {
	face *ot.Face
	gdef *ot.GDEF
	gsub *ot.GSUB
	gpos *ot.GPOS
	kern *ot.Kern

	gsubFeatures *ot.FeatureList
	gposFeatures *ot.FeatureList

	gsubLookups []Lookup
	gposLookups []Lookup
}

// ErrNoRequiredTables is returned by NewOTAdapter when the font has no
// usable cmap table, matching spec.md §7's "fatal at FontAdapter
// construction" policy. A missing or unparsable hhea/hmtx does not cause
// this error; advances then fall back to the units-per-em value.
var ErrNoRequiredTables = fmt.Errorf("font: missing required cmap or metrics tables")

// NewOTAdapter parses an OpenType font from data and wraps it as a
// font.Adapter. GSUB/GPOS/GDEF/kern are all optional per spec.md §4.2's
// "queries return empty, engine degrades to identity mapping" policy;
// cmap is not.
func NewOTAdapter(data []byte, index int) (*OTAdapter, error) {
	f, err := ot.ParseFont(data, index)
	if err != nil {
		return nil, err
	}
	face, err := ot.NewFace(f)
	if err != nil {
		return nil, err
	}
	if face.Cmap() == nil {
		return nil, ErrNoRequiredTables
	}

	a := &OTAdapter{face: face}

	if raw, err := f.TableData(ot.TagGDEF); err == nil {
		a.gdef, _ = ot.ParseGDEF(raw)
	}
	if raw, err := f.TableData(ot.TagGSUB); err == nil {
		if gsub, err := ot.ParseGSUB(raw); err == nil {
			a.gsub = gsub
			a.gsubFeatures, _ = gsub.ParseFeatureList()
			a.gsubLookups = wrapGSUBLookups(gsub, a.gsubFeatures)
		}
	}
	if raw, err := f.TableData(ot.TagGPOS); err == nil {
		if gpos, err := ot.ParseGPOS(raw); err == nil {
			a.gpos = gpos
			a.gposFeatures, _ = gpos.ParseFeatureList()
			a.gposLookups = wrapGPOSLookups(gpos, a.gposFeatures)
		}
	}
	if raw, err := f.TableData(ot.TagKernTable); err == nil {
		a.kern, _ = ot.ParseKern(raw, f.NumGlyphs())
	}

	return a, nil
}

// MapCodepoint implements Adapter.
func (a *OTAdapter) MapCodepoint(cp rune) (uint32, bool) {
	cm := a.face.Cmap()
	if cm == nil {
		return 0, false
	}
	gid, ok := cm.Lookup(ot.Codepoint(cp))
	return uint32(gid), ok
}

// Metrics implements Adapter, in font design units (spec.md §4.2).
func (a *OTAdapter) Metrics(glyphID uint32) Metrics {
	width := a.face.HorizontalAdvance(ot.GlyphID(glyphID))
	xMin, yMin, xMax, yMax := a.face.BBox()
	return Metrics{
		AdvanceX: int32(width),
		BBoxXMin: int32(xMin),
		BBoxYMin: int32(yMin),
		BBoxXMax: int32(xMax),
		BBoxYMax: int32(yMax),
	}
}

// UnitsPerEm implements Adapter.
func (a *OTAdapter) UnitsPerEm() int32 {
	return int32(a.face.Upem())
}

// Extents implements Adapter, consulting hhea's ascender/descender/line
// gap (the font-wide vertical metrics textshaping needs for line height;
// no per-glyph Metrics call can substitute for these).
func (a *OTAdapter) Extents() Extents {
	return Extents{
		Ascender:  int32(a.face.Ascender()),
		Descender: int32(a.face.Descender()),
		LineGap:   int32(a.face.LineGap()),
	}
}

// FeatureEnabledByDefault implements Adapter, consulting the teacher's
// feature.go default set (ccmp/locl/rlig/liga/clig for GSUB, kern/mark/mkmk
// for GPOS) per spec.md §4.3 step 6.
func (a *OTAdapter) FeatureEnabledByDefault(tag Tag) bool {
	for _, f := range ot.DefaultFeatures() {
		if ot.Tag(tag) == f.Tag {
			return true
		}
	}
	return false
}

// HasKerning implements Adapter.
func (a *OTAdapter) HasKerning() bool {
	return a.kern != nil && a.kern.HasKerning()
}

// KernPair implements Adapter, consulting the legacy kern table (the GPOS
// 'kern' feature, when present, is modeled as an ordinary GPOS lookup and
// reached through Lookups, not through this fallback path).
func (a *OTAdapter) KernPair(left, right uint32) int32 {
	if a.kern == nil {
		return 0
	}
	return int32(a.kern.KernPair(ot.GlyphID(left), ot.GlyphID(right)))
}

// GlyphClass implements Adapter, consulting GDEF when present.
func (a *OTAdapter) GlyphClass(glyphID uint32) GlyphClass {
	if a.gdef == nil {
		return GlyphClassUnclassified
	}
	switch a.gdef.GetGlyphClass(ot.GlyphID(glyphID)) {
	case ot.GlyphClassBase:
		return GlyphClassBase
	case ot.GlyphClassLigature:
		return GlyphClassLigature
	case ot.GlyphClassMark:
		return GlyphClassMark
	case ot.GlyphClassComponent:
		return GlyphClassComponent
	default:
		return GlyphClassUnclassified
	}
}

// MarkAttachClass implements Adapter, consulting GDEF's mark attachment
// class subtable when present.
func (a *OTAdapter) MarkAttachClass(glyphID uint32) uint8 {
	if a.gdef == nil || !a.gdef.HasMarkAttachClasses() {
		return 0
	}
	return uint8(a.gdef.GetMarkAttachClass(ot.GlyphID(glyphID)))
}

// IsInMarkFilteringSet implements Adapter, consulting GDEF's
// MarkGlyphSetsDef when present.
func (a *OTAdapter) IsInMarkFilteringSet(glyphID uint32, setIndex uint16) bool {
	if a.gdef == nil || !a.gdef.HasMarkGlyphSets() {
		return false
	}
	return a.gdef.IsInMarkGlyphSet(ot.GlyphID(glyphID), int(setIndex))
}

// Lookups implements Adapter. script/lang are accepted for interface
// completeness but do not yet narrow the result: the teacher's ot package
// never grew a ScriptList/LangSys parser (no pack example needed one), so
// every lookup of the requested stage is returned and eligibility is
// narrowed by the caller via Lookup.Features() against the run's active
// feature set instead of by script/lang. Documented as a scope reduction
// in DESIGN.md.
func (a *OTAdapter) Lookups(stage Stage, script, lang Tag) []Lookup {
	switch stage {
	case Substitution:
		return a.gsubLookups
	case Positioning:
		return a.gposLookups
	default:
		return nil
	}
}

// GDEF exposes the parsed GDEF table for callers (shape package) that need
// GDEF-based skip-filter classification directly.
func (a *OTAdapter) GDEF() *ot.GDEF { return a.gdef }

// GSUB exposes the parsed GSUB table for shape's substitution driver.
func (a *OTAdapter) GSUB() *ot.GSUB { return a.gsub }

// GPOS exposes the parsed GPOS table for shape's positioning driver.
func (a *OTAdapter) GPOS() *ot.GPOS { return a.gpos }

func wrapGSUBLookups(gsub *ot.GSUB, features *ot.FeatureList) []Lookup {
	featByLookup := invertFeatureList(features)
	out := make([]Lookup, 0, gsub.NumLookups())
	for i := 0; i < gsub.NumLookups(); i++ {
		l := gsub.GetLookup(i)
		if l == nil {
			continue
		}
		out = append(out, &gsubLookup{index: i, lookup: l, features: featByLookup[i]})
	}
	return out
}

func wrapGPOSLookups(gpos *ot.GPOS, features *ot.FeatureList) []Lookup {
	featByLookup := invertFeatureList(features)
	out := make([]Lookup, 0, gpos.NumLookups())
	for i := 0; i < gpos.NumLookups(); i++ {
		l := gpos.GetLookup(i)
		if l == nil {
			continue
		}
		out = append(out, &gposLookup{index: i, lookup: l, features: featByLookup[i]})
	}
	return out
}

// invertFeatureList builds a lookup-index -> feature-tags map from a
// FeatureList, since ot.FeatureList only exposes the forward direction
// (FindFeature(tag) -> lookup indices).
func invertFeatureList(features *ot.FeatureList) map[int][]Tag {
	result := make(map[int][]Tag)
	if features == nil {
		return result
	}
	for i := 0; i < features.Count(); i++ {
		rec, err := features.GetFeature(i)
		if err != nil || rec == nil {
			continue
		}
		tag := Tag(rec.Tag)
		for _, idx := range rec.Lookups {
			result[int(idx)] = append(result[int(idx)], tag)
		}
	}
	return result
}

func lookupFlagsFrom(flag, markFilter uint16) LookupFlags {
	return LookupFlags{
		IgnoreBaseGlyphs:    flag&ot.LookupFlagIgnoreBaseGlyphs != 0,
		IgnoreLigatures:     flag&ot.LookupFlagIgnoreLigatures != 0,
		IgnoreMarks:         flag&ot.LookupFlagIgnoreMarks != 0,
		MarkAttachmentType:  uint8((flag & ot.LookupFlagMarkAttachTypeMask) >> 8),
		UseMarkFilteringSet: flag&ot.LookupFlagUseMarkFilteringSet != 0,
		MarkFilteringSet:    markFilter,
		RightToLeft:         flag&ot.LookupFlagRightToLeft != 0,
	}
}

type gsubLookup struct {
	index    int
	lookup   *ot.GSUBLookup
	features []Tag
}

func (l *gsubLookup) Index() int         { return l.index }
func (l *gsubLookup) Features() []Tag    { return l.features }
func (l *gsubLookup) Flags() LookupFlags { return lookupFlagsFrom(l.lookup.Flag, l.lookup.MarkFilter) }

func (l *gsubLookup) Type() LookupType {
	switch l.lookup.Type {
	case ot.GSUBTypeSingle:
		return GSUBSingle
	case ot.GSUBTypeMultiple:
		return GSUBMultiple
	case ot.GSUBTypeAlternate:
		return GSUBAlternate
	case ot.GSUBTypeLigature:
		return GSUBLigature
	case ot.GSUBTypeContext:
		return GSUBContext
	case ot.GSUBTypeChainContext:
		return GSUBChainContext
	case ot.GSUBTypeReverseChainSingle:
		return GSUBReverseChainSingle
	default:
		return LookupUnknown
	}
}

func (l *gsubLookup) Subtables() []Subtable {
	raw := l.lookup.Subtables()
	out := make([]Subtable, len(raw))
	for i, s := range raw {
		out[i] = rawSubtable{s}
	}
	return out
}

type gposLookup struct {
	index    int
	lookup   *ot.GPOSLookup
	features []Tag
}

func (l *gposLookup) Index() int         { return l.index }
func (l *gposLookup) Features() []Tag    { return l.features }
func (l *gposLookup) Flags() LookupFlags { return lookupFlagsFrom(l.lookup.Flag, l.lookup.MarkFilter) }

func (l *gposLookup) Type() LookupType {
	switch l.lookup.Type {
	case ot.GPOSTypeSingle:
		return GPOSSingle
	case ot.GPOSTypePair:
		return GPOSPair
	case ot.GPOSTypeCursive:
		return GPOSCursive
	case ot.GPOSTypeMarkBase:
		return GPOSMarkToBase
	case ot.GPOSTypeMarkLig:
		return GPOSMarkToLigature
	case ot.GPOSTypeMarkMark:
		return GPOSMarkToMark
	case ot.GPOSTypeContext:
		return GPOSContext
	case ot.GPOSTypeChainContext:
		return GPOSChainContext
	default:
		return LookupUnknown
	}
}

func (l *gposLookup) Subtables() []Subtable {
	raw := l.lookup.Subtables()
	out := make([]Subtable, len(raw))
	for i, s := range raw {
		out[i] = rawSubtable{s}
	}
	return out
}

// rawSubtable wraps any concrete ot GSUB/GPOS subtable as a font.Subtable.
type rawSubtable struct{ v interface{} }

func (r rawSubtable) Raw() interface{} { return r.v }
