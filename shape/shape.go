// Package shape implements the shaping core (C3/C4/C5 of spec.md §4):
// Analyze resolves runs and maps codepoints to glyphs, ApplySubstitution
// drives GSUB, ApplyPositioning drives GPOS and the legacy kern fallback.
// It is grounded on grisha-textshape/ot/shaper.go's Shape/shapeDefault
// pipeline, rewritten against buffer.GlyphStream directly rather than the
// teacher's own unwired private glyph-buffer (see DESIGN.md).
package shape

import (
	"fmt"
	"os"

	"github.com/textshaping/engine/buffer"
	"github.com/textshaping/engine/font"
)

// debug mirrors the teacher's own package-level SetDebug/debugPrintf
// toggle in ot/shaper.go, kept here for the same purpose: cheap tracing
// without pulling in a logging dependency the teacher never carried
// (see DESIGN.md's ambient-stack note on why this stays plain stdlib).
var debug bool

// SetDebug turns shaping trace output on or off.
func SetDebug(v bool) { debug = v }

func debugPrintf(format string, args ...interface{}) {
	if debug {
		fmt.Fprintf(os.Stderr, "shape: "+format+"\n", args...)
	}
}

// HorizontalAlign and VerticalAlign mirror spec.md §3's LayoutOptions
// alignment enums. Kept local to shape (rather than importing layout's
// own identically-shaped enums) since LayoutOptions is documented in
// SPEC_FULL.md §2 as living in this package; textshaping translates
// these into layout.Options's equivalents at the orchestration boundary.
type HorizontalAlign uint8

const (
	AlignStart HorizontalAlign = iota
	AlignEnd
	AlignCenter
	AlignJustify
)

type VerticalAlign uint8

const (
	VAlignTop VerticalAlign = iota
	VAlignCenter
	VAlignBottom
	VAlignBaseline
)

// Origin is the render-space starting pen position (spec.md §3), in the
// same unit as Size (points); textshaping converts it directly to
// layout.Options's fixed-point Origin without going through the
// font-design-unit scale C6 applies to glyph advances.
type Origin struct {
	X, Y float64
}

// LayoutOptions mirrors spec.md §3's LayoutOptions, field for field, plus
// Size (the point size C5/C6 scale design units by) which spec.md's C1
// leaves to the caller's rendering context.
type LayoutOptions struct {
	PrimaryFont     font.Adapter
	FallbackFonts   []font.Adapter
	Size            float64
	DPIX, DPIY      float64
	Origin          Origin
	TabWidth        int
	WrappingWidth   int32 // negative means wrapping is off
	ApplyKerning    bool
	HorizontalAlignment HorizontalAlign
	VerticalAlignment   VerticalAlign

	EnabledFeatures  []font.Tag
	DisabledFeatures []font.Tag
	// AlternateIndices overrides spec.md §4.4 item 3's "pick index 0"
	// default for a given Alternate-substitution feature tag.
	AlternateIndices map[font.Tag]int
}

// featureEnabled reports whether tag is active under opts, given whether
// the font enables it by default: user EnabledFeatures always win, user
// DisabledFeatures always lose, and a tag absent from both follows the
// font's own default (spec.md §4.3 step 6).
func featureEnabled(tag font.Tag, byDefault bool, opts LayoutOptions) bool {
	for _, t := range opts.DisabledFeatures {
		if t == tag {
			return false
		}
	}
	for _, t := range opts.EnabledFeatures {
		if t == tag {
			return true
		}
	}
	return byDefault
}

// firstDynamicMaskBit is the lowest feature-mask bit shape may assign.
// Bits 0-2 are buffer.GlyphFlagDefined (UnsafeToBreak/UnsafeToConcat/
// SafeToInsertTatweel), written automatically by buffer.MergeClusters
// during GSUB; a feature tag assigned one of those bits would corrupt
// itself the moment a ligature or decomposition ran. See DESIGN.md.
const firstDynamicMaskBit = 3

// maxDynamicMaskBits is how many tags a single shaping call can track;
// buffer.Mask is 32 bits wide and bits 0-2 are reserved, leaving 29.
const maxDynamicMaskBits = 32 - firstDynamicMaskBit

// featureMasks assigns each tag in tags a distinct bit at or above
// firstDynamicMaskBit, in encounter order. A tag set larger than
// maxDynamicMaskBits silently stops assigning new bits past the limit
// (those tags fall back to always-ineligible, which only starves an
// already-pathological font of one more feature rather than failing the
// whole shaping call).
func featureMasks(tags []font.Tag) map[font.Tag]buffer.Mask {
	out := make(map[font.Tag]buffer.Mask, len(tags))
	bit := firstDynamicMaskBit
	for _, tag := range tags {
		if _, ok := out[tag]; ok {
			continue
		}
		if bit >= 32 {
			break
		}
		out[tag] = buffer.Mask(1) << uint(bit)
		bit++
	}
	return out
}

// activeFeatureTags enumerates every tag any of the font's lookups at the
// given stage declares, per spec.md §4.3 step 6: the font's own lookups
// are the source of truth for "what features exist", not a hardcoded
// common-features list the way the teacher's getDefaultGSUBFeatures/
// getDefaultGPOSFeatures do (see DESIGN.md for why that hardcoded list
// was not carried over).
func activeFeatureTags(adapter font.Adapter, stage font.Stage, opts LayoutOptions) []font.Tag {
	seen := make(map[font.Tag]bool)
	var out []font.Tag
	for _, lookup := range adapter.Lookups(stage, font.ScriptDefault, font.LangDefault) {
		for _, tag := range lookup.Features() {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			if featureEnabled(tag, adapter.FeatureEnabledByDefault(tag), opts) {
				out = append(out, tag)
			}
		}
	}
	return out
}
