package shape

import (
	"github.com/textshaping/engine/buffer"
	"github.com/textshaping/engine/font"
	"github.com/textshaping/engine/shapeerr"
	"github.com/textshaping/engine/unicodedata"
)

// Analysis is C3's output: a buffer holding one slot per source
// codepoint (already mapped to glyph ids) plus the tag->mask-bit
// registry C4 needs to test per-lookup feature eligibility.
type Analysis struct {
	GlyphStream       *buffer.GlyphStream
	FeatureMasks map[font.Tag]buffer.Mask
}

// preBaseMatra is the reduced-scope set of combining vowel signs that
// render visually before their base consonant despite following it in
// logical order (spec.md §8's Devanagari scenario, SPEC_FULL.md §4.8).
// Only Devanagari's VOWEL SIGN I is covered; see DESIGN.md for why full
// Indic reordering is out of scope.
func isPreBaseMatra(cp rune) bool {
	return cp == 0x093F
}

// Analyze implements C3: decode the run structure, resolve direction and
// script per spec.md §4.3 steps 2-3, pick a font and active feature set
// per run (steps 4-6), and emit one glyph slot per source codepoint
// (step 7), followed by the Devanagari pre-base-matra reorder
// (SPEC_FULL.md §4.8).
func Analyze(text []rune, opts LayoutOptions, data unicodedata.Provider) (*Analysis, error) {
	if opts.PrimaryFont == nil {
		return nil, shapeerr.ErrNoPrimaryFont
	}

	buf := buffer.New()
	buf.Props.Direction = buffer.DirectionLTR
	buf.Props.Script = buffer.ScriptCommon

	gsubTags := activeFeatureTags(opts.PrimaryFont, font.Substitution, opts)
	masks := featureMasks(gsubTags)

	if len(text) == 0 {
		return &Analysis{GlyphStream: buf, FeatureMasks: masks}, nil
	}

	buf.Props.Direction = paragraphDirection(text, data)
	runs := segmentRuns(text, data)
	buf.Props.Script = runs[0].script

	var baseMask buffer.Mask
	for _, tag := range gsubTags {
		baseMask |= masks[tag]
	}

	for runIdx, r := range runs {
		debugPrintf("run %d [%d,%d) script=%s", runIdx, r.start, r.end, r.scriptName)

		var forms []arabicForm
		if r.scriptName == "Arabic" {
			forms = arabicForms(text, r.start, r.end, data)
		}

		for j := r.start; j < r.end; j++ {
			cp := text[j]
			gid, ok := opts.PrimaryFont.MapCodepoint(cp)
			if !ok {
				for _, fb := range opts.FallbackFonts {
					if g2, ok2 := fb.MapCodepoint(cp); ok2 {
						gid, ok = g2, true
						break
					}
				}
			}
			if !ok {
				gid = 0 // .notdef
			}

			buf.Append(buffer.Codepoint(gid), uint32(j))
			idx := buf.Len() - 1

			info := buf.Get(idx)
			info.Mask = baseMask
			info.RunRef = uint32(runIdx)
			if forms != nil {
				if bit, ok := masks[forms[j-r.start].featureTag()]; ok {
					info.Mask |= bit
				}
			}
			buf.Set(idx, info)
		}
	}

	buf.SetContentType(buffer.ContentTypeGlyphs)
	reorderPreBaseMatras(buf, text)
	buf.UpdateDigest()

	if buf.InError() {
		return nil, shapeerr.ErrCapacityExhausted
	}
	return &Analysis{GlyphStream: buf, FeatureMasks: masks}, nil
}

// reorderPreBaseMatras relocates each pre-base matra slot to sit before
// its base consonant, using buffer.Move so Cluster/source_offset ride
// along unchanged (spec.md §8's round-trip requirement).
func reorderPreBaseMatras(buf *buffer.GlyphStream, text []rune) {
	info := buf.Info()
	for i := 1; i < len(info); i++ {
		cluster := info[i].Cluster
		if int(cluster) >= len(text) || !isPreBaseMatra(text[cluster]) {
			continue
		}
		buf.Move(i, i-1)
	}
}
