package shape

import (
	"github.com/textshaping/engine/buffer"
	"github.com/textshaping/engine/font"
	"github.com/textshaping/engine/ot"
)

// ApplySubstitution implements C4: for each GSUB lookup the font declares,
// in the font's own order, make a single pass over the buffer and rewrite
// any slot whose active feature mask matches, per spec.md §4.4. Lookups the
// font declares but whose features never activated in Analyze are skipped
// outright (their eligibility mask is 0). Reverse-chaining lookups run
// end-to-start, per spec.md §4.4 item 6; every other lookup type runs
// left-to-right.
func ApplySubstitution(an *Analysis, adapter font.Adapter, opts LayoutOptions) error {
	buf := an.GlyphStream
	lookups := adapter.Lookups(font.Substitution, font.ScriptDefault, font.LangDefault)

	var ligID uint32 = 1
	for _, lookup := range lookups {
		mask := lookupEligibilityMask(lookup, an.FeatureMasks)
		if mask == 0 {
			continue
		}
		if lookup.Type() == font.GSUBReverseChainSingle {
			applyReverseChainLookup(buf, lookup, mask, adapter)
			continue
		}
		applyGSUBLookup(buf, lookup, mask, adapter, opts, &ligID)
	}
	return nil
}

// lookupEligibilityMask ORs together the mask bits of every feature tag
// that references lookup; a slot only invites this lookup to run if at
// least one of those bits is set in its Slot.Mask (spec.md §4.4:
// "a lookup is eligible if any of its features is active at any slot").
func lookupEligibilityMask(lookup font.Lookup, masks map[font.Tag]buffer.Mask) buffer.Mask {
	var mask buffer.Mask
	for _, tag := range lookup.Features() {
		mask |= masks[tag]
	}
	return mask
}

// applyGSUBLookup makes one left-to-right pass over buf for a single
// lookup, using buffer's two-cursor input/output mechanics the way
// grisha-textshape/buffer/output.go's own GSUB consumers do: ClearOutput
// once, then either rewrite the current slot and let the primitive
// (Replace1To1/Decompose/Ligate) advance both cursors, or call NextGlyph
// to copy the slot through unchanged, finishing with Sync.
func applyGSUBLookup(buf *buffer.GlyphStream, lookup font.Lookup, mask buffer.Mask, adapter font.Adapter, opts LayoutOptions, ligID *uint32) {
	flags := lookup.Flags()
	buf.ClearOutput()
	for buf.Idx() < buf.Len() {
		info := buf.Get(buf.Idx())
		if info.Mask&mask == 0 || skipGlyph(adapter, uint32(info.Codepoint), flags) {
			buf.NextGlyph()
			continue
		}
		if applySubtables(buf, lookup, opts, ligID) {
			continue
		}
		buf.NextGlyph()
	}
	buf.Sync()
}

// applySubtables tests lookup's subtables in order against the glyph at
// the buffer's current input position, performing the first match and
// returning true, per spec.md §4.4's "on the first match, perform the
// substitution and resume scanning after the rewritten region".
func applySubtables(buf *buffer.GlyphStream, lookup font.Lookup, opts LayoutOptions, ligID *uint32) bool {
	info := buf.Get(buf.Idx())
	glyph := ot.GlyphID(info.Codepoint)

	for _, st := range lookup.Subtables() {
		switch s := st.Raw().(type) {
		case *ot.SingleSubst:
			if newGlyph, ok := s.Mapping()[glyph]; ok {
				buf.Replace1To1(buffer.Codepoint(newGlyph))
				return true
			}
		case *ot.MultipleSubst:
			if list, ok := s.Mapping()[glyph]; ok {
				out := make([]buffer.Codepoint, len(list))
				for i, g := range list {
					out[i] = buffer.Codepoint(g)
				}
				buf.Decompose(out)
				return true
			}
		case *ot.AlternateSubst:
			if alts := s.GetAlternates(glyph); len(alts) > 0 {
				idx := alternateIndex(lookup, opts, len(alts))
				buf.Replace1To1(buffer.Codepoint(alts[idx]))
				return true
			}
		case *ot.LigatureSubst:
			if applyLigature(buf, s, glyph, ligID) {
				return true
			}
		case *ot.ContextSubst:
			if applyContextual(buf, s, ligID) {
				return true
			}
		case *ot.ChainContextSubst:
			if applyContextual(buf, s, ligID) {
				return true
			}
		}
	}
	return false
}

// alternateIndex resolves spec.md §4.4 item 3's "pick index 0 unless an
// alternate-index hint is given", consulting opts.AlternateIndices for any
// feature tag this lookup serves.
func alternateIndex(lookup font.Lookup, opts LayoutOptions, n int) int {
	idx := 0
	for _, tag := range lookup.Features() {
		if v, ok := opts.AlternateIndices[tag]; ok {
			idx = v
			break
		}
	}
	if idx < 0 || idx >= n {
		idx = 0
	}
	return idx
}

// applyLigature matches s's ligature sets against the buffer starting at
// the current glyph. ot/gsub.go's own Ligature.Components holds only the
// second-and-later component glyphs (the first is already matched via
// Coverage), so a ligature of N components consumes N+1 buffer slots: the
// current one plus len(Components) following it. Mirrors the teacher's
// own matchLigature/LigatureSubst.Apply, including its simplification of
// matching the following slots literally rather than skip-filter-aware
// (see DESIGN.md).
func applyLigature(buf *buffer.GlyphStream, s *ot.LigatureSubst, glyph ot.GlyphID, ligID *uint32) bool {
	cov := s.Coverage()
	if cov == nil {
		return false
	}
	covIdx := cov.GetCoverage(glyph)
	if covIdx == ot.NotCovered {
		return false
	}
	sets := s.LigatureSets()
	if int(covIdx) >= len(sets) {
		return false
	}

	idx := buf.Idx()
	for _, lig := range sets[covIdx] {
		n := len(lig.Components)
		if idx+1+n > buf.Len() {
			continue
		}
		matched := true
		for i, comp := range lig.Components {
			if ot.GlyphID(buf.Get(idx+1+i).Codepoint) != comp {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		id := nextLigID(ligID)
		buf.Ligate(buffer.Codepoint(lig.LigGlyph), n+1, id)
		return true
	}
	return false
}

// nextLigID hands out the next ligature cohort identifier, wrapping past
// zero since zero means "not a ligature" (spec.md §3).
func nextLigID(ligID *uint32) uint32 {
	id := *ligID
	*ligID++
	if *ligID == 0 {
		*ligID = 1
	}
	return id
}

// gsubApplier is the common surface ContextSubst and ChainContextSubst
// expose: a single Apply that matches the rule at ctx.Index against
// ctx.Glyphs and, on a match, fires ctx's On* callbacks for each glyph
// edit a nested lookup performs (ot/gsub.go's own recursive
// applyLookups). Delegating matching to Apply avoids re-deriving the
// format 1/2/3 coverage, class and lookahead/backtrack matching rules
// ot/gsub.go already implements.
type gsubApplier interface {
	Apply(ctx *ot.GSUBContext) int
}

type contextEditKind int

const (
	editReplace contextEditKind = iota
	editReplaces
	editDelete
	editLigate
)

type contextEdit struct {
	index     int
	kind      contextEditKind
	glyphs    []ot.GlyphID
	ligGlyph  ot.GlyphID
	numGlyphs int
}

// applyContextual drives a ContextSubst or ChainContextSubst rule against
// buf at its current position. Matching runs over a snapshot of the whole
// glyph stream (contextual rules need backtrack/lookahead visibility
// beyond the current slot); edits the matched rule's nested lookups
// record via ctx's callbacks are replayed onto buf afterward.
//
// Only the edit landing exactly on the triggering slot (sequence index 0,
// by far the common case for contextual substitution) is replayed through
// buf's own cursor-based primitives; an edit at another sequence position
// would require random-access rewriting of slots buf hasn't reached yet,
// which the two-buffer GSUB mechanics here don't support, so it is logged
// and skipped rather than guessed at.
func applyContextual(buf *buffer.GlyphStream, s gsubApplier, ligID *uint32) bool {
	idx := buf.Idx()
	glyphs := make([]ot.GlyphID, buf.Len())
	for i := range glyphs {
		glyphs[i] = ot.GlyphID(buf.Get(i).Codepoint)
	}

	var edits []contextEdit
	ctx := &ot.GSUBContext{
		Glyphs: glyphs,
		Index:  idx,
		OnReplace: func(index int, newGlyph ot.GlyphID) {
			edits = append(edits, contextEdit{index: index, kind: editReplace, glyphs: []ot.GlyphID{newGlyph}})
		},
		OnReplaces: func(index int, newGlyphs []ot.GlyphID) {
			edits = append(edits, contextEdit{index: index, kind: editReplaces, glyphs: append([]ot.GlyphID(nil), newGlyphs...)})
		},
		OnDelete: func(index int) {
			edits = append(edits, contextEdit{index: index, kind: editDelete})
		},
		OnLigate: func(index int, ligGlyph ot.GlyphID, numGlyphs int) {
			edits = append(edits, contextEdit{index: index, kind: editLigate, ligGlyph: ligGlyph, numGlyphs: numGlyphs})
		},
	}

	if s.Apply(ctx) == 0 {
		return false
	}

	applied := false
	for _, e := range edits {
		if e.index != idx {
			debugPrintf("contextual lookup: nested edit at slot %d from trigger %d skipped (reduced scope: only the triggering slot is rewritten)", e.index, idx)
			continue
		}
		switch e.kind {
		case editReplace:
			buf.Replace1To1(buffer.Codepoint(e.glyphs[0]))
		case editReplaces:
			out := make([]buffer.Codepoint, len(e.glyphs))
			for i, g := range e.glyphs {
				out[i] = buffer.Codepoint(g)
			}
			buf.Decompose(out)
		case editDelete:
			buf.Remove()
		case editLigate:
			buf.Ligate(buffer.Codepoint(e.ligGlyph), e.numGlyphs, nextLigID(ligID))
		}
		applied = true
	}
	return applied
}

// applyReverseChainLookup runs a GSUB type-8 lookup end-to-start over buf,
// per spec.md §4.4 item 6 and ot/gsub.go's own ApplyLookupReverseWithGDEF.
// ReverseChainSingleSubst is always 1:1, so it mutates a snapshot glyph
// array in place and writes matches straight back via buf.Set, with no
// need for the two-buffer input/output swap the growing/shrinking
// substitutions above require.
func applyReverseChainLookup(buf *buffer.GlyphStream, lookup font.Lookup, mask buffer.Mask, adapter font.Adapter) {
	flags := lookup.Flags()
	glyphs := make([]ot.GlyphID, buf.Len())
	for i := range glyphs {
		glyphs[i] = ot.GlyphID(buf.Get(i).Codepoint)
	}
	ctx := &ot.GSUBContext{Glyphs: glyphs}

	for _, st := range lookup.Subtables() {
		s, ok := st.Raw().(*ot.ReverseChainSingleSubst)
		if !ok {
			continue
		}
		for i := buf.Len() - 1; i >= 0; i-- {
			info := buf.Get(i)
			if info.Mask&mask == 0 || skipGlyph(adapter, uint32(info.Codepoint), flags) {
				continue
			}
			ctx.Index = i
			if s.Apply(ctx) == 0 {
				continue
			}
			info.Codepoint = buffer.Codepoint(glyphs[i])
			info.SetSubstituted()
			buf.Set(i, info)
		}
	}
}
