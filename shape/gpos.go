package shape

import (
	"github.com/textshaping/engine/buffer"
	"github.com/textshaping/engine/font"
	"github.com/textshaping/engine/ot"
)

// gdefGPOSAdapter is satisfied by *font.OTAdapter. It is checked with a
// type assertion rather than added to font.Adapter itself, since
// ot.GPOS.ApplyLookupWithGDEF/ApplyKerningWithGDEF want the teacher's
// concrete *ot.GPOS/*ot.GDEF rule data, not the opaque font.Subtable view
// the rest of this package stays behind (see DESIGN.md). An Adapter that
// doesn't implement it (e.g. a test double) just gets no GPOS/kern pass.
type gdefGPOSAdapter interface {
	font.Adapter
	GPOS() *ot.GPOS
	GDEF() *ot.GDEF
}

// toOTDirection converts the buffer's direction into ot's own Direction
// type, which ApplyLookupWithGDEF needs for RTL-aware value-record sign
// conventions.
func toOTDirection(dir buffer.Direction) ot.Direction {
	switch dir {
	case buffer.DirectionRTL:
		return ot.DirectionRTL
	case buffer.DirectionTTB:
		return ot.DirectionTTB
	case buffer.DirectionBTT:
		return ot.DirectionBTT
	default:
		return ot.DirectionLTR
	}
}

// ApplyPositioning implements C5: seed each slot's advance from the
// font's horizontal metrics, run every eligible GPOS lookup over the flat
// glyph array via ot.GPOS.ApplyLookupWithGDEF (spec.md §4.5 steps 1-2),
// then fall back to the legacy kern table per step 3 when GPOS never
// declared its own kern feature.
func ApplyPositioning(an *Analysis, adapter font.Adapter, opts LayoutOptions) error {
	buf := an.GlyphStream
	n := buf.Len()
	if n == 0 {
		return nil
	}

	info := buf.Info()
	glyphs := make([]ot.GlyphID, n)
	positions := make([]ot.GlyphPosition, n)
	for i := 0; i < n; i++ {
		gid := uint32(info[i].Codepoint)
		glyphs[i] = ot.GlyphID(gid)
		m := adapter.Metrics(gid)
		positions[i].XAdvance = int16(m.AdvanceX)
		positions[i].YAdvance = int16(m.AdvanceY)
	}

	gdefAdapter, ok := adapter.(gdefGPOSAdapter)
	gposDeclaresKern := false

	if ok && gdefAdapter.GPOS() != nil {
		gpos := gdefAdapter.GPOS()
		gdef := gdefAdapter.GDEF()
		dir := toOTDirection(buf.Props.Direction)
		kernTag := font.MakeTag('k', 'e', 'r', 'n')

		lookups := adapter.Lookups(font.Positioning, font.ScriptDefault, font.LangDefault)
		for _, lookup := range lookups {
			if !gposLookupEnabled(lookup, adapter, opts, kernTag) {
				continue
			}
			gpos.ApplyLookupWithGDEF(lookup.Index(), glyphs, positions, dir, gdef)
		}

		if fl, err := gpos.ParseFeatureList(); err == nil && len(fl.FindFeature(ot.TagKern)) > 0 {
			gposDeclaresKern = true
		}
	}

	pos := buf.Pos()
	for i := 0; i < n; i++ {
		pos[i].XAdvance = buffer.Position(positions[i].XAdvance)
		pos[i].YAdvance = buffer.Position(positions[i].YAdvance)
		// XPlacement/YPlacement are where SinglePos/PairPos value records
		// (ot/gpos.go's AdjustPosition) accumulate a placement shift
		// distinct from the advance; the buffer has no separate placement
		// field, so they fold into the same offset GPOS anchors use
		// (spec.md §4.5 step 2's "Single adjustment"/"Pair adjustment").
		pos[i].XOffset = buffer.Position(positions[i].XOffset + positions[i].XPlacement)
		pos[i].YOffset = buffer.Position(positions[i].YOffset + positions[i].YPlacement)
		pos[i].SetAttachType(positions[i].AttachType)
		pos[i].SetAttachChain(positions[i].AttachChain)
	}

	if !gposDeclaresKern {
		applyKernFallback(buf, adapter, opts)
	}
	return nil
}

// gposLookupEnabled decides whether to run a GPOS lookup at all, at
// whole-run granularity rather than GSUB's per-slot mask test: GPOS
// features (kern/mark/mkmk/curs) are not conditionally activated per
// codepoint the way Arabic's init/medi/fina/isol are, and
// ot.GPOS.ApplyLookupWithGDEF has no mask-aware entry point to filter
// individual slots mid-lookup anyway (see DESIGN.md's documented scope
// reduction for C5). The kern feature additionally respects
// LayoutOptions.ApplyKerning as a blanket on/off switch (spec.md §3).
func gposLookupEnabled(lookup font.Lookup, adapter font.Adapter, opts LayoutOptions, kernTag font.Tag) bool {
	for _, tag := range lookup.Features() {
		if tag == kernTag && !opts.ApplyKerning {
			continue
		}
		if featureEnabled(tag, adapter.FeatureEnabledByDefault(tag), opts) {
			return true
		}
	}
	return false
}

// applyKernFallback implements spec.md §4.5 step 3, grounded on
// grisha-textshape/ot/shaper.go's applyKernTableFallback: split the
// legacy kern-table value between the two glyphs, guarded by the script
// allow-list, the kern feature being requested and enabled, and GPOS not
// already declaring its own kern feature (checked by the caller).
func applyKernFallback(buf *buffer.GlyphStream, adapter font.Adapter, opts LayoutOptions) {
	if !adapter.HasKerning() {
		return
	}
	if !scriptAllowsKernFallback(buf.Props.Script) {
		return
	}
	if !kernRequested(opts) {
		return
	}

	info := buf.Info()
	pos := buf.Pos()
	horizontal := buf.Props.Direction.IsHorizontal()

	for i := 0; i < len(info)-1; i++ {
		if adapter.GlyphClass(uint32(info[i].Codepoint)) == font.GlyphClassMark {
			continue
		}
		j := i + 1
		for j < len(info) && adapter.GlyphClass(uint32(info[j].Codepoint)) == font.GlyphClassMark {
			j++
		}
		if j >= len(info) {
			break
		}

		kern := adapter.KernPair(uint32(info[i].Codepoint), uint32(info[j].Codepoint))
		if kern == 0 {
			continue
		}
		kern1 := kern >> 1
		kern2 := kern - kern1

		if horizontal {
			pos[i].XAdvance += buffer.Position(kern1)
			pos[j].XAdvance += buffer.Position(kern2)
			pos[j].XOffset += buffer.Position(kern2)
		} else {
			pos[i].YAdvance += buffer.Position(kern1)
			pos[j].YAdvance += buffer.Position(kern2)
			pos[j].YOffset += buffer.Position(kern2)
		}
	}
}

// kernRequested reports whether the caller asked for the kern feature and
// did not disable it (spec.md §4.5 step 3's "requested and enabled" gate).
func kernRequested(opts LayoutOptions) bool {
	if !opts.ApplyKerning {
		return false
	}
	kern := font.MakeTag('k', 'e', 'r', 'n')
	for _, t := range opts.DisabledFeatures {
		if t == kern {
			return false
		}
	}
	return true
}

// scriptAllowsKernFallback mirrors grisha-textshape/ot/shaper.go's list of
// scripts that use the 'dist' feature instead of legacy kerning and so
// must not receive a kern-table fallback.
func scriptAllowsKernFallback(script buffer.Script) bool {
	switch script {
	case buffer.MakeScript('D', 'e', 'v', 'a'),
		buffer.MakeScript('B', 'e', 'n', 'g'),
		buffer.MakeScript('G', 'u', 'r', 'u'),
		buffer.MakeScript('G', 'u', 'j', 'r'),
		buffer.MakeScript('O', 'r', 'y', 'a'),
		buffer.MakeScript('T', 'a', 'm', 'l'),
		buffer.MakeScript('T', 'e', 'l', 'u'),
		buffer.MakeScript('K', 'n', 'd', 'a'),
		buffer.MakeScript('M', 'l', 'y', 'm'),
		buffer.MakeScript('S', 'i', 'n', 'h'),
		buffer.MakeScript('K', 'h', 'm', 'r'),
		buffer.MakeScript('M', 'y', 'm', 'r'),
		buffer.MakeScript('T', 'h', 'a', 'i'),
		buffer.MakeScript('L', 'a', 'o', 'o'),
		buffer.MakeScript('T', 'i', 'b', 't'),
		buffer.MakeScript('J', 'a', 'v', 'a'),
		buffer.MakeScript('B', 'a', 'l', 'i'),
		buffer.MakeScript('S', 'u', 'n', 'd'),
		buffer.MakeScript('R', 'j', 'n', 'g'),
		buffer.MakeScript('L', 'e', 'p', 'c'),
		buffer.MakeScript('B', 'u', 'g', 'i'),
		buffer.MakeScript('M', 'a', 'k', 'a'),
		buffer.MakeScript('B', 'a', 't', 'k'),
		buffer.MakeScript('T', 'a', 'l', 'u'),
		buffer.MakeScript('T', 'a', 'v', 't'),
		buffer.MakeScript('C', 'h', 'a', 'm'),
		buffer.MakeScript('K', 'a', 'l', 'i'),
		buffer.MakeScript('T', 'g', 'l', 'g'),
		buffer.MakeScript('H', 'a', 'n', 'o'),
		buffer.MakeScript('B', 'u', 'h', 'd'),
		buffer.MakeScript('T', 'a', 'g', 'b'):
		return false
	default:
		return true
	}
}
