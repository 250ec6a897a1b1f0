package layout

import (
	"bufio"
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax14"
	"golang.org/x/image/math/fixed"

	"github.com/textshaping/engine/buffer"
	"github.com/textshaping/engine/unicodedata"
)

// breakLines implements spec.md §4.6's line-breaking and tab-expansion
// steps: hard breaks at CR/LF/NEL (CRLF counted once), soft breaks at
// Unicode line-break opportunities when a wrapping width is set, and tab
// expansion to the next multiple of tab_width*space_advance.
func breakLines(buf *buffer.GlyphStream, text []rune, opts Options, data unicodedata.Provider) []slotLine {
	opportunities := softWrapOpportunities(text)
	spaceAdvance := scale(int32(opts.UnitsPerEm)/2, opts.Size, opts.DPIX, opts.UnitsPerEm)
	tabStop := fixed.Int26_6(opts.TabWidth) * spaceAdvance
	if tabStop <= 0 {
		tabStop = spaceAdvance * 4
	}

	info, pos := buf.Info(), buf.Pos()
	var lines []slotLine
	cur := slotLine{}
	var lineAdvance fixed.Int26_6

	flush := func(soft bool) {
		cur.width = lineAdvance
		cur.softBreak = soft
		lines = append(lines, cur)
		cur = slotLine{}
		lineAdvance = 0
	}

	i := 0
	for i < len(info) {
		cluster := info[i].Cluster
		cp := rune(0)
		if int(cluster) < len(text) {
			cp = text[cluster]
		}

		// Hard break: CR, LF, NEL. A CRLF pair is consumed as one break
		// by skipping the paired LF glyph when CR was just emitted.
		if data.LineBreakClass(cp) == unicodedata.LineBreakMandatory {
			flush(false)
			i++
			if cp == '\r' && int(cluster)+1 < len(text) && text[cluster+1] == '\n' &&
				i < len(info) && info[i].Cluster == cluster+1 {
				i++
			}
			continue
		}

		isSpace := data.GeneralCategory(cp) == unicodedata.CategorySeparator && !isNoBreakSpace(cp)
		g := toPositionedGlyph(info[i], pos[i], opts, isSpace)

		if cp == '\t' {
			next := nextTabStop(lineAdvance, tabStop)
			g.Pen.X = next - lineAdvance
		}

		willExceed := opts.WrappingWidth >= 0 && lineAdvance+g.Pen.X > opts.WrappingWidth && len(cur.glyphs) > 0
		if willExceed && cluster > 0 && opportunities[cluster-1] {
			flush(true)
		}

		lineAdvance += g.Pen.X
		cur.glyphs = append(cur.glyphs, g)
		i++
	}
	if len(cur.glyphs) > 0 || len(lines) == 0 {
		flush(false)
	}
	return lines
}

// isNoBreakSpace reports the no-break space variants spec.md §4.6 excludes
// from Justify's word-gap identification.
func isNoBreakSpace(cp rune) bool {
	switch cp {
	case 0x00A0, 0x2007, 0x202F, 0xFEFF:
		return true
	}
	return false
}

func nextTabStop(pen, tabStop fixed.Int26_6) fixed.Int26_6 {
	if tabStop <= 0 {
		return pen
	}
	n := pen/tabStop + 1
	return n * tabStop
}

// toPositionedGlyph scales a shaped slot's design-unit position/advance
// into render-space fixed-point values. Pen.X temporarily holds the
// glyph's horizontal advance rather than its final pen position; Layout's
// applyAlignment converts advances to absolute pen positions once a
// line's total width (and therefore its alignment shift) is known.
func toPositionedGlyph(info buffer.Slot, p buffer.GlyphPosition, opts Options, isSpace bool) PositionedGlyph {
	return PositionedGlyph{
		GlyphID:       uint32(info.Codepoint),
		Pen:           fixed.Point26_6{X: scale(int32(p.XAdvance), opts.Size, opts.DPIX, opts.UnitsPerEm)},
		Offset:        fixed.Point26_6{X: scale(int32(p.XOffset), opts.Size, opts.DPIX, opts.UnitsPerEm), Y: scale(int32(p.YOffset), opts.Size, opts.DPIY, opts.UnitsPerEm)},
		SourceOffset:  info.Cluster,
		UnsafeToBreak: buffer.GlyphFlags(info.Mask)&buffer.GlyphFlagUnsafeToBreak != 0,
		isWordGap:     isSpace,
	}
}

// SplitFunc and returns the set of rune indices immediately after which a
// soft break is permitted, the same token-scanning API
// other_examples/clipperhouse-uax14__splitfunc.go exposes as a
// bufio.SplitFunc.
func softWrapOpportunities(text []rune) map[uint32]bool {
	s := string(text)
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Split(uax14.SplitFunc)

	opportunities := make(map[uint32]bool)
	byteOffset := 0
	for scanner.Scan() {
		tok := scanner.Text()
		byteOffset += len(tok)
		runeOffset := utf8.RuneCountInString(s[:byteOffset])
		if runeOffset > 0 {
			opportunities[uint32(runeOffset-1)] = true
		}
	}
	return opportunities
}

// reorderVisual reverses runs with odd bidi levels within a line, per
// spec.md §4.6. The reduced scope here reverses the whole line for RTL
// base direction rather than tracking per-run embedding levels, since
// finer-grained level tracking belongs to C3's bidi resolution output,
// which this module carries as GlyphStream.Props.Direction rather than a
// per-slot level array (see DESIGN.md).
func reorderVisual(glyphs []PositionedGlyph, dir buffer.Direction) {
	if !dir.IsBackward() {
		return
	}
	for i, j := 0, len(glyphs)-1; i < j; i, j = i+1, j-1 {
		glyphs[i], glyphs[j] = glyphs[j], glyphs[i]
	}
}
