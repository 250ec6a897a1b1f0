package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"

	"github.com/textshaping/engine/buffer"
	"github.com/textshaping/engine/unicodedata"
)

// recordingSink captures every EmitGlyph call for assertions, standing in
// for the renderer external collaborator (spec.md §6) this package never
// implements itself.
type recordingSink struct {
	glyphs []PositionedGlyph
}

func (s *recordingSink) BeginText(Bounds) {}
func (s *recordingSink) EmitGlyph(glyphID uint32, pen Pen, offset Offset, mode LayoutMode, opts EmitOptions) {
	s.glyphs = append(s.glyphs, PositionedGlyph{GlyphID: glyphID, Pen: pen, Offset: offset, Line: opts.Line})
}
func (s *recordingSink) EndText() {}

// buildBuffer places one glyph per rune of text at a fixed advance,
// mirroring what shape.ApplyPositioning would have already produced by
// the time C6 runs.
func buildBuffer(text []rune, advance int32) *buffer.GlyphStream {
	buf := buffer.New()
	for i, r := range text {
		buf.Append(buffer.Codepoint(r), uint32(i))
	}
	for i := range buf.Pos() {
		buf.Pos()[i].XAdvance = buffer.Position(advance)
	}
	return buf
}

func baseOptions() Options {
	return Options{
		DPIX: 72, DPIY: 72,
		UnitsPerEm: 1000,
		Size:       10,
		TabWidth:   4,
	}
}

// TestLayoutTabExpansion exercises spec.md §8's tab scenario: a tab
// character advances the pen to the next multiple of
// tab_width*space_advance rather than its own glyph advance.
func TestLayoutTabExpansion(t *testing.T) {
	text := []rune("a\tb")
	buf := buildBuffer(text, 100)

	opts := baseOptions()
	opts.WrappingWidth = -1

	sink := &recordingSink{}
	data := &unicodedata.Default{}
	Layout(buf, text, opts, data, sink)

	require.Len(t, sink.glyphs, 3)
	spaceAdvance := scale(500, opts.Size, opts.DPIX, opts.UnitsPerEm)
	tabStop := fixed.Int26_6(opts.TabWidth) * spaceAdvance

	aAdvance := scale(100, opts.Size, opts.DPIX, opts.UnitsPerEm)
	require.Equal(t, fixed.Int26_6(0), sink.glyphs[0].Pen.X)
	require.Equal(t, aAdvance, sink.glyphs[1].Pen.X)
	require.Equal(t, tabStop, sink.glyphs[2].Pen.X)
}

// TestLayoutSoftWrap exercises spec.md §8's soft-wrap scenario: text
// wider than WrappingWidth breaks at a Unicode line-break opportunity
// rather than running past it, and every glyph is still emitted exactly
// once, in non-decreasing line order.
func TestLayoutSoftWrap(t *testing.T) {
	text := []rune("aaaa bbbb")
	buf := buildBuffer(text, 100)

	opts := baseOptions()
	aAdvance := scale(100, opts.Size, opts.DPIX, opts.UnitsPerEm)
	opts.WrappingWidth = aAdvance * 3 // narrower than either word alone

	sink := &recordingSink{}
	data := &unicodedata.Default{}
	Layout(buf, text, opts, data, sink)

	require.Len(t, sink.glyphs, len(text))

	maxLine := 0
	for i, g := range sink.glyphs {
		require.GreaterOrEqual(t, g.Line, 0)
		if i > 0 {
			require.GreaterOrEqual(t, g.Line, sink.glyphs[i-1].Line, "line numbers must be non-decreasing across a left-to-right run")
		}
		if g.Line > maxLine {
			maxLine = g.Line
		}
	}
	require.Greater(t, maxLine, 0, "text wider than WrappingWidth must wrap onto at least a second line")
}

// TestLayoutHardBreak exercises the CRLF-as-one-break rule: a \r\n pair
// must start exactly one new line, not two.
func TestLayoutHardBreak(t *testing.T) {
	text := []rune("a\r\nb")
	buf := buildBuffer(text, 100)

	opts := baseOptions()
	opts.WrappingWidth = -1

	sink := &recordingSink{}
	data := &unicodedata.Default{}
	Layout(buf, text, opts, data, sink)

	require.Len(t, sink.glyphs, 2) // 'a' and 'b'; \r and \n are consumed as a break, not emitted
	require.Equal(t, 0, sink.glyphs[0].Line)
	require.Equal(t, 1, sink.glyphs[1].Line)
}
