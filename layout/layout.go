// Package layout implements LineLayout (C6): consuming a shaped and
// positioned glyph stream and emitting PositionedGlyph values in render
// coordinates, per spec.md §4.6.
package layout

import (
	"golang.org/x/image/math/fixed"

	"github.com/textshaping/engine/buffer"
	"github.com/textshaping/engine/unicodedata"
)

// Pen and Offset are fixed-point render-space coordinates, following
// other_examples/esimov-caire__wrapping.go's own use of x/image/math/fixed
// for the same purpose.
type Pen = fixed.Point26_6
type Offset = fixed.Point26_6

// LayoutMode distinguishes a normal glyph emission from a hidden one
// (default-ignorables the buffer chose to zero-width rather than drop).
type LayoutMode uint8

const (
	ModeNormal LayoutMode = iota
	ModeHidden
)

// EmitOptions carries per-glyph rendering hints the Sink may use: whether
// the glyph is unsafe to break before/after (mirrored from the buffer's
// GlyphFlags) and the zero-based index of the line the glyph was placed on.
type EmitOptions struct {
	UnsafeToBreak bool
	Line          int
}

// Bounds is a render-space rectangle, used for BeginText's block bounds.
type Bounds struct {
	Min, Max fixed.Point26_6
}

// Sink is the renderer external collaborator (spec.md §6), consumed, not
// implemented, by this module.
type Sink interface {
	BeginText(bounds Bounds)
	EmitGlyph(glyphID uint32, pen Pen, offset Offset, mode LayoutMode, opts EmitOptions)
	EndText()
}

// PositionedGlyph is a single glyph placed in render coordinates,
// preserving logical-order provenance via SourceOffset (spec.md §4.6's
// closing requirement).
type PositionedGlyph struct {
	GlyphID       uint32
	Pen           Pen
	Offset        Offset
	SourceOffset  uint32
	Line          int
	UnsafeToBreak bool

	// isWordGap marks a whitespace-cluster glyph eligible for Justify's
	// proportional gap expansion (spec.md §4.6). Until applyAlignment has
	// run, Pen.X holds the glyph's advance rather than its final pen
	// position; see toPositionedGlyph.
	isWordGap bool
}

// HorizontalAlign and VerticalAlign mirror spec.md §3's LayoutOptions
// alignment enums.
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

// Options carries the subset of shape.LayoutOptions C6 consumes directly.
type Options struct {
	DPIX, DPIY           float64
	UnitsPerEm           int32
	Size                 float64
	Origin               fixed.Point26_6
	TabWidth             int
	WrappingWidth        fixed.Int26_6 // negative ⇒ off
	HorizontalAlignment  HorizontalAlign
	VerticalAlignment    VerticalAlign
	Direction            buffer.Direction
	Ascent, Descent, LineGap fixed.Int26_6
}

// scale converts a font design-unit value to render-space fixed.Int26_6,
// per spec.md §4.6: v * size * dpi / (72 * units_per_em), applied per axis
// and multiplied by 64 for the 26.6 format.
func scale(v int32, size, dpi float64, upem int32) fixed.Int26_6 {
	if upem == 0 {
		upem = 1000
	}
	return fixed.Int26_6(float64(v) * size * dpi / (72.0 * float64(upem)) * 64.0)
}

// slotLine is one output line's worth of positioned glyphs before
// alignment has been applied.
type slotLine struct {
	glyphs    []PositionedGlyph
	width     fixed.Int26_6
	softBreak bool
}

// Layout runs C6 over a shaped buffer, emitting every placed glyph to
// sink. text is the original source text (for tab/line-break codepoint
// detection and soft-wrap opportunity scanning); buf holds the already
// shaped+positioned glyph stream produced by shape.ApplyPositioning.
func Layout(buf *buffer.GlyphStream, text []rune, opts Options, data unicodedata.Provider, sink Sink) {
	lines := breakLines(buf, text, opts, data)

	var blockHeight fixed.Int26_6
	for range lines {
		blockHeight += opts.Ascent + opts.Descent + opts.LineGap
	}

	sink.BeginText(Bounds{Max: fixed.Point26_6{Y: blockHeight}})

	vOffset := verticalShift(opts, blockHeight, len(lines))
	penY := opts.Origin.Y + vOffset
	for lineIdx, line := range lines {
		reorderVisual(line.glyphs, opts.Direction)
		hOffset := horizontalShift(opts, line.width)
		applyAlignment(line.glyphs, hOffset, opts, line.softBreak)
		for i := range line.glyphs {
			g := line.glyphs[i]
			g.Line = lineIdx
			g.Pen.Y += penY
			sink.EmitGlyph(g.GlyphID, g.Pen, g.Offset, ModeNormal, EmitOptions{UnsafeToBreak: g.UnsafeToBreak, Line: g.Line})
		}
		penY += opts.Ascent + opts.Descent + opts.LineGap
	}

	sink.EndText()
}

func verticalShift(opts Options, blockHeight fixed.Int26_6, numLines int) fixed.Int26_6 {
	switch opts.VerticalAlignment {
	case VAlignCenter:
		return -blockHeight / 2
	case VAlignBottom:
		return -blockHeight
	default:
		return 0
	}
}

func horizontalShift(opts Options, lineWidth fixed.Int26_6) fixed.Int26_6 {
	room := opts.WrappingWidth - lineWidth
	if opts.WrappingWidth < 0 || room < 0 {
		room = 0
	}
	switch opts.HorizontalAlignment {
	case AlignEnd:
		return room
	case AlignCenter:
		return room / 2
	default:
		return 0
	}
}

// applyAlignment converts each glyph's Pen.X from a bare advance (as laid
// down by toPositionedGlyph) into its final render-space pen position,
// applying the line's horizontal shift and, for Justify, expanding each
// word gap by an equal share of the line's leftover room.
func applyAlignment(glyphs []PositionedGlyph, hOffset fixed.Int26_6, opts Options, softBreak bool) {
	justify := opts.HorizontalAlignment == AlignJustify && softBreak
	var extra fixed.Int26_6
	if justify {
		extra = justifyGapWidth(glyphs, opts.WrappingWidth)
	}
	penX := opts.Origin.X + hOffset
	for i := range glyphs {
		adv := glyphs[i].Pen.X
		glyphs[i].Pen.X = penX
		penX += adv
		if justify && glyphs[i].isWordGap {
			penX += extra
		}
	}
}

func justifyGapWidth(glyphs []PositionedGlyph, wrappingWidth fixed.Int26_6) fixed.Int26_6 {
	if wrappingWidth < 0 {
		return 0
	}
	var total fixed.Int26_6
	var gaps int
	for i := range glyphs {
		total += glyphs[i].Pen.X
		if glyphs[i].isWordGap {
			gaps++
		}
	}
	if gaps == 0 {
		return 0
	}
	room := wrappingWidth - total
	if room <= 0 {
		return 0
	}
	return room / fixed.Int26_6(gaps)
}
