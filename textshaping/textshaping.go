// Package textshaping is the module's top-level orchestration point: it
// runs C3 (shape.Analyze) through C6 (layout.Layout) over a run of text
// and hands the result to a caller-supplied layout.Sink, mirroring the
// order grisha-textshape/ot/shaper.go's Shape/shapeDefault drives its own
// (unwired) pipeline in, generalized to spec.md's six-component design.
package textshaping

import (
	"golang.org/x/image/math/fixed"

	"github.com/textshaping/engine/layout"
	"github.com/textshaping/engine/shape"
	"github.com/textshaping/engine/shapeerr"
	"github.com/textshaping/engine/unicodedata"
)

// Shape runs the full pipeline against text and emits every placed glyph
// to sink. data may be nil, in which case unicodedata.Default is used.
func Shape(text []rune, opts shape.LayoutOptions, data unicodedata.Provider, sink layout.Sink) error {
	if data == nil {
		data = &unicodedata.Default{}
	}

	analysis, err := shape.Analyze(text, opts, data)
	if err != nil {
		return err
	}

	buf := analysis.GlyphStream
	buf.Enter()
	defer buf.Leave()

	if err := shape.ApplySubstitution(analysis, opts.PrimaryFont, opts); err != nil {
		return err
	}
	if err := shape.ApplyPositioning(analysis, opts.PrimaryFont, opts); err != nil {
		return err
	}
	if buf.InError() {
		return shapeerr.ErrCapacityExhausted
	}

	layout.Layout(buf, text, toLayoutOptions(opts), data, sink)
	return nil
}

// toLayoutOptions translates shape.LayoutOptions (the caller-facing,
// spec.md §3 field-for-field struct) into C6's layout.Options, resolving
// the font-wide vertical metrics layout needs from the primary font and
// applying the same design-unit-to-render-space scale C6 uses for every
// other position field.
func toLayoutOptions(opts shape.LayoutOptions) layout.Options {
	var upem int32 = 1000
	var extents struct{ ascender, descender, lineGap int32 }
	if opts.PrimaryFont != nil {
		upem = opts.PrimaryFont.UnitsPerEm()
		e := opts.PrimaryFont.Extents()
		extents.ascender, extents.descender, extents.lineGap = e.Ascender, e.Descender, e.LineGap
	}

	return layout.Options{
		DPIX:       opts.DPIX,
		DPIY:       opts.DPIY,
		UnitsPerEm: upem,
		Size:       opts.Size,
		Origin: fixed.Point26_6{
			X: fixed.Int26_6(opts.Origin.X * 64),
			Y: fixed.Int26_6(opts.Origin.Y * 64),
		},
		TabWidth:            opts.TabWidth,
		WrappingWidth:       fixed.Int26_6(opts.WrappingWidth) * 64,
		HorizontalAlignment: toHorizontalAlign(opts.HorizontalAlignment),
		VerticalAlignment:   toVerticalAlign(opts.VerticalAlignment),
		Ascent:              scaleToFixed(extents.ascender, opts),
		Descent:             scaleToFixed(-extents.descender, opts),
		LineGap:             scaleToFixed(extents.lineGap, opts),
	}
}

// scaleToFixed mirrors layout's own private scale() (size * dpi /
// (72*upem), in 26.6 fixed point); textshaping cannot call it directly
// since it is unexported, and the formula is simple enough not to warrant
// exporting it just for this one caller.
func scaleToFixed(v int32, opts shape.LayoutOptions) fixed.Int26_6 {
	upem := int32(1000)
	if opts.PrimaryFont != nil {
		upem = opts.PrimaryFont.UnitsPerEm()
	}
	if upem == 0 {
		upem = 1000
	}
	return fixed.Int26_6(float64(v) * opts.Size * opts.DPIX / (72.0 * float64(upem)) * 64.0)
}

func toHorizontalAlign(a shape.HorizontalAlign) layout.HorizontalAlign {
	switch a {
	case shape.AlignEnd:
		return layout.AlignEnd
	case shape.AlignCenter:
		return layout.AlignCenter
	case shape.AlignJustify:
		return layout.AlignJustify
	default:
		return layout.AlignStart
	}
}

func toVerticalAlign(a shape.VerticalAlign) layout.VerticalAlign {
	switch a {
	case shape.VAlignCenter:
		return layout.VAlignCenter
	case shape.VAlignBottom:
		return layout.VAlignBottom
	case shape.VAlignBaseline:
		return layout.VAlignBaseline
	default:
		return layout.VAlignTop
	}
}
