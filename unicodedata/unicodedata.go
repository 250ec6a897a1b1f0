// Package unicodedata is the Unicode data provider external collaborator
// (spec.md §4.3/§6): bidi class, script, line-break class, general
// category, default-ignorable/ZWJ predicates, and grapheme-boundary
// detection, consumed by the shape and layout packages.
package unicodedata

import (
	"unicode"

	"github.com/go-text/typesetting/segmenter"
	"golang.org/x/text/unicode/bidi"
)

// GeneralCategory is a coarse Unicode general-category grouping, enough
// for the default-ignorable and line-layout whitespace decisions this
// module needs; it is not a full two-letter category enum.
type GeneralCategory uint8

const (
	CategoryOther GeneralCategory = iota
	CategoryLetter
	CategoryMark
	CategoryNumber
	CategoryPunctuation
	CategorySymbol
	CategorySeparator
	CategoryFormat
)

// LineBreak classifies a codepoint for hard line-break detection (C6's
// CR/LF/NEL handling); soft-wrap opportunities within a line are instead
// found by scanning runs of text with clipperhouse/uax14's SplitFunc in
// the layout package, which classifies multi-codepoint opportunities more
// accurately than a per-codepoint table could.
type LineBreak uint8

const (
	LineBreakOther LineBreak = iota
	LineBreakMandatory
	LineBreakSpace
)

// JoiningType classifies a codepoint's Arabic-style cursive joining
// behavior (SPEC_FULL.md §4.7), extending Provider beyond spec.md's base
// contract to drive init/medi/fina/isol feature selection.
type JoiningType uint8

const (
	JoiningNone JoiningType = iota
	JoiningRight
	JoiningLeft
	JoiningDual
	JoiningCausing
	JoiningTransparent
)

// Provider is the Unicode data external collaborator, spec.md §6's
// contract realized as a Go interface.
type Provider interface {
	BidiClass(cp rune) bidi.Class
	Script(cp rune) string
	LineBreakClass(cp rune) LineBreak
	GeneralCategory(cp rune) GeneralCategory
	IsDefaultIgnorable(cp rune) bool
	IsZeroWidthJoiner(cp rune) bool
	GraphemeBoundaryAfter(text []rune, pos int) bool
	JoiningType(cp rune) JoiningType
}

// Default is the module's built-in Provider, wired to golang.org/x/text's
// bidi tables, the standard library's script/category range tables (no
// pack example exposes a safer alternative, see DESIGN.md), and
// go-text/typesetting's grapheme segmenter.
type Default struct {
	seg segmenter.Segmenter
}

// NewDefault constructs the default Unicode data provider.
func NewDefault() *Default {
	return &Default{}
}

// BidiClass implements Provider.
func (d *Default) BidiClass(cp rune) bidi.Class {
	props, _ := bidi.LookupRune(cp)
	return props.Class()
}

// Script implements Provider using the standard library's script range
// tables (unicode.Scripts), returning the script name as registered there
// ("Latin", "Arabic", "Devanagari", ...).
func (d *Default) Script(cp rune) string {
	for name, table := range unicode.Scripts {
		if unicode.Is(table, cp) {
			return name
		}
	}
	return "Unknown"
}

// LineBreakClass implements Provider for the hard-break subset C6 needs
// directly; see the LineBreak doc comment for why soft-wrap opportunities
// are handled separately.
func (d *Default) LineBreakClass(cp rune) LineBreak {
	switch cp {
	case '\n', '\r', 0x0085, 0x2028, 0x2029:
		return LineBreakMandatory
	}
	if unicode.Is(unicode.Zs, cp) || cp == '\t' {
		return LineBreakSpace
	}
	return LineBreakOther
}

// GeneralCategory implements Provider with the coarse grouping this module
// needs (default-ignorable detection, whitespace classification).
func (d *Default) GeneralCategory(cp rune) GeneralCategory {
	switch {
	case unicode.Is(unicode.Cf, cp):
		return CategoryFormat
	case unicode.IsLetter(cp):
		return CategoryLetter
	case unicode.IsMark(cp):
		return CategoryMark
	case unicode.IsNumber(cp):
		return CategoryNumber
	case unicode.IsPunct(cp):
		return CategoryPunctuation
	case unicode.IsSymbol(cp):
		return CategorySymbol
	case unicode.IsSpace(cp):
		return CategorySeparator
	default:
		return CategoryOther
	}
}

// IsDefaultIgnorable implements Provider. Default-ignorable codepoints are
// approximated as the Cf (format) category plus variation selectors,
// following the Unicode Default_Ignorable_Code_Point derivation's largest
// contributing block without pulling in the full derived-property table.
func (d *Default) IsDefaultIgnorable(cp rune) bool {
	if unicode.Is(unicode.Cf, cp) {
		return true
	}
	return cp >= 0xFE00 && cp <= 0xFE0F // variation selectors
}

// IsZeroWidthJoiner implements Provider.
func (d *Default) IsZeroWidthJoiner(cp rune) bool {
	return cp == 0x200D
}

// GraphemeBoundaryAfter implements Provider using go-text/typesetting's
// grapheme segmenter (the same package other_examples/esimov-caire
// wrapping.go drives for the same purpose), reporting whether a grapheme
// cluster boundary falls immediately after text[pos].
func (d *Default) GraphemeBoundaryAfter(text []rune, pos int) bool {
	if pos < 0 || pos >= len(text)-1 {
		return true
	}
	d.seg.Init(text)
	it := d.seg.GraphemeIterator()
	for it.Next() {
		g := it.Grapheme()
		end := g.Offset + len(g.Text)
		if end-1 == pos {
			return true
		}
		if end-1 > pos {
			return false
		}
	}
	return true
}

// JoiningType implements Provider for the Arabic joining families this
// module supports, grounded on boxesandglue-textshape/ot/arabic.go's
// classification table (consulted for which Unicode ranges fall in each
// joining class; the table itself is not copied verbatim).
func (d *Default) JoiningType(cp rune) JoiningType {
	switch {
	case cp == 0x200D:
		return JoiningCausing
	case cp >= 0x0600 && cp <= 0x0605, cp >= 0x0610 && cp <= 0x061A,
		unicode.Is(unicode.Mn, cp):
		return JoiningTransparent
	case cp == 0x0622, cp == 0x0623, cp == 0x0625, cp == 0x0627,
		cp == 0x0629, cp == 0x062F, cp == 0x0630, cp == 0x0631,
		cp == 0x0632, cp == 0x0648, cp == 0x0649:
		return JoiningRight
	case cp >= 0x0621 && cp <= 0x064A:
		return JoiningDual
	default:
		return JoiningNone
	}
}
