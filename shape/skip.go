package shape

import "github.com/textshaping/engine/font"

// skipGlyph reimplements spec.md §4.4's skip filter directly against
// font.Adapter's GDEF-classification methods, since the ot package's own
// equivalent (shouldSkipGlyph in ot/gpos.go) is private and keyed to a
// concrete *ot.GDEF rather than the Adapter interface this package is
// meant to stay behind.
func skipGlyph(adapter font.Adapter, glyphID uint32, flags font.LookupFlags) bool {
	class := adapter.GlyphClass(glyphID)
	switch class {
	case font.GlyphClassBase:
		if flags.IgnoreBaseGlyphs {
			return true
		}
	case font.GlyphClassLigature:
		if flags.IgnoreLigatures {
			return true
		}
	case font.GlyphClassMark:
		if flags.IgnoreMarks {
			return true
		}
		if flags.MarkAttachmentType != 0 && adapter.MarkAttachClass(glyphID) != flags.MarkAttachmentType {
			return true
		}
		if flags.UseMarkFilteringSet && !adapter.IsInMarkFilteringSet(glyphID, flags.MarkFilteringSet) {
			return true
		}
	}
	return false
}
