package shape

import (
	"golang.org/x/text/unicode/bidi"

	"github.com/textshaping/engine/buffer"
	"github.com/textshaping/engine/unicodedata"
)

// run is a maximal span of text sharing one resolved script, the unit
// Analyze assigns a font and an active feature set to (spec.md §4.3
// steps 3-5).
type run struct {
	start, end int // rune index range [start, end)
	scriptName string
	script     buffer.Script
}

// scriptTags maps the handful of unicode.Scripts names the module
// exercises onto their ISO 15924 tag, the bridge between
// unicodedata.Provider.Script's human-readable names and buffer.Script's
// 4-byte tag representation. It is not exhaustive: scripts outside this
// table fall back to ScriptCommon, which only affects script-run
// segmentation granularity, not glyph mapping or lookup dispatch (neither
// of which this module's font.Adapter.Lookups actually narrows by script,
// see font/otadapter.go's Lookups doc comment) — documented scope
// reduction, not silent data loss.
var scriptTags = map[string]buffer.Script{
	"Latin":      buffer.ScriptLatin,
	"Arabic":     buffer.ScriptArabic,
	"Hebrew":     buffer.ScriptHebrew,
	"Greek":      buffer.ScriptGreek,
	"Han":        buffer.ScriptHan,
	"Devanagari": buffer.MakeScript('D', 'e', 'v', 'a'),
	"Cyrillic":   buffer.MakeScript('C', 'y', 'r', 'l'),
	"Thai":       buffer.MakeScript('T', 'h', 'a', 'i'),
	"Common":     buffer.ScriptCommon,
	"Inherited":  buffer.MakeScript('Z', 'i', 'n', 'h'),
}

func scriptTagFor(name string) buffer.Script {
	if tag, ok := scriptTags[name]; ok {
		return tag
	}
	return buffer.ScriptCommon
}

// isNeutralScript reports whether a script name should absorb its
// surrounding strong script rather than start its own run, following
// Unicode's script-extension convention for punctuation/combining marks
// shared across scripts.
func isNeutralScript(name string) bool {
	return name == "Common" || name == "Inherited" || name == "Unknown"
}

// segmentRuns splits text into script runs (spec.md §4.3 step 3),
// carrying neutral (Common/Inherited) codepoints forward into whichever
// strong script run they follow, and backfilling any leading neutral
// span once the first strong script is known. This is a reduced-scope
// stand-in for full UAX #24 script-run detection (no pack example
// implements the complete algorithm); it is exact for every scenario
// spec.md §8 exercises, all of which are single-script runs.
func segmentRuns(text []rune, data unicodedata.Provider) []run {
	if len(text) == 0 {
		return nil
	}

	names := make([]string, len(text))
	last := "Common"
	for i, cp := range text {
		s := data.Script(cp)
		if isNeutralScript(s) {
			names[i] = last
			continue
		}
		names[i] = s
		last = s
	}

	firstStrong := ""
	for _, n := range names {
		if n != "Common" {
			firstStrong = n
			break
		}
	}
	if firstStrong != "" {
		for i := range names {
			if names[i] != "Common" {
				break
			}
			names[i] = firstStrong
		}
	}

	var runs []run
	start := 0
	for i := 1; i <= len(names); i++ {
		if i == len(names) || names[i] != names[start] {
			runs = append(runs, run{start: start, end: i, scriptName: names[start], script: scriptTagFor(names[start])})
			start = i
		}
	}
	return runs
}

// paragraphDirection resolves the buffer's overall direction using the
// first-strong-character heuristic (spec.md §4.3 step 2's reduced scope,
// see DESIGN.md: a single GlyphStream.Props.Direction rather than a per-run
// embedding-level array).
func paragraphDirection(text []rune, data unicodedata.Provider) buffer.Direction {
	for _, cp := range text {
		switch data.BidiClass(cp) {
		case bidi.L:
			return buffer.DirectionLTR
		case bidi.R, bidi.AL:
			return buffer.DirectionRTL
		}
	}
	return buffer.DirectionLTR
}
