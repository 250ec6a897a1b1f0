package shape

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/textshaping/engine/unicodedata"
)

// TestAnalyzeDevanagariReorder exercises spec.md §8's Devanagari scenario:
// कि (KA, VOWEL SIGN I) arrives in logical order with the matra following
// its base consonant, and reorderPreBaseMatras must move the matra's slot
// ahead of the base glyph while leaving each slot's Cluster (source rune
// offset) untouched, so a caller can still map glyphs back to text.
func TestAnalyzeDevanagariReorder(t *testing.T) {
	text := []rune("कि")

	adapter := newFakeAdapter()
	adapter.cmap[text[0]] = 200 // KA
	adapter.cmap[text[1]] = 201 // VOWEL SIGN I

	opts := LayoutOptions{PrimaryFont: adapter}
	data := &unicodedata.Default{}

	analysis, err := Analyze(text, opts, data)
	require.NoError(t, err)

	buf := analysis.GlyphStream
	require.Equal(t, 2, buf.Len())

	first := buf.Get(0)
	second := buf.Get(1)

	require.Equal(t, uint32(201), uint32(first.Codepoint))
	require.Equal(t, uint32(1), first.Cluster)

	require.Equal(t, uint32(200), uint32(second.Codepoint))
	require.Equal(t, uint32(0), second.Cluster)
}

// TestAnalyzeCodepointConservation checks spec.md §8's conservation
// invariant at the C3 boundary: absent any substitution, the buffer has
// exactly one slot per input codepoint and every slot starts with a
// CodepointCount of 1.
func TestAnalyzeCodepointConservation(t *testing.T) {
	text := []rune("abc")

	adapter := newFakeAdapter()
	for _, r := range text {
		adapter.cmap[r] = uint32(r)
	}

	opts := LayoutOptions{PrimaryFont: adapter}
	data := &unicodedata.Default{}

	analysis, err := Analyze(text, opts, data)
	require.NoError(t, err)
	require.Equal(t, len(text), analysis.GlyphStream.Len())

	for i := 0; i < analysis.GlyphStream.Len(); i++ {
		require.EqualValues(t, 1, analysis.GlyphStream.Get(i).CodepointCount)
	}
}
