package shape

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/textshaping/engine/unicodedata"
)

// TestArabicFormsJoining exercises spec.md §8's Arabic joining scenario
// directly against arabicForms' classification, sidestepping the need for
// a real font: سلام (seen-lam-alef-meem) is dual-joining, dual-joining,
// right-joining, dual-joining, which the two-sided connection rule in
// arabicForms resolves to init/medi/fina/isol (alef's right-joining type
// only accepts a connection from the glyph before it, never passes one on,
// so the following meem starts its own isolated form).
func TestArabicFormsJoining(t *testing.T) {
	text := []rune("سلام")
	data := &unicodedata.Default{}

	forms := arabicForms(text, 0, len(text), data)
	require.Len(t, forms, 4)
	require.Equal(t, formInitial, forms[0])
	require.Equal(t, formMedial, forms[1])
	require.Equal(t, formFinal, forms[2])
	require.Equal(t, formIsolated, forms[3])
}

func TestArabicFormFeatureTags(t *testing.T) {
	require.Equal(t, "init", formInitial.featureTag().String())
	require.Equal(t, "medi", formMedial.featureTag().String())
	require.Equal(t, "fina", formFinal.featureTag().String())
	require.Equal(t, "isol", formIsolated.featureTag().String())
}
