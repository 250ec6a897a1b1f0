package shape

import (
	"github.com/textshaping/engine/font"
	"github.com/textshaping/engine/unicodedata"
)

// arabicForm is the cursive-joining form a slot resolves to, spec.md
// §4.7's isol/init/medi/fina feature selection.
type arabicForm uint8

const (
	formIsolated arabicForm = iota
	formInitial
	formMedial
	formFinal
)

// featureTag returns the OpenType feature tag activating this form.
func (f arabicForm) featureTag() font.Tag {
	switch f {
	case formInitial:
		return font.MakeTag('i', 'n', 'i', 't')
	case formMedial:
		return font.MakeTag('m', 'e', 'd', 'i')
	case formFinal:
		return font.MakeTag('f', 'i', 'n', 'a')
	default:
		return font.MakeTag('i', 's', 'o', 'l')
	}
}

// extendsJoinForward reports whether a character of this joining type
// passes a connection on to whatever follows it (skipping transparents).
func extendsJoinForward(jt unicodedata.JoiningType) bool {
	return jt == unicodedata.JoiningLeft || jt == unicodedata.JoiningDual || jt == unicodedata.JoiningCausing
}

// acceptsJoinFromBehind reports whether a character of this joining type
// receives a connection from whatever precedes it (skipping transparents).
func acceptsJoinFromBehind(jt unicodedata.JoiningType) bool {
	return jt == unicodedata.JoiningRight || jt == unicodedata.JoiningDual || jt == unicodedata.JoiningCausing
}

// arabicForms classifies text[start:end] into cursive-joining forms,
// grounded on boxesandglue-textshape/ot/arabic.go's joining-type
// classification (the table itself lives in unicodedata.Provider) plus
// the standard two-sided-connection rule from the Unicode Arabic Shaping
// algorithm: a letter only connects to a transparent-skipped neighbor
// when both the letter's own joining type and the neighbor's permit it.
func arabicForms(text []rune, start, end int, data unicodedata.Provider) []arabicForm {
	n := end - start
	jt := make([]unicodedata.JoiningType, n)
	for i := 0; i < n; i++ {
		jt[i] = data.JoiningType(text[start+i])
	}

	prevNonTransparent := func(i int) int {
		for j := i - 1; j >= 0; j-- {
			if jt[j] != unicodedata.JoiningTransparent {
				return j
			}
		}
		return -1
	}
	nextNonTransparent := func(i int) int {
		for j := i + 1; j < n; j++ {
			if jt[j] != unicodedata.JoiningTransparent {
				return j
			}
		}
		return -1
	}

	forms := make([]arabicForm, n)
	for i := 0; i < n; i++ {
		switch jt[i] {
		case unicodedata.JoiningTransparent, unicodedata.JoiningNone, unicodedata.JoiningCausing:
			forms[i] = formIsolated
			continue
		}

		canJoinPrev := jt[i] == unicodedata.JoiningRight || jt[i] == unicodedata.JoiningDual
		canJoinNext := jt[i] == unicodedata.JoiningLeft || jt[i] == unicodedata.JoiningDual

		joinedPrev := false
		if canJoinPrev {
			if p := prevNonTransparent(i); p >= 0 {
				joinedPrev = extendsJoinForward(jt[p])
			}
		}
		joinedNext := false
		if canJoinNext {
			if q := nextNonTransparent(i); q >= 0 {
				joinedNext = acceptsJoinFromBehind(jt[q])
			}
		}

		switch {
		case joinedPrev && joinedNext:
			forms[i] = formMedial
		case joinedPrev:
			forms[i] = formFinal
		case joinedNext:
			forms[i] = formInitial
		default:
			forms[i] = formIsolated
		}
	}
	return forms
}
