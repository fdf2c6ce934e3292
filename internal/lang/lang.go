// Package lang provides a script-count heuristic for tagging input language.
//
// The classifier only distinguishes the supported audit languages: English
// (the default) and Hindi, detected by Devanagari rune counts. It is pure and
// never fails; unrecognized scripts fall back to the default tag.
package lang

import "unicode"

// Supported language tags.
const (
	TagEnglish = "en"
	TagHindi   = "hi"
)

// DevanagariMin is the minimum Devanagari rune count before text is tagged
// Hindi. Below it, short loanwords or stray characters keep the default tag.
const DevanagariMin = 5

// Detect returns the language tag for text.
func Detect(text string) string {
	dev, latin := scriptCounts(text)
	if dev >= DevanagariMin && dev > latin {
		return TagHindi
	}
	return TagEnglish
}

// Matches reports whether text reads as the given language tag. Unknown tags
// match only the default classification.
func Matches(text, tag string) bool {
	return Detect(text) == tag
}

func scriptCounts(text string) (devanagari, latin int) {
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Devanagari, r):
			devanagari++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	return devanagari, latin
}
