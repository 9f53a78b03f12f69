package pipeline

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWhitespace = regexp.MustCompile(`\S+`)
	wordRuns      = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)
	multiSpace    = regexp.MustCompile(`\s+`)
)

// foldDiacritics decomposes, drops combining marks, and recomposes, turning
// e.g. "café" into "cafe".
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func registerBuiltins(r *Registry) {
	r.RegisterStandardizer(DefaultName, CollapseWhitespace)
	r.RegisterStandardizer("identity", func(text string) string { return text })
	r.RegisterStandardizer("lowercase", strings.ToLower)
	r.RegisterStandardizer("nfc", norm.NFC.String)
	r.RegisterStandardizer("nfkc", norm.NFKC.String)

	r.RegisterTokenizer(DefaultName, Whitespace)
	r.RegisterTokenizer("words", Words)

	r.RegisterNormalizer(DefaultName, LowercaseStripped)
	r.RegisterNormalizer("identity", func(token string) string { return token })
	r.RegisterNormalizer("lowercase", strings.ToLower)
	r.RegisterNormalizer("fold_diacritics", FoldDiacritics)
}

// CollapseWhitespace trims the text and collapses internal whitespace runs to
// single spaces.
func CollapseWhitespace(text string) string {
	return multiSpace.ReplaceAllString(strings.TrimSpace(text), " ")
}

// Whitespace returns the spans of all non-whitespace runs.
func Whitespace(text string) []Span {
	return matchSpans(nonWhitespace, text)
}

// Words returns the spans of letter/digit runs, keeping internal apostrophes
// so contractions stay single tokens.
func Words(text string) []Span {
	return matchSpans(wordRuns, text)
}

func matchSpans(re *regexp.Regexp, text string) []Span {
	idx := re.FindAllStringIndex(text, -1)
	spans := make([]Span, len(idx))
	for i, m := range idx {
		spans[i] = Span{Start: m[0], End: m[1]}
	}
	return spans
}

// LowercaseStripped lowercases a token and strips leading and trailing
// punctuation. '&' and '%' are kept: they carry meaning in transcripts.
func LowercaseStripped(token string) string {
	return strings.ToLower(StripEdgePunctuation(token))
}

// StripEdgePunctuation removes leading and trailing Unicode punctuation from
// a token, except '&' and '%'.
func StripEdgePunctuation(token string) string {
	return strings.TrimFunc(token, func(r rune) bool {
		if r == '&' || r == '%' {
			return false
		}
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// FoldDiacritics transliterates accented letters to their unmarked forms.
// Tokens that fail to transform are returned unchanged.
func FoldDiacritics(token string) string {
	out, _, err := transform.String(foldDiacritics, token)
	if err != nil {
		return token
	}
	return out
}
