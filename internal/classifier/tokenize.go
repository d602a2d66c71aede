package classifier

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokenize lowercases text, optionally strips accents, and splits it into
// word tokens of at least opts.MinTokenLength runes.
func Tokenize(text string, opts Options) []string {
	// Casers and transform chains are stateful; build them per call so
	// Predict stays safe for concurrent use.
	s := cases.Lower(language.Und).String(text)

	if opts.FoldAccents {
		fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		if folded, _, err := transform.String(fold, s); err == nil {
			s = folded
		}
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_'
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= opts.MinTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
