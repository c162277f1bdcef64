package schema

import (
	"regexp"

	"github.com/zenrsr/form-craft/model"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reNonWord    = regexp.MustCompile(`[^\w-]`)
)

// SanitizeLabel turns whitespace runs into single underscores and strips
// every rune that is not a word character or hyphen.
func SanitizeLabel(label string) string {
	s := reWhitespace.ReplaceAllString(label, "_")
	return reNonWord.ReplaceAllString(s, "")
}

// CompositeKey derives the response key for a field. The same derivation
// is used when collecting responses, validating them and exporting them;
// the three must never drift apart.
func CompositeKey(f model.Field) string {
	return f.ID + "_" + SanitizeLabel(f.Label)
}
