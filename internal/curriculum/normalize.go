package curriculum

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ampersand = regexp.MustCompile(`\s*&\s*`)

// Normalize folds s for comparison: accents stripped, case folded,
// whitespace collapsed, surrounding punctuation trimmed and "&" read as
// "and".
func Normalize(s string) string {
	// Transformers carry state, so each call builds its own chain.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = cases.Fold().String(folded)
	folded = ampersand.ReplaceAllString(folded, " and ")
	folded = strings.Join(strings.Fields(folded), " ")
	return strings.TrimFunc(folded, func(r rune) bool {
		return unicode.IsPunct(r) && r != ')' && r != '('
	})
}

var nameSeparators = regexp.MustCompile(`\s*[,;|/\n]\s*`)

// SplitNames breaks free-text name fields such as "Forces, Energy" into
// individual candidates, dropping blanks and duplicates.
func SplitNames(values ...string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range values {
		for _, part := range nameSeparators.Split(v, -1) {
			part = strings.TrimSpace(part)
			key := Normalize(part)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, part)
		}
	}
	return out
}
