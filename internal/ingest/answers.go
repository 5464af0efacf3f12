package ingest

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/pai-qbank/internal/answer"
)

// Mark-scheme qualifiers that attach conditions to an answer.
const (
	QualifierECF   = "ECF"
	QualifierOWTTE = "OWTTE"
	QualifierORA   = "ORA"
)

var qualifierPattern = regexp.MustCompile(`(?i)[\[(]?\b(ecf|owtte|ora)\b[\])]?[.;,]?`)

// stripQualifiers removes ECF/OWTTE/ORA markers from s and returns them in
// upper case, deduplicated, in order of appearance.
func stripQualifiers(s string) (string, []string) {
	var found []string
	out := qualifierPattern.ReplaceAllStringFunc(s, func(m string) string {
		q := strings.ToUpper(qualifierPattern.FindStringSubmatch(m)[1])
		if !slices.Contains(found, q) {
			found = append(found, q)
		}
		return " "
	})
	return strings.Join(strings.Fields(out), " "), found
}

var (
	numericOnly   = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	parenthetical = regexp.MustCompile(`\(([^()]+)\)\s*$`)
)

func isQuantity(text string) bool {
	_, _, ok := answer.SplitQuantity(text)
	return ok
}

// alternativeType is a coarse label for the shape of one answer.
func alternativeType(text string) string {
	switch {
	case numericOnly.MatchString(text):
		return "numeric"
	case isQuantity(text):
		return "quantity"
	case strings.ContainsAny(text, "=→") || strings.Contains(text, "->"):
		return "expression"
	default:
		return "text"
	}
}

// buildAlternatives splits every raw answer into its alternatives. Siblings
// split from the same raw answer are linked to each other. IDs are assigned
// sequentially from 1 across the whole node. Marks are shared between raw
// answers, with any remainder going to the earliest ones.
func buildAlternatives(answers []string, delim string, marks int, path string) ([]answer.Alternative, int, []answer.Issue) {
	var (
		alts   []answer.Alternative
		issues []answer.Issue
		total  int
	)

	for i, raw := range answers {
		text, qualifiers := stripQualifiers(raw)
		if text == "" {
			continue
		}
		set := answer.ParseAlternatives(text, delim)
		for _, msg := range set.ValidationErrors {
			issues = append(issues, answer.Issue{
				Kind:     answer.KindParseWarning,
				Severity: answer.SeverityWarning,
				Path:     fmt.Sprintf("%s.correct_answers[%d]", path, i),
				Message:  msg,
			})
		}
		if set.HasDelimiter {
			total += len(set.Alternatives)
		}

		first := len(alts) + 1
		ids := make([]int, len(set.Alternatives))
		for j := range set.Alternatives {
			ids[j] = first + j
		}
		for j, t := range set.Alternatives {
			alt := answer.Alternative{
				Text:                      t,
				Marks:                     answerMarks(marks, len(answers), i),
				AlternativeID:             ids[j],
				LinkedAlternativeIDs:      linkedExcept(ids, ids[j]),
				AlternativeType:           alternativeType(t),
				Qualifiers:                qualifiers,
				AcceptsEquivalentPhrasing: slices.Contains(qualifiers, QualifierOWTTE),
				ErrorCarriedForward:       slices.Contains(qualifiers, QualifierECF),
				AcceptsReverseArgument:    slices.Contains(qualifiers, QualifierORA),
			}
			if _, unit, ok := answer.SplitQuantity(t); ok {
				alt.Unit = strings.Join(strings.Fields(unit), " ")
			}
			if m := parenthetical.FindStringSubmatch(t); m != nil {
				alt.Context = strings.TrimSpace(m[1])
			}
			alts = append(alts, alt)
		}
	}
	return alts, total, issues
}

// answerMarks is the share of marks for the i-th of n raw answers. 3 marks
// over 2 answers gives 2 and 1.
func answerMarks(marks, n, i int) int {
	if n <= 1 {
		return marks
	}
	share := marks / n
	if i < marks%n {
		share++
	}
	return share
}

func linkedExcept(ids []int, self int) []int {
	out := make([]int, 0, len(ids)-1)
	for _, id := range ids {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}

// fingerprint derives a stable question ID from its text so re-imports of
// the same paper replace earlier records.
func fingerprint(text string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := blake2b.Sum256([]byte(norm))
	return "q-" + hex.EncodeToString(sum[:8])
}
