package answer

import (
	"regexp"
	"strings"
)

// Answer formats recognised by DetectFormat.
const (
	FormatMCQ         = "mcq"
	FormatTrueFalse   = "true_false"
	FormatCalculation = "calculation"
	FormatEquation    = "equation"
	FormatDiagram     = "diagram"
	FormatTable       = "table"
	FormatGraph       = "graph"
	FormatSingleWord  = "single_word"
	FormatSingleLine  = "single_line"
	FormatTwoItems    = "two_items"
	FormatMultiLine   = "multi_line"
)

// FormatInput is what format detection looks at.
type FormatInput struct {
	Type       string
	Text       string
	HasOptions bool
	Answers    []string
}

var (
	trueFalseAnswer = regexp.MustCompile(`(?i)^(true|false)$`)
	drawPrompt      = regexp.MustCompile(`(?i)\b(draw|sketch|label|complete the diagram)\b`)
	tablePrompt     = regexp.MustCompile(`(?i)\b(complete the table|in the table|fill in the table)\b`)
	graphPrompt     = regexp.MustCompile(`(?i)\b(plot|graph|axes)\b`)
	equationPrompt  = regexp.MustCompile(`(?i)\b(write (?:a|the|an) (?:balanced |word |symbol |ionic )?equation|balanced equation)\b`)
	calcPrompt      = regexp.MustCompile(`(?i)\b(calculate|work out|determine the value|show that)\b`)
)

type formatRule struct {
	format string
	match  func(in FormatInput) bool
}

var formatRules = []formatRule{
	{FormatMCQ, func(in FormatInput) bool { return in.HasOptions || strings.EqualFold(in.Type, "mcq") }},
	{FormatTrueFalse, func(in FormatInput) bool {
		return strings.EqualFold(in.Type, "tf") || strings.EqualFold(in.Type, "true_false") ||
			(len(in.Answers) == 1 && trueFalseAnswer.MatchString(strings.TrimSpace(in.Answers[0])))
	}},
	{FormatDiagram, func(in FormatInput) bool { return drawPrompt.MatchString(in.Text) }},
	{FormatTable, func(in FormatInput) bool { return tablePrompt.MatchString(in.Text) }},
	{FormatGraph, func(in FormatInput) bool { return graphPrompt.MatchString(in.Text) }},
	{FormatEquation, func(in FormatInput) bool {
		return equationPrompt.MatchString(in.Text) || anyAnswer(in.Answers, func(a string) bool {
			return strings.Contains(a, "→") || strings.Contains(a, "->")
		})
	}},
	{FormatCalculation, func(in FormatInput) bool {
		return calcPrompt.MatchString(in.Text) || anyAnswer(in.Answers, func(a string) bool {
			return strings.Contains(a, "=") || HasQuantity(a)
		})
	}},
	{FormatTwoItems, func(in FormatInput) bool { return len(in.Answers) == 2 }},
	{FormatMultiLine, func(in FormatInput) bool {
		return len(in.Answers) > 2 || anyAnswer(in.Answers, func(a string) bool { return len(strings.Fields(a)) > 12 })
	}},
	{FormatSingleWord, func(in FormatInput) bool {
		return len(in.Answers) == 1 && len(strings.Fields(in.Answers[0])) == 1
	}},
}

// DetectFormat maps a node onto an answer format using an ordered lookup
// table. Nodes matching nothing are single_line.
func DetectFormat(in FormatInput) string {
	for _, r := range formatRules {
		if r.match(in) {
			return r.format
		}
	}
	return FormatSingleLine
}

func anyAnswer(answers []string, fn func(string) bool) bool {
	for _, a := range answers {
		if fn(a) {
			return true
		}
	}
	return false
}
