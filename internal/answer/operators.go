package answer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// OperatorResult is the outcome of classifying the connectives in an answer.
type OperatorResult struct {
	HasOperators       bool     `json:"has_operators"`
	Logic              Logic    `json:"logic"`
	RequiredComponents []string `json:"required_components,omitempty"`
	OptionalComponents []string `json:"optional_components,omitempty"`
	ValidationErrors   []string `json:"validation_errors,omitempty"`
}

// ComplexLogicWarning is attached to answers whose AND/OR nesting is not
// resolved automatically.
const ComplexLogicWarning = "complex answer logic: verify manually"

var (
	enumerationPattern = regexp.MustCompile(`(?i)\bany\s+(\d+|one|two|three|four|five|six|seven|eight|nine|ten)\s+(?:from|of)\b\s*(?:the\s+following)?\s*[:\-–]?\s*(.*)$`)
	andPattern         = regexp.MustCompile(`(?i)\band\b`)
	orPattern          = regexp.MustCompile(`(?i)\bor\b`)
	andOrPattern       = regexp.MustCompile(`(?i)\band\s*/\s*or\b`)
	leadingBoth        = regexp.MustCompile(`(?i)^both\s+`)
	leadingEither      = regexp.MustCompile(`(?i)^either\s+`)
	listSeparator      = regexp.MustCompile(`\s*(?:[,;\n]|\bor\b|\band\b)\s*`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// ParseOperators detects AND/OR style connectives in s and classifies how the
// answer components combine. Rules are applied in priority order: explicit
// "any N from" enumeration, an and-only list, an or-only list, mixed
// connectives (complex) and finally simple.
func ParseOperators(s string) OperatorResult {
	text := strings.TrimSpace(s)
	if text == "" {
		return OperatorResult{Logic: Logic{Type: LogicSimple}}
	}

	if m := enumerationPattern.FindStringSubmatch(text); m != nil {
		return parseEnumeration(m[1], m[2])
	}

	hasAnd := andPattern.MatchString(text)
	hasOr := orPattern.MatchString(text)

	switch {
	case andOrPattern.MatchString(text) || (hasAnd && hasOr):
		return parseComplex(text)
	case hasAnd:
		return parseConnective(leadingBoth.ReplaceAllString(text, ""), andPattern, LogicAllRequired, "and")
	case hasOr:
		return parseConnective(leadingEither.ReplaceAllString(text, ""), orPattern, LogicAnyAccepted, "or")
	}

	return OperatorResult{Logic: Logic{Type: LogicSimple}}
}

func parseEnumeration(countWord, rest string) OperatorResult {
	n, ok := numberWords[strings.ToLower(countWord)]
	if !ok {
		n, _ = strconv.Atoi(countWord)
	}

	items := splitList(rest)
	res := OperatorResult{
		HasOperators:       true,
		OptionalComponents: items,
		Logic: Logic{
			Type:               LogicAnyAccepted,
			OptionalComponents: items,
			RequiredCount:      n,
		},
	}
	switch {
	case len(items) == 0:
		res.ValidationErrors = append(res.ValidationErrors, "enumeration lists no items")
	case n > len(items):
		res.ValidationErrors = append(res.ValidationErrors,
			fmt.Sprintf("enumeration requires %d items but lists %d", n, len(items)))
	}
	return res
}

func parseConnective(text string, sep *regexp.Regexp, logic LogicType, word string) OperatorResult {
	var clauses []string
	for _, part := range sep.Split(text, -1) {
		for _, c := range strings.Split(part, ",") {
			c = trimClause(c)
			if c != "" {
				clauses = append(clauses, c)
			}
		}
	}

	if len(clauses) < 2 {
		return OperatorResult{
			Logic:            Logic{Type: LogicSimple},
			ValidationErrors: []string{fmt.Sprintf("connective %q has an empty operand", word)},
		}
	}

	res := OperatorResult{HasOperators: true, Logic: Logic{Type: logic}}
	if logic == LogicAllRequired {
		res.RequiredComponents = clauses
		res.Logic.RequiredComponents = clauses
		res.Logic.RequiredCount = len(clauses)
	} else {
		res.OptionalComponents = clauses
		res.Logic.OptionalComponents = clauses
		res.Logic.RequiredCount = 1
	}
	return res
}

// parseComplex keeps only the top-level OR groups as optional components.
// Which parts of each group are mandatory is left for manual review.
func parseComplex(text string) OperatorResult {
	text = andOrPattern.ReplaceAllString(text, " or ")
	var groups []string
	for _, g := range orPattern.Split(leadingEither.ReplaceAllString(text, ""), -1) {
		if g = trimClause(g); g != "" {
			groups = append(groups, g)
		}
	}
	return OperatorResult{
		HasOperators:       true,
		OptionalComponents: groups,
		Logic: Logic{
			Type:               LogicComplex,
			OptionalComponents: groups,
		},
		ValidationErrors: []string{ComplexLogicWarning},
	}
}

func splitList(s string) []string {
	var items []string
	for _, it := range listSeparator.Split(s, -1) {
		if it = trimClause(it); it != "" {
			items = append(items, it)
		}
	}
	return items
}

func trimClause(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".;:")
	s = leadingBoth.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
