package answer

import (
	"regexp"
	"strings"
)

// RequirementCode is the canonical description of how many and which
// alternatives a candidate must supply for full marks.
type RequirementCode string

const (
	RequirementSingleChoice       RequirementCode = "single_choice"
	RequirementBothRequired       RequirementCode = "both_required"
	RequirementAllRequired        RequirementCode = "all_required"
	RequirementAny2From           RequirementCode = "any_2_from"
	RequirementAny3From           RequirementCode = "any_3_from"
	RequirementAnyOneFrom         RequirementCode = "any_one_from"
	RequirementAlternativeMethods RequirementCode = "alternative_methods"
	RequirementMultiSelect        RequirementCode = "multi_select"
)

// Confidence in a derived requirement.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Requirement is the derived marking requirement for one answer-bearing
// node. An empty Code means undetermined.
type Requirement struct {
	Code       RequirementCode `json:"answer_requirement,omitempty"`
	Confidence Confidence      `json:"confidence"`
	Evidence   string          `json:"evidence,omitempty"`
	Rule       string          `json:"rule"`
}

// Determined reports whether a requirement code was derived.
func (r Requirement) Determined() bool { return r.Code != "" }

// RequirementInput is everything the deriver looks at.
type RequirementInput struct {
	QuestionType      string
	AnswerFormat      string
	Marks             int
	CorrectAnswers    []Alternative
	TotalAlternatives int
	Options           []Option
	// Text is the node and mark-scheme text scanned by the lexical rules.
	Text string
}

type requirementRule struct {
	name  string
	apply func(in RequirementInput) (Requirement, bool)
}

// requirementRules are evaluated in order; the first match wins. Structural
// rules come first, lexical heuristics last.
var requirementRules = []requirementRule{
	{name: "mcq_single_correct", apply: ruleMCQSingle},
	{name: "options_multi_correct", apply: ruleOptionsMulti},
	{name: "answers_all_required", apply: ruleAnswersAllRequired},
	{name: "delimited_alternatives", apply: ruleDelimitedAlternatives},
	{name: "mark_scheme_phrase", apply: ruleMarkSchemePhrase},
	{name: "two_marks_and", apply: ruleTwoMarksAnd},
}

// RequirementRules lists the rule names in evaluation order.
func RequirementRules() []string {
	names := make([]string, len(requirementRules))
	for i, r := range requirementRules {
		names[i] = r.name
	}
	return names
}

// DeriveRequirement returns the requirement produced by the first matching
// rule, or an undetermined low-confidence requirement.
func DeriveRequirement(in RequirementInput) Requirement {
	for _, r := range requirementRules {
		if req, ok := r.apply(in); ok {
			req.Rule = r.name
			return req
		}
	}
	return Requirement{Confidence: ConfidenceLow, Rule: "undetermined"}
}

func ruleMCQSingle(in RequirementInput) (Requirement, bool) {
	if !strings.EqualFold(in.QuestionType, "mcq") {
		return Requirement{}, false
	}
	correct := countCorrect(in.Options)
	if len(in.Options) == 0 {
		correct = len(in.CorrectAnswers)
	}
	if correct != 1 {
		return Requirement{}, false
	}
	return Requirement{Code: RequirementSingleChoice, Confidence: ConfidenceHigh, Evidence: "one correct option"}, true
}

func ruleOptionsMulti(in RequirementInput) (Requirement, bool) {
	if len(in.Options) == 0 || countCorrect(in.Options) <= 1 {
		return Requirement{}, false
	}
	return Requirement{Code: RequirementMultiSelect, Confidence: ConfidenceHigh, Evidence: "several correct options"}, true
}

func ruleAnswersAllRequired(in RequirementInput) (Requirement, bool) {
	if len(in.CorrectAnswers) <= 1 {
		return Requirement{}, false
	}
	if ParseOperators(joinAnswers(in.CorrectAnswers)).Logic.Type != LogicAllRequired {
		return Requirement{}, false
	}
	code := RequirementAllRequired
	if len(in.CorrectAnswers) == 2 {
		code = RequirementBothRequired
	}
	return Requirement{Code: code, Confidence: ConfidenceMedium, Evidence: "answers joined by and"}, true
}

func ruleDelimitedAlternatives(in RequirementInput) (Requirement, bool) {
	if in.TotalAlternatives < 2 {
		return Requirement{}, false
	}
	if ParseOperators(joinAnswers(in.CorrectAnswers)).HasOperators {
		return Requirement{}, false
	}
	if equalMarksAboveOne(in.CorrectAnswers) {
		return Requirement{Code: RequirementAlternativeMethods, Confidence: ConfidenceMedium, Evidence: "alternatives carry equal marks"}, true
	}
	return Requirement{Code: RequirementAnyOneFrom, Confidence: ConfidenceMedium, Evidence: "delimited alternatives"}, true
}

type phraseRule struct {
	pattern    *regexp.Regexp
	code       RequirementCode
	confidence Confidence
}

var phraseRules = []phraseRule{
	{regexp.MustCompile(`(?i)\bany\s+(?:two|2)\s+(?:from|of)\b`), RequirementAny2From, ConfidenceMedium},
	{regexp.MustCompile(`(?i)\bany\s+(?:three|3)\s+(?:from|of)\b`), RequirementAny3From, ConfidenceMedium},
	{regexp.MustCompile(`(?i)\bany\s+(?:one|1)\s+(?:from|of)\b`), RequirementSingleChoice, ConfidenceMedium},
	{regexp.MustCompile(`(?i)\beither\b.+\bor\b`), RequirementSingleChoice, ConfidenceLow},
	{regexp.MustCompile(`(?i)\bboth\s+(?:are\s+)?(?:required|needed)\b`), RequirementBothRequired, ConfidenceMedium},
	{regexp.MustCompile(`(?i)\ball\s+(?:are\s+)?(?:required|needed)\b`), RequirementAllRequired, ConfidenceMedium},
	{regexp.MustCompile(`(?i)\balternative\s+methods?\b`), RequirementAlternativeMethods, ConfidenceMedium},
	{regexp.MustCompile(`(?i)\bowtte\b`), RequirementAlternativeMethods, ConfidenceLow},
}

func ruleMarkSchemePhrase(in RequirementInput) (Requirement, bool) {
	text := in.Text + " " + joinAnswers(in.CorrectAnswers)
	for _, pr := range phraseRules {
		if m := pr.pattern.FindString(text); m != "" {
			return Requirement{Code: pr.code, Confidence: pr.confidence, Evidence: m}, true
		}
	}
	return Requirement{}, false
}

func ruleTwoMarksAnd(in RequirementInput) (Requirement, bool) {
	if in.Marks != 2 {
		return Requirement{}, false
	}
	text := strings.ToLower(in.Text + " " + joinAnswers(in.CorrectAnswers))
	if !strings.Contains(text, " and ") {
		return Requirement{}, false
	}
	return Requirement{Code: RequirementBothRequired, Confidence: ConfidenceLow, Evidence: "2 marks with and"}, true
}

func countCorrect(opts []Option) int {
	n := 0
	for _, o := range opts {
		if o.IsCorrect {
			n++
		}
	}
	return n
}

func joinAnswers(alts []Alternative) string {
	parts := make([]string, 0, len(alts))
	for _, a := range alts {
		if t := strings.TrimSpace(a.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func equalMarksAboveOne(alts []Alternative) bool {
	if len(alts) < 2 {
		return false
	}
	first := alts[0].Marks
	if first <= 1 {
		return false
	}
	for _, a := range alts[1:] {
		if a.Marks != first {
			return false
		}
	}
	return true
}
