// Package answer decomposes mark-scheme answer text into structured
// alternatives, answer logic and a canonical marking requirement.
package answer

// Alternative is one accepted literal answer.
type Alternative struct {
	Text                      string   `json:"text"`
	Marks                     int      `json:"marks"`
	AlternativeID             int      `json:"alternative_id"`
	LinkedAlternativeIDs      []int    `json:"linked_alternative_ids"`
	AlternativeType           string   `json:"alternative_type,omitempty"`
	Context                   string   `json:"context,omitempty"`
	Unit                      string   `json:"unit,omitempty"`
	AcceptsEquivalentPhrasing bool     `json:"accepts_equivalent_phrasing,omitempty"`
	ErrorCarriedForward       bool     `json:"error_carried_forward,omitempty"`
	AcceptsReverseArgument    bool     `json:"accepts_reverse_argument,omitempty"`
	Qualifiers                []string `json:"qualifiers,omitempty"`
}

// LogicType classifies how several answer components combine.
type LogicType string

const (
	LogicSimple      LogicType = "simple"
	LogicAllRequired LogicType = "all_required"
	LogicAnyAccepted LogicType = "any_accepted"
	LogicComplex     LogicType = "complex"
)

// Logic is the combination logic of an answer. Components are only
// populated for non-simple logic.
type Logic struct {
	Type               LogicType `json:"type"`
	RequiredComponents []string  `json:"required_components,omitempty"`
	OptionalComponents []string  `json:"optional_components,omitempty"`
	RequiredCount      int       `json:"required_count,omitempty"`
}

// Option is a multiple-choice option.
type Option struct {
	Label     string `json:"label"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Severity of an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueKind groups issues by where they came from.
type IssueKind string

const (
	KindParseWarning    IssueKind = "parse_warning"
	KindValidationIssue IssueKind = "validation_issue"
)

// Issue is a non-fatal problem found while processing one answer.
type Issue struct {
	Kind     IssueKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Path     string    `json:"path,omitempty"`
	Message  string    `json:"message"`
}
