package ingest

import (
	"github.com/p-n-ai/pai-qbank/internal/answer"
	"github.com/p-n-ai/pai-qbank/internal/curriculum"
)

// ProcessedNode is the canonical form of a question, part or subpart.
// Requirement is nil on nodes that only group parts and carry no answer.
type ProcessedNode struct {
	ID               string               `json:"id"`
	Level            Level                `json:"level"`
	Path             string               `json:"path"`
	Text             string               `json:"text"`
	Marks            int                  `json:"marks"`
	Type             string               `json:"type,omitempty"`
	Subject          string               `json:"subject,omitempty"`
	AnswerFormat     string               `json:"answer_format,omitempty"`
	Requirement      *answer.Requirement  `json:"requirement,omitempty"`
	CorrectAnswers   []answer.Alternative `json:"correct_answers"`
	Options          []answer.Option      `json:"options,omitempty"`
	Logic            answer.Logic         `json:"logic"`
	ValidationIssues []answer.Issue       `json:"validation_issues"`
	Parts            []ProcessedNode      `json:"parts,omitempty"`
}

// AnswerBearing reports whether the node carries its own answer.
func (n *ProcessedNode) AnswerBearing() bool { return n.Requirement != nil }

// Walk calls fn for n and every descendant, depth first.
func (n *ProcessedNode) Walk(fn func(*ProcessedNode)) {
	fn(n)
	for i := range n.Parts {
		n.Parts[i].Walk(fn)
	}
}

// Issues collects the validation issues of n and its descendants.
func (n *ProcessedNode) Issues() []answer.Issue {
	out := []answer.Issue{}
	n.Walk(func(c *ProcessedNode) { out = append(out, c.ValidationIssues...) })
	return out
}

// Result is the outcome for one input question. Question is nil when the
// question itself failed.
type Result struct {
	Index    int                       `json:"index"`
	Question *ProcessedNode            `json:"question,omitempty"`
	Mapping  *curriculum.MappingResult `json:"mapping,omitempty"`
	Issues   []answer.Issue            `json:"issues"`
	Failures []NodeFailure             `json:"failures,omitempty"`
}

// Batch is the output of one normalization run. Mappings and
// ValidationIssues are keyed by question ID.
type Batch struct {
	RunID            string                              `json:"run_id"`
	Questions        []ProcessedNode                     `json:"questions"`
	Mappings         map[string]curriculum.MappingResult `json:"mappings"`
	ValidationIssues map[string][]answer.Issue           `json:"validation_issues"`
	Failures         []NodeFailure                       `json:"failures"`
	Summary          Summary                             `json:"summary"`
}

func newBatch(runID string) *Batch {
	return &Batch{
		RunID:            runID,
		Questions:        []ProcessedNode{},
		Mappings:         make(map[string]curriculum.MappingResult),
		ValidationIssues: make(map[string][]answer.Issue),
		Failures:         []NodeFailure{},
	}
}
