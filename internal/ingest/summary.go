package ingest

import "github.com/p-n-ai/pai-qbank/internal/answer"

// Summary aggregates a batch for reporting. It is never fed back into
// normalization.
type Summary struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`

	ByType        map[string]int `json:"by_type"`
	ByFormat      map[string]int `json:"by_format"`
	ByRequirement map[string]int `json:"by_requirement"`

	WithParts        int `json:"with_parts"`
	WithSubparts     int `json:"with_subparts"`
	WithOptions      int `json:"with_options"`
	NeedsMapping     int `json:"needs_mapping"`
	WithComplexLogic int `json:"with_complex_logic"`
	WithErrors       int `json:"with_errors"`
}

const undeterminedKey = "undetermined"

// Summarize computes the support summary of b. Type, format and requirement
// are counted per answer-bearing node; flags are counted per question.
func Summarize(b *Batch, total int) Summary {
	s := Summary{
		Total:         total,
		Processed:     len(b.Questions),
		Failed:        total - len(b.Questions),
		ByType:        map[string]int{},
		ByFormat:      map[string]int{},
		ByRequirement: map[string]int{},
	}

	for i := range b.Questions {
		q := &b.Questions[i]
		var parts, subparts, options, complexLogic, errs bool
		q.Walk(func(n *ProcessedNode) {
			switch n.Level {
			case LevelPart:
				parts = true
			case LevelSubpart:
				subparts = true
			}
			if len(n.Options) > 0 {
				options = true
			}
			if n.Logic.Type == answer.LogicComplex {
				complexLogic = true
			}
			for _, is := range n.ValidationIssues {
				if is.Severity == answer.SeverityError {
					errs = true
				}
			}
			if !n.AnswerBearing() {
				return
			}
			typ := n.Type
			if typ == "" {
				typ = "unspecified"
			}
			s.ByType[typ]++
			s.ByFormat[n.AnswerFormat]++
			if n.Requirement.Determined() {
				s.ByRequirement[string(n.Requirement.Code)]++
			} else {
				s.ByRequirement[undeterminedKey]++
			}
		})

		s.WithParts += btoi(parts)
		s.WithSubparts += btoi(subparts)
		s.WithOptions += btoi(options)
		s.WithComplexLogic += btoi(complexLogic)
		s.WithErrors += btoi(errs)
		if m, ok := b.Mappings[q.ID]; ok && m.NeedsManualMapping() {
			s.NeedsMapping++
		}
	}
	return s
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
