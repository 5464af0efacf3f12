package answer

import (
	"fmt"
	"regexp"
	"strings"
)

// SubjectRules are the structural expectations a subject places on answers.
type SubjectRules struct {
	RequiresUnits              bool `json:"requires_units" yaml:"requires_units"`
	AllowsApproximations       bool `json:"allows_approximations" yaml:"allows_approximations"`
	RequiresSignificantFigures bool `json:"requires_significant_figures" yaml:"requires_significant_figures"`
	AllowsEquivalentPhrasing   bool `json:"allows_equivalent_phrasing" yaml:"allows_equivalent_phrasing"`
}

var subjectRules = map[string]SubjectRules{
	"physics":     {RequiresUnits: true, AllowsApproximations: true, RequiresSignificantFigures: true, AllowsEquivalentPhrasing: true},
	"chemistry":   {RequiresUnits: true, AllowsApproximations: false, RequiresSignificantFigures: true, AllowsEquivalentPhrasing: true},
	"biology":     {RequiresUnits: false, AllowsApproximations: true, AllowsEquivalentPhrasing: true},
	"mathematics": {RequiresUnits: false, AllowsApproximations: false, RequiresSignificantFigures: true},
}

// RulesForSubject returns the built-in rule set for a subject name. Unknown
// subjects get permissive defaults.
func RulesForSubject(subject string) SubjectRules {
	s := strings.ToLower(strings.TrimSpace(subject))
	if s == "maths" || s == "math" {
		s = "mathematics"
	}
	if r, ok := subjectRules[s]; ok {
		return r
	}
	return SubjectRules{AllowsApproximations: true, AllowsEquivalentPhrasing: true}
}

// StructureResult is the outcome of validating one alternative.
type StructureResult struct {
	IsValid    bool    `json:"is_valid"`
	Issues     []Issue `json:"issues"`
	HasContext bool    `json:"has_context"`
}

// StructureValidator checks one alternative against subject rules.
// Implementations must be safe for concurrent use.
type StructureValidator interface {
	// Name identifies the validator in logs.
	Name() string
	Validate(alt Alternative, rules SubjectRules) StructureResult
}

// DefaultStructureValidator applies the built-in unit, approximation and
// significant-figure checks.
type DefaultStructureValidator struct{}

func (DefaultStructureValidator) Name() string { return "structure" }

func (DefaultStructureValidator) Validate(alt Alternative, rules SubjectRules) StructureResult {
	return ValidateStructure(alt, rules)
}

var (
	numberPattern   = regexp.MustCompile(`(?:^|[^\w.])-?\d+(?:\.\d+)?`)
	bareNumber      = regexp.MustCompile(`(?:^|[\s(=])(-?\d+(?:\.\d+)?)(?:$|[\s),;.])`)
	hedgePattern    = regexp.MustCompile(`(?i)\b(roughly|approximately|approx\.?|about|around|nearly|circa)\b|≈|~`)
	trailingZeroInt = regexp.MustCompile(`(?:^|[^\d.])(\d*[1-9]0+)(?:$|[^\d.])`)
)

// ValidateStructure checks alt against rules. It never fails; callers decide
// which issues block.
func ValidateStructure(alt Alternative, rules SubjectRules) StructureResult {
	text := strings.TrimSpace(alt.Text)
	hasUnit := strings.TrimSpace(alt.Unit) != "" || HasQuantity(text)
	res := StructureResult{
		Issues:     []Issue{},
		HasContext: hasUnit || strings.TrimSpace(alt.Context) != "",
	}

	hasNumber := numberPattern.MatchString(text)
	if rules.RequiresUnits && hasNumber {
		switch {
		case !res.HasContext:
			res.Issues = append(res.Issues, validationIssue(SeverityError, "missing required unit"))
		case !hasUnit:
			if m := bareNumber.FindStringSubmatch(text); m != nil {
				res.Issues = append(res.Issues, validationIssue(SeverityWarning,
					fmt.Sprintf("bare number %s has no unit", m[1])))
			}
		}
	}

	if !alt.AcceptsEquivalentPhrasing && !rules.AllowsApproximations && hedgePattern.MatchString(text) {
		res.Issues = append(res.Issues, validationIssue(SeverityWarning,
			"approximate wording in answer but approximations are not accepted"))
	}

	if rules.RequiresSignificantFigures && trailingZeroInt.MatchString(text) {
		res.Issues = append(res.Issues, validationIssue(SeverityWarning, "significant figures ambiguous"))
	}

	res.IsValid = true
	for _, is := range res.Issues {
		if is.Severity == SeverityError {
			res.IsValid = false
			break
		}
	}
	return res
}

func validationIssue(sev Severity, msg string) Issue {
	return Issue{Kind: KindValidationIssue, Severity: sev, Message: msg}
}
