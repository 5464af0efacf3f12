package answer

import (
	"strings"
	"testing"
)

func TestValidateStructure(t *testing.T) {
	physics := RulesForSubject("Physics")
	chemistry := RulesForSubject("chemistry")

	tests := []struct {
		name        string
		alt         Alternative
		rules       SubjectRules
		wantValid   bool
		wantContext bool
		wantIssue   string
	}{
		{
			name:        "number with unit in text",
			alt:         Alternative{Text: "12 m/s"},
			rules:       physics,
			wantValid:   true,
			wantContext: true,
		},
		{
			name:      "number without unit",
			alt:       Alternative{Text: "12"},
			rules:     physics,
			wantValid: false,
			wantIssue: "missing required unit",
		},
		{
			name:        "unit declared separately",
			alt:         Alternative{Text: "12", Unit: "N"},
			rules:       physics,
			wantValid:   true,
			wantContext: true,
		},
		{
			name:        "context but no unit",
			alt:         Alternative{Text: "speed = 12", Context: "to 2 s.f."},
			rules:       physics,
			wantValid:   true,
			wantContext: true,
			wantIssue:   "bare number 12 has no unit",
		},
		{
			name:      "word after number is not a unit",
			alt:       Alternative{Text: "5 because it falls"},
			rules:     physics,
			wantValid: false,
			wantIssue: "missing required unit",
		},
		{
			name:      "counted objects are not a unit",
			alt:       Alternative{Text: "3 apples"},
			rules:     physics,
			wantValid: false,
			wantIssue: "missing required unit",
		},
		{
			name:      "numbers joined by a word",
			alt:       Alternative{Text: "10 and 20"},
			rules:     physics,
			wantValid: false,
			wantIssue: "missing required unit",
		},
		{
			name:        "spelled-out unit",
			alt:         Alternative{Text: "5 newtons"},
			rules:       physics,
			wantValid:   true,
			wantContext: true,
		},
		{
			name:      "chemical formula is not a bare number",
			alt:       Alternative{Text: "CO2"},
			rules:     chemistry,
			wantValid: true,
		},
		{
			name:      "hedging without approximations",
			alt:       Alternative{Text: "approximately neutral"},
			rules:     chemistry,
			wantValid: true,
			wantIssue: "approximate wording",
		},
		{
			name:      "hedging with owtte",
			alt:       Alternative{Text: "approximately neutral", AcceptsEquivalentPhrasing: true},
			rules:     chemistry,
			wantValid: true,
		},
		{
			name:        "significant figures",
			alt:         Alternative{Text: "1200 J"},
			rules:       physics,
			wantValid:   true,
			wantContext: true,
			wantIssue:   "significant figures ambiguous",
		},
		{
			name:      "units not required",
			alt:       Alternative{Text: "42"},
			rules:     RulesForSubject("biology"),
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateStructure(tt.alt, tt.rules)
			if got.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v (issues %+v)", got.IsValid, tt.wantValid, got.Issues)
			}
			if got.HasContext != tt.wantContext {
				t.Errorf("HasContext = %v, want %v", got.HasContext, tt.wantContext)
			}
			if got.Issues == nil {
				t.Error("Issues should never be nil")
			}
			if tt.wantIssue == "" {
				if len(got.Issues) != 0 {
					t.Errorf("Issues = %+v, want none", got.Issues)
				}
				return
			}
			found := false
			for _, is := range got.Issues {
				if strings.Contains(is.Message, tt.wantIssue) {
					found = true
				}
			}
			if !found {
				t.Errorf("Issues = %+v, want one containing %q", got.Issues, tt.wantIssue)
			}
		})
	}
}

func TestRulesForSubject(t *testing.T) {
	if !RulesForSubject("physics").RequiresUnits {
		t.Error("physics should require units")
	}
	if RulesForSubject("maths") != RulesForSubject("mathematics") {
		t.Error("maths should alias mathematics")
	}
	def := RulesForSubject("history")
	if def.RequiresUnits || !def.AllowsApproximations {
		t.Errorf("default rules = %+v, want permissive", def)
	}
}

func TestDefaultStructureValidator(t *testing.T) {
	var v StructureValidator = DefaultStructureValidator{}
	if v.Name() != "structure" {
		t.Errorf("Name() = %q, want structure", v.Name())
	}
	if got := v.Validate(Alternative{Text: "5"}, RulesForSubject("physics")); got.IsValid {
		t.Error("Validate() should flag a bare number in physics")
	}
}
