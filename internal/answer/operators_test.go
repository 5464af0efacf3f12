package answer

import (
	"reflect"
	"testing"
)

func TestParseOperators(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantLogic    LogicType
		wantRequired []string
		wantOptional []string
		wantCount    int
		wantWarnings int
	}{
		{
			name:      "simple",
			input:     "chlorophyll",
			wantLogic: LogicSimple,
		},
		{
			name:         "enumeration",
			input:        "any two from: mitosis, meiosis, binary fission",
			wantLogic:    LogicAnyAccepted,
			wantOptional: []string{"mitosis", "meiosis", "binary fission"},
			wantCount:    2,
		},
		{
			name:         "enumeration with digits",
			input:        "Any 3 of the following - heat; light; sound; movement",
			wantLogic:    LogicAnyAccepted,
			wantOptional: []string{"heat", "light", "sound", "movement"},
			wantCount:    3,
		},
		{
			name:         "enumeration short of items",
			input:        "any three from: oxygen, water",
			wantLogic:    LogicAnyAccepted,
			wantOptional: []string{"oxygen", "water"},
			wantCount:    3,
			wantWarnings: 1,
		},
		{
			name:         "and pair",
			input:        "state the colour change and give a reason",
			wantLogic:    LogicAllRequired,
			wantRequired: []string{"state the colour change", "give a reason"},
			wantCount:    2,
		},
		{
			name:         "both and",
			input:        "both carbon dioxide and water.",
			wantLogic:    LogicAllRequired,
			wantRequired: []string{"carbon dioxide", "water"},
			wantCount:    2,
		},
		{
			name:         "or pair",
			input:        "either diffusion or osmosis",
			wantLogic:    LogicAnyAccepted,
			wantOptional: []string{"diffusion", "osmosis"},
			wantCount:    1,
		},
		{
			name:         "nested and/or",
			input:        "heat and stir or filter and evaporate",
			wantLogic:    LogicComplex,
			wantOptional: []string{"heat and stir", "filter and evaporate"},
			wantWarnings: 1,
		},
		{
			name:         "literal and/or",
			input:        "sodium and/or potassium",
			wantLogic:    LogicComplex,
			wantOptional: []string{"sodium", "potassium"},
			wantWarnings: 1,
		},
		{
			name:         "dangling connective",
			input:        "salt and",
			wantLogic:    LogicSimple,
			wantWarnings: 1,
		},
		{
			name:      "connective inside word",
			input:     "sandstone",
			wantLogic: LogicSimple,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseOperators(tt.input)
			if got.Logic.Type != tt.wantLogic {
				t.Fatalf("Logic.Type = %q, want %q", got.Logic.Type, tt.wantLogic)
			}
			if got.HasOperators != (tt.wantLogic != LogicSimple) {
				t.Errorf("HasOperators = %v for %q", got.HasOperators, tt.wantLogic)
			}
			if !reflect.DeepEqual(got.RequiredComponents, tt.wantRequired) {
				t.Errorf("RequiredComponents = %q, want %q", got.RequiredComponents, tt.wantRequired)
			}
			if !reflect.DeepEqual(got.OptionalComponents, tt.wantOptional) {
				t.Errorf("OptionalComponents = %q, want %q", got.OptionalComponents, tt.wantOptional)
			}
			if got.Logic.RequiredCount != tt.wantCount {
				t.Errorf("RequiredCount = %d, want %d", got.Logic.RequiredCount, tt.wantCount)
			}
			if len(got.ValidationErrors) != tt.wantWarnings {
				t.Errorf("ValidationErrors = %q, want %d", got.ValidationErrors, tt.wantWarnings)
			}
		})
	}
}

func TestParseOperators_ComplexFlagsManualReview(t *testing.T) {
	got := ParseOperators("A and B or C")
	if len(got.ValidationErrors) != 1 || got.ValidationErrors[0] != ComplexLogicWarning {
		t.Errorf("ValidationErrors = %q, want [%q]", got.ValidationErrors, ComplexLogicWarning)
	}
	if len(got.RequiredComponents) != 0 {
		t.Errorf("RequiredComponents = %q, want none for complex logic", got.RequiredComponents)
	}
}
