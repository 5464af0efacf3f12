package curriculum

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateReference checks required fields, ID uniqueness and that every
// parent reference resolves.
func ValidateReference(ref Reference) error {
	if err := validate.Struct(ref); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid curriculum reference: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid curriculum reference: %w", err)
	}

	units := make(map[string]bool, len(ref.Units))
	for _, u := range ref.Units {
		if units[u.ID] {
			return fmt.Errorf("duplicate unit id %q", u.ID)
		}
		units[u.ID] = true
	}

	topics := make(map[string]bool, len(ref.Topics))
	for _, t := range ref.Topics {
		if topics[t.ID] {
			return fmt.Errorf("duplicate topic id %q", t.ID)
		}
		if !units[t.UnitID] {
			return fmt.Errorf("topic %q references unknown unit %q", t.ID, t.UnitID)
		}
		topics[t.ID] = true
	}

	subtopics := make(map[string]bool, len(ref.Subtopics))
	for _, s := range ref.Subtopics {
		if subtopics[s.ID] {
			return fmt.Errorf("duplicate subtopic id %q", s.ID)
		}
		if !topics[s.TopicID] {
			return fmt.Errorf("subtopic %q references unknown topic %q", s.ID, s.TopicID)
		}
		subtopics[s.ID] = true
	}

	return nil
}
