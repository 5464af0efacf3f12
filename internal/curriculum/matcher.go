package curriculum

import (
	"strings"
)

// MatchTier says which comparison produced a match.
type MatchTier string

const (
	TierExact MatchTier = "exact"
	TierLoose MatchTier = "loose"
)

// UnmappedReason explains why a candidate name was not mapped.
type UnmappedReason string

const (
	ReasonNotFound  UnmappedReason = "not_found"
	ReasonAmbiguous UnmappedReason = "ambiguous"
	ReasonConflict  UnmappedReason = "conflict"
)

// Match describes the outcome of FindUniqueMatch.
type Match struct {
	Found  bool
	Tier   MatchTier
	Reason UnmappedReason
	// Candidates is the number of items that tied when Reason is ambiguous.
	Candidates int
}

// Getter extracts comparable strings from an item, e.g. its name or aliases.
type Getter[T any] func(T) []string

// minLooseLen keeps very short strings out of the loose tier on both sides:
// a short code is never found inside a candidate, and a short candidate is
// never found inside a name.
const minLooseLen = 3

// FindUniqueMatch looks candidate up in items. Exact comparison runs first,
// getter by getter in priority order: the first getter with any exact hit
// decides, and a tie there means no match. Otherwise a loose substring
// comparison over all getters must leave exactly one item. Ambiguity is never
// resolved by picking one.
func FindUniqueMatch[T any](items []T, candidate string, getters ...Getter[T]) (T, Match) {
	var zero T
	c := Normalize(candidate)
	if c == "" || len(items) == 0 {
		return zero, Match{Reason: ReasonNotFound}
	}

	for _, get := range getters {
		var hits []int
		for i, it := range items {
			for _, v := range get(it) {
				if Normalize(v) == c {
					hits = append(hits, i)
					break
				}
			}
		}
		switch len(hits) {
		case 0:
			continue
		case 1:
			return items[hits[0]], Match{Found: true, Tier: TierExact}
		default:
			return zero, Match{Reason: ReasonAmbiguous, Candidates: len(hits)}
		}
	}

	if len(c) < minLooseLen {
		return zero, Match{Reason: ReasonNotFound}
	}
	var hits []int
	for i, it := range items {
		if looseMatch(it, c, getters) {
			hits = append(hits, i)
		}
	}
	switch len(hits) {
	case 0:
		return zero, Match{Reason: ReasonNotFound}
	case 1:
		return items[hits[0]], Match{Found: true, Tier: TierLoose}
	default:
		return zero, Match{Reason: ReasonAmbiguous, Candidates: len(hits)}
	}
}

func looseMatch[T any](it T, c string, getters []Getter[T]) bool {
	for _, get := range getters {
		for _, v := range get(it) {
			f := Normalize(v)
			if f == "" {
				continue
			}
			if strings.Contains(f, c) || (len(f) >= minLooseLen && strings.Contains(c, f)) {
				return true
			}
		}
	}
	return false
}

func nonEmpty(vals ...string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func displayName(code, name string) []string {
	if code == "" {
		return nil
	}
	return []string{code + " " + name, code + ". " + name, code + " - " + name}
}

// Getters in priority order: name, code, aliases, display name.
var (
	unitGetters = []Getter[Unit]{
		func(u Unit) []string { return nonEmpty(u.Name) },
		func(u Unit) []string { return nonEmpty(u.Code) },
		func(u Unit) []string { return u.Aliases },
		func(u Unit) []string { return displayName(u.Code, u.Name) },
	}
	topicGetters = []Getter[Topic]{
		func(t Topic) []string { return nonEmpty(t.Name) },
		func(t Topic) []string { return nonEmpty(t.Code) },
		func(t Topic) []string { return t.Aliases },
		func(t Topic) []string { return displayName(t.Code, t.Name) },
	}
	subtopicGetters = []Getter[Subtopic]{
		func(s Subtopic) []string { return nonEmpty(s.Name) },
		func(s Subtopic) []string { return nonEmpty(s.Code) },
		func(s Subtopic) []string { return s.Aliases },
		func(s Subtopic) []string { return displayName(s.Code, s.Name) },
	}
)

// FindUnit matches a unit name against units.
func FindUnit(units []Unit, candidate string) (Unit, Match) {
	return FindUniqueMatch(units, candidate, unitGetters...)
}

// FindTopic matches a topic name against topics.
func FindTopic(topics []Topic, candidate string) (Topic, Match) {
	return FindUniqueMatch(topics, candidate, topicGetters...)
}

// FindSubtopic matches a subtopic name against subtopics.
func FindSubtopic(subtopics []Subtopic, candidate string) (Subtopic, Match) {
	return FindUniqueMatch(subtopics, candidate, subtopicGetters...)
}
