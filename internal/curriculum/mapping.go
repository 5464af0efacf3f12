package curriculum

import "slices"

// Names are the free-text classification fields of one question. Each value
// may itself hold several names separated by commas, slashes or semicolons.
type Names struct {
	Units     []string `json:"units,omitempty"`
	Topics    []string `json:"topics,omitempty"`
	Subtopics []string `json:"subtopics,omitempty"`
}

// Empty reports whether no names were given.
func (n Names) Empty() bool {
	return len(SplitNames(n.Units...)) == 0 &&
		len(SplitNames(n.Topics...)) == 0 &&
		len(SplitNames(n.Subtopics...)) == 0
}

// Unmapped records a candidate name that must be mapped manually.
type Unmapped struct {
	Field     string         `json:"field"`
	Candidate string         `json:"candidate"`
	Reason    UnmappedReason `json:"reason"`
}

// MappingResult is the resolved classification of one question. Every
// topic's unit equals ChapterID and every subtopic's topic is in TopicIDs.
type MappingResult struct {
	QuestionID  string     `json:"question_id"`
	ChapterID   string     `json:"chapter_id,omitempty"`
	TopicIDs    []string   `json:"topic_ids"`
	SubtopicIDs []string   `json:"subtopic_ids"`
	Unmapped    []Unmapped `json:"unmapped,omitempty"`
}

// NeedsManualMapping reports whether any candidate could not be resolved.
func (m MappingResult) NeedsManualMapping() bool { return len(m.Unmapped) > 0 }

// Matcher resolves free-text names against an immutable Hierarchy. It holds
// no mutable state and is safe for concurrent use.
type Matcher struct {
	h *Hierarchy
}

// NewMatcher creates a matcher over h.
func NewMatcher(h *Hierarchy) *Matcher {
	return &Matcher{h: h}
}

// Hierarchy returns the reference data the matcher resolves against.
func (m *Matcher) Hierarchy() *Hierarchy { return m.h }

type resolution struct {
	res      MappingResult
	topics   []string
	subs     []string
	inferred []string // unit IDs inferred from topics or subtopics
}

func (r *resolution) unmapped(field, candidate string, reason UnmappedReason) {
	r.res.Unmapped = append(r.res.Unmapped, Unmapped{Field: field, Candidate: candidate, Reason: reason})
}

// Resolve maps names onto the hierarchy. Units are resolved first, topics
// within the resolved unit, then subtopics within the resolved topics. When
// a level is unknown the lower level is matched unconstrained and its
// parents inferred; contradictory parents are reported as conflicts. A final
// pass prunes anything whose parent chain does not reach ChapterID.
func (m *Matcher) Resolve(questionID string, names Names) MappingResult {
	r := &resolution{res: MappingResult{QuestionID: questionID}}

	m.resolveUnit(r, SplitNames(names.Units...))
	m.resolveTopics(r, SplitNames(names.Topics...))
	m.resolveSubtopics(r, SplitNames(names.Subtopics...))
	m.settleChapter(r)
	m.prune(r)

	r.res.TopicIDs = append([]string{}, r.topics...)
	r.res.SubtopicIDs = append([]string{}, r.subs...)
	return r.res
}

func (m *Matcher) resolveUnit(r *resolution, candidates []string) {
	var found []string
	for _, c := range candidates {
		u, match := FindUnit(m.h.units, c)
		if !match.Found {
			r.unmapped("unit", c, match.Reason)
			continue
		}
		if !slices.Contains(found, u.ID) {
			found = append(found, u.ID)
		}
	}
	switch len(found) {
	case 0:
	case 1:
		r.res.ChapterID = found[0]
	default:
		for _, id := range found {
			u, _ := m.h.Unit(id)
			r.unmapped("unit", u.Name, ReasonConflict)
		}
	}
}

func (m *Matcher) resolveTopics(r *resolution, candidates []string) {
	pool := m.h.topics
	if r.res.ChapterID != "" {
		pool = m.h.TopicsInUnit(r.res.ChapterID)
	}
	for _, c := range candidates {
		t, match := FindTopic(pool, c)
		if !match.Found {
			r.unmapped("topic", c, match.Reason)
			continue
		}
		if !slices.Contains(r.topics, t.ID) {
			r.topics = append(r.topics, t.ID)
		}
		if r.res.ChapterID == "" {
			r.inferred = append(r.inferred, t.UnitID)
		}
	}
}

func (m *Matcher) resolveSubtopics(r *resolution, candidates []string) {
	var pool []Subtopic
	switch {
	case len(r.topics) > 0:
		pool = m.h.SubtopicsInTopics(r.topics...)
	case r.res.ChapterID != "":
		var ids []string
		for _, t := range m.h.TopicsInUnit(r.res.ChapterID) {
			ids = append(ids, t.ID)
		}
		pool = m.h.SubtopicsInTopics(ids...)
	default:
		pool = m.h.subtopics
	}

	backPropagate := len(r.topics) == 0
	for _, c := range candidates {
		s, match := FindSubtopic(pool, c)
		if !match.Found {
			r.unmapped("subtopic", c, match.Reason)
			continue
		}
		if !slices.Contains(r.subs, s.ID) {
			r.subs = append(r.subs, s.ID)
		}
		if backPropagate {
			if !slices.Contains(r.topics, s.TopicID) {
				r.topics = append(r.topics, s.TopicID)
			}
			if r.res.ChapterID == "" {
				r.inferred = append(r.inferred, m.h.UnitOfSubtopic(s.ID))
			}
		}
	}
}

// settleChapter fills an unknown chapter from inferred parents when they all
// agree.
func (m *Matcher) settleChapter(r *resolution) {
	if r.res.ChapterID != "" || len(r.inferred) == 0 {
		return
	}
	first := r.inferred[0]
	for _, id := range r.inferred[1:] {
		if id != first {
			return
		}
	}
	r.res.ChapterID = first
}

func (m *Matcher) prune(r *resolution) {
	keptTopics := r.topics[:0:0]
	for _, id := range r.topics {
		t, ok := m.h.Topic(id)
		if ok && r.res.ChapterID != "" && t.UnitID == r.res.ChapterID {
			keptTopics = append(keptTopics, id)
			continue
		}
		r.unmapped("topic", t.Name, ReasonConflict)
	}
	r.topics = keptTopics

	keptSubs := r.subs[:0:0]
	for _, id := range r.subs {
		s, ok := m.h.Subtopic(id)
		if ok && slices.Contains(r.topics, s.TopicID) {
			keptSubs = append(keptSubs, id)
			continue
		}
		r.unmapped("subtopic", s.Name, ReasonConflict)
	}
	r.subs = keptSubs
}
