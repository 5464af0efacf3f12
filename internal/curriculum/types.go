package curriculum

// Unit is the top level of the curriculum hierarchy (a chapter).
type Unit struct {
	ID      string   `yaml:"id" json:"id" validate:"required"`
	Name    string   `yaml:"name" json:"name" validate:"required"`
	Code    string   `yaml:"code" json:"code,omitempty"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty" validate:"dive,required"`
}

// Topic belongs to exactly one Unit.
type Topic struct {
	ID      string   `yaml:"id" json:"id" validate:"required"`
	Name    string   `yaml:"name" json:"name" validate:"required"`
	Code    string   `yaml:"code" json:"code,omitempty"`
	UnitID  string   `yaml:"unit_id" json:"unit_id" validate:"required"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty" validate:"dive,required"`
}

// Subtopic belongs to exactly one Topic.
type Subtopic struct {
	ID      string   `yaml:"id" json:"id" validate:"required"`
	Name    string   `yaml:"name" json:"name" validate:"required"`
	Code    string   `yaml:"code" json:"code,omitempty"`
	TopicID string   `yaml:"topic_id" json:"topic_id" validate:"required"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty" validate:"dive,required"`
}

// Reference is the flat curriculum reference data handed over by the
// storage layer.
type Reference struct {
	Units     []Unit     `yaml:"units" json:"units" validate:"dive"`
	Topics    []Topic    `yaml:"topics" json:"topics" validate:"dive"`
	Subtopics []Subtopic `yaml:"subtopics" json:"subtopics" validate:"dive"`
}

// Hierarchy is an immutable, indexed view of a Reference. It is safe for
// concurrent use.
type Hierarchy struct {
	units     []Unit
	topics    []Topic
	subtopics []Subtopic

	unitByID     map[string]Unit
	topicByID    map[string]Topic
	subtopicByID map[string]Subtopic
}

// NewHierarchy validates ref and indexes it. Every topic must reference an
// existing unit and every subtopic an existing topic.
func NewHierarchy(ref Reference) (*Hierarchy, error) {
	if err := ValidateReference(ref); err != nil {
		return nil, err
	}

	h := &Hierarchy{
		units:        append([]Unit(nil), ref.Units...),
		topics:       append([]Topic(nil), ref.Topics...),
		subtopics:    append([]Subtopic(nil), ref.Subtopics...),
		unitByID:     make(map[string]Unit, len(ref.Units)),
		topicByID:    make(map[string]Topic, len(ref.Topics)),
		subtopicByID: make(map[string]Subtopic, len(ref.Subtopics)),
	}
	for _, u := range h.units {
		h.unitByID[u.ID] = u
	}
	for _, t := range h.topics {
		h.topicByID[t.ID] = t
	}
	for _, s := range h.subtopics {
		h.subtopicByID[s.ID] = s
	}
	return h, nil
}

// Reference returns a copy of the underlying reference data.
func (h *Hierarchy) Reference() Reference {
	return Reference{
		Units:     append([]Unit(nil), h.units...),
		Topics:    append([]Topic(nil), h.topics...),
		Subtopics: append([]Subtopic(nil), h.subtopics...),
	}
}

// Units returns all units in load order.
func (h *Hierarchy) Units() []Unit { return h.units }

// Topics returns all topics in load order.
func (h *Hierarchy) Topics() []Topic { return h.topics }

// Subtopics returns all subtopics in load order.
func (h *Hierarchy) Subtopics() []Subtopic { return h.subtopics }

// Unit returns a unit by ID.
func (h *Hierarchy) Unit(id string) (Unit, bool) {
	u, ok := h.unitByID[id]
	return u, ok
}

// Topic returns a topic by ID.
func (h *Hierarchy) Topic(id string) (Topic, bool) {
	t, ok := h.topicByID[id]
	return t, ok
}

// Subtopic returns a subtopic by ID.
func (h *Hierarchy) Subtopic(id string) (Subtopic, bool) {
	s, ok := h.subtopicByID[id]
	return s, ok
}

// TopicsInUnit returns the topics whose parent is unitID.
func (h *Hierarchy) TopicsInUnit(unitID string) []Topic {
	var out []Topic
	for _, t := range h.topics {
		if t.UnitID == unitID {
			out = append(out, t)
		}
	}
	return out
}

// SubtopicsInTopics returns the subtopics whose parent is one of topicIDs.
func (h *Hierarchy) SubtopicsInTopics(topicIDs ...string) []Subtopic {
	want := make(map[string]bool, len(topicIDs))
	for _, id := range topicIDs {
		want[id] = true
	}
	var out []Subtopic
	for _, s := range h.subtopics {
		if want[s.TopicID] {
			out = append(out, s)
		}
	}
	return out
}

// UnitOfSubtopic walks a subtopic up to its unit ID.
func (h *Hierarchy) UnitOfSubtopic(subtopicID string) string {
	s, ok := h.subtopicByID[subtopicID]
	if !ok {
		return ""
	}
	return h.topicByID[s.TopicID].UnitID
}
