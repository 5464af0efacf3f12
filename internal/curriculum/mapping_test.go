package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertConsistent(t *testing.T, h *Hierarchy, res MappingResult) {
	t.Helper()
	for _, id := range res.TopicIDs {
		tp, ok := h.Topic(id)
		require.True(t, ok, "unknown topic %s", id)
		assert.Equal(t, res.ChapterID, tp.UnitID, "topic %s outside chapter", id)
	}
	for _, id := range res.SubtopicIDs {
		st, ok := h.Subtopic(id)
		require.True(t, ok, "unknown subtopic %s", id)
		assert.Contains(t, res.TopicIDs, st.TopicID, "subtopic %s without its topic", id)
	}
}

func TestResolve(t *testing.T) {
	h := testHierarchy(t)
	m := NewMatcher(h)

	tests := []struct {
		name          string
		names         Names
		wantChapter   string
		wantTopics    []string
		wantSubtopics []string
		wantUnmapped  []Unmapped
	}{
		{
			name:          "full chain",
			names:         Names{Units: []string{"Mechanics"}, Topics: []string{"Forces"}, Subtopics: []string{"Friction"}},
			wantChapter:   "U1",
			wantTopics:    []string{"T1"},
			wantSubtopics: []string{"S2"},
		},
		{
			name:         "ambiguous topic without unit",
			names:        Names{Topics: []string{"Forces"}},
			wantTopics:   []string{},
			wantUnmapped: []Unmapped{{Field: "topic", Candidate: "Forces", Reason: ReasonAmbiguous}},
		},
		{
			name:        "unit disambiguates topic",
			names:       Names{Units: []string{"Waves"}, Topics: []string{"Forces"}},
			wantChapter: "U2",
			wantTopics:  []string{"T3"},
		},
		{
			name:        "topic infers unit",
			names:       Names{Topics: []string{"Motion"}},
			wantChapter: "U1",
			wantTopics:  []string{"T2"},
		},
		{
			name:          "subtopic back-propagates topic and unit",
			names:         Names{Subtopics: []string{"Echoes"}},
			wantChapter:   "U2",
			wantTopics:    []string{"T4"},
			wantSubtopics: []string{"S5"},
		},
		{
			name:          "comma separated names",
			names:         Names{Units: []string{"Mechanics"}, Topics: []string{"Forces, Motion"}, Subtopics: []string{"Friction / Speed and velocity"}},
			wantChapter:   "U1",
			wantTopics:    []string{"T1", "T2"},
			wantSubtopics: []string{"S2", "S3"},
		},
		{
			name:         "topic outside resolved unit is not found",
			names:        Names{Units: []string{"Mechanics"}, Topics: []string{"Sound"}},
			wantChapter:  "U1",
			wantTopics:   []string{},
			wantUnmapped: []Unmapped{{Field: "topic", Candidate: "Sound", Reason: ReasonNotFound}},
		},
		{
			name:        "inferred units conflict",
			names:       Names{Topics: []string{"Motion", "Sound"}},
			wantTopics:  []string{},
			wantUnmapped: []Unmapped{
				{Field: "topic", Candidate: "Motion", Reason: ReasonConflict},
				{Field: "topic", Candidate: "Sound", Reason: ReasonConflict},
			},
		},
		{
			name:          "subtopic constrained to resolved topic",
			names:         Names{Topics: []string{"Sound"}, Subtopics: []string{"Friction", "Echoes"}},
			wantChapter:   "U2",
			wantTopics:    []string{"T4"},
			wantSubtopics: []string{"S5"},
			wantUnmapped:  []Unmapped{{Field: "subtopic", Candidate: "Friction", Reason: ReasonNotFound}},
		},
		{
			name:        "two units conflict",
			names:       Names{Units: []string{"Mechanics, Waves"}},
			wantTopics:  []string{},
			wantUnmapped: []Unmapped{
				{Field: "unit", Candidate: "Mechanics", Reason: ReasonConflict},
				{Field: "unit", Candidate: "Waves", Reason: ReasonConflict},
			},
		},
		{
			name:       "nothing given",
			names:      Names{},
			wantTopics: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.Resolve("Q1", tt.names)
			assert.Equal(t, "Q1", res.QuestionID)
			assert.Equal(t, tt.wantChapter, res.ChapterID)
			assert.Equal(t, tt.wantTopics, res.TopicIDs)
			if tt.wantSubtopics == nil {
				assert.Empty(t, res.SubtopicIDs)
			} else {
				assert.Equal(t, tt.wantSubtopics, res.SubtopicIDs)
			}
			assert.Equal(t, tt.wantUnmapped, res.Unmapped)
			assert.Equal(t, len(tt.wantUnmapped) > 0, res.NeedsManualMapping())
			assertConsistent(t, h, res)
		})
	}
}

func TestResolve_ContradictoryInputStaysConsistent(t *testing.T) {
	h := testHierarchy(t)
	m := NewMatcher(h)

	inputs := []Names{
		{Units: []string{"Energy"}, Topics: []string{"Forces", "Sound"}, Subtopics: []string{"Echoes", "Kinetic energy"}},
		{Topics: []string{"Energy stores"}, Subtopics: []string{"Echoes"}},
		{Subtopics: []string{"Friction", "Echoes"}},
		{Units: []string{"Astro"}, Topics: []string{"Forces"}, Subtopics: []string{"Restoring forces"}},
	}
	for _, in := range inputs {
		assertConsistent(t, h, m.Resolve("Q", in))
	}
}

func TestNames_Empty(t *testing.T) {
	assert.True(t, Names{Topics: []string{" ", ""}}.Empty())
	assert.False(t, Names{Units: []string{"Waves"}}.Empty())
}
