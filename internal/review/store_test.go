package review_test

import (
	"context"
	"errors"
	"testing"

	"github.com/p-n-ai/pai-qbank/internal/answer"
	"github.com/p-n-ai/pai-qbank/internal/curriculum"
	"github.com/p-n-ai/pai-qbank/internal/ingest"
	"github.com/p-n-ai/pai-qbank/internal/platform/database/databasetest"
	"github.com/p-n-ai/pai-qbank/internal/review"
)

func testBatch() *ingest.Batch {
	return &ingest.Batch{
		RunID: "run-1",
		Questions: []ingest.ProcessedNode{
			{ID: "Q1", Level: ingest.LevelQuestion, Text: "State Newton's first law.", Marks: 2,
				CorrectAnswers: []answer.Alternative{}, ValidationIssues: []answer.Issue{}},
			{ID: "Q2", Level: ingest.LevelQuestion, Text: "Name the gas.", Marks: 1,
				CorrectAnswers: []answer.Alternative{}, ValidationIssues: []answer.Issue{}},
			{ID: "Q3", Level: ingest.LevelQuestion, Text: "Calculate the force.", Marks: 3,
				CorrectAnswers: []answer.Alternative{}, ValidationIssues: []answer.Issue{}},
		},
		Mappings: map[string]curriculum.MappingResult{
			"Q1": {QuestionID: "Q1", ChapterID: "U1", TopicIDs: []string{"T1"}, SubtopicIDs: []string{}},
			"Q2": {QuestionID: "Q2", TopicIDs: []string{}, SubtopicIDs: []string{},
				Unmapped: []curriculum.Unmapped{{Field: "topic", Candidate: "Gases", Reason: curriculum.ReasonNotFound}}},
			"Q3": {QuestionID: "Q3", ChapterID: "U1", TopicIDs: []string{"T1"}, SubtopicIDs: []string{}},
		},
		ValidationIssues: map[string][]answer.Issue{
			"Q3": {{Kind: answer.KindValidationIssue, Severity: answer.SeverityError, Message: "missing required unit"}},
		},
	}
}

func TestRecordsFromBatch(t *testing.T) {
	records := review.RecordsFromBatch(testBatch())
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}

	tests := []struct {
		id           string
		needsMapping bool
		hasErrors    bool
	}{
		{"Q1", false, false},
		{"Q2", true, false},
		{"Q3", false, true},
	}
	for i, tt := range tests {
		r := records[i]
		if r.QuestionID != tt.id {
			t.Fatalf("records[%d].QuestionID = %q, want %q", i, r.QuestionID, tt.id)
		}
		if r.NeedsMapping != tt.needsMapping {
			t.Errorf("%s NeedsMapping = %v, want %v", tt.id, r.NeedsMapping, tt.needsMapping)
		}
		if r.HasErrors != tt.hasErrors {
			t.Errorf("%s HasErrors = %v, want %v", tt.id, r.HasErrors, tt.hasErrors)
		}
		if r.RunID != "run-1" {
			t.Errorf("%s RunID = %q, want run-1", tt.id, r.RunID)
		}
	}
}

func TestRecordsFromBatch_MissingMappingNeedsReview(t *testing.T) {
	b := testBatch()
	delete(b.Mappings, "Q1")

	r := review.RecordsFromBatch(b)[0]
	if !r.NeedsMapping {
		t.Error("a question without a mapping should need mapping")
	}
	if r.Mapping.QuestionID != "Q1" {
		t.Errorf("Mapping.QuestionID = %q, want Q1", r.Mapping.QuestionID)
	}
}

func testStore(t *testing.T, store review.Store) {
	t.Helper()
	ctx := context.Background()

	n, err := store.SaveBatch(ctx, testBatch())
	if err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}
	if n != 3 {
		t.Errorf("SaveBatch() = %d, want 3", n)
	}

	got, err := store.Get(ctx, "Q1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Question.Text != "State Newton's first law." || got.Mapping.ChapterID != "U1" {
		t.Errorf("Get() = %+v, want Q1 mapped to U1", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, review.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	pending, err := store.ListPending(ctx, 0)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(pending) != 2 || pending[0].QuestionID != "Q2" || pending[1].QuestionID != "Q3" {
		t.Errorf("ListPending() = %v, want Q2 and Q3", pending)
	}

	limited, err := store.ListPending(ctx, 1)
	if err != nil {
		t.Fatalf("ListPending(1) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("ListPending(1) returned %d records", len(limited))
	}

	// Re-importing replaces the earlier record.
	b := testBatch()
	b.RunID = "run-2"
	b.Mappings["Q2"] = curriculum.MappingResult{QuestionID: "Q2", ChapterID: "U2", TopicIDs: []string{"T9"}, SubtopicIDs: []string{}}
	if _, err := store.SaveBatch(ctx, b); err != nil {
		t.Fatalf("second SaveBatch() error = %v", err)
	}
	got, err = store.Get(ctx, "Q2")
	if err != nil {
		t.Fatalf("Get(Q2) error = %v", err)
	}
	if got.RunID != "run-2" || got.NeedsMapping {
		t.Errorf("Q2 after re-import = run %q needsMapping %v, want run-2 false", got.RunID, got.NeedsMapping)
	}
	pending, _ = store.ListPending(ctx, 0)
	if len(pending) != 1 {
		t.Errorf("pending after re-import = %d, want 1", len(pending))
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, review.NewMemoryStore())
}

func TestMemoryStore_NilBatch(t *testing.T) {
	if _, err := review.NewMemoryStore().SaveBatch(context.Background(), nil); err == nil {
		t.Error("SaveBatch(nil) should fail")
	}
}

func TestNewPostgresStore_NilPool(t *testing.T) {
	if _, err := review.NewPostgresStore(nil); err == nil {
		t.Error("NewPostgresStore(nil) should fail")
	}
}

func TestPostgresStore(t *testing.T) {
	db := databasetest.New(t)
	store, err := review.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	testStore(t, store)
}
