// Package review holds normalized questions until a human has checked them.
// Re-importing a question replaces its record wholesale.
package review

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/p-n-ai/pai-qbank/internal/answer"
	"github.com/p-n-ai/pai-qbank/internal/curriculum"
	"github.com/p-n-ai/pai-qbank/internal/ingest"
)

// ErrNotFound is returned when no record exists for a question ID.
var ErrNotFound = errors.New("review record not found")

// Record is one normalized question awaiting review.
type Record struct {
	QuestionID   string                   `json:"question_id"`
	RunID        string                   `json:"run_id"`
	Question     ingest.ProcessedNode     `json:"question"`
	Mapping      curriculum.MappingResult `json:"mapping"`
	Issues       []answer.Issue           `json:"issues"`
	NeedsMapping bool                     `json:"needs_mapping"`
	HasErrors    bool                     `json:"has_errors"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

// Pending reports whether a reviewer has to act on the record.
func (r Record) Pending() bool { return r.NeedsMapping || r.HasErrors }

// Store persists review records keyed by question ID.
type Store interface {
	SaveBatch(ctx context.Context, b *ingest.Batch) (int, error)
	Get(ctx context.Context, questionID string) (*Record, error)
	ListPending(ctx context.Context, limit int) ([]Record, error)
}

// RecordsFromBatch flattens a batch into one record per question.
func RecordsFromBatch(b *ingest.Batch) []Record {
	now := time.Now()
	records := make([]Record, 0, len(b.Questions))
	for _, q := range b.Questions {
		issues := b.ValidationIssues[q.ID]
		if issues == nil {
			issues = []answer.Issue{}
		}
		mapping, ok := b.Mappings[q.ID]
		if !ok {
			mapping = curriculum.MappingResult{QuestionID: q.ID, TopicIDs: []string{}, SubtopicIDs: []string{}}
		}
		records = append(records, Record{
			QuestionID:   q.ID,
			RunID:        b.RunID,
			Question:     q,
			Mapping:      mapping,
			Issues:       issues,
			NeedsMapping: !ok || mapping.NeedsManualMapping() || mapping.ChapterID == "",
			HasErrors:    hasErrors(issues),
			UpdatedAt:    now,
		})
	}
	return records
}

func hasErrors(issues []answer.Issue) bool {
	for _, is := range issues {
		if is.Severity == answer.SeverityError {
			return true
		}
	}
	return false
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	records map[string]Record
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory review store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

func (s *MemoryStore) SaveBatch(_ context.Context, b *ingest.Batch) (int, error) {
	if b == nil {
		return 0, fmt.Errorf("batch is nil")
	}
	records := RecordsFromBatch(b)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.QuestionID] = r
	}
	return len(records), nil
}

func (s *MemoryStore) Get(_ context.Context, questionID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[questionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, questionID)
	}
	return &r, nil
}

func (s *MemoryStore) ListPending(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Record{}
	for _, r := range s.records {
		if r.Pending() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
