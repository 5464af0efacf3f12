package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-qbank/internal/ingest"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed review store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SaveBatch(ctx context.Context, b *ingest.Batch) (int, error) {
	if b == nil {
		return 0, fmt.Errorf("batch is nil")
	}
	records := RecordsFromBatch(b)
	if len(records) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin review tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, r := range records {
		question, err := json.Marshal(r.Question)
		if err != nil {
			return 0, fmt.Errorf("marshal question %s: %w", r.QuestionID, err)
		}
		mapping, err := json.Marshal(r.Mapping)
		if err != nil {
			return 0, fmt.Errorf("marshal mapping %s: %w", r.QuestionID, err)
		}
		issues, err := json.Marshal(r.Issues)
		if err != nil {
			return 0, fmt.Errorf("marshal issues %s: %w", r.QuestionID, err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO review_questions
			   (question_id, run_id, chapter_id, needs_mapping, has_errors, question, mapping, issues, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8::jsonb, $9)
			 ON CONFLICT (question_id) DO UPDATE SET
			   run_id = EXCLUDED.run_id,
			   chapter_id = EXCLUDED.chapter_id,
			   needs_mapping = EXCLUDED.needs_mapping,
			   has_errors = EXCLUDED.has_errors,
			   question = EXCLUDED.question,
			   mapping = EXCLUDED.mapping,
			   issues = EXCLUDED.issues,
			   updated_at = EXCLUDED.updated_at`,
			r.QuestionID,
			r.RunID,
			nullIfEmpty(r.Mapping.ChapterID),
			r.NeedsMapping,
			r.HasErrors,
			string(question),
			string(mapping),
			string(issues),
			r.UpdatedAt,
		); err != nil {
			return 0, fmt.Errorf("upsert review question %s: %w", r.QuestionID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit review tx: %w", err)
	}
	return len(records), nil
}

func (s *PostgresStore) Get(ctx context.Context, questionID string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT question_id, run_id, needs_mapping, has_errors, question, mapping, issues, updated_at
		 FROM review_questions
		 WHERE question_id = $1`,
		questionID,
	)
	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, questionID)
	}
	if err != nil {
		return nil, fmt.Errorf("get review question %s: %w", questionID, err)
	}
	return r, nil
}

func (s *PostgresStore) ListPending(ctx context.Context, limit int) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.pool.Query(ctx,
		`SELECT question_id, run_id, needs_mapping, has_errors, question, mapping, issues, updated_at
		 FROM review_questions
		 WHERE needs_mapping OR has_errors
		 ORDER BY question_id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending review questions: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review question: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		r                        Record
		question, mapping, issue []byte
	)
	if err := row.Scan(&r.QuestionID, &r.RunID, &r.NeedsMapping, &r.HasErrors,
		&question, &mapping, &issue, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(question, &r.Question); err != nil {
		return nil, fmt.Errorf("decode question: %w", err)
	}
	if err := json.Unmarshal(mapping, &r.Mapping); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}
	if err := json.Unmarshal(issue, &r.Issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return &r, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
