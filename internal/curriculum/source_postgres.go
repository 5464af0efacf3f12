package curriculum

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 10 * time.Second

// PostgresSource reads the hierarchy from the curriculum_units,
// curriculum_topics and curriculum_subtopics tables.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a PostgreSQL-backed curriculum source.
func NewPostgresSource(pool *pgxpool.Pool) (*PostgresSource, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresSource{pool: pool}, nil
}

func (s *PostgresSource) Load(ctx context.Context) (Reference, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var ref Reference
	var err error

	ref.Units, err = queryNodes(ctx, s.pool,
		`SELECT id, name, COALESCE(code, ''), COALESCE(aliases, '{}')
		 FROM curriculum_units
		 ORDER BY sort_order, id`,
		func(row pgx.Rows) (Unit, error) {
			var u Unit
			err := row.Scan(&u.ID, &u.Name, &u.Code, &u.Aliases)
			return u, err
		})
	if err != nil {
		return Reference{}, fmt.Errorf("query units: %w", err)
	}

	ref.Topics, err = queryNodes(ctx, s.pool,
		`SELECT id, name, COALESCE(code, ''), unit_id, COALESCE(aliases, '{}')
		 FROM curriculum_topics
		 ORDER BY sort_order, id`,
		func(row pgx.Rows) (Topic, error) {
			var t Topic
			err := row.Scan(&t.ID, &t.Name, &t.Code, &t.UnitID, &t.Aliases)
			return t, err
		})
	if err != nil {
		return Reference{}, fmt.Errorf("query topics: %w", err)
	}

	ref.Subtopics, err = queryNodes(ctx, s.pool,
		`SELECT id, name, COALESCE(code, ''), topic_id, COALESCE(aliases, '{}')
		 FROM curriculum_subtopics
		 ORDER BY sort_order, id`,
		func(row pgx.Rows) (Subtopic, error) {
			var st Subtopic
			err := row.Scan(&st.ID, &st.Name, &st.Code, &st.TopicID, &st.Aliases)
			return st, err
		})
	if err != nil {
		return Reference{}, fmt.Errorf("query subtopics: %w", err)
	}

	return ref, nil
}

func queryNodes[T any](ctx context.Context, pool *pgxpool.Pool, query string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}
