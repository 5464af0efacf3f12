package database_test

import (
	"testing"

	"github.com/p-n-ai/pai-qbank/internal/platform/database/databasetest"
)

func TestMigrate_Idempotent(t *testing.T) {
	db := databasetest.New(t)

	if err := db.Migrate(t.Context()); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	var tables int
	err := db.Pool.QueryRow(t.Context(),
		`SELECT count(*) FROM information_schema.tables
		 WHERE table_schema = 'public'
		   AND table_name IN ('curriculum_units', 'curriculum_topics', 'curriculum_subtopics', 'review_questions', 'ingest_events')`,
	).Scan(&tables)
	if err != nil {
		t.Fatalf("counting tables: %v", err)
	}
	if tables != 5 {
		t.Errorf("tables = %d, want 5", tables)
	}
	if err := db.HealthCheck(t.Context()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
