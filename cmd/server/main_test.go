package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/p-n-ai/pai-qbank/internal/app"
	"github.com/p-n-ai/pai-qbank/internal/platform/config"
)

func testApp(t *testing.T) *app.App {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "units.yaml"), []byte("units:\n  - id: U1\n    name: Mechanics\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		Server:     config.ServerConfig{MaxBodyBytes: 1 << 20},
		Curriculum: config.CurriculumConfig{Source: config.SourceFile, Path: dir, CacheTTL: time.Minute},
		Ingest:     config.IngestConfig{Delimiter: "/"},
	}
	a, err := app.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestHandlerEndpoints(t *testing.T) {
	h := newHandler(testApp(t))

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			method:     http.MethodGet,
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz returns 200",
			method:     http.MethodGet,
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name:       "normalize rejects an empty batch",
			method:     http.MethodPost,
			path:       "/v1/questions/normalize",
			body:       `[]`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "normalize accepts a question",
			method:     http.MethodPost,
			path:       "/v1/questions/normalize",
			body:       `[{"id": "Q1", "question_text": "Unit of force?", "correct_answers": ["newton"]}]`,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && strings.TrimSpace(rec.Body.String()) != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
