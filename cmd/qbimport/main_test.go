package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-qbank/internal/ingest"
)

func setupTestFiles(t *testing.T) (curriculumDir, questionsFile string) {
	t.Helper()
	t.Setenv("INGEST_DATABASE_URL", "")
	t.Setenv("INGEST_CACHE_URL", "")
	t.Setenv("INGEST_CURRICULUM_SOURCE", "")

	curriculumDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(curriculumDir, "waves.yaml"), []byte(`
units:
  - id: U3
    name: Waves
topics:
  - id: T7
    name: Sound
    unit_id: U3
`), 0o644))

	questionsFile = filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(questionsFile, []byte(`[
		{"id": "W1", "question_text": "What type of wave is sound?", "marks": 1,
		 "correct_answers": ["longitudinal"], "topic": "Sound"},
		{"id": "W2", "question_text": "Name two echo uses.", "marks": 2,
		 "correct_answers": ["sonar", "ultrasound scanning"], "topic": "Light"}
	]`), 0o644))
	return curriculumDir, questionsFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "qbimport", cmd.Use)
	assert.True(t, cmd.HasSubCommands())
	flag := cmd.PersistentFlags().Lookup("curriculum")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestNormalizeCommand(t *testing.T) {
	dir, file := setupTestFiles(t)

	out, err := execute(t, "normalize", "--curriculum", dir, file)
	require.NoError(t, err)

	var batch ingest.Batch
	require.NoError(t, json.Unmarshal([]byte(out), &batch))
	assert.Len(t, batch.Questions, 2)
	assert.Equal(t, "U3", batch.Mappings["W1"].ChapterID)
	assert.True(t, batch.Mappings["W2"].NeedsManualMapping())
	assert.Equal(t, 1, batch.Summary.NeedsMapping)
}

func TestNormalizeCommand_Errors(t *testing.T) {
	dir, file := setupTestFiles(t)
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"id": "not an array"}`), 0o644))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing file argument", []string{"normalize", "--curriculum", dir}, "accepts 1 arg"},
		{"unreadable file", []string{"normalize", "--curriculum", dir, filepath.Join(dir, "nope.json")}, "reading"},
		{"not an array", []string{"normalize", "--curriculum", dir, bad}, "normalizing"},
		{"save without database", []string{"normalize", "--save", "--curriculum", dir, file}, "INGEST_DATABASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReportCommand(t *testing.T) {
	dir, file := setupTestFiles(t)
	output := filepath.Join(t.TempDir(), "report.xlsx")

	out, err := execute(t, "report", "--curriculum", dir, "-o", output, file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "wrote "+output))

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Questions")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestReportCommand_RequiresOutput(t *testing.T) {
	dir, file := setupTestFiles(t)

	_, err := execute(t, "report", "--curriculum", dir, file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")
}
