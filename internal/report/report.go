// Package report renders a normalized batch as an xlsx workbook for
// reviewers. Sheets: Questions, Mappings, Issues and Summary.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-qbank/internal/ingest"
)

// Sheet names.
const (
	SheetQuestions = "Questions"
	SheetMappings  = "Mappings"
	SheetIssues    = "Issues"
	SheetSummary   = "Summary"
)

var (
	questionHeaders = []string{"id", "level", "path", "text", "marks", "type", "answer_format",
		"requirement", "confidence", "logic", "correct_answers"}
	mappingHeaders = []string{"question_id", "chapter_id", "topic_ids", "subtopic_ids", "unmapped"}
	issueHeaders   = []string{"question_id", "kind", "severity", "path", "message"}
)

// Write renders b as an xlsx workbook to w.
func Write(w io.Writer, b *ingest.Batch) error {
	f, err := Build(b)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write excel: %w", err)
	}
	return nil
}

// Build renders b into a new workbook. The caller closes it.
func Build(b *ingest.Batch) (*excelize.File, error) {
	if b == nil {
		return nil, fmt.Errorf("batch is nil")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetQuestions); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetMappings, SheetIssues, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create style: %w", err)
	}

	writeSheet(f, SheetQuestions, bold, questionHeaders, questionRows(b))
	writeSheet(f, SheetMappings, bold, mappingHeaders, mappingRows(b))
	writeSheet(f, SheetIssues, bold, issueHeaders, issueRows(b))
	writeSheet(f, SheetSummary, bold, []string{"metric", "count"}, summaryRows(b.Summary))

	_ = f.SetColWidth(SheetQuestions, "D", "D", 60)
	_ = f.SetColWidth(SheetIssues, "E", "E", 60)
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, headers []string, rows [][]any) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for r, values := range rows {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
}

// questionRows lists every node of every question, parts after their parent.
func questionRows(b *ingest.Batch) [][]any {
	rows := [][]any{}
	for i := range b.Questions {
		b.Questions[i].Walk(func(n *ingest.ProcessedNode) {
			requirement, confidence := "", ""
			if n.Requirement != nil {
				requirement = string(n.Requirement.Code)
				confidence = string(n.Requirement.Confidence)
			}
			answers := make([]string, 0, len(n.CorrectAnswers))
			for _, a := range n.CorrectAnswers {
				answers = append(answers, a.Text)
			}
			rows = append(rows, []any{
				n.ID, string(n.Level), n.Path, n.Text, n.Marks, n.Type, n.AnswerFormat,
				requirement, confidence, string(n.Logic.Type), strings.Join(answers, " | "),
			})
		})
	}
	return rows
}

func mappingRows(b *ingest.Batch) [][]any {
	rows := [][]any{}
	for _, q := range b.Questions {
		m, ok := b.Mappings[q.ID]
		if !ok {
			continue
		}
		unmapped := make([]string, 0, len(m.Unmapped))
		for _, u := range m.Unmapped {
			unmapped = append(unmapped, fmt.Sprintf("%s:%s (%s)", u.Field, u.Candidate, u.Reason))
		}
		rows = append(rows, []any{
			q.ID, m.ChapterID, strings.Join(m.TopicIDs, ", "), strings.Join(m.SubtopicIDs, ", "),
			strings.Join(unmapped, "; "),
		})
	}
	return rows
}

// issueRows lists validation issues per question, then node failures.
func issueRows(b *ingest.Batch) [][]any {
	rows := [][]any{}
	for _, q := range b.Questions {
		for _, is := range b.ValidationIssues[q.ID] {
			rows = append(rows, []any{q.ID, string(is.Kind), string(is.Severity), is.Path, is.Message})
		}
	}
	for _, nf := range b.Failures {
		rows = append(rows, []any{nf.QuestionID, "node_failure", "error", nf.Path, nf.Message})
	}
	return rows
}

func summaryRows(s ingest.Summary) [][]any {
	rows := [][]any{
		{"total", s.Total},
		{"processed", s.Processed},
		{"failed", s.Failed},
		{"with_parts", s.WithParts},
		{"with_subparts", s.WithSubparts},
		{"with_options", s.WithOptions},
		{"needs_mapping", s.NeedsMapping},
		{"with_complex_logic", s.WithComplexLogic},
		{"with_errors", s.WithErrors},
	}
	rows = append(rows, countRows("type", s.ByType)...)
	rows = append(rows, countRows("format", s.ByFormat)...)
	rows = append(rows, countRows("requirement", s.ByRequirement)...)
	return rows
}

func countRows(prefix string, counts map[string]int) [][]any {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]any, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []any{prefix + ":" + k, counts[k]})
	}
	return rows
}
