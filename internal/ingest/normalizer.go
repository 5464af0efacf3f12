// Package ingest turns raw extracted exam questions into canonical,
// curriculum-mapped question records.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/p-n-ai/pai-qbank/internal/answer"
	"github.com/p-n-ai/pai-qbank/internal/curriculum"
	"github.com/p-n-ai/pai-qbank/internal/diagnostics"
)

// Options configures a Normalizer. The zero value is usable.
type Options struct {
	// Validator checks each alternative. Nil selects
	// answer.DefaultStructureValidator.
	Validator answer.StructureValidator
	// Delimiter separates alternatives; empty means "/".
	Delimiter string
	// Subject selects the structure rules when a question names none.
	Subject string
	// Workers bounds concurrent question processing. Zero or less uses
	// GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
	Events  diagnostics.EventLogger
}

// Normalizer runs the answer pipeline and curriculum mapping over question
// batches. It is safe for concurrent use.
type Normalizer struct {
	matcher *curriculum.Matcher
	opts    Options
}

// New creates a Normalizer. A nil matcher skips curriculum mapping.
func New(matcher *curriculum.Matcher, opts Options) *Normalizer {
	if opts.Validator == nil {
		opts.Validator = answer.DefaultStructureValidator{}
	}
	if opts.Delimiter == "" {
		opts.Delimiter = answer.DefaultDelimiter
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Events == nil {
		opts.Events = diagnostics.NopEventLogger{}
	}
	return &Normalizer{matcher: matcher, opts: opts}
}

// Normalize decodes a JSON array of raw questions and processes it. Only a
// *BatchError or context cancellation is returned as an error.
func (n *Normalizer) Normalize(ctx context.Context, data []byte) (*Batch, error) {
	qs, err := DecodeQuestions(data)
	if err != nil {
		return nil, err
	}
	return n.Stream(ctx, qs, nil)
}

// NormalizeQuestions processes already decoded questions.
func (n *Normalizer) NormalizeQuestions(ctx context.Context, qs []RawNode) (*Batch, error) {
	return n.Stream(ctx, qs, nil)
}

// Stream processes qs concurrently and calls fn, serialized, as each
// question completes. The returned Batch keeps input order regardless of
// completion order.
func (n *Normalizer) Stream(ctx context.Context, qs []RawNode, fn func(Result)) (*Batch, error) {
	if len(qs) == 0 {
		return nil, &BatchError{Err: ErrEmptyBatch}
	}

	runID := uuid.NewString()
	log := n.opts.Logger.With("run_id", runID)
	start := time.Now()

	results := make([]Result, len(qs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.opts.Workers)
	for i := range qs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = n.processQuestion(qs[i], i)
			if fn != nil {
				mu.Lock()
				fn(results[i])
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := n.merge(runID, results)
	batch.Summary = Summarize(batch, len(qs))

	for _, f := range batch.Failures {
		n.emit(log, diagnostics.Event{RunID: runID, QuestionID: f.QuestionID, EventType: diagnostics.EventNodeFailed,
			Data: map[string]any{"path": f.Path, "level": string(f.Level), "error": f.Message}})
	}
	for _, q := range batch.Questions {
		if m := batch.Mappings[q.ID]; m.NeedsManualMapping() {
			n.emit(log, diagnostics.Event{RunID: runID, QuestionID: q.ID, EventType: diagnostics.EventMappingUnresolved,
				Data: map[string]any{"unmapped": len(m.Unmapped)}})
		}
	}
	n.emit(log, diagnostics.Event{RunID: runID, EventType: diagnostics.EventBatchCompleted, Data: map[string]any{
		"total":     batch.Summary.Total,
		"processed": batch.Summary.Processed,
		"failed":    batch.Summary.Failed,
	}})

	log.Info("batch normalized",
		"total", batch.Summary.Total,
		"processed", batch.Summary.Processed,
		"failures", len(batch.Failures),
		"needs_mapping", batch.Summary.NeedsMapping,
		"duration", time.Since(start),
	)
	return batch, nil
}

func (n *Normalizer) emit(log *slog.Logger, e diagnostics.Event) {
	if err := n.opts.Events.LogEvent(e); err != nil {
		log.Warn("failed to log diagnostics event", "type", e.EventType, "error", err)
	}
}

// merge assembles results in input order. Duplicate question IDs are
// suffixed with the first free -N so map keys stay unique, including
// against IDs that already carry such a suffix.
func (n *Normalizer) merge(runID string, results []Result) *Batch {
	b := newBatch(runID)
	used := make(map[string]bool, len(results))
	for _, r := range results {
		b.Failures = append(b.Failures, r.Failures...)
		if r.Question == nil {
			continue
		}
		q := *r.Question
		issues := r.Issues
		if used[q.ID] {
			dup := q.ID
			for c := 2; used[q.ID]; c++ {
				q.ID = fmt.Sprintf("%s-%d", dup, c)
			}
			issues = append(issues, answer.Issue{
				Kind:     answer.KindParseWarning,
				Severity: answer.SeverityWarning,
				Path:     q.Path,
				Message:  fmt.Sprintf("duplicate question id %q renamed to %q", dup, q.ID),
			})
		}
		used[q.ID] = true
		b.Questions = append(b.Questions, q)
		b.ValidationIssues[q.ID] = issues
		if r.Mapping != nil {
			m := *r.Mapping
			m.QuestionID = q.ID
			b.Mappings[q.ID] = m
		}
	}
	return b
}

// inherited is the context a node passes down to its parts.
type inherited struct {
	questionID string
	subject    string
	qtype      string
}

func (n *Normalizer) processQuestion(raw RawNode, index int) Result {
	res := Result{Index: index, Issues: []answer.Issue{}}

	id := strings.TrimSpace(raw.ID)
	if id == "" && raw.Err == nil {
		id = fingerprint(raw.Text + "\x00" + strings.Join(raw.Answers, "\x00"))
	}

	node, failures, ok := n.processNode(raw, id, inherited{questionID: id, subject: n.opts.Subject})
	res.Failures = failures
	if !ok {
		return res
	}
	res.Question = &node
	res.Issues = node.Issues()

	if n.matcher != nil {
		m := n.matcher.Resolve(node.ID, collectNames(raw))
		res.Mapping = &m
	}
	return res
}

// collectNames merges the classification names declared anywhere in the
// question tree. Duplicates are dropped later by the matcher.
func collectNames(raw RawNode) curriculum.Names {
	names := curriculum.Names{
		Units:     slices.Clone(raw.Names.Units),
		Topics:    slices.Clone(raw.Names.Topics),
		Subtopics: slices.Clone(raw.Names.Subtopics),
	}
	for _, p := range raw.Parts {
		if p.Err != nil {
			continue
		}
		pn := collectNames(p)
		names.Units = append(names.Units, pn.Units...)
		names.Topics = append(names.Topics, pn.Topics...)
		names.Subtopics = append(names.Subtopics, pn.Subtopics...)
	}
	return names
}

// processNode converts one node and its children. A failure, including a
// panic, drops only that node.
func (n *Normalizer) processNode(raw RawNode, id string, inh inherited) (node ProcessedNode, failures []NodeFailure, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			failures = append(failures, newNodeFailure(inh.questionID, raw.Path, raw.Level, fmt.Errorf("panic: %v", r)))
			ok = false
		}
	}()

	if raw.Err != nil {
		return ProcessedNode{}, []NodeFailure{newNodeFailure(inh.questionID, raw.Path, raw.Level, raw.Err)}, false
	}

	if raw.Subject != "" {
		inh.subject = raw.Subject
	}
	if raw.Type != "" {
		inh.qtype = raw.Type
	}

	node = ProcessedNode{
		ID:               id,
		Level:            raw.Level,
		Path:             raw.Path,
		Text:             raw.Text,
		Marks:            raw.Marks,
		Type:             inh.qtype,
		Subject:          inh.subject,
		Options:          raw.Options,
		CorrectAnswers:   []answer.Alternative{},
		Logic:            answer.Logic{Type: answer.LogicSimple},
		ValidationIssues: append([]answer.Issue{}, raw.Warnings...),
	}

	if len(raw.Parts) == 0 || len(raw.Answers) > 0 || len(raw.Options) > 0 {
		n.processAnswer(&node, raw)
	}

	for j, p := range raw.Parts {
		childID := p.ID
		if childID == "" {
			childID = id + "(" + childLabel(p, raw.Level.child(), j) + ")"
		}
		child, fs, childOK := n.processNode(p, childID, inh)
		failures = append(failures, fs...)
		if childOK {
			node.Parts = append(node.Parts, child)
		}
	}
	return node, failures, true
}

func (n *Normalizer) processAnswer(node *ProcessedNode, raw RawNode) {
	answers := raw.Answers
	if len(answers) == 0 {
		for _, o := range raw.Options {
			if o.IsCorrect {
				answers = append(answers, o.Label)
			}
		}
	}

	alts, totalAlts, issues := buildAlternatives(answers, n.opts.Delimiter, raw.Marks, raw.Path)
	if alts != nil {
		node.CorrectAnswers = alts
	}
	node.ValidationIssues = append(node.ValidationIssues, issues...)

	stripped := make([]string, 0, len(answers))
	for _, a := range answers {
		if t, _ := stripQualifiers(a); t != "" {
			stripped = append(stripped, t)
		}
	}

	ops := answer.ParseOperators(strings.Join(stripped, " "))
	node.Logic = ops.Logic
	for _, msg := range ops.ValidationErrors {
		node.ValidationIssues = append(node.ValidationIssues, answer.Issue{
			Kind:     answer.KindParseWarning,
			Severity: answer.SeverityWarning,
			Path:     raw.Path + ".correct_answers",
			Message:  msg,
		})
	}

	rules := answer.RulesForSubject(node.Subject)
	for i, alt := range alts {
		sr := n.opts.Validator.Validate(alt, rules)
		for _, is := range sr.Issues {
			if is.Path == "" {
				is.Path = fmt.Sprintf("%s.correct_answers[%d]", raw.Path, i)
			}
			node.ValidationIssues = append(node.ValidationIssues, is)
		}
	}

	node.AnswerFormat = answer.DetectFormat(answer.FormatInput{
		Type:       node.Type,
		Text:       raw.Text,
		HasOptions: len(raw.Options) > 0,
		Answers:    stripped,
	})

	req := answer.DeriveRequirement(answer.RequirementInput{
		QuestionType:      node.Type,
		AnswerFormat:      node.AnswerFormat,
		Marks:             raw.Marks,
		CorrectAnswers:    alts,
		TotalAlternatives: totalAlts,
		Options:           raw.Options,
		Text:              strings.Join(nonBlank(raw.Text, raw.MarkScheme, strings.Join(answers, " ")), " "),
	})
	node.Requirement = &req
}

var romanNumerals = []string{"i", "ii", "iii", "iv", "v", "vi", "vii", "viii", "ix", "x", "xi", "xii"}

// childLabel returns the label a part is known by: its own label, else a
// letter for parts and a roman numeral for subparts.
func childLabel(p RawNode, level Level, index int) string {
	if l := strings.Trim(strings.TrimSpace(p.Label), "()."); l != "" {
		return l
	}
	if level == LevelSubpart {
		if index < len(romanNumerals) {
			return romanNumerals[index]
		}
		return fmt.Sprintf("%d", index+1)
	}
	if index < 26 {
		return string(rune('a' + index))
	}
	return fmt.Sprintf("%d", index+1)
}

func nonBlank(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
