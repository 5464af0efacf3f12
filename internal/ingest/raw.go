package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/p-n-ai/pai-qbank/internal/answer"
	"github.com/p-n-ai/pai-qbank/internal/curriculum"
)

// Level says where a node sits in the question tree.
type Level string

const (
	LevelQuestion Level = "question"
	LevelPart     Level = "part"
	LevelSubpart  Level = "subpart"
)

func (l Level) child() Level {
	if l == LevelQuestion {
		return LevelPart
	}
	return LevelSubpart
}

// RawNode is one question, part or subpart after boundary validation. All
// loosely typed input has been coerced; a node whose shape could not be
// read carries Err and nothing else.
type RawNode struct {
	Level      Level            `json:"level"`
	Path       string           `json:"path"`
	ID         string           `json:"id,omitempty"`
	Label      string           `json:"label,omitempty"`
	Text       string           `json:"text,omitempty"`
	Type       string           `json:"type,omitempty"`
	Subject    string           `json:"subject,omitempty"`
	Marks      int              `json:"marks,omitempty"`
	MarkScheme string           `json:"mark_scheme,omitempty"`
	Options    []answer.Option  `json:"options,omitempty"`
	Answers    []string         `json:"answers,omitempty"`
	Names      curriculum.Names `json:"names"`
	Parts      []RawNode        `json:"parts,omitempty"`
	// Warnings are non-fatal coercion problems, e.g. unreadable marks.
	Warnings []answer.Issue `json:"warnings,omitempty"`
	Err      error          `json:"-"`
}

// DecodeQuestions reads a JSON array of raw questions. It fails only when
// the input is not a non-empty array; malformed elements are returned with
// Err set.
func DecodeQuestions(data []byte) ([]RawNode, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return nil, &BatchError{Err: ErrNotArray}
	}
	if len(items) == 0 {
		return nil, &BatchError{Err: ErrEmptyBatch}
	}

	nodes := make([]RawNode, len(items))
	for i, item := range items {
		nodes[i] = decodeNode(item, LevelQuestion, fmt.Sprintf("[%d]", i))
	}
	return nodes, nil
}

func decodeNode(data json.RawMessage, level Level, path string) RawNode {
	node := RawNode{Level: level, Path: path}
	if err := validateNodeShape(data); err != nil {
		node.Err = err
		return node
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		node.Err = fmt.Errorf("malformed node: %w", err)
		return node
	}

	node.ID = scalarString(lookup(fields, idKeys))
	node.Label = scalarString(lookup(fields, labelKeys))
	node.Text = strings.TrimSpace(scalarString(lookup(fields, textKeys)))
	node.Type = strings.ToLower(strings.TrimSpace(scalarString(lookup(fields, typeKeys))))
	node.Subject = strings.TrimSpace(scalarString(lookup(fields, subjectKeys)))
	node.MarkScheme = strings.TrimSpace(scalarString(lookup(fields, markSchemeKeys)))
	node.Answers = stringList(lookup(fields, answerKeys))
	node.Names = curriculum.Names{
		Units:     stringList(lookup(fields, unitKeys)),
		Topics:    stringList(lookup(fields, topicKeys)),
		Subtopics: stringList(lookup(fields, subtopicKeys)),
	}

	if raw := lookup(fields, marksKeys); raw != nil {
		marks, err := parseMarks(raw)
		if err != nil {
			node.Warnings = append(node.Warnings, answer.Issue{
				Kind:     answer.KindParseWarning,
				Severity: answer.SeverityWarning,
				Path:     path + ".marks",
				Message:  err.Error(),
			})
		}
		node.Marks = marks
	}

	node.Options = decodeOptions(lookup(fields, optionKeys), node.Answers)

	if raw := lookup(fields, childKeys); raw != nil {
		var children []json.RawMessage
		if err := json.Unmarshal(raw, &children); err == nil {
			if level == LevelSubpart && len(children) > 0 {
				node.Warnings = append(node.Warnings, answer.Issue{
					Kind:     answer.KindParseWarning,
					Severity: answer.SeverityWarning,
					Path:     path,
					Message:  "nesting below subpart level ignored",
				})
			} else {
				for j, c := range children {
					node.Parts = append(node.Parts, decodeNode(c, level.child(), fmt.Sprintf("%s.parts[%d]", path, j)))
				}
			}
		}
	}

	return node
}

// lookup returns the first present, non-null field among keys.
func lookup(fields map[string]json.RawMessage, keys []string) json.RawMessage {
	for _, k := range keys {
		if v, ok := fields[k]; ok && !isNull(v) {
			return v
		}
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || string(bytes.TrimSpace(v)) == "null"
}

func decodeAny(raw json.RawMessage) any {
	if raw == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func scalarString(raw json.RawMessage) string {
	return toString(decodeAny(raw))
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// stringList accepts a single string or an array of scalars.
func stringList(raw json.RawMessage) []string {
	switch v := decodeAny(raw).(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range v {
			if s := strings.TrimSpace(toString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := strings.TrimSpace(toString(v)); s != "" {
			return []string{s}
		}
		return nil
	}
}

var firstInt = regexp.MustCompile(`\d+`)

func parseMarks(raw json.RawMessage) (int, error) {
	switch v := decodeAny(raw).(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil || f < 0 {
			return 0, fmt.Errorf("marks %s is not a non-negative number", v)
		}
		return int(math.Round(f)), nil
	case string:
		if m := firstInt.FindString(v); m != "" {
			n, _ := strconv.Atoi(m)
			return n, nil
		}
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		return 0, fmt.Errorf("marks %q is not a number", v)
	default:
		return 0, fmt.Errorf("marks has unsupported type %T", v)
	}
}

var optionPrefix = regexp.MustCompile(`^\(?([A-Ha-h])[.):]\s+(.+)$`)

// decodeOptions reads objects ({label,text,is_correct}) or plain strings.
// Options are marked correct when an answer names their label or text.
func decodeOptions(raw json.RawMessage, answers []string) []answer.Option {
	items, ok := decodeAny(raw).([]any)
	if !ok {
		return nil
	}

	opts := make([]answer.Option, 0, len(items))
	for i, item := range items {
		opt := answer.Option{Label: string(rune('A' + i%26))}
		switch v := item.(type) {
		case string:
			opt.Text = strings.TrimSpace(v)
			if m := optionPrefix.FindStringSubmatch(opt.Text); m != nil {
				opt.Label, opt.Text = strings.ToUpper(m[1]), m[2]
			}
		case map[string]any:
			for _, k := range []string{"label", "letter", "key"} {
				if s := strings.TrimSpace(toString(v[k])); s != "" {
					opt.Label = s
					break
				}
			}
			for _, k := range []string{"text", "option", "value"} {
				if s := strings.TrimSpace(toString(v[k])); s != "" {
					opt.Text = s
					break
				}
			}
			for _, k := range []string{"is_correct", "correct", "isCorrect"} {
				if b, ok := v[k].(bool); ok {
					opt.IsCorrect = b
					break
				}
			}
		}
		opts = append(opts, opt)
	}

	for i := range opts {
		if opts[i].IsCorrect {
			continue
		}
		for _, a := range answers {
			if strings.EqualFold(a, opts[i].Label) || (opts[i].Text != "" && strings.EqualFold(a, opts[i].Text)) {
				opts[i].IsCorrect = true
				break
			}
		}
	}
	return opts
}
