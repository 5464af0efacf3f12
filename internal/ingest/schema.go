package ingest

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Accepted spellings for each raw field, in lookup order.
var (
	idKeys         = []string{"id", "question_id", "question_number", "part_id"}
	labelKeys      = []string{"label", "part_label", "part"}
	textKeys       = []string{"question_text", "question_description", "question", "text"}
	typeKeys       = []string{"type", "question_type"}
	subjectKeys    = []string{"subject"}
	marksKeys      = []string{"marks", "total_marks", "mark"}
	markSchemeKeys = []string{"mark_scheme", "marking_scheme", "marking_notes", "notes"}
	optionKeys     = []string{"options", "choices"}
	answerKeys     = []string{"correct_answers", "correct_answer", "answers", "answer"}
	unitKeys       = []string{"unit", "units", "chapter"}
	topicKeys      = []string{"topics", "topic"}
	subtopicKeys   = []string{"subtopics", "subtopic"}
	childKeys      = []string{"parts", "subparts", "sub_parts"}
)

// nodeSchema describes one raw node. Children are only checked to be arrays;
// each child is validated on its own so a bad part does not reject its
// siblings.
var nodeSchema = mustNodeSchema()

func mustNodeSchema() *gojsonschema.Schema {
	props := map[string]any{}
	set := func(keys []string, def map[string]any) {
		for _, k := range keys {
			props[k] = def
		}
	}
	scalar := map[string]any{"type": []string{"string", "number", "null"}}
	set(idKeys, scalar)
	set(labelKeys, scalar)
	set(textKeys, map[string]any{"type": []string{"string", "null"}})
	set(typeKeys, map[string]any{"type": []string{"string", "null"}})
	set(subjectKeys, map[string]any{"type": []string{"string", "null"}})
	set(marksKeys, scalar)
	set(markSchemeKeys, map[string]any{"type": []string{"string", "null"}})
	set(optionKeys, map[string]any{
		"type":  []string{"array", "null"},
		"items": map[string]any{"type": []string{"object", "string"}},
	})
	set(answerKeys, map[string]any{
		"type":  []string{"array", "string", "number", "boolean", "null"},
		"items": map[string]any{"type": []string{"string", "number", "boolean", "null"}},
	})
	names := map[string]any{
		"type":  []string{"array", "string", "null"},
		"items": map[string]any{"type": []string{"string", "null"}},
	}
	set(unitKeys, names)
	set(topicKeys, names)
	set(subtopicKeys, names)
	set(childKeys, map[string]any{"type": []string{"array", "null"}})

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(map[string]any{
		"$schema":    "http://json-schema.org/draft-04/schema#",
		"type":       "object",
		"properties": props,
	}))
	if err != nil {
		panic(fmt.Sprintf("ingest: invalid node schema: %v", err))
	}
	return schema
}

// validateNodeShape checks one raw node against nodeSchema.
func validateNodeShape(data []byte) error {
	res, err := nodeSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("malformed node: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return fmt.Errorf("malformed node: %s", strings.Join(msgs, "; "))
}
