package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrNotArray is reported when the input is not a JSON array.
	ErrNotArray = errors.New("input is not a JSON array")
	// ErrEmptyBatch is reported when the input array has no elements.
	ErrEmptyBatch = errors.New("input array is empty")
)

// BatchError is the only fatal normalization error. It wraps ErrNotArray or
// ErrEmptyBatch.
type BatchError struct {
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch rejected: %v", e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// NodeFailure records a question, part or subpart that could not be
// processed. The node is skipped and the batch continues.
type NodeFailure struct {
	QuestionID string `json:"question_id,omitempty"`
	Path       string `json:"path"`
	Level      Level  `json:"level"`
	Message    string `json:"error"`
	Err        error  `json:"-"`
}

func newNodeFailure(questionID, path string, level Level, err error) NodeFailure {
	return NodeFailure{QuestionID: questionID, Path: path, Level: level, Message: err.Error(), Err: err}
}

func (f NodeFailure) Error() string {
	return fmt.Sprintf("%s %s: %s", f.Level, f.Path, f.Message)
}

func (f NodeFailure) Unwrap() error { return f.Err }
