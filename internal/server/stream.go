package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-qbank/internal/ingest"
)

// Stream message types.
const (
	MessageResult  = "result"
	MessageSummary = "summary"
	MessageError   = "error"
)

// StreamMessage is one frame sent on the stream endpoint.
type StreamMessage struct {
	Type     string               `json:"type"`
	Result   *ingest.Result       `json:"result,omitempty"`
	RunID    string               `json:"run_id,omitempty"`
	Summary  *ingest.Summary      `json:"summary,omitempty"`
	Failures []ingest.NodeFailure `json:"failures,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// handleStream reads one JSON array message and answers with a result
// message per question, in completion order, then a summary message.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(s.opts.MaxBodyBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_, data, err := conn.Read(ctx)
	if err != nil {
		if websocket.CloseStatus(err) == -1 {
			s.log.Warn("websocket read failed", "error", err)
		}
		return
	}

	qs, err := ingest.DecodeQuestions(data)
	if err != nil {
		s.sendError(ctx, conn, err)
		return
	}

	var writeErr error
	batch, err := s.normalizer.Stream(ctx, qs, func(res ingest.Result) {
		if writeErr != nil {
			return
		}
		if err := wsjson.Write(ctx, conn, StreamMessage{Type: MessageResult, Result: &res}); err != nil {
			writeErr = err
			cancel()
		}
	})
	if writeErr != nil {
		s.log.Warn("websocket write failed", "error", writeErr)
		return
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.sendError(ctx, conn, err)
		}
		return
	}

	if err := s.saveForReview(ctx, batch); err != nil {
		s.sendError(ctx, conn, errors.New("saving batch for review failed"))
		return
	}

	if err := wsjson.Write(ctx, conn, StreamMessage{
		Type:     MessageSummary,
		RunID:    batch.RunID,
		Summary:  &batch.Summary,
		Failures: batch.Failures,
	}); err != nil {
		s.log.Warn("websocket write failed", "error", err)
		return
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) sendError(ctx context.Context, conn *websocket.Conn, err error) {
	if werr := wsjson.Write(ctx, conn, StreamMessage{Type: MessageError, Error: err.Error()}); werr != nil {
		s.log.Warn("websocket write failed", "error", werr)
		return
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}
