package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-screener/internal/pipeline"
)

// SSE event names sent by /analyze/stream.
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventError    = "error"
	EventComplete = "complete"
)

// errStreamingUnsupported is returned when the ResponseWriter cannot flush.
var errStreamingUnsupported = errors.New("streaming not supported")

// SSEWriter writes Server-Sent Events with increasing ids. After the first failed
// write, usually a disconnected client, further events are dropped.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
	err     error
}

// NewSSEWriter sends the event-stream headers and returns a writer for the body.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends data as JSON under the given event name.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	if s.err != nil {
		return s.err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		s.err = err
		return err
	}
	s.flusher.Flush()
	return nil
}

// Err returns the write error that ended the stream, if any.
func (s *SSEWriter) Err() error {
	return s.err
}

// WriteProgress forwards one pipeline progress event.
func (s *SSEWriter) WriteProgress(event pipeline.ProgressEvent) {
	_ = s.WriteEvent(EventProgress, event)
}

// WriteError sends an error event with the status the request would have had.
func (s *SSEWriter) WriteError(status int, message string) {
	_ = s.WriteEvent(EventError, map[string]any{"error": message, "status": status})
}

// WriteComplete ends the stream for a run.
func (s *SSEWriter) WriteComplete(runID, status string) {
	_ = s.WriteEvent(EventComplete, map[string]string{"run_id": runID, "status": status})
}
