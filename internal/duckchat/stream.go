package duckchat

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// chatEvent is one decoded frame of the backend's event stream. Regular
// frames carry a message fragment; failure frames carry an error action.
type chatEvent struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Status  int    `json:"status"`
	Type    string `json:"type"`
}

// Stream is a lazy, finite, non-restartable sequence of reply tokens read
// from the backend's event-stream response body.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func newStream(body io.ReadCloser) *Stream {
	return &Stream{body: body, scanner: bufio.NewScanner(body)}
}

// Recv returns the next reply token. It returns io.EOF after the last token
// and wraps ErrUpstream when the backend fails mid-stream.
func (s *Stream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var event chatEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			// Keep-alive and other non-JSON noise between frames.
			continue
		}
		if event.Action == "error" {
			s.done = true
			return "", fmt.Errorf("%w: backend reported %s (status %d)",
				ErrUpstream, event.Type, event.Status)
		}
		if event.Message == "" {
			continue
		}
		return event.Message, nil
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: reading stream: %v", ErrUpstream, err)
	}
	return "", io.EOF
}

// Close releases the underlying response body. Safe to call at any point;
// closing early abandons the rest of the sequence.
func (s *Stream) Close() error {
	return s.body.Close()
}
