package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// SSESink writes each event as a server-sent "data:" frame and flushes it.
type SSESink struct {
	w       io.Writer
	flusher http.Flusher
}

// NewSSESink wraps w. Flushing happens when w implements http.Flusher.
func NewSSESink(w io.Writer) *SSESink {
	f, _ := w.(http.Flusher)
	return &SSESink{w: w, flusher: f}
}

// PrepareSSE sets the event-stream response headers.
func PrepareSSE(h http.Header) {
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

func (s *SSESink) Send(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

func (s *SSESink) Close() error {
	return nil
}

// ReadSSE parses "data:" frames from r and decodes each as an Event. It stops
// at EOF, on a done event, or when onEvent returns an error.
func ReadSSE(r io.Reader, onEvent func(Event) error) error {
	reader := bufio.NewReader(r)
	var dataLines []string

	flush := func() (bool, error) {
		if len(dataLines) == 0 {
			return false, nil
		}
		payload := strings.Join(dataLines, "\n")
		dataLines = nil

		var ev Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return false, fmt.Errorf("invalid event payload: %w", err)
		}
		if err := onEvent(ev); err != nil {
			return false, err
		}
		return ev.Type == "done", nil
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			done, fErr := flush()
			if fErr != nil || done {
				return fErr
			}
		case strings.HasPrefix(line, ":"):
			// comment line
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimSpace(line[len("data:"):]))
		}

		if err == io.EOF {
			_, fErr := flush()
			return fErr
		}
	}
}
