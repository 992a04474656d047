package provider

import (
	"bufio"
	"io"
	"strings"
)

// maxSSELine bounds one SSE line. Completion chunks can exceed the default
// bufio.Scanner limit.
const maxSSELine = 1 << 20

// SSEEvent represents a single Server-Sent Event.
type SSEEvent struct {
	Event string
	Data  string
}

// SSEScanner reads SSE events from an io.Reader one at a time. Usage follows
// the bufio.Scanner pattern:
//
//	s := NewSSEScanner(r)
//	for s.Next() {
//	    evt := s.Event()
//	}
//	if err := s.Err(); err != nil { ... }
type SSEScanner struct {
	scanner *bufio.Scanner
	event   SSEEvent
	err     error
	done    bool
}

// NewSSEScanner creates a streaming SSE parser over r.
func NewSSEScanner(r io.Reader) *SSEScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxSSELine)
	return &SSEScanner{scanner: s}
}

// Next advances to the next event. It returns false at the end of the
// stream or on error.
func (s *SSEScanner) Next() bool {
	if s.done {
		return false
	}

	var current SSEEvent
	hasData := false

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if hasData || current.Event != "" {
				s.event = current
				return true
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			current.Event = value
		case "data":
			if hasData {
				current.Data += "\n" + value
			} else {
				current.Data = value
				hasData = true
			}
		}
	}

	s.err = s.scanner.Err()
	s.done = true

	// Stream ended without a trailing blank line.
	if hasData || current.Event != "" {
		s.event = current
		return true
	}
	return false
}

// Event returns the most recent event read by Next.
func (s *SSEScanner) Event() SSEEvent {
	return s.event
}

// Err returns the first non-EOF error encountered.
func (s *SSEScanner) Err() error {
	return s.err
}
