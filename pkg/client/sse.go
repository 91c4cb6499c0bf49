package client

import (
	"bufio"
	"io"
	"strings"
)

// SSEScanner splits a streaming response body into Server-Sent Events.
// Events are delimited by blank lines; "data:" lines carry the payload.
// Reads are buffered, so a chunk boundary that splits an event mid-line
// never loses data: the partial line stays in the buffer until the rest
// arrives.
type SSEScanner struct {
	reader  *bufio.Reader
	current string
	err     error
}

// NewSSEScanner creates a scanner over the response body.
func NewSSEScanner(body io.Reader) *SSEScanner {
	return &SSEScanner{
		reader: bufio.NewReaderSize(body, 64*1024),
	}
}

// Next advances to the next event. It returns false at end of stream or
// on error; call Err to tell the two apart.
func (s *SSEScanner) Next() bool {
	s.current = ""

	var dataLines []string
	hasData := false

	for {
		line, err := s.reader.ReadString('\n')

		if err != nil && line == "" {
			if err == io.EOF {
				// A final event without its trailing blank line is
				// still an event.
				if hasData {
					s.current = strings.Join(dataLines, "\n")
					s.err = io.EOF
					return true
				}
				return false
			}
			s.err = err
			return false
		}

		line = strings.TrimRight(line, "\r\n")

		// Blank line ends the event.
		if line == "" {
			if hasData {
				s.current = strings.Join(dataLines, "\n")
				return true
			}
			continue
		}

		// Comment lines per the SSE spec.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if field == "data" {
			dataLines = append(dataLines, strings.TrimPrefix(value, " "))
			hasData = true
		}
		// Other fields (event, id, retry) are not used by this
		// protocol and are ignored.
	}
}

// Data returns the payload of the most recent event. Valid only after
// Next returned true.
func (s *SSEScanner) Data() string {
	return s.current
}

// Err returns the first error hit while scanning, or nil after a clean
// end of stream.
func (s *SSEScanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}
