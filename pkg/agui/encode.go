package agui

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEventType marks an event whose type is outside the fixed
// protocol set. Readers should skip such events rather than abort the
// stream.
var ErrUnknownEventType = errors.New("unknown event type")

var knownTypes = map[EventType]bool{
	EventStart:       true,
	EventTextMessage: true,
	EventUIControl:   true,
	EventResult:      true,
	EventEnd:         true,
	EventError:       true,
}

// Encode serializes the event as one SSE line:
//
//	data: <compact JSON>\n\n
func Encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	buf := make([]byte, 0, len(payload)+8)
	buf = append(buf, "data: "...)
	buf = append(buf, payload...)
	buf = append(buf, "\n\n"...)
	return buf, nil
}

// Decode parses one event JSON record, as carried in the data field of
// an SSE line. Events with a type outside the protocol set return
// ErrUnknownEventType so callers can skip them.
func Decode(raw string) (Event, error) {
	raw = strings.TrimSpace(raw)

	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return Event{}, fmt.Errorf("failed to parse event: %w", err)
	}

	if !knownTypes[event.Type] {
		return event, fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}

	return event, nil
}
