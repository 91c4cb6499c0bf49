package agui

import "time"

// EventType identifies the kind of a protocol event.
type EventType string

const (
	EventStart       EventType = "start"
	EventTextMessage EventType = "text_message"
	EventUIControl   EventType = "ui_control"
	EventResult      EventType = "result"
	EventEnd         EventType = "end"
	EventError       EventType = "error"
)

// UI control actions carried in the data of an EventUIControl event.
const (
	ActionChangeTheme = "change_theme"
	ActionAddButton   = "add_button"
)

// Event is one discrete server-to-client protocol message. Events are
// created once, serialized once and never mutated.
type Event struct {
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent creates an event of the given type, stamped with the current
// UTC time.
func NewEvent(eventType EventType, data map[string]any) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// NewStartEvent signals the beginning of a stream.
func NewStartEvent(agent, model string) Event {
	return NewEvent(EventStart, map[string]any{
		"agent": agent,
		"model": model,
	})
}

// NewTextMessageEvent carries one incremental fragment of assistant output.
func NewTextMessageEvent(content string) Event {
	return NewEvent(EventTextMessage, map[string]any{
		"content": content,
		"delta":   true,
		"role":    "assistant",
	})
}

// NewThemeChangeEvent instructs the client to replace its theme color.
func NewThemeChangeEvent(color string) Event {
	return NewEvent(EventUIControl, map[string]any{
		"action": ActionChangeTheme,
		"color":  color,
	})
}

// NewAddButtonEvent instructs the client to append a button with the
// given label.
func NewAddButtonEvent(label string) Event {
	return NewEvent(EventUIControl, map[string]any{
		"action": ActionAddButton,
		"label":  label,
	})
}

// NewResultEvent carries the full accumulated response text.
func NewResultEvent(content, model string) Event {
	return NewEvent(EventResult, map[string]any{
		"content": content,
		"role":    "assistant",
		"model":   model,
	})
}

// NewEndEvent signals normal stream completion.
func NewEndEvent(messageCount int) Event {
	return NewEvent(EventEnd, map[string]any{
		"status":        "completed",
		"message_count": messageCount,
	})
}

// NewErrorEvent reports a terminal stream failure. The error event
// forecloses the stream: no result or end event follows it.
func NewErrorEvent(err error, message string) Event {
	return NewEvent(EventError, map[string]any{
		"error":   err.Error(),
		"message": message,
	})
}

// IsTerminal reports whether the event ends the stream.
func (e Event) IsTerminal() bool {
	return e.Type == EventEnd || e.Type == EventError
}

// Action returns the UI control action tag, or empty string for
// non-control events.
func (e Event) Action() string {
	if e.Type != EventUIControl {
		return ""
	}
	action, _ := e.Data["action"].(string)
	return action
}

// StringField returns a string value from the event data, or empty
// string when absent or of another type.
func (e Event) StringField(key string) string {
	value, _ := e.Data[key].(string)
	return value
}
