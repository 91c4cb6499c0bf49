package client

import "github.com/killallgit/agui/pkg/agui"

// State is the client-visible session state: everything the rendering
// layer needs. It is a value type mutated only through Apply, so a
// recorded event sequence can be replayed deterministically.
type State struct {
	// AssistantText grows monotonically during one stream; renderers
	// should replace the displayed message with it wholesale rather
	// than appending in place.
	AssistantText string

	// ThemeColor is the current theme color, last writer wins. The
	// value is passed through unvalidated.
	ThemeColor string

	// Buttons holds dynamically added button labels, append-only,
	// duplicates permitted.
	Buttons []string

	// Completed is set once a terminal end event arrives.
	Completed bool

	// ErrorText carries the message of a terminal error event, shown
	// as an assistant-role message.
	ErrorText string
}

// NewState returns the initial client state with the given theme color.
func NewState(themeColor string) State {
	return State{ThemeColor: themeColor}
}

// NextTurn clears the stream-scoped fields while keeping the UI state
// (theme, buttons) that outlives a single exchange.
func (s State) NextTurn() State {
	next := s
	next.AssistantText = ""
	next.Completed = false
	next.ErrorText = ""
	return next
}

// Apply reduces one event into a new state. Unknown and informational
// event kinds leave the state unchanged. The receiver is never
// modified.
func (s State) Apply(event agui.Event) State {
	next := s
	next.Buttons = append([]string(nil), s.Buttons...)

	switch event.Type {
	case agui.EventTextMessage:
		next.AssistantText += event.StringField("content")

	case agui.EventUIControl:
		switch event.Action() {
		case agui.ActionChangeTheme:
			next.ThemeColor = event.StringField("color")
		case agui.ActionAddButton:
			next.Buttons = append(next.Buttons, event.StringField("label"))
		}

	case agui.EventEnd:
		next.Completed = true

	case agui.EventError:
		next.ErrorText = event.StringField("message")
		if next.ErrorText == "" {
			next.ErrorText = event.StringField("error")
		}
	}

	return next
}
