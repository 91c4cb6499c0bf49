// Package session orchestrates the ordered event sequence for one chat
// request: ui_control events from the detector, one start, one
// text_message per relay fragment, then result and end — or a single
// terminal error. The session is the only writer on the connection for
// the lifetime of the request.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/killallgit/agui/pkg/agui"
	"github.com/killallgit/agui/pkg/chat"
	"github.com/killallgit/agui/pkg/detect"
	"github.com/killallgit/agui/pkg/logger"
	"github.com/killallgit/agui/pkg/relay"
)

// ErrEmptyHistory is returned when a request arrives with no messages.
// No events are written in that case; the transport should reject the
// request before a stream is opened.
var ErrEmptyHistory = errors.New("message history is empty")

// State is the session's position in its lifecycle.
type State string

const (
	StateInit       State = "init"
	StateDetecting  State = "detecting"
	StateStarting   State = "starting"
	StateGenerating State = "generating"
	StateFinishing  State = "finishing"
	StateClosed     State = "closed"
	StateErrored    State = "errored"
)

// AgentName identifies this bridge in start events.
const AgentName = "ollama"

const relayFailureMessage = "Failed to generate response from Ollama"

// EventWriter receives the session's events in emission order. The
// transport is expected to flush after every event.
type EventWriter interface {
	WriteEvent(event agui.Event) error
}

// Session runs the event state machine for a single request. Sessions
// are not reused.
type Session struct {
	id       string
	detector detect.Detector
	relay    relay.Relay
	state    State
}

// New creates a session for one request.
func New(detector detect.Detector, modelRelay relay.Relay) *Session {
	return &Session{
		id:       uuid.NewString(),
		detector: detector,
		relay:    modelRelay,
		state:    StateInit,
	}
}

// ID returns the session's correlation identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Run emits the full event sequence for the given history to the
// writer. Detected UI actions also append system acknowledgements to
// the history before the model call. Cancelling the context stops
// generation promptly; a failed write aborts the session without
// further events.
func (s *Session) Run(ctx context.Context, w EventWriter, messages []chat.Message, model string) error {
	if len(messages) == 0 {
		s.state = StateErrored
		return ErrEmptyHistory
	}

	log := logger.Named("session " + s.id)

	s.state = StateDetecting
	history := make([]chat.Message, len(messages))
	copy(history, messages)

	if last, ok := chat.LastUserMessage(history); ok {
		for _, action := range s.detector.Detect(last.Content) {
			event, err := actionEvent(action)
			if err != nil {
				return err
			}
			log.Debug("ui control detected: %s", action.Kind)
			if err := w.WriteEvent(event); err != nil {
				s.state = StateErrored
				return fmt.Errorf("failed to write ui_control event: %w", err)
			}
			history = append(history, chat.NewSystemMessage(action.Ack))
		}
	}

	s.state = StateStarting
	if err := w.WriteEvent(agui.NewStartEvent(AgentName, model)); err != nil {
		s.state = StateErrored
		return fmt.Errorf("failed to write start event: %w", err)
	}

	s.state = StateGenerating
	fragments, err := s.relay.Stream(ctx, history, model)
	if err != nil {
		return s.fail(w, err)
	}

	var full strings.Builder
	for fragment := range fragments {
		if fragment.Err != nil {
			return s.fail(w, fragment.Err)
		}
		if fragment.Done {
			break
		}

		full.WriteString(fragment.Content)
		if err := w.WriteEvent(agui.NewTextMessageEvent(fragment.Content)); err != nil {
			s.state = StateErrored
			return fmt.Errorf("failed to write text_message event: %w", err)
		}

		select {
		case <-ctx.Done():
			s.state = StateErrored
			return ctx.Err()
		default:
		}
	}

	s.state = StateFinishing
	text := full.String()
	if err := w.WriteEvent(agui.NewResultEvent(text, model)); err != nil {
		s.state = StateErrored
		return fmt.Errorf("failed to write result event: %w", err)
	}
	// Character count, not bytes, so multibyte output reports the same
	// length the client renders.
	chars := utf8.RuneCountInString(text)
	if err := w.WriteEvent(agui.NewEndEvent(chars)); err != nil {
		s.state = StateErrored
		return fmt.Errorf("failed to write end event: %w", err)
	}

	log.Debug("stream completed, %d chars", chars)
	s.state = StateClosed
	return nil
}

// fail emits the single terminal error event. No result or end follows
// an error; clients treat error as stream-terminal.
func (s *Session) fail(w EventWriter, cause error) error {
	s.state = StateErrored
	logger.Named("session "+s.id).Error("relay failed: %v", cause)

	if err := w.WriteEvent(agui.NewErrorEvent(cause, relayFailureMessage)); err != nil {
		return fmt.Errorf("failed to write error event: %w", err)
	}
	return cause
}

func actionEvent(action detect.Action) (agui.Event, error) {
	switch action.Kind {
	case detect.ActionChangeTheme:
		return agui.NewThemeChangeEvent(action.Color), nil
	case detect.ActionAddButton:
		return agui.NewAddButtonEvent(action.Label), nil
	default:
		return agui.Event{}, fmt.Errorf("unknown detector action: %q", action.Kind)
	}
}
