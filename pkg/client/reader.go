package client

import (
	"context"
	"errors"
	"io"

	"github.com/killallgit/agui/pkg/agui"
	"github.com/killallgit/agui/pkg/logger"
)

// ErrTruncatedStream reports a stream that ended without a terminal
// end or error event, which the client must treat as a failure rather
// than a quiet completion.
var ErrTruncatedStream = errors.New("stream ended without a terminal event")

// Handler receives the client-visible mutations as events arrive. The
// state passed to each callback already reflects the event.
type Handler interface {
	OnStart(state State, model string)
	OnTextDelta(state State, delta string)
	OnThemeChange(state State, color string)
	OnButtonAdd(state State, label string)
	OnResult(state State, content string)
	OnComplete(state State)
	OnError(state State, message string)
}

// Reader consumes one event stream and folds it into a State.
type Reader struct {
	state State
}

// NewReader creates a reader starting from the given state.
func NewReader(initial State) *Reader {
	return &Reader{state: initial}
}

// Read consumes the response body until a terminal event, end of
// stream, or context cancellation. Malformed event lines and unknown
// event kinds are logged and skipped; they never abort the stream.
// handler may be nil. The returned state is final for this stream.
func (r *Reader) Read(ctx context.Context, body io.Reader, handler Handler) (State, error) {
	scanner := NewSSEScanner(body)
	terminal := false

	for scanner.Next() {
		select {
		case <-ctx.Done():
			return r.state, ctx.Err()
		default:
		}

		event, err := agui.Decode(scanner.Data())
		if err != nil {
			// One bad line must not take down the stream.
			logger.Warn("skipping unparseable event: %v", err)
			continue
		}

		r.state = r.state.Apply(event)
		r.dispatch(event, handler)

		if event.IsTerminal() {
			terminal = true
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return r.state, err
	}
	if !terminal {
		return r.state, ErrTruncatedStream
	}
	return r.state, nil
}

// State returns the reader's current state.
func (r *Reader) State() State {
	return r.state
}

func (r *Reader) dispatch(event agui.Event, handler Handler) {
	if handler == nil {
		return
	}

	switch event.Type {
	case agui.EventStart:
		handler.OnStart(r.state, event.StringField("model"))
	case agui.EventTextMessage:
		handler.OnTextDelta(r.state, event.StringField("content"))
	case agui.EventUIControl:
		switch event.Action() {
		case agui.ActionChangeTheme:
			handler.OnThemeChange(r.state, event.StringField("color"))
		case agui.ActionAddButton:
			handler.OnButtonAdd(r.state, event.StringField("label"))
		default:
			logger.Warn("skipping unknown ui_control action: %q", event.Action())
		}
	case agui.EventResult:
		handler.OnResult(r.state, event.StringField("content"))
	case agui.EventEnd:
		handler.OnComplete(r.state)
	case agui.EventError:
		handler.OnError(r.state, r.state.ErrorText)
	}
}
