// Package relay adapts the conversation history to the Ollama runtime's
// incremental output. Fragments are passed through in arrival order with
// no buffering or reordering; any runtime failure is converted into a
// single terminal error fragment at this boundary.
package relay

import (
	"context"

	"github.com/killallgit/agui/pkg/chat"
)

// Fragment is one increment of a streamed model response. Exactly one
// of the terminal states applies: Done for normal completion, Err for
// failure. No content fragments follow a terminal fragment.
type Fragment struct {
	Content string
	Done    bool
	Err     error
}

// Relay streams model output for an ordered message history. The
// returned channel is closed after the terminal fragment. Cancelling
// the context stops generation and releases the underlying runtime
// connection.
type Relay interface {
	Stream(ctx context.Context, messages []chat.Message, model string) (<-chan Fragment, error)
}

// emit sends one fragment, giving up when the context is cancelled. A
// consumer that abandons the stream cancels its context, so a blocking
// send here would leak the producing goroutine and keep the runtime
// connection open. Returns false when the send was abandoned.
func emit(ctx context.Context, fragments chan<- Fragment, fragment Fragment) bool {
	select {
	case fragments <- fragment:
		return true
	case <-ctx.Done():
		return false
	}
}
