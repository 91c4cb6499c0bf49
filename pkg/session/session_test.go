package session

import (
	"context"
	"errors"
	"testing"

	"github.com/killallgit/agui/pkg/agui"
	"github.com/killallgit/agui/pkg/chat"
	"github.com/killallgit/agui/pkg/detect"
	"github.com/killallgit/agui/pkg/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRelay replays a fixed fragment script and records what it was
// asked to stream.
type stubRelay struct {
	fragments   []relay.Fragment
	preflight   error
	gotMessages []chat.Message
	gotModel    string
}

func (s *stubRelay) Stream(ctx context.Context, messages []chat.Message, model string) (<-chan relay.Fragment, error) {
	s.gotMessages = messages
	s.gotModel = model
	if s.preflight != nil {
		return nil, s.preflight
	}

	out := make(chan relay.Fragment, len(s.fragments))
	for _, fragment := range s.fragments {
		out <- fragment
	}
	close(out)
	return out, nil
}

// recordingWriter captures emitted events, optionally failing after a
// set number of writes to simulate a dropped connection.
type recordingWriter struct {
	events    []agui.Event
	failAfter int // -1 disables failure injection
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{failAfter: -1}
}

func (w *recordingWriter) WriteEvent(event agui.Event) error {
	if w.failAfter >= 0 && len(w.events) >= w.failAfter {
		return errors.New("connection closed")
	}
	w.events = append(w.events, event)
	return nil
}

func (w *recordingWriter) types() []agui.EventType {
	kinds := make([]agui.EventType, len(w.events))
	for i, event := range w.events {
		kinds[i] = event.Type
	}
	return kinds
}

func textFragments(parts ...string) []relay.Fragment {
	fragments := make([]relay.Fragment, 0, len(parts)+1)
	for _, part := range parts {
		fragments = append(fragments, relay.Fragment{Content: part})
	}
	return append(fragments, relay.Fragment{Done: true})
}

func userHistory(text string) []chat.Message {
	return []chat.Message{chat.NewUserMessage(text)}
}

func TestSessionSuccessSequence(t *testing.T) {
	stub := &stubRelay{fragments: textFragments("Why did", " the gopher", " cross the road?")}
	s := New(detect.NewKeywordDetector(), stub)
	w := newRecordingWriter()

	err := s.Run(context.Background(), w, userHistory("Tell me a joke"), "mistral:latest")
	require.NoError(t, err)
	assert.Equal(t, StateClosed, s.State())

	require.Equal(t, []agui.EventType{
		agui.EventStart,
		agui.EventTextMessage,
		agui.EventTextMessage,
		agui.EventTextMessage,
		agui.EventResult,
		agui.EventEnd,
	}, w.types())

	start := w.events[0]
	assert.Equal(t, AgentName, start.StringField("agent"))
	assert.Equal(t, "mistral:latest", start.StringField("model"))

	result := w.events[4]
	assert.Equal(t, "Why did the gopher cross the road?", result.StringField("content"))

	end := w.events[5]
	assert.Equal(t, "completed", end.StringField("status"))
	assert.Equal(t, len("Why did the gopher cross the road?"), end.Data["message_count"])
}

func TestSessionEndCountsCharacters(t *testing.T) {
	// Multibyte output: the count is characters, not bytes.
	stub := &stubRelay{fragments: textFragments("héllo ", "wörld")}
	s := New(detect.NewKeywordDetector(), stub)
	w := newRecordingWriter()

	err := s.Run(context.Background(), w, userHistory("greet me in style"), "m")
	require.NoError(t, err)

	end := w.events[len(w.events)-1]
	require.Equal(t, agui.EventEnd, end.Type)
	assert.Equal(t, 11, end.Data["message_count"])
	assert.Equal(t, 13, len("héllo wörld"))
}

func TestSessionThemeChangeScenario(t *testing.T) {
	stub := &stubRelay{fragments: textFragments("Done! The theme is now light green.")}
	s := New(detect.NewKeywordDetector(), stub)
	w := newRecordingWriter()

	err := s.Run(context.Background(), w, userHistory("Change color to light green"), "mistral:latest")
	require.NoError(t, err)

	require.Equal(t, []agui.EventType{
		agui.EventUIControl,
		agui.EventStart,
		agui.EventTextMessage,
		agui.EventResult,
		agui.EventEnd,
	}, w.types())

	control := w.events[0]
	assert.Equal(t, agui.ActionChangeTheme, control.Action())
	assert.Equal(t, "#90EE90", control.StringField("color"))

	// The relay sees a system acknowledgement appended to the history.
	require.Len(t, stub.gotMessages, 2)
	assert.True(t, stub.gotMessages[1].IsSystem())
	assert.Contains(t, stub.gotMessages[1].Content, "light green")
}

func TestSessionAddButtonScenario(t *testing.T) {
	stub := &stubRelay{fragments: textFragments("Added a Submit button for you.")}
	s := New(detect.NewKeywordDetector(), stub)
	w := newRecordingWriter()

	err := s.Run(context.Background(), w, userHistory("Add a button 'Submit'"), "mistral:latest")
	require.NoError(t, err)

	require.NotEmpty(t, w.events)
	control := w.events[0]
	assert.Equal(t, agui.EventUIControl, control.Type)
	assert.Equal(t, agui.ActionAddButton, control.Action())
	assert.Equal(t, "Submit", control.StringField("label"))
	assert.Equal(t, agui.EventStart, w.events[1].Type)
}

func TestSessionNoTriggerHasNoControls(t *testing.T) {
	stub := &stubRelay{fragments: textFragments("Here's a joke.")}
	s := New(detect.NewKeywordDetector(), stub)
	w := newRecordingWriter()

	err := s.Run(context.Background(), w, userHistory("Tell me a joke"), "m")
	require.NoError(t, err)

	for _, event := range w.events {
		assert.NotEqual(t, agui.EventUIControl, event.Type)
	}
	assert.Equal(t, agui.EventStart, w.events[0].Type)
}

func TestSessionRelayFailures(t *testing.T) {
	t.Run("preflight failure yields start then error, nothing after", func(t *testing.T) {
		stub := &stubRelay{preflight: errors.New("connection refused")}
		s := New(detect.NewKeywordDetector(), stub)
		w := newRecordingWriter()

		err := s.Run(context.Background(), w, userHistory("hello"), "m")
		require.Error(t, err)
		assert.Equal(t, StateErrored, s.State())

		require.Equal(t, []agui.EventType{agui.EventStart, agui.EventError}, w.types())
		errEvent := w.events[1]
		assert.Equal(t, "connection refused", errEvent.StringField("error"))
		assert.NotEmpty(t, errEvent.StringField("message"))
	})

	t.Run("mid-stream failure stops text and forecloses end", func(t *testing.T) {
		stub := &stubRelay{fragments: []relay.Fragment{
			{Content: "partial"},
			{Err: errors.New("model crashed")},
		}}
		s := New(detect.NewKeywordDetector(), stub)
		w := newRecordingWriter()

		err := s.Run(context.Background(), w, userHistory("hello"), "m")
		require.Error(t, err)

		require.Equal(t, []agui.EventType{
			agui.EventStart,
			agui.EventTextMessage,
			agui.EventError,
		}, w.types())
	})
}

func TestSessionEmptyHistory(t *testing.T) {
	s := New(detect.NewKeywordDetector(), &stubRelay{})
	w := newRecordingWriter()

	err := s.Run(context.Background(), w, nil, "m")
	assert.ErrorIs(t, err, ErrEmptyHistory)
	assert.Empty(t, w.events)
}

func TestSessionWriteFailureAborts(t *testing.T) {
	stub := &stubRelay{fragments: textFragments("a", "b", "c")}
	s := New(detect.NewKeywordDetector(), stub)
	w := newRecordingWriter()
	w.failAfter = 2 // start + one text message

	err := s.Run(context.Background(), w, userHistory("hello"), "m")
	require.Error(t, err)
	assert.Equal(t, StateErrored, s.State())
	assert.Len(t, w.events, 2)
}

func TestSessionCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubRelay{fragments: textFragments("a", "b")}
	s := New(detect.NewKeywordDetector(), stub)
	w := newRecordingWriter()

	err := s.Run(ctx, w, userHistory("hello"), "m")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateErrored, s.State())
}

func TestSessionReplayIsDeterministic(t *testing.T) {
	run := func() *recordingWriter {
		stub := &stubRelay{fragments: textFragments("same", " output")}
		s := New(detect.NewKeywordDetector(), stub)
		w := newRecordingWriter()
		require.NoError(t, s.Run(context.Background(), w, userHistory("change color to teal"), "m"))
		return w
	}

	first := run()
	second := run()

	require.Equal(t, first.types(), second.types())
	for i := range first.events {
		// Timestamps differ between runs; the payloads must not.
		assert.Equal(t, first.events[i].Data, second.events[i].Data)
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	a := New(detect.NewKeywordDetector(), &stubRelay{})
	b := New(detect.NewKeywordDetector(), &stubRelay{})
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, StateInit, a.State())
}
