package client

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/killallgit/agui/pkg/agui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures dispatch order for assertions.
type recordingHandler struct {
	calls []string
}

func (h *recordingHandler) OnStart(state State, model string) {
	h.calls = append(h.calls, "start:"+model)
}

func (h *recordingHandler) OnTextDelta(state State, delta string) {
	h.calls = append(h.calls, "delta:"+delta)
}

func (h *recordingHandler) OnThemeChange(state State, color string) {
	h.calls = append(h.calls, "theme:"+color)
}

func (h *recordingHandler) OnButtonAdd(state State, label string) {
	h.calls = append(h.calls, "button:"+label)
}

func (h *recordingHandler) OnResult(state State, content string) {
	h.calls = append(h.calls, "result:"+content)
}

func (h *recordingHandler) OnComplete(state State) {
	h.calls = append(h.calls, "complete")
}

func (h *recordingHandler) OnError(state State, message string) {
	h.calls = append(h.calls, "error:"+message)
}

func encodeStream(t *testing.T, events ...agui.Event) string {
	t.Helper()
	var sb strings.Builder
	for _, event := range events {
		raw, err := agui.Encode(event)
		require.NoError(t, err)
		sb.Write(raw)
	}
	return sb.String()
}

func TestReaderSuccessStream(t *testing.T) {
	stream := encodeStream(t,
		agui.NewThemeChangeEvent("#90EE90"),
		agui.NewStartEvent("ollama", "mistral:latest"),
		agui.NewTextMessageEvent("Hel"),
		agui.NewTextMessageEvent("lo"),
		agui.NewResultEvent("Hello", "mistral:latest"),
		agui.NewEndEvent(5),
	)

	handler := &recordingHandler{}
	reader := NewReader(NewState(DefaultThemeColor))

	state, err := reader.Read(context.Background(), strings.NewReader(stream), handler)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"theme:#90EE90",
		"start:mistral:latest",
		"delta:Hel",
		"delta:lo",
		"result:Hello",
		"complete",
	}, handler.calls)

	assert.Equal(t, "Hello", state.AssistantText)
	assert.Equal(t, "#90EE90", state.ThemeColor)
	assert.True(t, state.Completed)
	assert.Empty(t, state.ErrorText)
}

func TestReaderButtonStream(t *testing.T) {
	stream := encodeStream(t,
		agui.NewAddButtonEvent("Submit"),
		agui.NewStartEvent("ollama", "m"),
		agui.NewTextMessageEvent("ok"),
		agui.NewResultEvent("ok", "m"),
		agui.NewEndEvent(2),
	)

	handler := &recordingHandler{}
	state, err := NewReader(NewState(DefaultThemeColor)).
		Read(context.Background(), strings.NewReader(stream), handler)
	require.NoError(t, err)

	assert.Equal(t, "button:Submit", handler.calls[0])
	assert.Equal(t, []string{"Submit"}, state.Buttons)
}

func TestReaderErrorStream(t *testing.T) {
	stream := encodeStream(t,
		agui.NewStartEvent("ollama", "m"),
		agui.NewErrorEvent(errors.New("connection refused"), "runtime unreachable"),
	)

	handler := &recordingHandler{}
	state, err := NewReader(NewState(DefaultThemeColor)).
		Read(context.Background(), strings.NewReader(stream), handler)

	// The failure was reported in-band; the read itself succeeded.
	require.NoError(t, err)
	assert.Equal(t, "error:runtime unreachable", handler.calls[len(handler.calls)-1])
	assert.Equal(t, "runtime unreachable", state.ErrorText)
	assert.False(t, state.Completed)
}

func TestReaderSkipsMalformedLines(t *testing.T) {
	good := encodeStream(t, agui.NewStartEvent("ollama", "m"))
	bad := "data: {not json at all\n\n"
	tail := encodeStream(t, agui.NewTextMessageEvent("still here"), agui.NewEndEvent(9))

	handler := &recordingHandler{}
	state, err := NewReader(NewState(DefaultThemeColor)).
		Read(context.Background(), strings.NewReader(good+bad+tail), handler)

	require.NoError(t, err)
	assert.Equal(t, "still here", state.AssistantText)
	assert.Contains(t, handler.calls, "delta:still here")
}

func TestReaderSkipsUnknownKinds(t *testing.T) {
	unknown := "data: {\"type\":\"telemetry\",\"data\":{},\"timestamp\":\"2025-01-01T00:00:00Z\"}\n\n"
	tail := encodeStream(t, agui.NewEndEvent(0))

	state, err := NewReader(NewState(DefaultThemeColor)).
		Read(context.Background(), strings.NewReader(unknown+tail), nil)

	require.NoError(t, err)
	assert.True(t, state.Completed)
}

func TestReaderTruncatedStream(t *testing.T) {
	// Connection dropped before any terminal event: the client must
	// not treat this as a normal completion.
	stream := encodeStream(t,
		agui.NewStartEvent("ollama", "m"),
		agui.NewTextMessageEvent("cut off"),
	)

	state, err := NewReader(NewState(DefaultThemeColor)).
		Read(context.Background(), strings.NewReader(stream), nil)

	assert.ErrorIs(t, err, ErrTruncatedStream)
	assert.Equal(t, "cut off", state.AssistantText)
	assert.False(t, state.Completed)
}

func TestReaderEventSplitAcrossChunks(t *testing.T) {
	// Regression test: one data line delivered in two reads parses
	// into exactly one event.
	full := encodeStream(t, agui.NewTextMessageEvent("whole"), agui.NewEndEvent(5))
	split := len(full) / 3
	body := &chunkedReader{chunks: []string{full[:split], full[split:]}}

	handler := &recordingHandler{}
	state, err := NewReader(NewState(DefaultThemeColor)).
		Read(context.Background(), body, handler)

	require.NoError(t, err)
	assert.Equal(t, "whole", state.AssistantText)
	assert.Equal(t, []string{"delta:whole", "complete"}, handler.calls)
}

func TestReaderCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := encodeStream(t, agui.NewStartEvent("ollama", "m"))
	_, err := NewReader(NewState(DefaultThemeColor)).
		Read(ctx, strings.NewReader(stream), nil)

	assert.ErrorIs(t, err, context.Canceled)
}
