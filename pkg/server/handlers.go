package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/killallgit/agui/pkg/agui"
	"github.com/killallgit/agui/pkg/chat"
	"github.com/killallgit/agui/pkg/logger"
	"github.com/killallgit/agui/pkg/session"
)

// chatRequest is the wire shape of one conversation turn.
type chatRequest struct {
	Messages []chat.Message `json:"messages"`
	Model    string         `json:"model,omitempty"`
}

// sseWriter adapts the HTTP response to the session's EventWriter,
// flushing after every event so deltas reach the client immediately.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (sw *sseWriter) WriteEvent(event agui.Event) error {
	raw, err := agui.Encode(event)
	if err != nil {
		return err
	}
	if _, err := sw.w.Write(raw); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}

// handleChat streams the AG-UI event sequence for one request.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Messages) == 0 {
		writeJSONError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}
	for i, msg := range req.Messages {
		if !chat.ValidRole(msg.Role) {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("message %d has invalid role %q", i, msg.Role))
			return
		}
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	streamSession := session.New(s.detector, s.relay)
	log := logger.Named("session " + streamSession.ID())
	log.Info("chat request: %d messages, model %s", len(req.Messages), model)

	// The request context is cancelled on client disconnect, which
	// stops the relay and releases its connection.
	if err := streamSession.Run(r.Context(), &sseWriter{w: w, flusher: flusher}, req.Messages, model); err != nil {
		log.Error("stream ended with error: %v", err)
		return
	}
	log.Info("stream completed")
}

// handleRoot reports service identity and the configured model.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service":  ServiceName,
		"status":   "running",
		"protocol": "AG-UI",
		"model":    s.defaultModel,
	})
}

// handleHealth proxies Ollama connectivity and lists available models.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.ollama.CheckHealth(r.Context())
	if !status.Available {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"detail": fmt.Sprintf("Ollama not accessible: %v", status.Error),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"ollama":           "connected",
		"available_models": status.ModelNames(),
	})
}

func writeJSON(w http.ResponseWriter, code int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]any{"detail": detail})
}
