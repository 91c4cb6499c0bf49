// Package server exposes the bridge over HTTP: a streaming chat
// endpoint speaking the AG-UI event protocol plus status and health
// endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/killallgit/agui/pkg/config"
	"github.com/killallgit/agui/pkg/detect"
	"github.com/killallgit/agui/pkg/logger"
	"github.com/killallgit/agui/pkg/ollama"
	"github.com/killallgit/agui/pkg/relay"
)

// ServiceName identifies the bridge in the status endpoint.
const ServiceName = "agui-bridge"

// Server wires the detector, relay and Ollama client behind the HTTP
// endpoints.
type Server struct {
	serverConfig config.ServerConfig
	detector     detect.Detector
	relay        relay.Relay
	ollama       *ollama.Client
	defaultModel string
}

// New creates a server. defaultModel is used for requests that do not
// name a model.
func New(serverConfig config.ServerConfig, detector detect.Detector, modelRelay relay.Relay, ollamaClient *ollama.Client, defaultModel string) *Server {
	return &Server{
		serverConfig: serverConfig,
		detector:     detector,
		relay:        modelRelay,
		ollama:       ollamaClient,
		defaultModel: defaultModel,
	}
}

// Handler returns the routed handler with CORS applied, usable both by
// Start and by tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/chat", s.handleChat)
	return s.corsMiddleware(mux)
}

// Start serves until the context is cancelled, then shuts down
// gracefully. In-flight streams are given a short drain window.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.serverConfig.Addr(),
		Handler: s.Handler(),
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", s.serverConfig.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// corsMiddleware allows the configured frontend origins, mirroring the
// dev-server setup the bridge is demoed with.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(s.serverConfig.AllowedOrigins))
	for _, origin := range s.serverConfig.AllowedOrigins {
		allowed[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
