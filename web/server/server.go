package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/df07/go-raytracer/pkg/scene"
)

// Config holds the web server settings, read from RAYTRACER_SERVER_*
// variables so they never collide with the render overrides such as
// RAYTRACER_MAX_DEPTH
type Config struct {
	Port       int `envconfig:"SERVER_PORT" default:"8080"`
	MaxWidth   int `envconfig:"SERVER_MAX_WIDTH" default:"1920"`
	MaxSamples int `envconfig:"SERVER_MAX_SAMPLES" default:"1000"`
	MaxDepth   int `envconfig:"SERVER_MAX_DEPTH" default:"200"`
}

// LoadConfig reads Config from the environment
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("RAYTRACER", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Server renders built-in scenes over HTTP
type Server struct {
	config Config
	logger zerolog.Logger
	router *mux.Router
}

// NewServer creates a new web server with its routes registered
func NewServer(config Config, logger zerolog.Logger) *Server {
	s := &Server{config: config, logger: logger}

	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/scenes", s.handleScenes).Methods(http.MethodGet)
	r.HandleFunc("/api/render", s.handleRender).Methods(http.MethodGet)
	r.HandleFunc("/api/render/stream", s.handleRenderStream).Methods(http.MethodGet)
	r.HandleFunc("/api/inspect", s.handleInspect).Methods(http.MethodGet)

	s.router = r
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No write timeout: renders stream for as long as they take
	}

	go func() {
		<-ctx.Done()
		s.logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("shutdown")
		}
	}()

	s.logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the scenes that can be rendered
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"scenes": scene.Names()})
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer's Flush
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
