package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"jarvis/internal/application"
	"jarvis/internal/domain"
	"jarvis/internal/infra/speech"
)

const (
	rateLimit       = 60
	rateLimitWindow = time.Minute
)

// Server is the browser-facing control API: the thin web client pushes
// typed text and recognition results here and polls state at ~1 Hz for
// display.
type Server struct {
	addr      string
	assistant *application.Assistant
	input     *application.SpeechInput
	output    *application.SpeechOutput
	rec       *speech.PushRecognizer
	logger    *slog.Logger

	mu      sync.Mutex
	server  *http.Server
	running bool
}

func NewServer(
	addr string,
	assistant *application.Assistant,
	input *application.SpeechInput,
	output *application.SpeechOutput,
	rec *speech.PushRecognizer,
	logger *slog.Logger,
) *Server {
	return &Server{
		addr:      addr,
		assistant: assistant,
		input:     input,
		output:    output,
		rec:       rec,
		logger:    logger,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rateLimit, rateLimitWindow))
		r.Post("/text", s.handleText)
		r.Post("/recognition", s.handleRecognition)
		r.Post("/listen/start", s.handleListenStart)
		r.Post("/listen/stop", s.handleListenStop)
		r.Get("/voices", s.handleVoices)
		r.Post("/voice", s.handleVoice)
		r.Post("/mute", s.handleMute)
		r.Get("/state", s.handleState)
		r.Post("/timers/{id}/cancel", s.handleTimerCancel)
		r.Post("/timers/clear", s.handleTimersClear)
	})
	return r
}

func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info("gateway starting", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("gateway server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}
	s.running = false
	return nil
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	// The turn can await the relay far longer than the server's write
	// timeout; accept now and let the client pick the outcome up from
	// /api/state.
	go s.assistant.HandleSend(context.WithoutCancel(r.Context()), req.Text)
	w.WriteHeader(http.StatusAccepted)
}

type recognitionRequest struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

func (s *Server) handleRecognition(w http.ResponseWriter, r *http.Request) {
	var req recognitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.rec.Push(req.Text, req.Final)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleListenStart(w http.ResponseWriter, r *http.Request) {
	if err := s.input.Start(context.WithoutCancel(r.Context())); err != nil {
		if errors.Is(err, domain.ErrPermissionDenied) {
			http.Error(w, "microphone permission is required to use voice features", http.StatusForbidden)
			return
		}
		if errors.Is(err, domain.ErrProviderUnsupported) {
			http.Error(w, "speech recognition is not available", http.StatusNotImplemented)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, map[string]bool{"listening": s.input.Listening()})
}

func (s *Server) handleListenStop(w http.ResponseWriter, r *http.Request) {
	s.input.Stop()
	s.writeJSON(w, map[string]bool{"listening": false})
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	voices := s.output.CuratedVoices()
	if voices == nil {
		voices = []application.Voice{}
	}
	s.writeJSON(w, voices)
}

type voiceRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.output.SetVoice(req.ID)
	w.WriteHeader(http.StatusNoContent)
}

type muteRequest struct {
	Muted bool `json:"muted"`
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	var req muteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.output.SetMuted(req.Muted)
	w.WriteHeader(http.StatusNoContent)
}

type timerState struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

type stateResponse struct {
	Listening bool             `json:"listening"`
	Interim   string           `json:"interim"`
	Speaking  bool             `json:"speaking"`
	Muted     bool             `json:"muted"`
	Messages  []domain.Message `json:"messages"`
	Timers    []timerState     `json:"timers"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	registry := s.assistant.Timers()
	timers := []timerState{}
	for _, t := range registry.Snapshot() {
		timers = append(timers, timerState{
			ID:               t.ID,
			Label:            t.Label,
			RemainingSeconds: registry.RemainingSeconds(t),
		})
	}
	s.writeJSON(w, stateResponse{
		Listening: s.input.Listening(),
		Interim:   s.input.Interim(),
		Speaking:  s.output.Speaking(),
		Muted:     s.output.Muted(),
		Messages:  s.assistant.Messages(),
		Timers:    timers,
	})
}

func (s *Server) handleTimerCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.assistant.Timers().Cancel(id) {
		http.Error(w, "unknown timer", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTimersClear(w http.ResponseWriter, r *http.Request) {
	s.assistant.Timers().ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK
	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":%q}`, status)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}
