package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"jarvis/internal/domain"
)

// ChatProvider is the upstream LLM completion service.
type ChatProvider interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}

const (
	systemPrompt = "You are Jarvis, a helpful assistant. Keep answers short and actionable."

	// historyLimit caps inbound history regardless of what clients send.
	historyLimit = 6

	rateLimit       = 30
	rateLimitWindow = time.Minute
)

type handler struct {
	provider ChatProvider
	logger   *slog.Logger
}

// NewRouter builds the relay's HTTP surface: CORS for the configured
// frontend origin and a fixed-window rate limit on everything under /api.
func NewRouter(provider ChatProvider, allowedOrigin string, logger *slog.Logger) http.Handler {
	h := &handler{provider: provider, logger: logger}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rateLimit, rateLimitWindow))
		r.Post("/assistant", h.handleAssistant)
	})
	return r
}

type assistantRequest struct {
	Message string           `json:"message"`
	History []domain.Message `json:"history"`
}

type assistantResponse struct {
	Reply string `json:"reply"`
}

func (h *handler) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	history := req.History
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Text: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Text: req.Message})

	reply, err := h.provider.Complete(r.Context(), messages)
	if err != nil {
		h.logger.Error("provider call failed", "error", err)
		http.Error(w, "LLM provider error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if reply == "" {
		reply = domain.FallbackReply
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(assistantResponse{Reply: reply}); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}
