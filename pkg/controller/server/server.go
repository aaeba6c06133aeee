package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/utils/logging"
)

type Server struct {
	mux *chi.Mux
}

type config struct {
	secret types.WebhookSecret
}

type Option func(*config)

func WithWebhookSecret(secret types.WebhookSecret) Option {
	return func(cfg *config) {
		cfg.secret = secret
	}
}

func New(uc interfaces.UseCase, options ...Option) *Server {
	cfg := &config{}
	for _, opt := range options {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(preProcess)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"service": "relnote",
			"routes": []string{
				"POST /webhook/github/releases",
				"GET /healthz",
				"GET /admin/stats",
				"GET /admin/repositories",
				"POST /admin/discover",
				"POST /admin/sync-webhooks",
			},
		})
	})

	r.Route("/webhook", func(r chi.Router) {
		r.Post("/github/releases", handleReleaseWebhook(uc, cfg.secret))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/stats", handleStats(uc))
		r.Get("/repositories", handleListRepositories(uc))
		r.Post("/discover", handleDiscover(uc))
		r.Post("/sync-webhooks", handleSyncWebhooks(uc))
	})

	return &Server{
		mux: r,
	}
}

func (x *Server) Mux() *chi.Mux {
	return x.mux
}

// respondJSON writes a JSON body; errors always carry an "error" field and
// never expose internals beyond the message.
func respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Default().Error("fail to write response", slog.Any("error", err))
	}
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}
