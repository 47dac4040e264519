// Package server exposes the search engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"chatsearch/config"
	"chatsearch/internal/domain"
	"chatsearch/internal/observability"
)

// Service is the engine surface the HTTP handlers need.
type Service interface {
	Search(ctx context.Context, sessionID, text string) (*domain.SearchResult, error)
	Session(ctx context.Context, sessionID string) (domain.ConversationState, error)
	ResetSession(ctx context.Context, sessionID string) error
	AddData(items []domain.CatalogItem) error
	Items() []domain.CatalogItem
	CompareProducts(ctx context.Context, text, category string, maxItems int) (domain.ComparisonResult, error)
	Retrieve(ctx context.Context, query string) ([]domain.RetrievalHit, error)
}

// NewRouter wires the API routes onto a chi router.
func NewRouter(svc Service, logger *observability.Logger, cfg config.ServerConfig) http.Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	h := &handlers{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", h.newSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Post("/search", h.search)
			r.Get("/", h.session)
			r.Delete("/", h.resetSession)
		})
		r.Get("/items", h.listItems)
		r.Post("/items", h.addItems)
		r.Get("/compare", h.compare)
		r.Get("/retrieve", h.retrieve)
	})

	return r
}

// requestLogger carries chi's request id into the context logger and logs
// one line per request.
func requestLogger(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := chimiddleware.GetReqID(r.Context())
			if id == "" {
				id = uuid.NewString()
			}
			ctx := observability.ContextWithRequestID(r.Context(), id)
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.WithContext(ctx).Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
