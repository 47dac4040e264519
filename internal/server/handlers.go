package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chatsearch/internal/domain"
	"chatsearch/internal/observability"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	svc    Service
	logger *observability.Logger
}

type searchRequest struct {
	Query string `json:"query"`
}

type sessionResponse struct {
	ID    string                    `json:"id"`
	State *domain.ConversationState `json:"state,omitempty"`
}

func (h *handlers) newSession(w http.ResponseWriter, r *http.Request) {
	success(w, http.StatusCreated, sessionResponse{ID: uuid.NewString()})
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		failure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		handleError(w, domain.ErrEmptyQuery)
		return
	}

	result, err := h.svc.Search(r.Context(), id, req.Query)
	if err != nil {
		h.logger.WithContext(r.Context()).WithSession(id).Error().Err(err).Msg("search failed")
		handleError(w, err)
		return
	}
	success(w, http.StatusOK, result)
}

func (h *handlers) session(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.svc.Session(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	success(w, http.StatusOK, sessionResponse{ID: id, State: &state})
}

func (h *handlers) resetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listItems(w http.ResponseWriter, r *http.Request) {
	success(w, http.StatusOK, h.svc.Items())
}

func (h *handlers) addItems(w http.ResponseWriter, r *http.Request) {
	var items []domain.CatalogItem
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&items); err != nil {
		failure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.AddData(items); err != nil {
		handleError(w, err)
		return
	}
	h.logger.WithContext(r.Context()).Info().Int("items", len(items)).Msg("catalog updated")
	success(w, http.StatusOK, map[string]int{"added": len(items), "total": len(h.svc.Items())})
}

func (h *handlers) compare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	maxItems := 0
	if v := q.Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			failure(w, http.StatusBadRequest, "max must be a non-negative integer")
			return
		}
		maxItems = n
	}

	result, err := h.svc.CompareProducts(r.Context(), q.Get("q"), q.Get("category"), maxItems)
	if err != nil {
		handleError(w, err)
		return
	}
	success(w, http.StatusOK, result)
}

func (h *handlers) retrieve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		handleError(w, domain.ErrEmptyQuery)
		return
	}
	hits, err := h.svc.Retrieve(r.Context(), query)
	if err != nil {
		handleError(w, err)
		return
	}
	success(w, http.StatusOK, hits)
}
