// internal/catalog/handler.go
package catalog

import (
	"errors"
	"log"
	"net/http"

	"packvault/internal/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the catalog endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/sets", h.handleListSets)
	r.Get("/sets/{setID}/cards", h.handleGetSetCards)
	r.Post("/sets/{setID}/sync", h.handleSyncSet)
	r.Get("/cards/{cardID}", h.handleGetCard)
}

func (h *Handler) handleListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.service.ListSets(r.Context())
	if err != nil {
		log.Printf("list sets: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, sets)
}

func (h *Handler) handleGetSetCards(w http.ResponseWriter, r *http.Request) {
	setID := chi.URLParam(r, "setID")
	cards, err := h.service.GetSetCards(r.Context(), setID)
	if err != nil {
		if errors.Is(err, ErrSetNotFound) {
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "set not found")
			return
		}
		log.Printf("get set cards: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, cards)
}

func (h *Handler) handleSyncSet(w http.ResponseWriter, r *http.Request) {
	setID := chi.URLParam(r, "setID")
	force := r.URL.Query().Get("force") == "true"

	result, err := h.service.SyncSet(r.Context(), setID, force)
	if err != nil {
		switch {
		case errors.Is(err, ErrSetNotFound):
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "set not found at provider")
		case errors.Is(err, ErrProviderThrottled):
			response.Fail(w, http.StatusServiceUnavailable, response.KindPersistenceFailure, "card provider throttled, try again later")
		default:
			log.Printf("sync set %s: %v", setID, err)
			response.Persistence(w)
		}
		return
	}
	response.Success(w, result)
}

func (h *Handler) handleGetCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	card, err := h.service.GetCard(r.Context(), cardID)
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "card not found")
			return
		}
		log.Printf("get card: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, card)
}
