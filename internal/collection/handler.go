// internal/collection/handler.go
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"packvault/internal/catalog"
	"packvault/internal/identity"
	"packvault/internal/packs"
	"packvault/internal/response"
	"packvault/internal/trainer"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the collection endpoints. Everything except the public
// collection view is scoped to the authenticated trainer.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/packs", h.handleOpenPack)
	r.Get("/collection", h.handleGetOwnCollection)
	r.Get("/collection/{trainerID}", h.handleGetPublicCollection)
	r.Post("/collection/{cardID}/sell", h.handleSell)
	r.Post("/collection/{cardID}/sell-duplicates", h.handleSellDuplicates)
	r.Post("/collection/{cardID}/favorite", h.handleToggleFavorite)
}

type openPackRequest struct {
	SetID    string `json:"set_id"`
	PackType string `json:"pack_type"`
}

func (h *Handler) handleOpenPack(w http.ResponseWriter, r *http.Request) {
	trainerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}

	var req openPackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.SetID == "" {
		response.BadRequest(w, "set_id is required")
		return
	}

	result, err := h.service.OpenPack(r.Context(), trainerID, req.SetID, packs.Type(req.PackType))
	if err != nil {
		switch {
		case errors.Is(err, packs.ErrUnknownPackType):
			response.BadRequest(w, "unknown pack type")
		case errors.Is(err, trainer.ErrInsufficientFunds):
			response.Fail(w, http.StatusPaymentRequired, response.KindInsufficientFunds, "not enough coins for this pack")
		case errors.Is(err, trainer.ErrTrainerNotFound):
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "trainer not found")
		case errors.Is(err, catalog.ErrSetNotFound):
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "set not found")
		default:
			log.Printf("open pack: %v", err)
			response.Persistence(w)
		}
		return
	}
	response.Created(w, result)
}

func (h *Handler) handleGetOwnCollection(w http.ResponseWriter, r *http.Request) {
	trainerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}
	h.writeCollection(w, r, trainerID)
}

// handleGetPublicCollection serves any trainer's collection read-only,
// used by the friends views.
func (h *Handler) handleGetPublicCollection(w http.ResponseWriter, r *http.Request) {
	trainerID, err := uuid.Parse(chi.URLParam(r, "trainerID"))
	if err != nil {
		response.BadRequest(w, "invalid trainer id")
		return
	}
	h.writeCollection(w, r, trainerID)
}

func (h *Handler) writeCollection(w http.ResponseWriter, r *http.Request, trainerID uuid.UUID) {
	collection, err := h.service.GetCollection(r.Context(), trainerID)
	if err != nil {
		log.Printf("get collection: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, collection)
}

func (h *Handler) handleSell(w http.ResponseWriter, r *http.Request) {
	h.sell(w, r, h.service.Sell)
}

func (h *Handler) handleSellDuplicates(w http.ResponseWriter, r *http.Request) {
	h.sell(w, r, h.service.SellAllDuplicates)
}

func (h *Handler) sell(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, trainerID uuid.UUID, cardID string) (*SaleResult, error)) {
	trainerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}
	cardID := chi.URLParam(r, "cardID")

	result, err := op(r.Context(), trainerID, cardID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEntryNotFound):
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "card not in collection")
		case errors.Is(err, ErrInsufficientQuantity):
			response.Fail(w, http.StatusConflict, response.KindInsufficientQuantity, "not enough copies to sell")
		default:
			log.Printf("sell card %s: %v", cardID, err)
			response.Persistence(w)
		}
		return
	}
	response.Success(w, result)
}

func (h *Handler) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	trainerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}
	cardID := chi.URLParam(r, "cardID")

	favorite, err := h.service.ToggleFavorite(r.Context(), trainerID, cardID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEntryNotFound):
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "card not in collection")
		case errors.Is(err, ErrFavoriteCapacity):
			response.Fail(w, http.StatusConflict, response.KindCapacityExceeded, "favorite limit reached")
		default:
			log.Printf("toggle favorite %s: %v", cardID, err)
			response.Persistence(w)
		}
		return
	}
	response.Success(w, map[string]bool{"is_favorite": favorite})
}
