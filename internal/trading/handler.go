// internal/trading/handler.go
package trading

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"packvault/internal/identity"
	"packvault/internal/response"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the trade endpoints. Every route is scoped to the
// authenticated trainer; ownership checks live in the service.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/trades", h.handlePropose)
	r.Get("/trades/pending", h.handleListPending)
	r.Get("/trades/completed", h.handleListCompleted)
	r.Post("/trades/{tradeID}/accept", h.handleAccept)
	r.Post("/trades/{tradeID}/reject", h.handleReject)
	r.Post("/trades/{tradeID}/read", h.handleMarkRead)
}

type proposeRequest struct {
	ReceiverID     string `json:"receiver_id"`
	SenderCardID   string `json:"sender_card_id"`
	ReceiverCardID string `json:"receiver_card_id"`
}

func (h *Handler) handlePropose(w http.ResponseWriter, r *http.Request) {
	senderID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}

	var req proposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		response.BadRequest(w, "invalid receiver id")
		return
	}
	if req.SenderCardID == "" || req.ReceiverCardID == "" {
		response.BadRequest(w, "both card ids are required")
		return
	}

	trade, err := h.service.Propose(r.Context(), senderID, receiverID, req.SenderCardID, req.ReceiverCardID)
	if err != nil {
		if errors.Is(err, ErrSelfTrade) {
			response.Fail(w, http.StatusBadRequest, response.KindSelfReferential, "cannot trade with yourself")
			return
		}
		log.Printf("propose trade: %v", err)
		response.Persistence(w)
		return
	}
	response.Created(w, trade)
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.Accept)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.Reject)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error)) {
	receiverID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}
	tradeID, err := uuid.Parse(chi.URLParam(r, "tradeID"))
	if err != nil {
		response.BadRequest(w, "invalid trade id")
		return
	}

	trade, err := op(r.Context(), receiverID, tradeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTradeNotFound), errors.Is(err, ErrTradeConcluded):
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "trade not found or no longer available")
		case errors.Is(err, ErrCardNotHeld):
			response.Fail(w, http.StatusConflict, response.KindInsufficientQuantity, "a traded card is no longer held, trade failed")
		default:
			log.Printf("resolve trade %s: %v", tradeID, err)
			response.Persistence(w)
		}
		return
	}
	response.Success(w, trade)
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	trainerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}
	trades, err := h.service.ListPending(r.Context(), trainerID)
	if err != nil {
		log.Printf("list pending trades: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, trades)
}

func (h *Handler) handleListCompleted(w http.ResponseWriter, r *http.Request) {
	trainerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}
	trades, err := h.service.ListCompleted(r.Context(), trainerID)
	if err != nil {
		log.Printf("list completed trades: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, trades)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	trainerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}
	tradeID, err := uuid.Parse(chi.URLParam(r, "tradeID"))
	if err != nil {
		response.BadRequest(w, "invalid trade id")
		return
	}

	if err := h.service.MarkRead(r.Context(), trainerID, tradeID); err != nil {
		if errors.Is(err, ErrTradeNotFound) {
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "trade not found")
			return
		}
		log.Printf("mark trade read %s: %v", tradeID, err)
		response.Persistence(w)
		return
	}
	response.Success(w, map[string]bool{"read": true})
}
