// internal/trainer/handler.go
package trainer

import (
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

// Routes mounts the trainer endpoints. The wallet debit/credit/refund
// routes are internal: only the collection service's client calls them.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/trainers", h.handleRegister)
	r.Post("/trainers/login", h.handleLogin)
	r.Get("/trainers/{trainerID}", h.handleGetTrainer)

	r.Get("/wallet", h.handleGetBalance)
	r.Post("/trainers/{trainerID}/purchases", h.handlePurchaseDebit)
	r.Post("/trainers/{trainerID}/credits", h.handleCredit)
	r.Post("/trainers/{trainerID}/refunds", h.handleRefund)

	r.Post("/friends", h.handleSendFriendRequest)
	r.Get("/friends", h.handleListFriends)
	r.Post("/friends/{friendshipID}/accept", h.handleAcceptFriendRequest)
	r.Delete("/friends/{friendshipID}", h.handleRemoveFriendship)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		response.BadRequest(w, "email and password are required")
		return
	}
	if req.Username == "" {
		req.Username = "Trainer"
	}

	t, err := h.service.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		log.Printf("register trainer: %v", err)
		response.Persistence(w)
		return
	}
	response.Created(w, t)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	t, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(w, http.StatusUnauthorized, response.KindUnauthenticated, "invalid credentials")
		return
	}

	// The gateway turns this into a session; downstream services only ever
	// see the X-Trainer-ID header.
	response.Success(w, t)
}

func (h *Handler) handleGetTrainer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "trainerID"))
	if err != nil {
		response.BadRequest(w, "invalid trainer id")
		return
	}

	t, err := h.service.GetTrainer(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTrainerNotFound) {
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "trainer not found")
			return
		}
		log.Printf("get trainer: %v", err)
		response.Persistence(w)
		return
	}

	// Public profile: no email on the wire.
	t.Email = ""
	response.Success(w, t)
}

func (h *Handler) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	callerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}

	coins, err := h.service.GetBalance(r.Context(), callerID)
	if err != nil {
		if errors.Is(err, ErrTrainerNotFound) {
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "trainer not found")
			return
		}
		log.Printf("get balance: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, map[string]int{"coins": coins})
}

type amountRequest struct {
	Amount int `json:"amount"`
}

func (h *Handler) handlePurchaseDebit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "trainerID"))
	if err != nil {
		response.BadRequest(w, "invalid trainer id")
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		response.BadRequest(w, "amount must be positive")
		return
	}

	if err := h.service.PurchaseDebit(r.Context(), id, req.Amount); err != nil {
		switch {
		case errors.Is(err, ErrInsufficientFunds):
			response.Fail(w, http.StatusPaymentRequired, response.KindInsufficientFunds, "not enough coins")
		case errors.Is(err, ErrTrainerNotFound):
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "trainer not found")
		default:
			log.Printf("purchase debit: %v", err)
			response.Persistence(w)
		}
		return
	}
	response.Success(w, nil)
}

func (h *Handler) handleCredit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "trainerID"))
	if err != nil {
		response.BadRequest(w, "invalid trainer id")
		return
	}

	var req struct {
		Amount int    `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		response.BadRequest(w, "amount must be positive")
		return
	}

	if err := h.service.Credit(r.Context(), id, req.Amount, req.Reason); err != nil {
		if errors.Is(err, ErrTrainerNotFound) {
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "trainer not found")
			return
		}
		log.Printf("credit: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, nil)
}

func (h *Handler) handleRefund(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "trainerID"))
	if err != nil {
		response.BadRequest(w, "invalid trainer id")
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		response.BadRequest(w, "amount must be positive")
		return
	}

	if err := h.service.RefundPurchase(r.Context(), id, req.Amount); err != nil {
		log.Printf("refund: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, nil)
}

func (h *Handler) handleSendFriendRequest(w http.ResponseWriter, r *http.Request) {
	callerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}

	var req struct {
		FriendID uuid.UUID `json:"friend_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FriendID == uuid.Nil {
		response.BadRequest(w, "friend_id is required")
		return
	}

	f, err := h.service.SendFriendRequest(r.Context(), callerID, req.FriendID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfFriendship):
			response.Fail(w, http.StatusBadRequest, response.KindSelfReferential, "cannot befriend yourself")
		case errors.Is(err, ErrFriendshipExists):
			response.Fail(w, http.StatusConflict, response.KindDuplicateFriendship, "already friends or request pending")
		default:
			log.Printf("send friend request: %v", err)
			response.Persistence(w)
		}
		return
	}
	response.Created(w, f)
}

func (h *Handler) handleListFriends(w http.ResponseWriter, r *http.Request) {
	callerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}

	list, err := h.service.ListFriends(r.Context(), callerID)
	if err != nil {
		log.Printf("list friends: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, list)
}

func (h *Handler) handleAcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	callerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}

	friendshipID, err := uuid.Parse(chi.URLParam(r, "friendshipID"))
	if err != nil {
		response.BadRequest(w, "invalid friendship id")
		return
	}

	if err := h.service.AcceptFriendRequest(r.Context(), friendshipID, callerID); err != nil {
		if errors.Is(err, ErrFriendshipNotFound) {
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "request not found or already handled")
			return
		}
		log.Printf("accept friend request: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, nil)
}

func (h *Handler) handleRemoveFriendship(w http.ResponseWriter, r *http.Request) {
	callerID, err := identity.TrainerID(r)
	if err != nil {
		response.Unauthenticated(w)
		return
	}

	friendshipID, err := uuid.Parse(chi.URLParam(r, "friendshipID"))
	if err != nil {
		response.BadRequest(w, "invalid friendship id")
		return
	}

	if err := h.service.RemoveFriendship(r.Context(), friendshipID, callerID); err != nil {
		if errors.Is(err, ErrFriendshipNotFound) {
			response.Fail(w, http.StatusNotFound, response.KindNotFoundOrResolved, "friendship not found")
			return
		}
		log.Printf("remove friendship: %v", err)
		response.Persistence(w)
		return
	}
	response.Success(w, nil)
}
