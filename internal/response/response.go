package response

import (
	"encoding/json"
	"net/http"
)

// Error kinds exposed to callers. The UI switches on these rather than on
// HTTP status codes, so every handler failure maps to exactly one kind.
const (
	KindUnauthenticated      = "unauthenticated"
	KindSelfReferential      = "self_referential"
	KindNotFoundOrResolved   = "not_found_or_resolved"
	KindCapacityExceeded     = "capacity_exceeded"
	KindInsufficientQuantity = "insufficient_quantity"
	KindInsufficientFunds    = "insufficient_funds"
	KindDuplicateFriendship  = "duplicate_friendship"
	KindBadRequest           = "bad_request"
	KindPersistenceFailure   = "persistence_failure"
)

// Envelope is the wire shape of every API result.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// Success writes a 200 envelope wrapping data.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 envelope wrapping data.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Fail writes a failure envelope with an explicit error kind.
func Fail(w http.ResponseWriter, status int, kind, message string) {
	JSON(w, status, Envelope{Success: false, ErrorKind: kind, Message: message})
}

// Unauthenticated writes the standard 401 envelope.
func Unauthenticated(w http.ResponseWriter) {
	Fail(w, http.StatusUnauthorized, KindUnauthenticated, "no authenticated trainer")
}

// BadRequest writes a 400 envelope for malformed input.
func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, KindBadRequest, message)
}

// Persistence writes the 500 envelope used when a store call fails. The
// underlying error is logged by the caller, never sent over the wire.
func Persistence(w http.ResponseWriter) {
	Fail(w, http.StatusInternalServerError, KindPersistenceFailure, "internal error")
}
