package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Header carries the authenticated trainer id. The gateway resolves the
// session token and injects this header before proxying to the domain
// services; the services themselves never see credentials.
const Header = "X-Trainer-ID"

var ErrUnauthenticated = errors.New("no authenticated trainer")

// TrainerID extracts the calling trainer's id from the request.
func TrainerID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(Header)
	if raw == "" {
		return uuid.Nil, ErrUnauthenticated
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}
