// internal/trainer/handler_test.go
package trainer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"packvault/internal/identity"
	"packvault/internal/response"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	register          func(ctx context.Context, email, username, password string) (*Trainer, error)
	authenticate      func(ctx context.Context, email, password string) (*Trainer, error)
	getTrainer        func(ctx context.Context, id uuid.UUID) (*Trainer, error)
	purchaseDebit     func(ctx context.Context, id uuid.UUID, amount int) error
	getBalance        func(ctx context.Context, id uuid.UUID) (int, error)
	sendFriendRequest func(ctx context.Context, requesterID, targetID uuid.UUID) (*Friendship, error)
}

func (m *mockService) Register(ctx context.Context, email, username, password string) (*Trainer, error) {
	return m.register(ctx, email, username, password)
}
func (m *mockService) Authenticate(ctx context.Context, email, password string) (*Trainer, error) {
	return m.authenticate(ctx, email, password)
}
func (m *mockService) GetTrainer(ctx context.Context, id uuid.UUID) (*Trainer, error) {
	return m.getTrainer(ctx, id)
}
func (m *mockService) PurchaseDebit(ctx context.Context, id uuid.UUID, amount int) error {
	return m.purchaseDebit(ctx, id, amount)
}
func (m *mockService) RefundPurchase(ctx context.Context, id uuid.UUID, amount int) error {
	return nil
}
func (m *mockService) Credit(ctx context.Context, id uuid.UUID, amount int, reason string) error {
	return nil
}
func (m *mockService) GetBalance(ctx context.Context, id uuid.UUID) (int, error) {
	return m.getBalance(ctx, id)
}
func (m *mockService) SendFriendRequest(ctx context.Context, requesterID, targetID uuid.UUID) (*Friendship, error) {
	return m.sendFriendRequest(ctx, requesterID, targetID)
}
func (m *mockService) AcceptFriendRequest(ctx context.Context, friendshipID, callerID uuid.UUID) error {
	return nil
}
func (m *mockService) RemoveFriendship(ctx context.Context, friendshipID, callerID uuid.UUID) error {
	return nil
}
func (m *mockService) ListFriends(ctx context.Context, callerID uuid.UUID) (*FriendsList, error) {
	return &FriendsList{}, nil
}

func newTestRouter(svc Service) http.Handler {
	router := chi.NewRouter()
	NewHandler(svc).Routes(router)
	return router
}

func TestRegisterHandler(t *testing.T) {
	svc := &mockService{
		register: func(ctx context.Context, email, username, password string) (*Trainer, error) {
			assert.Equal(t, "ash@example.com", email)
			assert.Equal(t, "Ash", username)
			return &Trainer{ID: uuid.New(), Email: email, Username: username, Coins: StartingCoins}, nil
		},
	}

	body := `{"email":"ash@example.com","username":"Ash","password":"pikachu123"}`
	req := httptest.NewRequest(http.MethodPost, "/trainers", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var env response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.True(t, env.Success)
}

func TestRegisterRequiresEmail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/trainers", strings.NewReader(`{"password":"x"}`))
	rec := httptest.NewRecorder()
	newTestRouter(&mockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	svc := &mockService{
		authenticate: func(ctx context.Context, email, password string) (*Trainer, error) {
			return nil, ErrTrainerNotFound
		},
	}

	body := `{"email":"ash@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/trainers/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetTrainerHidesEmail(t *testing.T) {
	id := uuid.New()
	svc := &mockService{
		getTrainer: func(ctx context.Context, gotID uuid.UUID) (*Trainer, error) {
			return &Trainer{ID: gotID, Email: "private@example.com", Username: "Misty"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trainers/"+id.String(), nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "private@example.com")
}

func TestPurchaseDebitInsufficientFunds(t *testing.T) {
	svc := &mockService{
		purchaseDebit: func(ctx context.Context, id uuid.UUID, amount int) error {
			return ErrInsufficientFunds
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trainers/"+uuid.NewString()+"/purchases", strings.NewReader(`{"amount":100}`))
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	var env response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, response.KindInsufficientFunds, env.ErrorKind)
}

func TestPurchaseDebitRejectsNonPositiveAmount(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/trainers/"+uuid.NewString()+"/purchases", strings.NewReader(`{"amount":-5}`))
	rec := httptest.NewRecorder()
	newTestRouter(&mockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBalance(t *testing.T) {
	id := uuid.New()
	svc := &mockService{
		getBalance: func(ctx context.Context, gotID uuid.UUID) (int, error) {
			assert.Equal(t, id, gotID)
			return 350, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/wallet", nil)
	req.Header.Set(identity.Header, id.String())
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "350")
}

func TestSendFriendRequestSelf(t *testing.T) {
	id := uuid.New()
	svc := &mockService{
		sendFriendRequest: func(ctx context.Context, requesterID, targetID uuid.UUID) (*Friendship, error) {
			return nil, ErrSelfFriendship
		},
	}

	body := `{"friend_id":"` + id.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/friends", strings.NewReader(body))
	req.Header.Set(identity.Header, id.String())
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var env response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, response.KindSelfReferential, env.ErrorKind)
}

func TestSendFriendRequestDuplicate(t *testing.T) {
	svc := &mockService{
		sendFriendRequest: func(ctx context.Context, requesterID, targetID uuid.UUID) (*Friendship, error) {
			return nil, ErrFriendshipExists
		},
	}

	body := `{"friend_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/friends", strings.NewReader(body))
	req.Header.Set(identity.Header, uuid.NewString())
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var env response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, response.KindDuplicateFriendship, env.ErrorKind)
}
