// internal/trading/handler_test.go
package trading

import (
	"context"
	"encoding/json"
	"fmt"
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
	propose       func(ctx context.Context, senderID, receiverID uuid.UUID, senderCardID, receiverCardID string) (*Trade, error)
	accept        func(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error)
	reject        func(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error)
	listPending   func(ctx context.Context, receiverID uuid.UUID) ([]TradeView, error)
	listCompleted func(ctx context.Context, senderID uuid.UUID) ([]TradeView, error)
	markRead      func(ctx context.Context, senderID, tradeID uuid.UUID) error
}

func (m *mockService) Propose(ctx context.Context, senderID, receiverID uuid.UUID, senderCardID, receiverCardID string) (*Trade, error) {
	return m.propose(ctx, senderID, receiverID, senderCardID, receiverCardID)
}
func (m *mockService) Accept(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error) {
	return m.accept(ctx, receiverID, tradeID)
}
func (m *mockService) Reject(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error) {
	return m.reject(ctx, receiverID, tradeID)
}
func (m *mockService) ListPending(ctx context.Context, receiverID uuid.UUID) ([]TradeView, error) {
	return m.listPending(ctx, receiverID)
}
func (m *mockService) ListCompleted(ctx context.Context, senderID uuid.UUID) ([]TradeView, error) {
	return m.listCompleted(ctx, senderID)
}
func (m *mockService) MarkRead(ctx context.Context, senderID, tradeID uuid.UUID) error {
	return m.markRead(ctx, senderID, tradeID)
}

func newTestRouter(svc Service) http.Handler {
	router := chi.NewRouter()
	NewHandler(svc).Routes(router)
	return router
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestProposeHandler(t *testing.T) {
	senderID := uuid.New()
	receiverID := uuid.New()
	svc := &mockService{
		propose: func(ctx context.Context, gotSender, gotReceiver uuid.UUID, senderCardID, receiverCardID string) (*Trade, error) {
			assert.Equal(t, senderID, gotSender)
			assert.Equal(t, receiverID, gotReceiver)
			assert.Equal(t, "sv8-1", senderCardID)
			assert.Equal(t, "sv8-2", receiverCardID)
			return &Trade{ID: uuid.New(), Status: StatusPending}, nil
		},
	}

	body := fmt.Sprintf(`{"receiver_id":%q,"sender_card_id":"sv8-1","receiver_card_id":"sv8-2"}`, receiverID)
	req := httptest.NewRequest(http.MethodPost, "/trades", strings.NewReader(body))
	req.Header.Set(identity.Header, senderID.String())
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestProposeSelfTrade(t *testing.T) {
	senderID := uuid.New()
	svc := &mockService{
		propose: func(ctx context.Context, _, _ uuid.UUID, _, _ string) (*Trade, error) {
			return nil, ErrSelfTrade
		},
	}

	body := fmt.Sprintf(`{"receiver_id":%q,"sender_card_id":"a","receiver_card_id":"b"}`, senderID)
	req := httptest.NewRequest(http.MethodPost, "/trades", strings.NewReader(body))
	req.Header.Set(identity.Header, senderID.String())
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, response.KindSelfReferential, env.ErrorKind)
}

func TestAcceptResolvedTrade(t *testing.T) {
	svc := &mockService{
		accept: func(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error) {
			return nil, ErrTradeNotFound
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trades/"+uuid.NewString()+"/accept", nil)
	req.Header.Set(identity.Header, uuid.NewString())
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, response.KindNotFoundOrResolved, env.ErrorKind)
}

func TestAcceptFailedRevalidation(t *testing.T) {
	svc := &mockService{
		accept: func(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error) {
			return nil, ErrCardNotHeld
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trades/"+uuid.NewString()+"/accept", nil)
	req.Header.Set(identity.Header, uuid.NewString())
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, response.KindInsufficientQuantity, env.ErrorKind)
}

func TestRejectHandler(t *testing.T) {
	tradeID := uuid.New()
	receiverID := uuid.New()
	svc := &mockService{
		reject: func(ctx context.Context, gotReceiver, gotTrade uuid.UUID) (*Trade, error) {
			assert.Equal(t, receiverID, gotReceiver)
			assert.Equal(t, tradeID, gotTrade)
			return &Trade{ID: tradeID, Status: StatusRejected}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trades/"+tradeID.String()+"/reject", nil)
	req.Header.Set(identity.Header, receiverID.String())
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListPendingRequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/trades/pending", nil)
	rec := httptest.NewRecorder()
	newTestRouter(&mockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMarkReadHandler(t *testing.T) {
	svc := &mockService{
		markRead: func(ctx context.Context, senderID, tradeID uuid.UUID) error {
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trades/"+uuid.NewString()+"/read", nil)
	req.Header.Set(identity.Header, uuid.NewString())
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
