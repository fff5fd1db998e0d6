package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjacobco/hvac-assistant/internal/customers"
	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

type fakeTurnRunner struct {
	reply     string
	err       error
	sessionID uuid.UUID
	userText  string
	sender    string
}

func (f *fakeTurnRunner) Turn(_ context.Context, sessionID uuid.UUID, userText, sender string) (string, error) {
	f.sessionID = sessionID
	f.userText = userText
	f.sender = sender
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestHandler(t *testing.T) (*Handler, pgxmock.PgxPoolIface, *fakeResolver, *fakeTurnRunner) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	resolver := &fakeResolver{
		customer: &customers.Customer{
			ID:        uuid.New(),
			FirstName: "Mary",
			LastName:  "Smith",
			Phone:     "+14125551234",
		},
	}
	store := NewStore(NewRepository(mock), nil, resolver, logging.NewText("error"))
	turns := &fakeTurnRunner{reply: "Happy to help!"}
	return NewHandler(store, turns, "M. Jacob Company", logging.NewText("error")), mock, resolver, turns
}

func TestChatStart(t *testing.T) {
	h, mock, resolver, _ := newTestHandler(t)

	mock.ExpectQuery(`INSERT INTO chat_sessions`).
		WithArgs(pgxmock.AnyArg(), resolver.customer.ID).
		WillReturnRows(pgxmock.NewRows([]string{"started_at"}).AddRow(time.Now()))

	body := `{"customerName":"Mary Smith","customerPhone":"+14125551234"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/start", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Start(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success    bool   `json:"success"`
		SessionID  string `json:"sessionId"`
		CustomerID string `json:"customerId"`
		Message    string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resolver.customer.ID.String(), resp.CustomerID)
	assert.Contains(t, resp.Message, "Hi Mary!")
	assert.Contains(t, resp.Message, "M. Jacob Company")
}

func TestChatStartMissingPhone(t *testing.T) {
	h, _, resolver, _ := newTestHandler(t)
	resolver.err = customers.ErrMissingPhone

	body := `{"customerName":"Mary Smith"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/start", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Start(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestChatMessage(t *testing.T) {
	h, _, _, turns := newTestHandler(t)
	sessionID := uuid.New()

	body := `{"sessionId":"` + sessionID.String() + `","message":"do you fix furnaces?","sender":"user"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Message(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success  bool   `json:"success"`
		Response string `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Happy to help!", resp.Response)

	assert.Equal(t, sessionID, turns.sessionID)
	assert.Equal(t, "do you fix furnaces?", turns.userText)
	assert.Equal(t, "user", turns.sender)
}

func TestChatMessageInvalidSessionID(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	body := `{"sessionId":"not-a-uuid","message":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Message(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatMessageUnknownSession(t *testing.T) {
	h, _, _, turns := newTestHandler(t)
	turns.err = ErrSessionNotFound

	body := `{"sessionId":"` + uuid.NewString() + `","message":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Message(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatMessageRequiresText(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	body := `{"sessionId":"` + uuid.NewString() + `","message":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Message(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatMessageTurnFailure(t *testing.T) {
	h, _, _, turns := newTestHandler(t)
	turns.err = errors.New("model exploded")

	body := `{"sessionId":"` + uuid.NewString() + `","message":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Message(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
