package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

func newTestSMSHandler(sms SMSSender) *Handler {
	return NewHandler(testService(sms, nil), logging.NewText("error"))
}

func TestSendEndpoint(t *testing.T) {
	sms := &recordingSMS{}
	h := newTestSMSHandler(sms)

	body := `{"to":"+14125551234","message":"hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sms/send", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "+14125551234", sms.sent[0].to)
}

func TestSendEndpointRequiresFields(t *testing.T) {
	h := newTestSMSHandler(&recordingSMS{})

	req := httptest.NewRequest(http.MethodPost, "/api/sms/send", strings.NewReader(`{"to":"+14125551234"}`))
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestBatchEndpoint(t *testing.T) {
	sms := &recordingSMS{}
	h := newTestSMSHandler(sms)

	body := `{"recipients":["+14125550001","+14125550002"],"message":"outage update"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sms/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SendBatch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool          `json:"success"`
		Results []BatchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 2)
	assert.Len(t, sms.sent, 2)
}

func TestTemplatesEndpoint(t *testing.T) {
	h := newTestSMSHandler(&recordingSMS{})

	req := httptest.NewRequest(http.MethodGet, "/api/sms/templates", nil)
	rec := httptest.NewRecorder()
	h.Templates(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success   bool     `json:"success"`
		Templates []string `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Templates, "appointmentConfirmation")
}
