package appointments

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjacobco/hvac-assistant/internal/availability"
)

func newTestHandler(ledger *fakeLedger) *Handler {
	svc := newTestService(ledger, &recordingNotifier{})
	engine := availability.NewEngine(nil, ledger)
	return NewHandler(svc, engine, nil)
}

func TestHandlerCreate(t *testing.T) {
	h := newTestHandler(&fakeLedger{})

	body, _ := json.Marshal(map[string]string{
		"customerId":    uuid.NewString(),
		"serviceType":   ServiceHeaterRepair,
		"scheduledDate": "2026-02-10T10:00:00Z",
		"notes":         "furnace making noise",
		"urgency":       UrgencyEmergency,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/appointments/create", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success     bool         `json:"success"`
		Appointment *Appointment `json:"appointment"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, StatusPending, resp.Appointment.Status)
	assert.Equal(t, UrgencyEmergency, resp.Appointment.Urgency)
}

func TestHandlerCreateBadTimestamp(t *testing.T) {
	h := newTestHandler(&fakeLedger{})

	body, _ := json.Marshal(map[string]string{
		"customerId":    uuid.NewString(),
		"serviceType":   ServiceHeaterRepair,
		"scheduledDate": "tomorrow at ten",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/appointments/create", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "ISO timestamp")
}

func TestHandlerAvailabilityScenario(t *testing.T) {
	// Catalog minus the one active 10:00 appointment on 2026-02-10.
	ledger := &fakeLedger{}
	h := newTestHandler(ledger)
	_, err := ledger.Insert(context.Background(), CreateRequest{
		CustomerID:    uuid.New(),
		ServiceType:   ServiceHeaterRepair,
		ScheduledDate: time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments/availability?date=2026-02-10", nil)
	w := httptest.NewRecorder()

	h.Availability(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success        bool     `json:"success"`
		Date           string   `json:"date"`
		AvailableSlots []string `json:"availableSlots"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "2026-02-10", resp.Date)
	assert.Equal(t, []string{
		"08:00", "09:00", "11:00",
		"13:00", "14:00", "15:00", "16:00", "17:00",
	}, resp.AvailableSlots)
}

func TestHandlerAvailabilityInvalidDate(t *testing.T) {
	h := newTestHandler(&fakeLedger{})

	req := httptest.NewRequest(http.MethodGet, "/api/appointments/availability?date=junk", nil)
	w := httptest.NewRecorder()

	h.Availability(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerList(t *testing.T) {
	ledger := &fakeLedger{}
	h := newTestHandler(ledger)
	_, err := ledger.Insert(context.Background(), CreateRequest{
		CustomerID:    uuid.New(),
		ServiceType:   ServiceACRepair,
		ScheduledDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments/list", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success      bool           `json:"success"`
		Appointments []*Appointment `json:"appointments"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Appointments, 1)
}

func TestHandlerUpdateStatus(t *testing.T) {
	ledger := &fakeLedger{}
	h := newTestHandler(ledger)
	appt, err := ledger.Insert(context.Background(), CreateRequest{
		CustomerID:    uuid.New(),
		ServiceType:   ServiceInstallation,
		ScheduledDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"status": StatusConfirmed})
	req := httptest.NewRequest(http.MethodPut, "/api/appointments/"+appt.ID.String()+"/status", bytes.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", appt.ID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	h.UpdateStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success     bool         `json:"success"`
		Appointment *Appointment `json:"appointment"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, StatusConfirmed, resp.Appointment.Status)
}

func TestHandlerUpdateStatusNotFound(t *testing.T) {
	h := newTestHandler(&fakeLedger{})

	body, _ := json.Marshal(map[string]string{"status": StatusCancelled})
	missing := uuid.NewString()
	req := httptest.NewRequest(http.MethodPut, "/api/appointments/"+missing+"/status", bytes.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", missing)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	h.UpdateStatus(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
