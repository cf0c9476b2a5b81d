package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"innkeep/internal/booking"
	"innkeep/internal/config"
	"innkeep/internal/database"
	"innkeep/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRooms = []models.Room{
	{ID: 1, Name: "Twin Room", RatePerNight: 1500, Capacity: 2},
	{ID: 2, Name: "Family Room", RatePerNight: 3800, Capacity: 6},
}

func newTestServer(t *testing.T, cfg config.APIConfig) *HTTPServer {
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	service := booking.NewService(db, nil, nil, nil, testRooms, 365, &logger)
	return NewHTTPServer(cfg, service, t.TempDir(), &logger)
}

func doRequest(srv *HTTPServer, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	return rec
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(models.DateLayout)
}

func validReservationBody(checkInDays, nights int) map[string]any {
	return map[string]any{
		"room_name": "Twin Room",
		"check_in":  futureDate(checkInDays),
		"check_out": futureDate(checkInDays + nights),
		"guests":    2,
		"guest": map[string]any{
			"first_name": "Ana",
			"last_name":  "Reyes",
			"email":      "ana.reyes@example.com",
			"phone":      "09171234567",
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doRequest(srv, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoomsEndpoint(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doRequest(srv, http.MethodGet, "/api/v1/rooms", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rooms []models.Room `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rooms, 2)
	assert.Equal(t, "Twin Room", resp.Rooms[0].Name)

	rec = doRequest(srv, http.MethodPost, "/api/v1/rooms", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCreateReservation(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", validReservationBody(30, 3), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Reservation models.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.Reservation.ID)
	assert.Equal(t, 3, resp.Reservation.Nights)
	assert.Equal(t, int64(4500), resp.Reservation.TotalCost)
	assert.Equal(t, models.StatusPending, resp.Reservation.Status)
	assert.Equal(t, models.ChannelOnline, resp.Reservation.Channel)
}

func TestCreateReservationErrors(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		srv.server.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad date format", func(t *testing.T) {
		body := validReservationBody(30, 3)
		body["check_in"] = "06/10/2026"
		rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown room", func(t *testing.T) {
		body := validReservationBody(30, 3)
		body["room_name"] = "Penthouse"
		rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", body, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("past check-in", func(t *testing.T) {
		body := validReservationBody(30, 3)
		body["check_in"] = futureDate(-10)
		body["check_out"] = futureDate(-7)
		rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", body, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("too many guests", func(t *testing.T) {
		body := validReservationBody(30, 3)
		body["guests"] = 5
		rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", body, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("missing guest email", func(t *testing.T) {
		body := validReservationBody(30, 3)
		body["guest"] = map[string]any{"first_name": "Ana", "last_name": "Reyes", "phone": "09171234567"}
		rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("overlapping stay", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", validReservationBody(60, 3), nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doRequest(srv, http.MethodPost, "/api/v1/reservations", validReservationBody(61, 3), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestAvailabilityEndpoint(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", validReservationBody(30, 2), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/v1/availability/Twin%20Room", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Room        string   `json:"room"`
		BookedDates []string `json:"booked_dates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Twin Room", resp.Room)
	// Check-in, one night, check-out day: three inclusive dates.
	require.Len(t, resp.BookedDates, 3)
	assert.Equal(t, futureDate(30), resp.BookedDates[0])
	assert.Equal(t, futureDate(32), resp.BookedDates[2])

	// The other room is untouched.
	rec = doRequest(srv, http.MethodGet, "/api/v1/availability/Family%20Room", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.BookedDates)

	rec = doRequest(srv, http.MethodGet, "/api/v1/availability/Penthouse", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/v1/availability/", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReservationByID(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", validReservationBody(30, 3), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Reservation models.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doRequest(srv, http.MethodGet, fmt.Sprintf("/api/v1/reservations/%d", created.Reservation.ID), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/v1/reservations/99999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/v1/reservations/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutEndpoint(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", validReservationBody(30, 3), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Reservation models.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Reservation.ID

	payment := map[string]any{
		"billing_name":    "Ana Reyes",
		"billing_address": "123 Rizal St, Baguio",
		"method":          "cash",
	}
	rec = doRequest(srv, http.MethodPost, fmt.Sprintf("/api/v1/reservations/%d/checkout", id), payment, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		HistoryRecord models.HistoryRecord `json:"history_record"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.HistoryRecord.ReservationID)
	assert.Equal(t, 3, resp.HistoryRecord.Payment.DaysStayed)
	assert.Equal(t, int64(4500), resp.HistoryRecord.Payment.TotalAmount)

	// The reservation is no longer active.
	rec = doRequest(srv, http.MethodGet, fmt.Sprintf("/api/v1/reservations/%d", id), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A second checkout of the same id fails cleanly.
	rec = doRequest(srv, http.MethodPost, fmt.Sprintf("/api/v1/reservations/%d/checkout", id), payment, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// History shows the archived stay.
	rec = doRequest(srv, http.MethodGet, "/api/v1/history", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		History []models.HistoryRecord `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.History, 1)
}

func TestCheckoutValidation(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", validReservationBody(30, 3), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Reservation models.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Reservation.ID

	// gcash without a wallet number is rejected before any write.
	payment := map[string]any{
		"billing_name":    "Ana Reyes",
		"billing_address": "addr",
		"method":          "gcash",
	}
	rec = doRequest(srv, http.MethodPost, fmt.Sprintf("/api/v1/reservations/%d/checkout", id), payment, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodGet, fmt.Sprintf("/api/v1/reservations/%d", id), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reservation must still be active after a rejected checkout")
}

func TestHistoryExportEndpoint(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doRequest(srv, http.MethodPost, "/api/v1/reservations", validReservationBody(30, 3), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Reservation models.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	payment := map[string]any{
		"billing_name":    "Ana Reyes",
		"billing_address": "addr",
		"method":          "cash",
	}
	rec = doRequest(srv, http.MethodPost, fmt.Sprintf("/api/v1/reservations/%d/checkout", created.Reservation.ID), payment, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/v1/history/export", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())

	rec = doRequest(srv, http.MethodGet, "/api/v1/history/export?start=bad", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/v1/history/export?start=2026-06-10&end=2026-06-01", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryLimitValidation(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doRequest(srv, http.MethodGet, "/api/v1/history?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/v1/history?limit=-1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doRequest(srv, http.MethodGet, "/healthz", nil, nil)
	assert.NotEmpty(t, rec.Header().Get("x-request-id"))

	rec = doRequest(srv, http.MethodGet, "/healthz", nil, map[string]string{"x-request-id": "trace-1"})
	assert.Equal(t, "trace-1", rec.Header().Get("x-request-id"))
}

func TestShutdownWithoutStart(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	assert.NoError(t, srv.Shutdown(context.Background()))
}
