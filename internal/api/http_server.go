package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"innkeep/internal/booking"
	"innkeep/internal/config"
	"innkeep/internal/database"
	"innkeep/internal/export"
	"innkeep/internal/metrics"
	"innkeep/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer exposes the reservation core to the public site and the
// staff console.
type HTTPServer struct {
	cfg        config.APIConfig
	service    *booking.Service
	server     *http.Server
	auth       *HTTPAuth
	exportPath string
	log        zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, service *booking.Service, exportPath string, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{cfg: cfg, service: service, exportPath: exportPath}
	srv.auth = NewHTTPAuth(cfg)
	srv.log = zerolog.Nop()
	if logger != nil {
		srv.log = logger.With().Str("component", "http").Logger()
	}

	mux.HandleFunc("/api/v1/rooms", srv.handleRooms)
	mux.HandleFunc("/api/v1/availability/", srv.handleAvailability)
	mux.HandleFunc("/api/v1/reservations", srv.handleReservations)
	mux.HandleFunc("/api/v1/reservations/", srv.handleReservationByID)
	mux.HandleFunc("/api/v1/history", srv.handleHistory)
	mux.HandleFunc("/api/v1/history/export", srv.handleHistoryExport)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("rooms")
	writeJSON(w, http.StatusOK, map[string]any{"rooms": s.service.Rooms()})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("availability")

	const prefix = "/api/v1/availability/"
	roomName := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if roomName == "" || strings.Contains(roomName, "/") {
		writeError(w, http.StatusBadRequest, "room name is required")
		return
	}

	dates, err := s.service.DatesBookedFor(r.Context(), roomName)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	encoded := make([]string, 0, len(dates))
	for _, d := range dates {
		encoded = append(encoded, d.Format(models.DateLayout))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":         roomName,
		"booked_dates": encoded,
	})
}

type reservationRequest struct {
	RoomName string           `json:"room_name"`
	CheckIn  string           `json:"check_in"`
	CheckOut string           `json:"check_out"`
	Guests   int              `json:"guests"`
	Guest    models.GuestInfo `json:"guest"`
	Channel  string           `json:"channel"`
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("reservations_list")
		roomName := strings.TrimSpace(r.URL.Query().Get("room"))
		reservations, err := s.service.ListActive(r.Context(), roomName)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})

	case http.MethodPost:
		metrics.IncHTTP("reservations_create")
		var body reservationRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		draft := booking.Draft{
			RoomName: body.RoomName,
			Guests:   body.Guests,
			Guest:    body.Guest,
			Channel:  body.Channel,
		}
		var err error
		if draft.CheckIn, err = parseDate(body.CheckIn); err != nil {
			writeError(w, http.StatusBadRequest, "invalid check_in; expected YYYY-MM-DD")
			return
		}
		if draft.CheckOut, err = parseDate(body.CheckOut); err != nil {
			writeError(w, http.StatusBadRequest, "invalid check_out; expected YYYY-MM-DD")
			return
		}

		reservation, err := s.service.SubmitBooking(r.Context(), draft)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		metrics.IncReservation(reservation.Channel)
		writeJSON(w, http.StatusCreated, map[string]any{"reservation": reservation})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/reservations/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)

	if r.Method == http.MethodPost && strings.HasSuffix(rest, "/checkout") {
		s.handleCheckout(w, r, strings.TrimSuffix(rest, "/checkout"))
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("reservations_get")

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	reservation, err := s.service.GetReservation(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservation": reservation})
}

func (s *HTTPServer) handleCheckout(w http.ResponseWriter, r *http.Request, rawID string) {
	metrics.IncHTTP("checkout")

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	var payment models.PaymentDetails
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payment); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	record, err := s.service.CheckOut(r.Context(), id, payment)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metrics.IncCheckout(record.Payment.Method)
	writeJSON(w, http.StatusOK, map[string]any{"history_record": record})
}

func (s *HTTPServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("history")

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records, err := s.service.ListHistory(r.Context(), limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": records})
}

// handleHistoryExport builds an XLSX report of checkouts in the given
// period and streams the file. Defaults to the last 30 days.
func (s *HTTPServer) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("history_export")

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	var err error
	if raw := strings.TrimSpace(r.URL.Query().Get("start")); raw != "" {
		if start, err = parseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start; expected YYYY-MM-DD")
			return
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("end")); raw != "" {
		if end, err = parseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end; expected YYYY-MM-DD")
			return
		}
		// Make the end date inclusive.
		end = end.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		writeError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	records, err := s.service.HistoryBetween(r.Context(), start, end)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	filePath, err := export.WriteHistoryReport(records, start, end, s.exportPath)
	if err != nil {
		s.log.Error().Err(err).Msg("history export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(filePath)))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, filePath)
}

// writeDomainError maps service errors to HTTP statuses.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		writeError(w, http.StatusBadRequest, validationErrs.Error())
	case errors.Is(err, booking.ErrUnknownRoom):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrRoomUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrInvalidStay),
		errors.Is(err, booking.ErrDateTooFar),
		errors.Is(err, booking.ErrTooManyGuests):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("x-request-id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("x-request-id", requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(models.DateLayout, strings.TrimSpace(raw))
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
