package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"innkeep/internal/database"
	"innkeep/internal/domain"
	"innkeep/internal/events"
	"innkeep/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownRoom   = errors.New("unknown room")
	ErrTooManyGuests = errors.New("guest count exceeds room capacity")
	ErrDateTooFar    = errors.New("check-in date is too far in the future")
)

// Draft is a fully assembled booking request as collected by the
// public wizard or the walk-in desk.
type Draft struct {
	RoomName string           `json:"room_name" validate:"required"`
	CheckIn  time.Time        `json:"check_in" validate:"required"`
	CheckOut time.Time        `json:"check_out" validate:"required"`
	Guests   int              `json:"guests" validate:"required,min=1"`
	Guest    models.GuestInfo `json:"guest"`
	Channel  string           `json:"channel" validate:"omitempty,oneof=online walk-in"`
}

// Service owns the booking lifecycle: availability, stay pricing,
// submission and check-out.
type Service struct {
	store          domain.Store
	cache          domain.DateCache
	eventBus       domain.EventPublisher
	exporter       domain.ExportWorker
	rooms          map[string]models.Room
	maxAdvanceDays int
	validate       *validator.Validate
	logger         *zerolog.Logger
	now            func() time.Time
}

func NewService(store domain.Store, cache domain.DateCache, eventBus domain.EventPublisher, exporter domain.ExportWorker, rooms []models.Room, maxAdvanceDays int, logger *zerolog.Logger) *Service {
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = 365
	}

	catalog := make(map[string]models.Room, len(rooms))
	for _, room := range rooms {
		catalog[room.Name] = room
	}

	return &Service{
		store:          store,
		cache:          cache,
		eventBus:       eventBus,
		exporter:       exporter,
		rooms:          catalog,
		maxAdvanceDays: maxAdvanceDays,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		logger:         logger,
		now:            time.Now,
	}
}

// Rooms returns the catalog sorted by id.
func (s *Service) Rooms() []models.Room {
	rooms := make([]models.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

// Room looks up a catalog entry by name.
func (s *Service) Room(name string) (models.Room, error) {
	room, ok := s.rooms[name]
	if !ok {
		return models.Room{}, ErrUnknownRoom
	}
	return room, nil
}

// DatesBookedFor returns every calendar date covered by an active
// reservation of the room, inclusive of both the check-in and the
// check-out day. Reads go through the cache; misses fall back to the
// store and repopulate it.
func (s *Service) DatesBookedFor(ctx context.Context, roomName string) ([]time.Time, error) {
	if _, ok := s.rooms[roomName]; !ok {
		return nil, ErrUnknownRoom
	}

	if s.cache != nil {
		dates, hit, err := s.cache.GetRoomDates(ctx, roomName)
		if err != nil {
			s.logger.Warn().Err(err).Str("room", roomName).Msg("date cache read failed")
		} else if hit {
			return dates, nil
		}
	}

	ranges, err := s.store.BookedRanges(ctx, roomName)
	if err != nil {
		return nil, err
	}
	dates := expandRanges(ranges)

	if s.cache != nil {
		if err := s.cache.SetRoomDates(ctx, roomName, dates); err != nil {
			s.logger.Warn().Err(err).Str("room", roomName).Msg("date cache write failed")
		}
	}
	return dates, nil
}

// Quote prices a prospective stay without persisting anything.
func (s *Service) Quote(roomName string, checkIn, checkOut time.Time) (nights int, cost int64, err error) {
	room, ok := s.rooms[roomName]
	if !ok {
		return 0, 0, ErrUnknownRoom
	}
	nights = models.Nights(checkIn, checkOut)
	return nights, models.Cost(room.RatePerNight, nights), nil
}

// SubmitBooking validates the draft and persists it as a pending
// reservation. On any failure nothing is stored and the caller may
// retry the same draft.
func (s *Service) SubmitBooking(ctx context.Context, draft Draft) (*models.Reservation, error) {
	if err := s.validate.Struct(draft); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(draft.Guest); err != nil {
		return nil, err
	}

	room, ok := s.rooms[draft.RoomName]
	if !ok {
		return nil, ErrUnknownRoom
	}
	if draft.Guests > room.Capacity {
		return nil, ErrTooManyGuests
	}

	checkIn := models.Day(draft.CheckIn)
	checkOut := models.Day(draft.CheckOut)
	if err := s.validateStayDates(checkIn, checkOut); err != nil {
		return nil, err
	}

	nights := models.Nights(checkIn, checkOut)
	channel := draft.Channel
	if channel == "" {
		channel = models.ChannelOnline
	}

	reservation := &models.Reservation{
		RoomName:     room.Name,
		Room:         room,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Nights:       nights,
		Guests:       draft.Guests,
		RatePerNight: room.RatePerNight,
		TotalCost:    models.Cost(room.RatePerNight, nights),
		Guest:        draft.Guest,
		Channel:      channel,
		Status:       models.StatusPending,
	}

	if err := s.store.CreateReservationWithLock(ctx, reservation); err != nil {
		return nil, err
	}

	s.invalidateRoom(ctx, room.Name)
	s.publishReservation(events.EventReservationCreated, reservation)

	return reservation, nil
}

// CheckOut validates the payment input, archives the reservation with
// computed billing and removes it from the active set. The archive
// write and the delete are one transaction; a store failure leaves the
// reservation fully active.
func (s *Service) CheckOut(ctx context.Context, reservationID int64, payment models.PaymentDetails) (*models.HistoryRecord, error) {
	if err := s.validate.Struct(payment); err != nil {
		return nil, err
	}

	record, err := s.store.CheckOutReservation(ctx, reservationID, payment)
	if err != nil {
		return nil, err
	}

	s.invalidateRoom(ctx, record.RoomName)

	if s.eventBus != nil {
		payload := events.CheckoutEventPayload{
			ReservationID: record.ReservationID,
			RoomName:      record.RoomName,
			GuestName:     record.Guest.FirstName + " " + record.Guest.LastName,
			PaymentMethod: record.Payment.Method,
			DaysStayed:    record.Payment.DaysStayed,
			TotalAmount:   record.Payment.TotalAmount,
		}
		if err := s.eventBus.PublishJSON(events.EventReservationCheckedOut, payload); err != nil {
			s.logger.Error().Err(err).Int64("reservation_id", record.ReservationID).Msg("publish checkout event error")
		}
	}

	if s.exporter != nil {
		if err := s.exporter.EnqueueRecord(ctx, record); err != nil {
			s.logger.Error().Err(err).Int64("reservation_id", record.ReservationID).Msg("ledger enqueue error")
		}
	}

	return record, nil
}

// ListActive lists active reservations, optionally filtered by room.
func (s *Service) ListActive(ctx context.Context, roomName string) ([]*models.Reservation, error) {
	return s.store.ListActive(ctx, roomName)
}

func (s *Service) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

func (s *Service) ListHistory(ctx context.Context, limit int) ([]*models.HistoryRecord, error) {
	return s.store.ListHistory(ctx, limit)
}

// HistoryBetween returns archived stays checked out within [start, end).
func (s *Service) HistoryBetween(ctx context.Context, start, end time.Time) ([]*models.HistoryRecord, error) {
	return s.store.HistoryBetween(ctx, start, end)
}

func (s *Service) validateStayDates(checkIn, checkOut time.Time) error {
	today := models.Day(s.now())
	if checkIn.Before(today) {
		return database.ErrPastDate
	}
	if !checkOut.After(checkIn) {
		return database.ErrInvalidStay
	}
	if checkIn.After(today.AddDate(0, 0, s.maxAdvanceDays)) {
		return ErrDateTooFar
	}
	return nil
}

func (s *Service) invalidateRoom(ctx context.Context, roomName string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRoom(ctx, roomName); err != nil {
		s.logger.Warn().Err(err).Str("room", roomName).Msg("date cache invalidation failed")
	}
}

func (s *Service) publishReservation(eventType string, r *models.Reservation) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		RoomName:      r.RoomName,
		GuestName:     r.Guest.FirstName + " " + r.Guest.LastName,
		CheckIn:       r.CheckIn,
		CheckOut:      r.CheckOut,
		Nights:        r.Nights,
		TotalCost:     r.TotalCost,
		Channel:       r.Channel,
		Status:        r.Status,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", r.ID).Msg("publish event error")
	}
}

// expandRanges turns inclusive stay ranges into a sorted, de-duplicated
// list of calendar dates.
func expandRanges(ranges []database.StayRange) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, span := range ranges {
		start := models.Day(span.CheckIn)
		end := models.Day(span.CheckOut)
		if end.Before(start) {
			start, end = end, start
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			seen[d] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
