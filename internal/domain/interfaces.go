package domain

import (
	"context"
	"time"

	"innkeep/internal/database"
	"innkeep/internal/models"
)

// Store is the persistent collection of active reservations and the
// booking history archive.
type Store interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
	CreateReservationWithLock(ctx context.Context, r *models.Reservation) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	ListActive(ctx context.Context, roomName string) ([]*models.Reservation, error)
	BookedRanges(ctx context.Context, roomName string) ([]database.StayRange, error)
	CheckOutReservation(ctx context.Context, id int64, payment models.PaymentDetails) (*models.HistoryRecord, error)
	ListHistory(ctx context.Context, limit int) ([]*models.HistoryRecord, error)
	GetHistoryByReservation(ctx context.Context, reservationID int64) (*models.HistoryRecord, error)
	HistoryBetween(ctx context.Context, start, end time.Time) ([]*models.HistoryRecord, error)
}

// DateCache caches the booked-date set per room. Implementations may
// lose entries at any time; the service falls through to the store.
type DateCache interface {
	GetRoomDates(ctx context.Context, roomName string) ([]time.Time, bool, error)
	SetRoomDates(ctx context.Context, roomName string, dates []time.Time) error
	InvalidateRoom(ctx context.Context, roomName string) error
}

// EventPublisher delivers domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// LedgerWriter appends checked-out stays to the owner's ledger.
type LedgerWriter interface {
	AppendRecord(ctx context.Context, record *models.HistoryRecord) error
}

// ExportWorker schedules asynchronous ledger syncs.
type ExportWorker interface {
	EnqueueRecord(ctx context.Context, record *models.HistoryRecord) error
}
