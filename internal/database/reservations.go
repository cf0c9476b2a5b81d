package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"innkeep/internal/models"
)

const reservationColumns = `id, room_name, room_id, rate_per_night, capacity, check_in, check_out,
	nights, guests, total_cost, first_name, last_name, email, gender, phone,
	special_request, channel, status, created_at`

// StayRange is one reservation's inclusive date span for a room.
type StayRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// CreateReservation inserts a pending reservation and fills in the
// generated id and creation timestamp.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	query := `INSERT INTO reservations (
				room_name, room_id, rate_per_night, capacity, check_in, check_out,
				nights, guests, total_cost, first_name, last_name, email, gender,
				phone, special_request, channel, status, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		r.RoomName,
		r.Room.ID,
		r.RatePerNight,
		r.Room.Capacity,
		r.CheckIn.Format(models.DateLayout),
		r.CheckOut.Format(models.DateLayout),
		r.Nights,
		r.Guests,
		r.TotalCost,
		r.Guest.FirstName,
		r.Guest.LastName,
		r.Guest.Email,
		r.Guest.Gender,
		r.Guest.Phone,
		r.Guest.SpecialRequest,
		r.Channel,
		r.Status,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now

	return nil
}

// CreateReservationWithLock checks for an overlapping stay of the same
// room and inserts inside one transaction, so two racing submissions
// for the same dates cannot both land.
func (db *DB) CreateReservationWithLock(ctx context.Context, r *models.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Inclusive overlap: a stay whose checkout day equals another's
	// check-in day still collides.
	var overlapping int
	queryCount := `SELECT COUNT(*) FROM reservations
	               WHERE room_name = ? AND check_in <= ? AND check_out >= ?`
	err = tx.QueryRowContext(ctx, queryCount,
		r.RoomName,
		r.CheckOut.Format(models.DateLayout),
		r.CheckIn.Format(models.DateLayout),
	).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check availability in tx: %w", err)
	}
	if overlapping > 0 {
		return ErrRoomUnavailable
	}

	queryInsert := `INSERT INTO reservations (
				room_name, room_id, rate_per_night, capacity, check_in, check_out,
				nights, guests, total_cost, first_name, last_name, email, gender,
				phone, special_request, channel, status, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		r.RoomName,
		r.Room.ID,
		r.RatePerNight,
		r.Room.Capacity,
		r.CheckIn.Format(models.DateLayout),
		r.CheckOut.Format(models.DateLayout),
		r.Nights,
		r.Guests,
		r.TotalCost,
		r.Guest.FirstName,
		r.Guest.LastName,
		r.Guest.Email,
		r.Guest.Gender,
		r.Guest.Phone,
		r.Guest.SpecialRequest,
		r.Channel,
		r.Status,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	r.ID = id
	r.CreatedAt = now

	return tx.Commit()
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	r, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

// ListActive returns active reservations, optionally filtered by room
// name, newest stay first.
func (db *DB) ListActive(ctx context.Context, roomName string) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	args := []any{}
	if roomName != "" {
		query += ` WHERE room_name = ?`
		args = append(args, roomName)
	}
	query += ` ORDER BY check_in ASC, id ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// BookedRanges returns the inclusive check-in/check-out spans of every
// active reservation for the room.
func (db *DB) BookedRanges(ctx context.Context, roomName string) ([]StayRange, error) {
	query := `SELECT check_in, check_out FROM reservations WHERE room_name = ? ORDER BY check_in ASC`
	rows, err := db.QueryContext(ctx, query, roomName)
	if err != nil {
		return nil, fmt.Errorf("failed to get booked ranges: %w", err)
	}
	defer rows.Close()

	var ranges []StayRange
	for rows.Next() {
		var inStr, outStr string
		if err := rows.Scan(&inStr, &outStr); err != nil {
			return nil, fmt.Errorf("failed to scan booked range: %w", err)
		}
		span, err := parseStayRange(inStr, outStr)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, span)
	}
	return ranges, rows.Err()
}

func parseStayRange(inStr, outStr string) (StayRange, error) {
	checkIn, err := time.Parse(models.DateLayout, inStr)
	if err != nil {
		return StayRange{}, fmt.Errorf("failed to parse check-in date %s: %w", inStr, err)
	}
	checkOut, err := time.Parse(models.DateLayout, outStr)
	if err != nil {
		return StayRange{}, fmt.Errorf("failed to parse check-out date %s: %w", outStr, err)
	}
	return StayRange{CheckIn: checkIn, CheckOut: checkOut}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	r := &models.Reservation{}
	var inStr, outStr string
	err := row.Scan(
		&r.ID, &r.RoomName, &r.Room.ID, &r.RatePerNight, &r.Room.Capacity,
		&inStr, &outStr, &r.Nights, &r.Guests, &r.TotalCost,
		&r.Guest.FirstName, &r.Guest.LastName, &r.Guest.Email, &r.Guest.Gender,
		&r.Guest.Phone, &r.Guest.SpecialRequest, &r.Channel, &r.Status, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	span, err := parseStayRange(inStr, outStr)
	if err != nil {
		return nil, err
	}
	r.CheckIn = span.CheckIn
	r.CheckOut = span.CheckOut
	r.Room.Name = r.RoomName
	r.Room.RatePerNight = r.RatePerNight
	return r, nil
}
