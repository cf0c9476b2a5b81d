package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"innkeep/internal/models"
)

const historyColumns = `id, reservation_id, room_name, room_id, rate_per_night, capacity,
	check_in, check_out, nights, guests, total_cost, first_name, last_name, email,
	gender, phone, special_request, channel, booked_at, checked_out_at,
	billing_name, billing_address, payment_method, gcash_number, days_stayed, total_amount`

// CheckOutReservation archives the reservation into booking_history
// and removes it from the active set in a single transaction. Either
// both writes land or the reservation stays fully active. DaysStayed
// and TotalAmount are computed here from the stored stay, never taken
// from the caller's payment input.
func (db *DB) CheckOutReservation(ctx context.Context, id int64, payment models.PaymentDetails) (*models.HistoryRecord, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	r, err := scanReservation(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to load reservation in tx: %w", err)
	}

	payment.DaysStayed = models.Nights(r.CheckIn, r.CheckOut)
	payment.TotalAmount = models.Cost(r.RatePerNight, payment.DaysStayed)

	now := time.Now()
	record := &models.HistoryRecord{
		ReservationID: r.ID,
		RoomName:      r.RoomName,
		Room:          r.Room,
		CheckIn:       r.CheckIn,
		CheckOut:      r.CheckOut,
		Nights:        r.Nights,
		Guests:        r.Guests,
		RatePerNight:  r.RatePerNight,
		TotalCost:     r.TotalCost,
		Guest:         r.Guest,
		Channel:       r.Channel,
		BookedAt:      r.CreatedAt,
		CheckedOutAt:  now,
		Payment:       payment,
	}

	insert := `INSERT INTO booking_history (
			reservation_id, room_name, room_id, rate_per_night, capacity,
			check_in, check_out, nights, guests, total_cost, first_name, last_name,
			email, gender, phone, special_request, channel, booked_at, checked_out_at,
			billing_name, billing_address, payment_method, gcash_number, days_stayed, total_amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, insert,
		record.ReservationID,
		record.RoomName,
		record.Room.ID,
		record.RatePerNight,
		record.Room.Capacity,
		record.CheckIn.Format(models.DateLayout),
		record.CheckOut.Format(models.DateLayout),
		record.Nights,
		record.Guests,
		record.TotalCost,
		record.Guest.FirstName,
		record.Guest.LastName,
		record.Guest.Email,
		record.Guest.Gender,
		record.Guest.Phone,
		record.Guest.SpecialRequest,
		record.Channel,
		record.BookedAt,
		record.CheckedOutAt,
		record.Payment.BillingName,
		record.Payment.BillingAddress,
		record.Payment.Method,
		record.Payment.GcashNumber,
		record.Payment.DaysStayed,
		record.Payment.TotalAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert history record in tx: %w", err)
	}

	historyID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get history insert id: %w", err)
	}
	record.ID = historyID

	del, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete reservation in tx: %w", err)
	}
	affected, err := del.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read delete result: %w", err)
	}
	// A concurrent checkout already archived this reservation. Roll
	// back so the history record is not duplicated.
	if affected == 0 {
		return nil, ErrReservationNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}
	return record, nil
}

// ListHistory returns archived stays, newest checkout first.
func (db *DB) ListHistory(ctx context.Context, limit int) ([]*models.HistoryRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM booking_history ORDER BY checked_out_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []*models.HistoryRecord
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, h)
	}
	return records, rows.Err()
}

// GetHistoryByReservation returns the archival record for a checked
// out reservation id.
func (db *DB) GetHistoryByReservation(ctx context.Context, reservationID int64) (*models.HistoryRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM booking_history WHERE reservation_id = ?`
	h, err := scanHistory(db.QueryRowContext(ctx, query, reservationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get history record: %w", err)
	}
	return h, nil
}

// HistoryBetween returns records checked out within [start, end).
func (db *DB) HistoryBetween(ctx context.Context, start, end time.Time) ([]*models.HistoryRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM booking_history
	          WHERE checked_out_at >= ? AND checked_out_at < ?
	          ORDER BY checked_out_at ASC`
	rows, err := db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query history range: %w", err)
	}
	defer rows.Close()

	var records []*models.HistoryRecord
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, h)
	}
	return records, rows.Err()
}

func scanHistory(row rowScanner) (*models.HistoryRecord, error) {
	h := &models.HistoryRecord{}
	var inStr, outStr string
	err := row.Scan(
		&h.ID, &h.ReservationID, &h.RoomName, &h.Room.ID, &h.RatePerNight, &h.Room.Capacity,
		&inStr, &outStr, &h.Nights, &h.Guests, &h.TotalCost,
		&h.Guest.FirstName, &h.Guest.LastName, &h.Guest.Email, &h.Guest.Gender,
		&h.Guest.Phone, &h.Guest.SpecialRequest, &h.Channel, &h.BookedAt, &h.CheckedOutAt,
		&h.Payment.BillingName, &h.Payment.BillingAddress, &h.Payment.Method,
		&h.Payment.GcashNumber, &h.Payment.DaysStayed, &h.Payment.TotalAmount,
	)
	if err != nil {
		return nil, err
	}

	span, err := parseStayRange(inStr, outStr)
	if err != nil {
		return nil, err
	}
	h.CheckIn = span.CheckIn
	h.CheckOut = span.CheckOut
	h.Room.Name = h.RoomName
	h.Room.RatePerNight = h.RatePerNight
	return h, nil
}
