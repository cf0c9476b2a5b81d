package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB is the SQLite-backed store for reservations, booking history and
// the ledger export queue.
type DB struct {
	*sql.DB
	logger zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "database").Logger()
	}
	log.Info().Str("path", path).Msg("database initialized")

	return &DB{DB: db, logger: log}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            room_name TEXT NOT NULL,
            room_id INTEGER NOT NULL,
            rate_per_night INTEGER NOT NULL,
            capacity INTEGER NOT NULL,
            check_in TEXT NOT NULL,
            check_out TEXT NOT NULL,
            nights INTEGER NOT NULL,
            guests INTEGER NOT NULL,
            total_cost INTEGER NOT NULL,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            email TEXT NOT NULL,
            gender TEXT,
            phone TEXT NOT NULL,
            special_request TEXT,
            channel TEXT NOT NULL DEFAULT 'online',
            status TEXT NOT NULL DEFAULT 'pending',
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS booking_history (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            reservation_id INTEGER NOT NULL,
            room_name TEXT NOT NULL,
            room_id INTEGER NOT NULL,
            rate_per_night INTEGER NOT NULL,
            capacity INTEGER NOT NULL,
            check_in TEXT NOT NULL,
            check_out TEXT NOT NULL,
            nights INTEGER NOT NULL,
            guests INTEGER NOT NULL,
            total_cost INTEGER NOT NULL,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            email TEXT NOT NULL,
            gender TEXT,
            phone TEXT NOT NULL,
            special_request TEXT,
            channel TEXT NOT NULL,
            booked_at DATETIME NOT NULL,
            checked_out_at DATETIME NOT NULL,
            billing_name TEXT NOT NULL,
            billing_address TEXT NOT NULL,
            payment_method TEXT NOT NULL,
            gcash_number TEXT,
            days_stayed INTEGER NOT NULL,
            total_amount INTEGER NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS export_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            record_id INTEGER NOT NULL,
            payload TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_room_name ON reservations(room_name)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_check_in ON reservations(check_in)`,
		`CREATE INDEX IF NOT EXISTS idx_history_reservation_id ON booking_history(reservation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_history_checked_out_at ON booking_history(checked_out_at)`,
		`CREATE INDEX IF NOT EXISTS idx_export_queue_status ON export_queue(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.DB.Close()
}
