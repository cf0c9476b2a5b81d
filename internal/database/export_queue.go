package database

import (
	"context"
	"fmt"
	"time"

	"innkeep/internal/models"
)

// ExportTask is one unit of ledger-sync work persisted in export_queue
// so a crash between checkout and export loses nothing.
type ExportTask struct {
	ID          int64
	TaskType    string
	RecordID    int64
	Payload     string
	Status      string
	RetryCount  int
	LastError   string
	CreatedAt   time.Time
	ProcessedAt *time.Time
	NextRetryAt *time.Time
}

func (db *DB) CreateExportTask(ctx context.Context, task *ExportTask) error {
	query := `INSERT INTO export_queue (task_type, record_id, payload, status, retry_count, last_error, created_at, next_retry_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		task.TaskType,
		task.RecordID,
		task.Payload,
		task.Status,
		task.RetryCount,
		task.LastError,
		now,
		task.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create export task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id
	task.CreatedAt = now

	return nil
}

func (db *DB) GetPendingExportTasks(ctx context.Context, limit int) ([]ExportTask, error) {
	query := `SELECT id, task_type, record_id, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at
              FROM export_queue
              WHERE status IN ('pending', 'retry') AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending export tasks: %w", err)
	}
	defer rows.Close()

	var tasks []ExportTask
	for rows.Next() {
		var t ExportTask
		err := rows.Scan(
			&t.ID, &t.TaskType, &t.RecordID, &t.Payload, &t.Status,
			&t.RetryCount, &t.LastError, &t.CreatedAt, &t.ProcessedAt, &t.NextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (db *DB) UpdateExportTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []any
	now := time.Now()

	switch status {
	case models.ExportStatusRetry:
		query = `UPDATE export_queue SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`
		args = []any{status, errMsg, nextRetryAt, id}
	case models.ExportStatusCompleted, models.ExportStatusFailed:
		query = `UPDATE export_queue SET status = ?, last_error = ?, next_retry_at = ?, processed_at = ? WHERE id = ?`
		args = []any{status, errMsg, nextRetryAt, &now, id}
	default:
		query = `UPDATE export_queue SET status = ?, last_error = ?, next_retry_at = ? WHERE id = ?`
		args = []any{status, errMsg, nextRetryAt, id}
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update export task status: %w", err)
	}
	return nil
}
