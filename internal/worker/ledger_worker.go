package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"innkeep/internal/database"
	"innkeep/internal/domain"
	"innkeep/internal/metrics"
	"innkeep/internal/models"

	"github.com/rs/zerolog"
)

const TaskAppendRecord = "append_record"

// LedgerWorker drains the export_queue table and appends each
// checked-out stay to the owner's ledger. Tasks are persisted first,
// so a crash between checkout and export replays on restart.
type LedgerWorker struct {
	db           *database.DB
	ledger       domain.LedgerWriter
	retryPolicy  RetryPolicy
	wake         chan struct{}
	pollInterval time.Duration
	batchSize    int
	logger       zerolog.Logger
}

func NewLedgerWorker(db *database.DB, ledger domain.LedgerWriter, retry RetryPolicy, logger *zerolog.Logger) *LedgerWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "ledger-worker").Logger()
	}

	return &LedgerWorker{
		db:           db,
		ledger:       ledger,
		retryPolicy:  retry,
		wake:         make(chan struct{}, models.ExportQueueSize),
		pollInterval: 2 * time.Second,
		batchSize:    20,
		logger:       log,
	}
}

// EnqueueRecord persists an export task and wakes the worker.
func (w *LedgerWorker) EnqueueRecord(ctx context.Context, record *models.HistoryRecord) error {
	if record == nil || record.ID == 0 {
		return fmt.Errorf("history record id is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := &database.ExportTask{
		TaskType: TaskAppendRecord,
		RecordID: record.ID,
		Payload:  string(payload),
		Status:   models.ExportStatusPending,
	}
	if err := w.db.CreateExportTask(ctx, task); err != nil {
		return err
	}

	select {
	case w.wake <- struct{}{}:
	default:
		// Worker will pick the task up on the next poll.
	}
	return nil
}

// Start processes tasks until the context is cancelled.
func (w *LedgerWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("poll_interval", w.pollInterval).Msg("ledger worker started")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("ledger worker stopped")
			return
		case <-w.wake:
			w.processPending(ctx)
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *LedgerWorker) processPending(ctx context.Context) {
	tasks, err := w.db.GetPendingExportTasks(ctx, w.batchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to load pending export tasks")
		return
	}

	for _, task := range tasks {
		if err := w.processTask(ctx, task); err != nil {
			w.handleTaskError(ctx, task, err)
			continue
		}
		if err := w.db.UpdateExportTaskStatus(ctx, task.ID, models.ExportStatusCompleted, "", nil); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("failed to mark export task completed")
		}
		metrics.IncLedgerExport("completed")
	}
}

func (w *LedgerWorker) processTask(ctx context.Context, task database.ExportTask) error {
	if task.TaskType != TaskAppendRecord {
		return fmt.Errorf("unknown task type: %s", task.TaskType)
	}

	var record models.HistoryRecord
	if err := json.Unmarshal([]byte(task.Payload), &record); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return w.ledger.AppendRecord(ctx, &record)
}

func (w *LedgerWorker) handleTaskError(ctx context.Context, task database.ExportTask, taskErr error) {
	if task.RetryCount+1 >= w.retryPolicy.MaxRetries {
		w.logger.Error().Err(taskErr).Int64("task_id", task.ID).Int("retries", task.RetryCount).Msg("export task failed permanently")
		if err := w.db.UpdateExportTaskStatus(ctx, task.ID, models.ExportStatusFailed, taskErr.Error(), nil); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("failed to dead-letter export task")
		}
		metrics.IncLedgerExport("failed")
		return
	}

	nextRetry := time.Now().Add(w.retryPolicy.NextDelay(task.RetryCount + 1))
	w.logger.Warn().Err(taskErr).Int64("task_id", task.ID).Time("next_retry", nextRetry).Msg("export task failed, scheduling retry")
	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, models.ExportStatusRetry, taskErr.Error(), &nextRetry); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("failed to schedule export task retry")
	}
	metrics.IncLedgerExport("retried")
}
