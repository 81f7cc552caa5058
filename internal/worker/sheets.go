package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stayfront/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskSyncPayments = "sync_payments"
	TaskSyncBookings = "sync_bookings"
)

// SyncTask is one unit of Sheets mirroring work. Tasks survive restarts via
// the redis queue; the in-memory channel is only a fallback.
type SyncTask struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	OwnerID   int64     `json:"owner_id,omitempty"`
	Retries   int       `json:"retries"`
	CreatedAt time.Time `json:"created_at"`
}

// SheetsClient applies a snapshot to the spreadsheet.
type SheetsClient interface {
	ReplacePaymentsSheet(ctx context.Context, invoices []models.Invoice) error
	ReplaceBookingsSheet(ctx context.Context, bookings []models.Booking) error
}

// SyncSource produces the snapshots the worker mirrors. Data is fetched at
// processing time so a retried task never writes stale state.
type SyncSource interface {
	Payments(ctx context.Context) ([]models.Invoice, error)
	OwnerBookings(ctx context.Context, userID int64) ([]models.Booking, error)
}

// SheetsWorker consumes sync tasks and mirrors console data to Google Sheets.
type SheetsWorker struct {
	source        SyncSource
	sheets        SheetsClient
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        zerolog.Logger
}

// NewSheetsWorker builds a worker with sane defaults.
func NewSheetsWorker(source SyncSource, sheets SheetsClient, redisClient *redis.Client, retry RetryPolicy, logger zerolog.Logger) *SheetsWorker {
	if retry.MaxRetries == 0 {
		retry = DefaultRetryPolicy()
	}

	return &SheetsWorker{
		source:        source,
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan SyncTask, 128),
		redisQueueKey: "sheets:queue",
		deadLetterKey: "sheets:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger,
	}
}

// Enqueue schedules a task via redis or the in-memory queue.
func (w *SheetsWorker) Enqueue(ctx context.Context, taskType string, ownerID int64) error {
	if taskType != TaskSyncPayments && taskType != TaskSyncBookings {
		return fmt.Errorf("unknown task type: %s", taskType)
	}
	if taskType == TaskSyncBookings && ownerID == 0 {
		return errors.New("owner id is required")
	}

	task := SyncTask{
		ID:        uuid.NewString(),
		Type:      taskType,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("sheets worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return errors.New("sync queue is full")
	}
}

// Start launches main loop; stops when ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sheets worker started")
	defer w.logger.Info().Msg("sheets worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, t)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *SheetsWorker) tryLocalQueue() (SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return SyncTask{}, false
	}
}

func (w *SheetsWorker) tryRedis(ctx context.Context) (SyncTask, bool) {
	if w.redis == nil {
		return SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return SyncTask{}, false
		}
		w.logger.Error().Err(err).Msg("sheets worker: redis BRPOP error")
		return SyncTask{}, false
	}
	if len(res) != 2 {
		return SyncTask{}, false
	}
	var task SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("sheets worker: decode redis task")
		return SyncTask{}, false
	}
	return task, true
}

func (w *SheetsWorker) processTask(ctx context.Context, task SyncTask) {
	if err := w.handleTask(ctx, task); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}
	w.logger.Debug().Str("task_id", task.ID).Str("type", task.Type).Msg("sync task completed")
}

func (w *SheetsWorker) handleTask(ctx context.Context, task SyncTask) error {
	switch task.Type {
	case TaskSyncPayments:
		invoices, err := w.source.Payments(ctx)
		if err != nil {
			return fmt.Errorf("fetch payments: %w", err)
		}
		return w.sheets.ReplacePaymentsSheet(ctx, invoices)
	case TaskSyncBookings:
		bookings, err := w.source.OwnerBookings(ctx, task.OwnerID)
		if err != nil {
			return fmt.Errorf("fetch bookings: %w", err)
		}
		return w.sheets.ReplaceBookingsSheet(ctx, bookings)
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}
}

func (w *SheetsWorker) retryOrFail(ctx context.Context, task SyncTask, cause error) {
	task.Retries++
	if task.Retries >= w.retryPolicy.MaxRetries {
		w.logger.Error().Err(cause).Str("task_id", task.ID).Msg("sync task failed permanently")
		w.pushDeadLetter(ctx, task)
		return
	}

	delay := w.retryPolicy.NextDelay(task.Retries)
	w.logger.Warn().Err(cause).Str("task_id", task.ID).Dur("delay", delay).Msg("sync task retry scheduled")

	select {
	case <-ctx.Done():
		return
	case <-time.After(delay):
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err == nil {
			return
		}
	}
	select {
	case w.queue <- task:
	default:
		w.logger.Error().Str("task_id", task.ID).Msg("sync queue full, task dropped")
	}
}

func (w *SheetsWorker) pushRedis(ctx context.Context, task SyncTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *SheetsWorker) pushDeadLetter(ctx context.Context, task SyncTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Str("task_id", task.ID).Msg("encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Str("task_id", task.ID).Msg("deadletter push")
	}
}
