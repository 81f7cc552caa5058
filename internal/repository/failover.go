package repository

import (
	"context"
	"sync/atomic"
	"time"

	"stayfront/internal/models"

	"github.com/rs/zerolog"
)

// FailoverViewStateStore serves from the primary store until it fails, then
// switches to the fallback and retries the primary after a minute.
type FailoverViewStateStore struct {
	primary  ViewStateStore
	fallback ViewStateStore
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// unix seconds of the last failed primary probe
	lastCheck atomic.Int64
}

func NewFailoverViewStateStore(primary, fallback ViewStateStore, logger *zerolog.Logger) *FailoverViewStateStore {
	return &FailoverViewStateStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverViewStateStore) GetState(ctx context.Context, userID int64) (*models.ViewState, error) {
	if !r.isDown.Load() {
		state, err := r.primary.GetState(ctx, userID)
		if err == nil {
			return state, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Now().Unix()-r.lastCheck.Load() > 60 {
		state, err := r.primary.GetState(ctx, userID)
		if err == nil {
			r.isDown.Store(false)
			return state, nil
		}
		r.lastCheck.Store(time.Now().Unix())
	}

	return r.fallback.GetState(ctx, userID)
}

func (r *FailoverViewStateStore) SetState(ctx context.Context, state *models.ViewState) error {
	if !r.isDown.Load() {
		err := r.primary.SetState(ctx, state)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetState(ctx, state)
}

func (r *FailoverViewStateStore) ClearState(ctx context.Context, userID int64) error {
	if !r.isDown.Load() {
		err := r.primary.ClearState(ctx, userID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.ClearState(ctx, userID)
}

func (r *FailoverViewStateStore) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}

func (r *FailoverViewStateStore) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary view state store failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().Unix())
}
