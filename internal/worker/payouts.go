package worker

import (
	"context"
	"sync"
	"time"

	"stayfront/internal/models"

	"github.com/rs/zerolog"
)

// PayoutSource fetches the payment processor's account state for an owner.
type PayoutSource interface {
	PayoutStatus(ctx context.Context, userID int64) (*models.PayoutStatus, error)
}

// PayoutPoller refreshes the payout status of the configured owners in the
// background so the dashboard reads a warm snapshot instead of hitting the
// processor on every page load.
type PayoutPoller struct {
	source   PayoutSource
	owners   []int64
	interval time.Duration
	retry    RetryPolicy
	logger   zerolog.Logger

	mu       sync.RWMutex
	statuses map[int64]*models.PayoutStatus
}

func NewPayoutPoller(source PayoutSource, owners []int64, interval time.Duration, logger zerolog.Logger) *PayoutPoller {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &PayoutPoller{
		source:   source,
		owners:   owners,
		interval: interval,
		retry:    RetryPolicy{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2},
		logger:   logger,
		statuses: make(map[int64]*models.PayoutStatus),
	}
}

// Start polls until ctx is done. The first poll runs immediately.
func (p *PayoutPoller) Start(ctx context.Context) {
	p.logger.Info().Int("owners", len(p.owners)).Msg("payout poller started")
	defer p.logger.Info().Msg("payout poller stopped")

	p.pollAll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollAll(ctx)
		}
	}
}

// Status returns the last known payout status for the owner, nil when the
// owner has never been polled successfully.
func (p *PayoutPoller) Status(userID int64) *models.PayoutStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.statuses[userID]
}

func (p *PayoutPoller) pollAll(ctx context.Context) {
	for _, ownerID := range p.owners {
		if ctx.Err() != nil {
			return
		}
		p.pollOne(ctx, ownerID)
	}
}

func (p *PayoutPoller) pollOne(ctx context.Context, ownerID int64) {
	var lastErr error
	for attempt := 1; attempt <= p.retry.MaxRetries; attempt++ {
		status, err := p.source.PayoutStatus(ctx, ownerID)
		if err == nil {
			p.mu.Lock()
			p.statuses[ownerID] = status
			p.mu.Unlock()
			return
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.retry.NextDelay(attempt)):
		}
	}

	// Старое значение остаётся в кэше до следующего успешного опроса
	p.logger.Error().Err(lastErr).Int64("owner_id", ownerID).Msg("payout status poll failed")
}
