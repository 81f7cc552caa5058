package repository

import (
	"context"
	"time"

	"stayfront/internal/models"
)

// ViewStateStore persists the bookings table query state between mounts and
// throttles review submissions.
type ViewStateStore interface {
	GetState(ctx context.Context, userID int64) (*models.ViewState, error)
	SetState(ctx context.Context, state *models.ViewState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}
