package repository

import (
	"context"
	"testing"
	"time"

	"stayfront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryViewStateRoundTrip(t *testing.T) {
	store := NewMemoryViewStateStore(time.Hour)
	ctx := context.Background()

	state := &models.ViewState{UserID: 42, Search: "lodge", Page: 3}
	require.NoError(t, store.SetState(ctx, state))

	got, err := store.GetState(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, state, got)

	require.NoError(t, store.ClearState(ctx, 42))
	got, err = store.GetState(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCheckRateLimit(t *testing.T) {
	store := NewMemoryViewStateStore(time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := store.CheckRateLimit(ctx, 7, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := store.CheckRateLimit(ctx, 7, 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Другой пользователь не делит окно
	allowed, err = store.CheckRateLimit(ctx, 8, 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
