package api

import (
	"context"
	"errors"
	"sync"

	"stayfront/internal/models"
	"stayfront/internal/repository"
	"stayfront/internal/session"
	"stayfront/internal/view"
)

// viewManager keeps one mounted bookings view per owner. The persisted
// query state seeds a fresh view so filters survive reconnects.
type viewManager struct {
	mu       sync.Mutex
	views    map[int64]*view.BookingsView
	sessions session.Checker
	store    repository.ViewStateStore
	factory  func() *view.BookingsView
}

func newViewManager(sessions session.Checker, store repository.ViewStateStore, factory func() *view.BookingsView) *viewManager {
	return &viewManager{
		views:    make(map[int64]*view.BookingsView),
		sessions: sessions,
		store:    store,
		factory:  factory,
	}
}

// acquire resolves the session and returns the owner's mounted view,
// mounting one on first use. A failed initial fetch still mounts the view;
// the error dialog is part of its state.
func (m *viewManager) acquire(ctx context.Context, token string) (*view.BookingsView, *models.User, error) {
	user, err := m.sessions.Check(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	v, ok := m.views[user.UserID]
	if !ok {
		v = m.factory()
		if m.store != nil {
			if state, err := m.store.GetState(ctx, user.UserID); err == nil && state != nil {
				v.Restore(*state)
			}
		}
		m.views[user.UserID] = v
	}
	m.mu.Unlock()

	if !ok {
		if err := v.Open(ctx, token); err != nil {
			var fetchErr *view.FetchError
			if !errors.As(err, &fetchErr) {
				m.mu.Lock()
				delete(m.views, user.UserID)
				m.mu.Unlock()
				return nil, nil, err
			}
		}
	}

	return v, user, nil
}

// persist snapshots the view's query state. Errors are not fatal: the state
// store is a convenience, not a source of truth.
func (m *viewManager) persist(ctx context.Context, v *view.BookingsView) {
	if m.store == nil {
		return
	}
	state := v.State()
	if state.UserID == 0 {
		return
	}
	_ = m.store.SetState(ctx, &state)
}

// release unmounts the owner's view and drops the persisted state.
func (m *viewManager) release(ctx context.Context, userID int64) {
	m.mu.Lock()
	v, ok := m.views[userID]
	delete(m.views, userID)
	m.mu.Unlock()

	if ok {
		v.Close()
	}
	if m.store != nil {
		_ = m.store.ClearState(ctx, userID)
	}
}
