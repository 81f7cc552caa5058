package view

import "errors"

var (
	// ErrNotMounted is returned when an operation runs before Open succeeded.
	ErrNotMounted = errors.New("view is not mounted")

	// ErrUnknownBooking means the booking id is not in the fetched list.
	ErrUnknownBooking = errors.New("unknown booking")

	// ErrNotPending guards the lifecycle: confirm/cancel only leave PENDING.
	ErrNotPending = errors.New("booking is not pending")

	// ErrActionInFlight rejects a second action on a booking that already
	// has one pending.
	ErrActionInFlight = errors.New("action already in flight for booking")

	// ErrBadCancelToken rejects a cancel without a prior acknowledgment.
	ErrBadCancelToken = errors.New("missing or stale cancel confirmation")
)

// AuthError means the session could not be resolved; nothing was fetched.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "auth: " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

// FetchError means the list retrieval failed; the raw list is unchanged.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return "fetch: " + e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// ActionError means the backend rejected a confirm or cancel command.
type ActionError struct {
	Action string // "confirm" or "cancel"
	Err    error
}

func (e *ActionError) Error() string { return e.Action + ": " + e.Err.Error() }
func (e *ActionError) Unwrap() error { return e.Err }
