package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"stayfront/internal/backend"
	"stayfront/internal/events"
	"stayfront/internal/export"
	"stayfront/internal/metrics"
	"stayfront/internal/models"
	"stayfront/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Fixed dialog texts. Server-provided action errors replace the fallback
// message, never the title.
const (
	titleAuthError     = "Authentication Error"
	titleFetchError    = "Error Loading Bookings"
	titleConfirmOK     = "Success"
	titleConfirmError  = "Error Confirming Booking"
	titleCancelOK      = "Booking Cancelled"
	titleCancelError   = "Error Cancelling Booking"
	msgNoSession       = "Please log in to view your bookings."
	msgAuthFailed      = "Failed to verify your identity. Please log in again."
	msgFetchFailed     = "Failed to load your bookings. Please try again later."
	msgConfirmOK       = "Booking confirmed successfully!"
	msgConfirmFallback = "Failed to confirm booking. Please try again."
	msgCancelOK        = "Booking cancelled successfully!"
	msgCancelFallback  = "Failed to cancel booking. Please try again."

	defaultCancelReason = "Owner cancelled"
)

// Dialog is the one generic modal shape: error and success share it.
type Dialog struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// BookingAPI is the slice of the backend client the bookings table needs.
type BookingAPI interface {
	OwnerBookings(ctx context.Context, userID int64) ([]models.Booking, error)
	ConfirmBooking(ctx context.Context, userID, bookingID int64) error
	CancelBooking(ctx context.Context, userID, bookingID int64, reason string) (*models.Refund, error)
}

// BookingsView owns the ephemeral table state for one owner: the raw list
// (replaced wholesale on every fetch), the query inputs, per-booking
// in-flight markers and the modal state. The projection is derived, never
// stored.
type BookingsView struct {
	api      BookingAPI
	sessions session.Checker
	bus      *events.Bus
	logger   zerolog.Logger
	pageSize int

	mu           sync.Mutex
	user         *models.User
	raw          []models.Booking
	search       string
	status       string
	sortKey      SortKey
	sortAsc      bool
	page         int
	inFlight     map[int64]bool
	cancelTokens map[int64]string
	dialog       *Dialog
	details      *models.Booking
}

// NewBookingsView constructs an unmounted view. Open must succeed before
// any table operation.
func NewBookingsView(api BookingAPI, sessions session.Checker, bus *events.Bus, pageSize int, logger zerolog.Logger) *BookingsView {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &BookingsView{
		api:          api,
		sessions:     sessions,
		bus:          bus,
		logger:       logger,
		pageSize:     pageSize,
		sortKey:      SortByID,
		sortAsc:      false,
		status:       models.StatusFilterAll,
		page:         1,
		inFlight:     make(map[int64]bool),
		cancelTokens: make(map[int64]string),
	}
}

// Open resolves the session and performs the initial fetch. On auth failure
// the error dialog is shown and nothing is fetched.
func (v *BookingsView) Open(ctx context.Context, token string) error {
	user, err := v.sessions.Check(ctx, token)
	if err != nil {
		msg := msgAuthFailed
		if errors.Is(err, session.ErrNoSession) {
			msg = msgNoSession
		}
		v.setDialog(titleAuthError, msg)
		return &AuthError{Err: err}
	}

	v.mu.Lock()
	v.user = user
	v.mu.Unlock()

	return v.Refresh(ctx)
}

// Close resets the view to its unmounted state.
func (v *BookingsView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.user = nil
	v.raw = nil
	v.search = ""
	v.status = models.StatusFilterAll
	v.sortKey = SortByID
	v.sortAsc = false
	v.page = 1
	v.inFlight = make(map[int64]bool)
	v.cancelTokens = make(map[int64]string)
	v.dialog = nil
	v.details = nil
}

// Refresh refetches the owner's list and replaces the raw slice wholesale.
// On failure the previous list is kept and the error dialog is shown.
func (v *BookingsView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	user := v.user
	v.mu.Unlock()
	if user == nil {
		return ErrNotMounted
	}

	bookings, err := v.api.OwnerBookings(ctx, user.UserID)
	if err != nil {
		v.logger.Error().Err(err).Int64("user_id", user.UserID).Msg("fetch bookings failed")
		v.setDialog(titleFetchError, msgFetchFailed)
		return &FetchError{Err: err}
	}

	v.mu.Lock()
	v.raw = bookings
	v.mu.Unlock()
	return nil
}

// Projection recomputes the derived table from the current inputs.
func (v *BookingsView) Projection() Projection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Project(v.raw, Query{
		Search:   v.search,
		Status:   v.status,
		SortKey:  v.sortKey,
		SortAsc:  v.sortAsc,
		Page:     v.page,
		PageSize: v.pageSize,
	})
}

// SetSearch updates the search text. The page deliberately stays where it
// is; only the status filter resets it.
func (v *BookingsView) SetSearch(search string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = search
}

// SetStatusFilter switches the status filter and resets to the first page.
func (v *BookingsView) SetStatusFilter(status string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = normalizeStatusFilter(status)
	v.page = 1
}

func normalizeStatusFilter(status string) string {
	for _, s := range models.Statuses {
		if status == s {
			return s
		}
	}
	return models.StatusFilterAll
}

// ToggleSort flips direction when the key is already active and otherwise
// switches to the new key ascending.
func (v *BookingsView) ToggleSort(key SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sortKey == key {
		v.sortAsc = !v.sortAsc
		return
	}
	v.sortKey = key
	v.sortAsc = true
}

// SetPage clamps into the valid page range of the current projection.
func (v *BookingsView) SetPage(page int) {
	proj := v.Projection()
	v.mu.Lock()
	defer v.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if proj.TotalPages > 0 && page > proj.TotalPages {
		page = proj.TotalPages
	}
	v.page = page
}

func (v *BookingsView) NextPage() { v.SetPage(v.currentPage() + 1) }
func (v *BookingsView) PrevPage() { v.SetPage(v.currentPage() - 1) }

func (v *BookingsView) currentPage() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// Confirm issues the PENDING -> CONFIRMED command for one booking. At most
// one action per booking may be in flight; actions on other bookings are
// not blocked. Failure is terminal for the click: no refetch, dialog only.
func (v *BookingsView) Confirm(ctx context.Context, bookingID int64) error {
	booking, err := v.beginAction(bookingID)
	if err != nil {
		return err
	}
	defer v.endAction(bookingID)

	user := v.currentUser()
	if err := v.api.ConfirmBooking(ctx, user.UserID, bookingID); err != nil {
		metrics.IncAction("confirm", "rejected")
		v.setDialog(titleConfirmError, actionMessage(err, msgConfirmFallback))
		return &ActionError{Action: "confirm", Err: err}
	}

	metrics.IncAction("confirm", "ok")
	v.setDialog(titleConfirmOK, msgConfirmOK)
	v.publishAction(events.EventBookingConfirmed, booking, models.StatusConfirmed, 0)

	if err := v.Refresh(ctx); err != nil {
		return err
	}
	return nil
}

// RequestCancel records the explicit acknowledgment required before a
// cancel and returns the token the caller must echo back. Replaces the
// original's blocking confirm() prompt.
func (v *BookingsView) RequestCancel(bookingID int64) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	booking := findBooking(v.raw, bookingID)
	if booking == nil {
		return "", ErrUnknownBooking
	}
	if booking.Status != models.StatusPending {
		return "", ErrNotPending
	}

	token := uuid.NewString()
	v.cancelTokens[bookingID] = token
	return token, nil
}

// Cancel issues the PENDING -> CANCELLED command after verifying the
// acknowledgment token. A refund reported by the backend extends the
// success message with the refunded amount.
func (v *BookingsView) Cancel(ctx context.Context, bookingID int64, token, reason string) error {
	v.mu.Lock()
	want, ok := v.cancelTokens[bookingID]
	if !ok || want != token {
		v.mu.Unlock()
		return ErrBadCancelToken
	}
	delete(v.cancelTokens, bookingID)
	v.mu.Unlock()

	booking, err := v.beginAction(bookingID)
	if err != nil {
		return err
	}
	defer v.endAction(bookingID)

	if reason == "" {
		reason = defaultCancelReason
	}

	user := v.currentUser()
	refund, err := v.api.CancelBooking(ctx, user.UserID, bookingID, reason)
	if err != nil {
		metrics.IncAction("cancel", "rejected")
		v.setDialog(titleCancelError, actionMessage(err, msgCancelFallback))
		return &ActionError{Action: "cancel", Err: err}
	}

	msg := msgCancelOK
	var refundAmount int64
	if refund != nil && refund.Success {
		refundAmount = refund.Amount
		msg = fmt.Sprintf("%s Refund of $%d has been issued.", msg, refund.Amount)
	}

	metrics.IncAction("cancel", "ok")
	v.setDialog(titleCancelOK, msg)
	v.publishAction(events.EventBookingCancelled, booking, models.StatusCancelled, refundAmount)

	if err := v.Refresh(ctx); err != nil {
		return err
	}
	return nil
}

// beginAction validates the lifecycle guard and claims the per-booking
// in-flight slot.
func (v *BookingsView) beginAction(bookingID int64) (models.Booking, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.user == nil {
		return models.Booking{}, ErrNotMounted
	}

	booking := findBooking(v.raw, bookingID)
	if booking == nil {
		return models.Booking{}, ErrUnknownBooking
	}
	if booking.Status != models.StatusPending {
		return models.Booking{}, ErrNotPending
	}
	if v.inFlight[bookingID] {
		return models.Booking{}, ErrActionInFlight
	}

	v.inFlight[bookingID] = true
	return *booking, nil
}

func (v *BookingsView) endAction(bookingID int64) {
	v.mu.Lock()
	delete(v.inFlight, bookingID)
	v.mu.Unlock()
}

func (v *BookingsView) currentUser() *models.User {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.user
}

// ActionPending reports whether an action is in flight for the booking.
func (v *BookingsView) ActionPending(bookingID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inFlight[bookingID]
}

// ViewDetails opens the details modal for an already-fetched booking.
// Purely local, no network call.
func (v *BookingsView) ViewDetails(bookingID int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	booking := findBooking(v.raw, bookingID)
	if booking == nil {
		return ErrUnknownBooking
	}
	copied := *booking
	v.details = &copied
	return nil
}

// Details returns the booking in the details modal, nil when closed.
func (v *BookingsView) Details() *models.Booking {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.details == nil {
		return nil
	}
	copied := *v.details
	return &copied
}

// CloseDetails dismisses the details modal.
func (v *BookingsView) CloseDetails() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.details = nil
}

// Dialog returns the open error/info dialog, nil when none is showing.
func (v *BookingsView) Dialog() *Dialog {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dialog == nil {
		return nil
	}
	copied := *v.dialog
	return &copied
}

// CloseDialog dismisses the error/info dialog.
func (v *BookingsView) CloseDialog() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dialog = nil
}

// ExportCSV serializes the current filtered+sorted view (not paginated).
func (v *BookingsView) ExportCSV(w io.Writer) error {
	proj := v.Projection()
	if err := export.WriteBookingsCSV(w, proj.Filtered); err != nil {
		return err
	}
	metrics.IncExport("csv")
	return nil
}

// State snapshots the query inputs for persistence across mounts.
func (v *BookingsView) State() models.ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	state := models.ViewState{
		Search:  v.search,
		Status:  v.status,
		SortKey: string(v.sortKey),
		SortAsc: v.sortAsc,
		Page:    v.page,
	}
	if v.user != nil {
		state.UserID = v.user.UserID
	}
	return state
}

// Restore seeds the query inputs from a persisted snapshot.
func (v *BookingsView) Restore(state models.ViewState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = state.Search
	v.status = normalizeStatusFilter(state.Status)
	v.sortKey = ParseSortKey(state.SortKey)
	v.sortAsc = state.SortAsc
	if state.Page >= 1 {
		v.page = state.Page
	}
}

func (v *BookingsView) setDialog(title, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dialog = &Dialog{Title: title, Message: message}
}

func (v *BookingsView) publishAction(eventType string, booking models.Booking, status string, refund int64) {
	_ = v.bus.PublishJSON(eventType, events.BookingActionPayload{
		BookingID:    booking.BookingID,
		DisplayID:    booking.ID,
		OwnerID:      booking.UserID,
		GuestName:    booking.GuestName,
		Property:     booking.Property,
		Status:       status,
		RefundAmount: refund,
	})
}

// actionMessage prefers the backend's own error text over the generic
// fallback, matching the dialog contract.
func actionMessage(err error, fallback string) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.HasMessage() {
		return apiErr.Message
	}
	return fallback
}

func findBooking(bookings []models.Booking, bookingID int64) *models.Booking {
	for i := range bookings {
		if bookings[i].BookingID == bookingID {
			return &bookings[i]
		}
	}
	return nil
}
