package view

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"stayfront/internal/backend"
	"stayfront/internal/events"
	"stayfront/internal/models"
	"stayfront/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookingAPI struct {
	mock.Mock
}

func (m *mockBookingAPI) OwnerBookings(ctx context.Context, userID int64) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingAPI) ConfirmBooking(ctx context.Context, userID, bookingID int64) error {
	args := m.Called(ctx, userID, bookingID)
	return args.Error(0)
}

func (m *mockBookingAPI) CancelBooking(ctx context.Context, userID, bookingID int64, reason string) (*models.Refund, error) {
	args := m.Called(ctx, userID, bookingID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Refund), args.Error(1)
}

type stubChecker struct {
	user *models.User
	err  error
}

func (s *stubChecker) Check(_ context.Context, _ string) (*models.User, error) {
	return s.user, s.err
}

func newTestView(api BookingAPI, checker session.Checker) *BookingsView {
	return NewBookingsView(api, checker, nil, models.DefaultPageSize, zerolog.Nop())
}

func openedView(t *testing.T, api *mockBookingAPI, bookings []models.Booking) *BookingsView {
	t.Helper()
	api.On("OwnerBookings", mock.Anything, int64(42)).Return(bookings, nil).Once()
	v := newTestView(api, &stubChecker{user: &models.User{UserID: 42}})
	require.NoError(t, v.Open(context.Background(), "tok"))
	return v
}

func TestOpenNoSession(t *testing.T) {
	api := new(mockBookingAPI)
	v := newTestView(api, &stubChecker{err: session.ErrNoSession})

	err := v.Open(context.Background(), "")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)

	dialog := v.Dialog()
	require.NotNil(t, dialog)
	assert.Equal(t, "Authentication Error", dialog.Title)
	assert.Equal(t, "Please log in to view your bookings.", dialog.Message)

	// Ничего не запрашиваем без сессии
	api.AssertNotCalled(t, "OwnerBookings", mock.Anything, mock.Anything)
}

func TestOpenAuthCheckFailed(t *testing.T) {
	api := new(mockBookingAPI)
	v := newTestView(api, &stubChecker{err: errors.New("auth service down")})

	err := v.Open(context.Background(), "tok")
	require.Error(t, err)

	dialog := v.Dialog()
	require.NotNil(t, dialog)
	assert.Equal(t, "Authentication Error", dialog.Title)
	assert.Equal(t, "Failed to verify your identity. Please log in again.", dialog.Message)
}

func TestOpenFetchesAndSortsNewestFirst(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	proj := v.Projection()
	assert.Equal(t, 7, proj.Total)
	// Начальная сортировка: по id по убыванию
	assert.Equal(t, "BK-1007", proj.Rows[0].ID)
	assert.Nil(t, v.Dialog())
	api.AssertExpectations(t)
}

func TestRefreshFailureKeepsPreviousList(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	api.On("OwnerBookings", mock.Anything, int64(42)).Return(nil, errors.New("backend down")).Once()
	err := v.Refresh(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)

	dialog := v.Dialog()
	require.NotNil(t, dialog)
	assert.Equal(t, "Error Loading Bookings", dialog.Title)
	assert.Equal(t, "Failed to load your bookings. Please try again later.", dialog.Message)

	// Прошлый список остаётся на экране
	assert.Equal(t, 7, v.Projection().Total)
}

func TestRefreshBeforeOpen(t *testing.T) {
	v := newTestView(new(mockBookingAPI), &stubChecker{})
	assert.ErrorIs(t, v.Refresh(context.Background()), ErrNotMounted)
}

func TestStatusFilterResetsPageSearchDoesNot(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	v.SetPage(2)
	require.Equal(t, 2, v.Projection().Page)

	v.SetSearch("sea")
	assert.Equal(t, 2, v.currentPage())

	v.SetPage(2)
	v.SetStatusFilter(models.StatusPending)
	assert.Equal(t, 1, v.currentPage())
}

func TestToggleSort(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	// Новый ключ начинает с возрастания
	v.ToggleSort(SortByAmount)
	proj := v.Projection()
	assert.Equal(t, int64(250), proj.Rows[0].Amount)

	// Повторный клик по тому же ключу меняет направление
	v.ToggleSort(SortByAmount)
	proj = v.Projection()
	assert.Equal(t, int64(1500), proj.Rows[0].Amount)
}

func TestSetPageClamps(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	v.SetPage(99)
	assert.Equal(t, 2, v.currentPage())
	v.SetPage(-5)
	assert.Equal(t, 1, v.currentPage())

	v.NextPage()
	assert.Equal(t, 2, v.currentPage())
	v.NextPage()
	assert.Equal(t, 2, v.currentPage())
	v.PrevPage()
	assert.Equal(t, 1, v.currentPage())
}

func TestConfirmSuccessRefetches(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	api.On("ConfirmBooking", mock.Anything, int64(42), int64(1)).Return(nil).Once()
	api.On("OwnerBookings", mock.Anything, int64(42)).Return(fixtureBookings(), nil).Once()

	require.NoError(t, v.Confirm(context.Background(), 1))

	dialog := v.Dialog()
	require.NotNil(t, dialog)
	assert.Equal(t, "Success", dialog.Title)
	assert.Equal(t, "Booking confirmed successfully!", dialog.Message)
	api.AssertExpectations(t)
}

func TestConfirmRejectedShowsServerMessageNoRefetch(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	api.On("ConfirmBooking", mock.Anything, int64(42), int64(1)).
		Return(&backend.APIError{StatusCode: 409, Message: "Already confirmed"}).Once()

	err := v.Confirm(context.Background(), 1)
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "confirm", actionErr.Action)

	dialog := v.Dialog()
	require.NotNil(t, dialog)
	assert.Equal(t, "Error Confirming Booking", dialog.Title)
	assert.Equal(t, "Already confirmed", dialog.Message)

	// Один запрос списка: неудачное действие не перечитывает данные
	api.AssertNumberOfCalls(t, "OwnerBookings", 1)
}

func TestConfirmFallbackMessage(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	api.On("ConfirmBooking", mock.Anything, int64(42), int64(1)).
		Return(errors.New("connection reset")).Once()

	require.Error(t, v.Confirm(context.Background(), 1))
	dialog := v.Dialog()
	require.NotNil(t, dialog)
	assert.Equal(t, "Failed to confirm booking. Please try again.", dialog.Message)
}

func TestConfirmGuards(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	// BookingID 2 имеет статус CONFIRMED
	assert.ErrorIs(t, v.Confirm(context.Background(), 2), ErrNotPending)
	assert.ErrorIs(t, v.Confirm(context.Background(), 999), ErrUnknownBooking)
	api.AssertNotCalled(t, "ConfirmBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelRequiresAcknowledgment(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	err := v.Cancel(context.Background(), 1, "bogus-token", "")
	assert.ErrorIs(t, err, ErrBadCancelToken)
	api.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelWithRefund(t *testing.T) {
	api := new(mockBookingAPI)
	bus := events.NewBus()

	api.On("OwnerBookings", mock.Anything, int64(42)).Return(fixtureBookings(), nil).Twice()
	v := NewBookingsView(api, &stubChecker{user: &models.User{UserID: 42}}, bus, models.DefaultPageSize, zerolog.Nop())
	require.NoError(t, v.Open(context.Background(), "tok"))

	var published []events.BookingActionPayload
	bus.Subscribe(events.EventBookingCancelled, func(e *events.Event) error {
		var p events.BookingActionPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		published = append(published, p)
		return nil
	})

	token, err := v.RequestCancel(1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	api.On("CancelBooking", mock.Anything, int64(42), int64(1), "Guest no-show").
		Return(&models.Refund{Success: true, Amount: 150}, nil).Once()

	require.NoError(t, v.Cancel(context.Background(), 1, token, "Guest no-show"))

	dialog := v.Dialog()
	require.NotNil(t, dialog)
	assert.Equal(t, "Booking Cancelled", dialog.Title)
	assert.Equal(t, "Booking cancelled successfully! Refund of $150 has been issued.", dialog.Message)

	require.Len(t, published, 1)
	assert.Equal(t, int64(150), published[0].RefundAmount)
	api.AssertExpectations(t)
}

func TestCancelWithoutRefund(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	token, err := v.RequestCancel(1)
	require.NoError(t, err)

	// Пустая причина заменяется причиной по умолчанию
	api.On("CancelBooking", mock.Anything, int64(42), int64(1), "Owner cancelled").
		Return(nil, nil).Once()
	api.On("OwnerBookings", mock.Anything, int64(42)).Return(fixtureBookings(), nil).Once()

	require.NoError(t, v.Cancel(context.Background(), 1, token, ""))

	dialog := v.Dialog()
	require.NotNil(t, dialog)
	assert.Equal(t, "Booking cancelled successfully!", dialog.Message)
}

func TestCancelTokenSingleUse(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	token, err := v.RequestCancel(1)
	require.NoError(t, err)

	api.On("CancelBooking", mock.Anything, int64(42), int64(1), "Owner cancelled").
		Return(nil, errors.New("backend down")).Once()

	require.Error(t, v.Cancel(context.Background(), 1, token, ""))
	// Токен погашен первой попыткой, повтор требует нового запроса
	assert.ErrorIs(t, v.Cancel(context.Background(), 1, token, ""), ErrBadCancelToken)
}

func TestRequestCancelGuards(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	_, err := v.RequestCancel(2)
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = v.RequestCancel(999)
	assert.ErrorIs(t, err, ErrUnknownBooking)
}

func TestViewDetailsLocalOnly(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	require.NoError(t, v.ViewDetails(3))
	details := v.Details()
	require.NotNil(t, details)
	assert.Equal(t, "BK-1003", details.ID)

	v.CloseDetails()
	assert.Nil(t, v.Details())

	assert.ErrorIs(t, v.ViewDetails(999), ErrUnknownBooking)
	// Детали берутся из уже загруженного списка
	api.AssertNumberOfCalls(t, "OwnerBookings", 1)
}

func TestCloseDialog(t *testing.T) {
	api := new(mockBookingAPI)
	v := newTestView(api, &stubChecker{err: session.ErrNoSession})

	_ = v.Open(context.Background(), "")
	require.NotNil(t, v.Dialog())
	v.CloseDialog()
	assert.Nil(t, v.Dialog())
}

func TestStateRestoreRoundTrip(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	v.SetSearch("villa")
	v.SetStatusFilter(models.StatusPending)
	v.ToggleSort(SortByCheckIn)
	v.SetPage(1)

	state := v.State()
	assert.Equal(t, int64(42), state.UserID)
	assert.Equal(t, "villa", state.Search)
	assert.Equal(t, models.StatusPending, state.Status)
	assert.Equal(t, "checkIn", state.SortKey)
	assert.True(t, state.SortAsc)

	restored := newTestView(new(mockBookingAPI), &stubChecker{})
	restored.Restore(state)

	got := restored.State()
	assert.Equal(t, state.Search, got.Search)
	assert.Equal(t, state.Status, got.Status)
	assert.Equal(t, state.SortKey, got.SortKey)
	assert.Equal(t, state.SortAsc, got.SortAsc)
	assert.Equal(t, state.Page, got.Page)
}

func TestExportCSVCoversFilteredNotPaginated(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	v.SetStatusFilter(models.StatusPending)

	var buf bytes.Buffer
	require.NoError(t, v.ExportCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// Заголовок плюс все отфильтрованные строки, не только текущая страница
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Booking ID")
}

func TestCloseResetsEverything(t *testing.T) {
	api := new(mockBookingAPI)
	v := openedView(t, api, fixtureBookings())

	v.SetSearch("villa")
	v.Close()

	assert.ErrorIs(t, v.Refresh(context.Background()), ErrNotMounted)
	state := v.State()
	assert.Empty(t, state.Search)
	assert.Equal(t, models.StatusFilterAll, state.Status)
	assert.Equal(t, string(SortByID), state.SortKey)
	assert.False(t, state.SortAsc)
}
