package view

import (
	"testing"

	"stayfront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureBookings() []models.Booking {
	return []models.Booking{
		{ID: "BK-1001", BookingID: 1, GuestName: "Alice Johnson", Property: "Sea Breeze Villa", Room: "Deluxe", CheckIn: "2026-09-01", CheckOut: "2026-09-05", Guests: 2, Amount: 1200, Status: models.StatusPending, PaymentStatus: "paid"},
		{ID: "BK-1002", BookingID: 2, GuestName: "Bob Lee", Property: "Mountain Lodge", Room: "Standard", CheckIn: "2026-09-03", CheckOut: "2026-09-04", Guests: 1, Amount: 250, Status: models.StatusConfirmed, PaymentStatus: "pending"},
		{ID: "BK-1003", BookingID: 3, GuestName: "Carol Smith", Property: "Sea Breeze Villa", Room: "Studio", CheckIn: "2026-08-20", CheckOut: "2026-08-25", Guests: 4, Amount: 900, Status: models.StatusCompleted, PaymentStatus: "paid"},
		{ID: "BK-1004", BookingID: 4, GuestName: "dave alison", Property: "City Apartments", Room: "Loft", CheckIn: "2026-09-10", CheckOut: "2026-09-12", Guests: 3, Amount: 480, Status: models.StatusPending, PaymentStatus: "pending"},
		{ID: "BK-1005", BookingID: 5, GuestName: "Eve Turner", Property: "Mountain Lodge", Room: "Suite", CheckIn: "2026-09-02", CheckOut: "2026-09-06", Guests: 2, Amount: 700, Status: models.StatusCancelled, PaymentStatus: "failed"},
		{ID: "BK-1006", BookingID: 6, GuestName: "Frank Mills", Property: "Harbor House", Room: "Standard", CheckIn: "2026-09-15", CheckOut: "2026-09-18", Guests: 5, Amount: 1500, Status: models.StatusPending, PaymentStatus: "paid"},
		{ID: "BK-1007", BookingID: 7, GuestName: "Grace Hall", Property: "Sea Breeze Villa", Room: "Deluxe", CheckIn: "2026-09-07", CheckOut: "2026-09-09", Guests: 2, Amount: 640, Status: models.StatusConfirmed, PaymentStatus: "paid"},
	}
}

func ids(bookings []models.Booking) []string {
	out := make([]string, len(bookings))
	for i, b := range bookings {
		out[i] = b.ID
	}
	return out
}

func TestFilterByStatus(t *testing.T) {
	got := Filter(fixtureBookings(), "", models.StatusPending)

	// Подмножество исходного списка с сохранением порядка
	assert.Equal(t, []string{"BK-1001", "BK-1004", "BK-1006"}, ids(got))
	for _, b := range got {
		assert.Equal(t, models.StatusPending, b.Status)
	}
}

func TestFilterAllPassesEverything(t *testing.T) {
	assert.Len(t, Filter(fixtureBookings(), "", models.StatusFilterAll), 7)
	assert.Len(t, Filter(fixtureBookings(), "", ""), 7)
}

func TestFilterSearchCaseInsensitive(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"guest name any case", "ALISON", []string{"BK-1004"}},
		{"property substring", "sea breeze", []string{"BK-1001", "BK-1003", "BK-1007"}},
		{"booking id", "bk-1006", []string{"BK-1006"}},
		{"no match", "zanzibar", []string{}},
		{"empty matches all", "", []string{"BK-1001", "BK-1002", "BK-1003", "BK-1004", "BK-1005", "BK-1006", "BK-1007"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(fixtureBookings(), tt.search, models.StatusFilterAll)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterConjunction(t *testing.T) {
	// Оба предиката должны выполняться одновременно
	got := Filter(fixtureBookings(), "sea breeze", models.StatusConfirmed)
	assert.Equal(t, []string{"BK-1007"}, ids(got))
}

func TestSortDescendingReversesAscending(t *testing.T) {
	keys := []SortKey{
		SortByID, SortByGuestName, SortByProperty, SortByRoom, SortByCheckIn,
		SortByCheckOut, SortByGuests, SortByAmount, SortByStatus, SortByPaymentStatus,
	}

	for _, key := range keys {
		t.Run(string(key), func(t *testing.T) {
			asc := fixtureBookings()
			Sort(asc, key, true)

			desc := fixtureBookings()
			Sort(desc, key, false)

			require.Len(t, desc, len(asc))
			for i := range asc {
				gotC := compareBookings(desc[i], asc[len(asc)-1-i], key)
				assert.Zerof(t, gotC, "row %d differs in sort field for key %s", i, key)
			}
		})
	}
}

func TestSortByAmount(t *testing.T) {
	bookings := fixtureBookings()
	Sort(bookings, SortByAmount, true)

	for i := 1; i < len(bookings); i++ {
		assert.LessOrEqual(t, bookings[i-1].Amount, bookings[i].Amount)
	}
}

func TestSortStableOnTies(t *testing.T) {
	bookings := fixtureBookings()
	Sort(bookings, SortByRoom, true)

	// BK-1001 и BK-1007 делят "Deluxe", BK-1002 и BK-1006 делят "Standard";
	// стабильная сортировка сохраняет их исходный порядок
	assert.Equal(t, []string{"BK-1001", "BK-1007", "BK-1004", "BK-1002", "BK-1006", "BK-1003", "BK-1005"}, ids(bookings))
}

func TestProjectPagination(t *testing.T) {
	proj := Project(fixtureBookings(), Query{
		Status: models.StatusFilterAll, SortKey: SortByID, SortAsc: true,
		Page: 1, PageSize: 5,
	})

	assert.Equal(t, 7, proj.Total)
	assert.Equal(t, 2, proj.TotalPages)
	assert.Len(t, proj.Rows, 5)
	assert.Equal(t, "BK-1001", proj.Rows[0].ID)

	proj2 := Project(fixtureBookings(), Query{
		Status: models.StatusFilterAll, SortKey: SortByID, SortAsc: true,
		Page: 2, PageSize: 5,
	})
	assert.Len(t, proj2.Rows, 2)
	assert.Equal(t, "BK-1006", proj2.Rows[0].ID)

	// Конкатенация страниц восстанавливает отфильтрованный список
	combined := append(append([]models.Booking{}, proj.Rows...), proj2.Rows...)
	assert.Equal(t, ids(proj.Filtered), ids(combined))
}

func TestProjectClampsPage(t *testing.T) {
	proj := Project(fixtureBookings(), Query{
		Status: models.StatusFilterAll, SortKey: SortByID, SortAsc: true,
		Page: 99, PageSize: 5,
	})
	assert.Equal(t, 2, proj.Page)
	assert.Len(t, proj.Rows, 2)

	proj = Project(fixtureBookings(), Query{
		Status: models.StatusFilterAll, SortKey: SortByID, SortAsc: true,
		Page: 0, PageSize: 5,
	})
	assert.Equal(t, 1, proj.Page)
}

func TestProjectEmptyList(t *testing.T) {
	proj := Project(nil, Query{Status: models.StatusFilterAll, Page: 1, PageSize: 5})
	assert.Equal(t, 0, proj.Total)
	assert.Equal(t, 0, proj.TotalPages)
	assert.Empty(t, proj.Rows)
	assert.Equal(t, 1, proj.Page)
}

func TestParseSortKeyDefaultsToID(t *testing.T) {
	assert.Equal(t, SortByID, ParseSortKey("nonsense"))
	assert.Equal(t, SortByID, ParseSortKey(""))
	assert.Equal(t, SortByAmount, ParseSortKey("amount"))
}
