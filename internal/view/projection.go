package view

import (
	"sort"
	"strings"

	"stayfront/internal/models"
)

// SortKey names a sortable bookings table column.
type SortKey string

const (
	SortByID            SortKey = "id"
	SortByGuestName     SortKey = "guestName"
	SortByProperty      SortKey = "property"
	SortByRoom          SortKey = "room"
	SortByCheckIn       SortKey = "checkIn"
	SortByCheckOut      SortKey = "checkOut"
	SortByGuests        SortKey = "guests"
	SortByAmount        SortKey = "amount"
	SortByStatus        SortKey = "status"
	SortByPaymentStatus SortKey = "paymentStatus"
)

// ParseSortKey maps a column name onto a SortKey, defaulting to id.
func ParseSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortByGuestName, SortByProperty, SortByRoom, SortByCheckIn,
		SortByCheckOut, SortByGuests, SortByAmount, SortByStatus, SortByPaymentStatus:
		return SortKey(raw)
	default:
		return SortByID
	}
}

// Query holds the inputs of the derived table projection.
type Query struct {
	Search   string
	Status   string
	SortKey  SortKey
	SortAsc  bool
	Page     int
	PageSize int
}

// Projection is the derived view of the raw list: filtered and sorted rows
// plus the slice visible on the current page. Recomputed on every call,
// never cached.
type Projection struct {
	Rows       []models.Booking // current page
	Filtered   []models.Booking // full filtered+sorted sequence (export source)
	Total      int
	TotalPages int
	Page       int
	PageSize   int
}

// Project derives the filtered, sorted and paginated table from the raw list.
func Project(bookings []models.Booking, q Query) Projection {
	if q.PageSize <= 0 {
		q.PageSize = models.DefaultPageSize
	}

	filtered := Filter(bookings, q.Search, q.Status)
	Sort(filtered, q.SortKey, q.SortAsc)

	totalPages := (len(filtered) + q.PageSize - 1) / q.PageSize

	page := q.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * q.PageSize
	end := start + q.PageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Projection{
		Rows:       filtered[start:end],
		Filtered:   filtered,
		Total:      len(filtered),
		TotalPages: totalPages,
		Page:       page,
		PageSize:   q.PageSize,
	}
}

// Filter applies the search and status predicates conjunctively and returns
// a new slice preserving relative order.
func Filter(bookings []models.Booking, search, status string) []models.Booking {
	result := make([]models.Booking, 0, len(bookings))
	query := strings.ToLower(search)

	for _, b := range bookings {
		if query != "" && !matchesSearch(b, query) {
			continue
		}
		if !matchesStatus(b, status) {
			continue
		}
		result = append(result, b)
	}
	return result
}

// matchesSearch reports whether the lowercased query is a substring of the
// display id, guest name or property name.
func matchesSearch(b models.Booking, query string) bool {
	return strings.Contains(strings.ToLower(b.ID), query) ||
		strings.Contains(strings.ToLower(b.GuestName), query) ||
		strings.Contains(strings.ToLower(b.Property), query)
}

func matchesStatus(b models.Booking, status string) bool {
	if status == "" || status == models.StatusFilterAll {
		return true
	}
	return b.Status == status
}

// Sort orders the slice in place by the selected column using the field
// type's native ordering; asc=false flips the comparison. Ties keep their
// relative order, which makes the result deterministic for a given input.
func Sort(bookings []models.Booking, key SortKey, asc bool) {
	sort.SliceStable(bookings, func(i, j int) bool {
		c := compareBookings(bookings[i], bookings[j], key)
		if asc {
			return c < 0
		}
		return c > 0
	})
}

func compareBookings(a, b models.Booking, key SortKey) int {
	switch key {
	case SortByGuestName:
		return strings.Compare(a.GuestName, b.GuestName)
	case SortByProperty:
		return strings.Compare(a.Property, b.Property)
	case SortByRoom:
		return strings.Compare(a.Room, b.Room)
	case SortByCheckIn:
		return strings.Compare(a.CheckIn, b.CheckIn)
	case SortByCheckOut:
		return strings.Compare(a.CheckOut, b.CheckOut)
	case SortByGuests:
		return compareInt(int64(a.Guests), int64(b.Guests))
	case SortByAmount:
		return compareInt(a.Amount, b.Amount)
	case SortByStatus:
		return strings.Compare(a.Status, b.Status)
	case SortByPaymentStatus:
		return strings.Compare(a.PaymentStatus, b.PaymentStatus)
	default:
		return strings.Compare(a.ID, b.ID)
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
