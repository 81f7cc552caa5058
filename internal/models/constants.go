package models

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"

	// StatusFilterAll passes every booking through the status predicate.
	StatusFilterAll = "All"
)

// Statuses lists the closed booking lifecycle enumeration.
var Statuses = []string{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

const (
	// DefaultPageSize is the fixed bookings table page size.
	DefaultPageSize = 5

	// DefaultViewStateTTL время жизни состояния таблицы в Redis (секунды).
	DefaultViewStateTTL = 24 * 60 * 60

	// ReviewMinLength and ReviewMaxLength bound the review text after trimming.
	ReviewMinLength = 10
	ReviewMaxLength = 500

	// RateLimitReviews ограничение на количество отзывов в окне.
	RateLimitReviews = 5
	// RateLimitWindow окно ограничения (секунды).
	RateLimitWindow = 60

	// ReviewsCacheTTL время жизни кэша отзывов (секунды).
	ReviewsCacheTTL = 5 * 60
)

const (
	PayoutsActive     = "active"
	PayoutsRestricted = "restricted"
	PayoutsPending    = "pending"
)

const (
	InvoicePaid    = "paid"
	InvoicePending = "pending"
	InvoiceFailed  = "failed"
)
