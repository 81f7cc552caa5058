package view

import (
	"context"
	"strings"

	"stayfront/internal/models"

	"github.com/rs/zerolog"
)

// AdminAPI is the slice of the backend client the admin console needs.
type AdminAPI interface {
	Owners(ctx context.Context) ([]models.Owner, error)
	Payments(ctx context.Context) ([]models.Invoice, error)
}

// Admin is the read-only admin console surface: the owners directory and
// the subscription payments page.
type Admin struct {
	api    AdminAPI
	logger zerolog.Logger
}

func NewAdmin(api AdminAPI, logger zerolog.Logger) *Admin {
	return &Admin{api: api, logger: logger}
}

// ownersPageSize rows per page on the owners directory.
const ownersPageSize = 10

// OwnersPage is one page of the owner directory.
type OwnersPage struct {
	Data       []models.Owner `json:"data"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
}

// Owners returns the owner directory filtered by a case-insensitive
// substring match on name or email and paginated. An empty search passes
// everything; an out-of-range page clamps.
func (a *Admin) Owners(ctx context.Context, search string, page int) (*OwnersPage, error) {
	owners, err := a.api.Owners(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	filtered := owners
	if needle != "" {
		filtered = make([]models.Owner, 0, len(owners))
		for _, o := range owners {
			if strings.Contains(strings.ToLower(o.FullName), needle) ||
				strings.Contains(strings.ToLower(o.Email), needle) {
				filtered = append(filtered, o)
			}
		}
	}

	totalPages := (len(filtered) + ownersPageSize - 1) / ownersPageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * ownersPageSize
	end := start + ownersPageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return &OwnersPage{
		Data:       filtered[start:end],
		Total:      len(filtered),
		TotalPages: totalPages,
		Page:       page,
		PageSize:   ownersPageSize,
	}, nil
}

// PaymentsPage bundles the transactions table with its summary cards.
type PaymentsPage struct {
	Summary  models.PaymentSummary `json:"summary"`
	Invoices []models.Invoice      `json:"invoices"`
}

// Payments loads the subscription transactions and derives the summary
// cards from them. Failed invoices count toward FailedCount only, never
// the money totals.
func (a *Admin) Payments(ctx context.Context) (*PaymentsPage, error) {
	invoices, err := a.api.Payments(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	var summary models.PaymentSummary
	for _, inv := range invoices {
		switch inv.Status {
		case models.InvoicePaid:
			summary.CollectedThisMonth += inv.Amount
		case models.InvoicePending:
			summary.Pending += inv.Amount
		case models.InvoiceFailed:
			summary.FailedCount++
		}
	}

	if invoices == nil {
		invoices = []models.Invoice{}
	}
	return &PaymentsPage{Summary: summary, Invoices: invoices}, nil
}
