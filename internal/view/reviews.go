package view

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"stayfront/internal/events"
	"stayfront/internal/models"

	"github.com/rs/zerolog"
)

// Review validation errors surface as form field messages, not dialogs.
var (
	ErrRatingRequired = errors.New("rating is required")
	ErrRatingRange    = errors.New("rating must be between 1 and 5")
	ErrReviewTooShort = errors.New("review text is too short")
	ErrReviewTooLong  = errors.New("review text is too long")
)

// ReviewAPI is the slice of the backend client the customer surface needs.
type ReviewAPI interface {
	PropertyReviews(ctx context.Context, propertyID int64) (*models.PropertyReviews, error)
	PendingReviews(ctx context.Context, userID int64) ([]models.PendingReview, error)
	SubmitReview(ctx context.Context, review models.ReviewSubmission) error
}

// ReviewForm holds the submission inputs before validation.
type ReviewForm struct {
	BookingID  int64  `json:"bookingId"`
	PropertyID int64  `json:"propertyId"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
}

// Validate checks the rating and the trimmed text length. The text bounds
// apply after whitespace trimming so padded submissions do not slip through.
func (f *ReviewForm) Validate() error {
	if f.Rating == 0 {
		return ErrRatingRequired
	}
	if f.Rating < 1 || f.Rating > 5 {
		return ErrRatingRange
	}
	text := strings.TrimSpace(f.ReviewText)
	if len(text) < models.ReviewMinLength {
		return ErrReviewTooShort
	}
	if len(text) > models.ReviewMaxLength {
		return ErrReviewTooLong
	}
	return nil
}

// Reviews is the customer reviews surface: the public property page and
// the "review your stay" flow for completed bookings.
type Reviews struct {
	api    ReviewAPI
	bus    *events.Bus
	logger zerolog.Logger
	now    func() time.Time
}

func NewReviews(api ReviewAPI, bus *events.Bus, logger zerolog.Logger) *Reviews {
	return &Reviews{api: api, bus: bus, logger: logger, now: time.Now}
}

// Review list orderings for the property page.
const (
	ReviewSortRecent  = "recent"
	ReviewSortHelpful = "helpful"
	ReviewSortRating  = "rating"
)

// Property loads the published reviews page for a property. An unknown
// sort key falls back to most recent first.
func (r *Reviews) Property(ctx context.Context, propertyID int64, sortBy string) (*models.PropertyReviews, error) {
	page, err := r.api.PropertyReviews(ctx, propertyID)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	if page.Reviews == nil {
		page.Reviews = []models.Review{}
	}

	switch sortBy {
	case ReviewSortHelpful:
		sort.SliceStable(page.Reviews, func(i, j int) bool {
			return page.Reviews[i].Helpful > page.Reviews[j].Helpful
		})
	case ReviewSortRating:
		sort.SliceStable(page.Reviews, func(i, j int) bool {
			return page.Reviews[i].Rating > page.Reviews[j].Rating
		})
	default:
		// Даты приходят в формате 2006-01-02, сравнение строк корректно.
		sort.SliceStable(page.Reviews, func(i, j int) bool {
			return page.Reviews[i].Date > page.Reviews[j].Date
		})
	}
	return page, nil
}

// Eligible returns the guest's completed stays that can still be reviewed.
// A stay qualifies once its checkout date is strictly before today.
func (r *Reviews) Eligible(ctx context.Context, userID int64) ([]models.PendingReview, error) {
	pending, err := r.api.PendingReviews(ctx, userID)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	today := r.now().Format("2006-01-02")
	eligible := make([]models.PendingReview, 0, len(pending))
	for _, p := range pending {
		if p.CheckOutDate < today {
			eligible = append(eligible, p)
		}
	}
	return eligible, nil
}

// Submit validates the form and forwards it to the backend. The review
// appears on the property page only after the backend accepts it.
func (r *Reviews) Submit(ctx context.Context, form ReviewForm) error {
	if err := form.Validate(); err != nil {
		return err
	}

	submission := models.ReviewSubmission{
		BookingID:  form.BookingID,
		PropertyID: form.PropertyID,
		Rating:     form.Rating,
		ReviewText: strings.TrimSpace(form.ReviewText),
	}
	if err := r.api.SubmitReview(ctx, submission); err != nil {
		r.logger.Error().Err(err).Int64("booking_id", form.BookingID).Msg("submit review failed")
		return &ActionError{Action: "review", Err: err}
	}

	_ = r.bus.PublishJSON(events.EventReviewSubmitted, events.ReviewPayload{
		BookingID:  form.BookingID,
		PropertyID: form.PropertyID,
		Rating:     form.Rating,
	})
	return nil
}
