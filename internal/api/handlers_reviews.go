package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stayfront/internal/backend"
	"stayfront/internal/models"
	"stayfront/internal/view"
)

func (s *Server) handlePropertyReviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/properties/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "reviews" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	propertyID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || propertyID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	page, err := s.reviews.Property(r.Context(), propertyID, r.URL.Query().Get("sort"))
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		writeError(w, http.StatusBadGateway, "failed to load reviews")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handlePendingReviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	pending, err := s.reviews.Eligible(r.Context(), user.UserID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load pending reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": pending})
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if s.store != nil {
		allowed, err := s.store.CheckRateLimit(r.Context(), user.UserID,
			models.RateLimitReviews, models.RateLimitWindow*time.Second)
		if err == nil && !allowed {
			writeError(w, http.StatusTooManyRequests, "too many reviews, try again later")
			return
		}
	}

	var form view.ReviewForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.reviews.Submit(r.Context(), form); err != nil {
		s.writeReviewError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "submitted"})
}

func (s *Server) writeReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, view.ErrRatingRequired),
		errors.Is(err, view.ErrRatingRange),
		errors.Is(err, view.ErrReviewTooShort),
		errors.Is(err, view.ErrReviewTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			writeError(w, apiErr.StatusCode, apiErr.Message)
			return
		}
		writeError(w, http.StatusBadGateway, "failed to submit review")
	}
}

// requireSession resolves the Bearer token without touching the bookings
// view; customer endpoints have no table state.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, err := s.views.sessions.Check(r.Context(), bearerToken(r))
	if err != nil {
		s.writeSessionError(w, err)
		return nil, false
	}
	return user, true
}
