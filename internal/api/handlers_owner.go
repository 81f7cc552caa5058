package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stayfront/internal/backend"
	"stayfront/internal/export"
	"stayfront/internal/metrics"
	"stayfront/internal/models"
	"stayfront/internal/session"
	"stayfront/internal/view"
)

// bookingsResponse is the owner table payload: the visible page plus the
// paging facts and whatever dialog is currently open.
type bookingsResponse struct {
	Data       []models.Booking `json:"data"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	Dialog     *view.Dialog     `json:"dialog,omitempty"`
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

func (s *Server) ownerView(w http.ResponseWriter, r *http.Request) (*view.BookingsView, *models.User, bool) {
	v, user, err := s.views.acquire(r.Context(), bearerToken(r))
	if err != nil {
		s.writeSessionError(w, err)
		return nil, nil, false
	}
	return v, user, true
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	dialog := &view.Dialog{
		Title:   "Authentication Error",
		Message: "Failed to verify your identity. Please log in again.",
	}
	if errors.Is(err, session.ErrNoSession) {
		dialog.Message = "Please log in to view your bookings."
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"error":  "unauthorized",
		"dialog": dialog,
	})
}

func (s *Server) writeProjection(w http.ResponseWriter, v *view.BookingsView) {
	proj := v.Projection()
	writeJSON(w, http.StatusOK, bookingsResponse{
		Data:       proj.Rows,
		Total:      proj.Total,
		TotalPages: proj.TotalPages,
		Page:       proj.Page,
		PageSize:   proj.PageSize,
		Dialog:     v.Dialog(),
	})
}

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	v, _, ok := s.ownerView(w, r)
	if !ok {
		return
	}
	s.writeProjection(w, v)
}

func (s *Server) handleBookingRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/owner/bookings/")

	switch rest {
	case "query":
		s.handleBookingsQuery(w, r)
		return
	case "refresh":
		s.handleBookingsRefresh(w, r)
		return
	case "close":
		s.handleBookingsClose(w, r)
		return
	case "export":
		s.handleBookingsExport(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	bookingID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || bookingID <= 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case len(parts) == 1:
		s.handleBookingDetails(w, r, bookingID)
	case len(parts) == 2 && parts[1] == "confirm":
		s.handleConfirm(w, r, bookingID)
	case len(parts) == 3 && parts[1] == "cancel" && parts[2] == "request":
		s.handleCancelRequest(w, r, bookingID)
	case len(parts) == 2 && parts[1] == "cancel":
		s.handleCancel(w, r, bookingID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleBookingsQuery applies table commands in a fixed order. The status
// change resets the page; the search change does not.
func (s *Server) handleBookingsQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Search  *string `json:"search"`
		Status  *string `json:"status"`
		SortKey *string `json:"sortKey"`
		Page    *int    `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	v, _, ok := s.ownerView(w, r)
	if !ok {
		return
	}

	if body.Search != nil {
		v.SetSearch(*body.Search)
	}
	if body.Status != nil {
		v.SetStatusFilter(*body.Status)
	}
	if body.SortKey != nil {
		v.ToggleSort(view.ParseSortKey(*body.SortKey))
	}
	if body.Page != nil {
		v.SetPage(*body.Page)
	}

	s.views.persist(r.Context(), v)
	s.writeProjection(w, v)
}

func (s *Server) handleBookingsRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	v, _, ok := s.ownerView(w, r)
	if !ok {
		return
	}

	_ = v.Refresh(r.Context())
	s.writeProjection(w, v)
}

func (s *Server) handleBookingsClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	_, user, ok := s.ownerView(w, r)
	if !ok {
		return
	}

	s.views.release(r.Context(), user.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) handleBookingDetails(w http.ResponseWriter, r *http.Request, bookingID int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	v, _, ok := s.ownerView(w, r)
	if !ok {
		return
	}

	if err := v.ViewDetails(bookingID); err != nil {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, v.Details())
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request, bookingID int64) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	v, _, ok := s.ownerView(w, r)
	if !ok {
		return
	}

	if err := v.Confirm(r.Context(), bookingID); err != nil {
		s.writeActionError(w, v, err)
		return
	}
	s.writeProjection(w, v)
}

func (s *Server) handleCancelRequest(w http.ResponseWriter, r *http.Request, bookingID int64) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	v, _, ok := s.ownerView(w, r)
	if !ok {
		return
	}

	token, err := v.RequestCancel(bookingID)
	if err != nil {
		s.writeActionError(w, v, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"confirmationToken": token})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request, bookingID int64) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		ConfirmationToken string `json:"confirmationToken"`
		Reason            string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	v, _, ok := s.ownerView(w, r)
	if !ok {
		return
	}

	if err := v.Cancel(r.Context(), bookingID, body.ConfirmationToken, body.Reason); err != nil {
		s.writeActionError(w, v, err)
		return
	}
	s.writeProjection(w, v)
}

// writeActionError maps view errors onto HTTP statuses; the dialog the view
// opened rides along so the client renders the same message everywhere.
func (s *Server) writeActionError(w http.ResponseWriter, v *view.BookingsView, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, view.ErrUnknownBooking):
		status = http.StatusNotFound
	case errors.Is(err, view.ErrNotPending),
		errors.Is(err, view.ErrActionInFlight),
		errors.Is(err, view.ErrBadCancelToken):
		status = http.StatusConflict
	case errors.Is(err, view.ErrNotMounted):
		status = http.StatusUnauthorized
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
	}

	writeJSON(w, status, map[string]any{
		"error":  err.Error(),
		"dialog": v.Dialog(),
	})
}

func (s *Server) handleBookingsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	v, _, ok := s.ownerView(w, r)
	if !ok {
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	stamp := time.Now().Format("2006-01-02")

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bookings_%s.csv", stamp))
		if err := v.ExportCSV(w); err != nil {
			s.logger.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("csv export failed")
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bookings_%s.xlsx", stamp))
		if err := export.WriteBookingsExcel(w, v.Projection().Filtered); err != nil {
			s.logger.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("xlsx export failed")
			return
		}
		metrics.IncExport("xlsx")
	default:
		writeError(w, http.StatusBadRequest, "unsupported format; expected csv or xlsx")
	}
}

func (s *Server) handlePayouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	_, user, ok := s.ownerView(w, r)
	if !ok {
		return
	}

	// Тёплый снимок из поллера, прямой запрос как запасной путь
	if s.payouts != nil {
		if status := s.payouts.Status(user.UserID); status != nil {
			writeJSON(w, http.StatusOK, status)
			return
		}
	}

	status, err := s.backend.PayoutStatus(r.Context(), user.UserID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load payout status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
