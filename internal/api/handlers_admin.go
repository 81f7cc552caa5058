package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"stayfront/internal/export"
	"stayfront/internal/metrics"
	"stayfront/internal/worker"
)

func (s *Server) handleAdminOwners(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	owners, err := s.admin.Owners(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load owners")
		return
	}
	writeJSON(w, http.StatusOK, owners)
}

func (s *Server) handleAdminPayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	page, err := s.admin.Payments(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load payments")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=payments_%s.csv", time.Now().Format("2006-01-02")))
		if err := export.WriteInvoicesCSV(w, page.Invoices); err != nil {
			s.logger.Error().Err(err).Msg("payments csv export failed")
		}
		metrics.IncExport("csv")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleAdminSyncPayments queues a Sheets mirror of the payments page.
func (s *Server) handleAdminSyncPayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.sync == nil {
		writeError(w, http.StatusServiceUnavailable, "sheets sync is disabled")
		return
	}

	if err := s.sync.Enqueue(r.Context(), worker.TaskSyncPayments, 0); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to queue sync task")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
