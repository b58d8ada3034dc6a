package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"finanze/internal/log"
	"finanze/internal/report"
)

// handleStatement streams the monthly PDF statement.
func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	owner, ok := s.ownerFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	ym := parseMonthParam(r)
	data, err := s.loadRecords(r.Context(), owner)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Record load failed", "error", err, "owner", owner, "path", r.URL.Path)
		http.Error(w, "Errore nel caricamento dei dati", http.StatusInternalServerError)
		return
	}

	// Render to a buffer first; a mid-render failure must not leave a
	// truncated download behind.
	var buf bytes.Buffer
	if err := report.WriteMonthlyStatement(&buf, owner, ym, data.Transactions, data.Goals); err != nil {
		s.logger.ErrorContext(r.Context(), "Statement render failed",
			log.FieldError, err, log.FieldOwner, owner, "month", ym.String())
		http.Error(w, "Errore nella generazione dell'estratto conto", http.StatusInternalServerError)
		return
	}

	s.logger.InfoContext(r.Context(), "Statement generated",
		log.FieldOwner, owner, "month", ym.String(), "bytes", buf.Len())

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "estratto-"+ym.String()+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
