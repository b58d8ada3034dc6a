package http

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"sync/atomic"

	"finanze/internal/core"
	"finanze/internal/log"
	"finanze/internal/records"
)

// handleCreateGoal registers a new savings goal from the entry form.
func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	owner, ok := s.ownerFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Formato richiesta non valido").Write(w)
		return
	}

	cents, err := core.ParseDecimalToCents(parser.Get("target"))
	if err != nil {
		UnprocessableEntityError("Traguardo non valido").Write(w)
		return
	}

	goal := core.Goal{
		Owner:       owner,
		Description: parser.Get("description"),
		Target:      core.Money{Cents: cents},
		Category:    parser.Get("category"),
		Status:      core.GoalInProgress,
	}
	if raw := parser.Get("due_date"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			UnprocessableEntityError("Data obiettivo non valida").Write(w)
			return
		}
		goal.DueDate = d
	}

	if err := goal.Validate(); err != nil {
		UnprocessableEntityError("Dati non validi: " + err.Error()).Write(w)
		return
	}

	id, err := s.backend.AppendGoal(r.Context(), goal)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save goal",
			log.FieldError, err,
			log.FieldOwner, owner,
			"description", goal.Description,
			"target_cents", goal.Target.Cents)
		InternalServerError("Errore nel salvataggio dell'obiettivo").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalWrites, 1)
	s.invalidateRecords(owner)
	s.logger.InfoContext(r.Context(), "Goal created",
		log.FieldOwner, owner,
		log.FieldRecordID, id,
		"target_cents", goal.Target.Cents)

	NewHTMXResponse().
		Status(http.StatusOK).
		TriggerGoalChanged().
		TriggerFormReset().
		TriggerSuccessNotification("Obiettivo creato").
		BodyHTML(`<div class="success">Obiettivo creato (#` + strconv.FormatInt(id, 10) + `): ` +
			template.HTMLEscapeString(goal.Description) +
			` · ` + formatEuros(goal.Target.Cents) + `</div>`).
		Write(w)
}

// handleUpdateGoal edits the descriptive fields of a goal. Progress and
// completion have their own endpoints.
func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	owner, ok := s.ownerFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Formato richiesta non valido").Write(w)
		return
	}
	id, err := strconv.ParseInt(parser.Get("id"), 10, 64)
	if err != nil {
		BadRequestError("Identificativo non valido").Write(w)
		return
	}

	var patch core.GoalPatch
	if parser.Has("description") {
		v := parser.Get("description")
		patch.Description = &v
	}
	if parser.Has("target") {
		cents, err := core.ParseDecimalToCents(parser.Get("target"))
		if err != nil {
			UnprocessableEntityError("Traguardo non valido").Write(w)
			return
		}
		patch.Target = &core.Money{Cents: cents}
	}
	if parser.Has("category") {
		v := parser.Get("category")
		patch.Category = &v
	}
	if parser.Has("due_date") {
		d, err := parseDate(parser.Get("due_date"))
		if err != nil {
			UnprocessableEntityError("Data obiettivo non valida").Write(w)
			return
		}
		patch.DueDate = &d
	}
	if patch.IsZero() {
		UnprocessableEntityError("Nessuna modifica richiesta").Write(w)
		return
	}

	if err := s.backend.UpdateGoal(r.Context(), owner, id, patch); err != nil {
		s.writeGoalError(w, r, "update", owner, id, err)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalWrites, 1)
	s.invalidateRecords(owner)
	s.logger.InfoContext(r.Context(), "Goal updated",
		log.FieldOwner, owner, log.FieldRecordID, id)

	NewHTMXResponse().
		Status(http.StatusOK).
		TriggerGoalChanged().
		TriggerSuccessNotification("Obiettivo aggiornato").
		Write(w)
}

// handleGoalProgress adds a saved amount to a goal.
func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	owner, ok := s.ownerFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Formato richiesta non valido").Write(w)
		return
	}
	id, err := strconv.ParseInt(parser.Get("id"), 10, 64)
	if err != nil {
		BadRequestError("Identificativo non valido").Write(w)
		return
	}
	cents, err := core.ParseDecimalToCents(parser.Get("amount"))
	if err != nil {
		UnprocessableEntityError("Importo non valido").Write(w)
		return
	}

	if err := s.backend.AddGoalProgress(r.Context(), owner, id, core.Money{Cents: cents}); err != nil {
		s.writeGoalError(w, r, "progress", owner, id, err)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalWrites, 1)
	s.invalidateRecords(owner)
	s.logger.InfoContext(r.Context(), "Goal progress added",
		log.FieldOwner, owner, log.FieldRecordID, id, "amount_cents", cents)

	NewHTMXResponse().
		Status(http.StatusOK).
		TriggerGoalChanged().
		TriggerSuccessNotification("Accumulo registrato").
		Write(w)
}

// handleCompleteGoal marks a goal as reached; the saved amount is pinned
// to the target.
func (s *Server) handleCompleteGoal(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	owner, ok := s.ownerFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Formato richiesta non valido").Write(w)
		return
	}
	id, err := strconv.ParseInt(parser.Get("id"), 10, 64)
	if err != nil {
		BadRequestError("Identificativo non valido").Write(w)
		return
	}

	if err := s.backend.CompleteGoal(r.Context(), owner, id); err != nil {
		s.writeGoalError(w, r, "complete", owner, id, err)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalWrites, 1)
	s.invalidateRecords(owner)
	s.logger.InfoContext(r.Context(), "Goal completed",
		log.FieldOwner, owner, log.FieldRecordID, id)

	NewHTMXResponse().
		Status(http.StatusOK).
		TriggerGoalChanged().
		TriggerSuccessNotification("Obiettivo raggiunto!").
		Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	owner, ok := s.ownerFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Formato richiesta non valido").Write(w)
		return
	}
	id, err := strconv.ParseInt(parser.Get("id"), 10, 64)
	if err != nil {
		BadRequestError("Identificativo non valido").Write(w)
		return
	}

	if err := s.backend.DeleteGoal(r.Context(), owner, id); err != nil {
		s.writeGoalError(w, r, "delete", owner, id, err)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalWrites, 1)
	s.invalidateRecords(owner)
	s.logger.InfoContext(r.Context(), "Goal deleted",
		log.FieldOwner, owner, log.FieldRecordID, id)

	NewHTMXResponse().
		Status(http.StatusOK).
		TriggerGoalChanged().
		TriggerSuccessNotification("Obiettivo eliminato").
		Write(w)
}

func (s *Server) writeGoalError(w http.ResponseWriter, r *http.Request, op, owner string, id int64, err error) {
	switch {
	case errors.Is(err, records.ErrNotFound):
		NotFoundError("Obiettivo non trovato").Write(w)
	case isValidationError(err):
		UnprocessableEntityError("Dati non validi: " + err.Error()).Write(w)
	default:
		s.logger.ErrorContext(r.Context(), "Goal write failed",
			log.FieldError, err,
			log.FieldOperation, op,
			log.FieldOwner, owner,
			log.FieldRecordID, id)
		InternalServerError("Errore nel salvataggio dell'obiettivo").Write(w)
	}
}
