package http

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"finanze/internal/core"
	"finanze/internal/log"
	"finanze/internal/records"
)

// handleCreateTransaction registers a new income or expense from the
// entry form.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
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
		s.logger.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Formato richiesta non valido").Write(w)
		return
	}

	date := core.DateOf(time.Now())
	if raw := parser.Get("date"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			UnprocessableEntityError("Data non valida").Write(w)
			return
		}
		date = d
	}

	description := parser.Get("description")
	category := parser.Get("category")

	cents, err := core.ParseDecimalToCents(parser.Get("amount"))
	if err != nil {
		UnprocessableEntityError("Importo non valido").Write(w)
		return
	}
	amount := core.Money{Cents: cents}

	var tx core.Transaction
	var label string
	switch parser.Get("kind") {
	case "income":
		plan, err := parsePlanParam(parser.Get("installments"))
		if err != nil {
			UnprocessableEntityError("Numero di rate non valido").Write(w)
			return
		}
		tx = core.NewIncome(owner, date, description, amount, category,
			parser.Get("payer"), parser.Get("bank"), plan, nil)
		label = "Entrata registrata"
	case "expense":
		recurring := parser.Get("recurring") == "on" || parser.Get("recurring") == "true"
		recurrenceCount := 0
		if recurring {
			recurrenceCount, err = strconv.Atoi(parser.Get("recurrence_count"))
			if err != nil {
				UnprocessableEntityError("Numero di ripetizioni non valido").Write(w)
				return
			}
		}
		status := core.ExpenseStatus(parser.Get("status"))
		tx = core.NewExpense(owner, date, description, amount, category,
			recurring, recurrenceCount, status)
		label = "Spesa registrata"
	default:
		UnprocessableEntityError("Tipo di movimento non valido").Write(w)
		return
	}

	if err := tx.Validate(); err != nil {
		UnprocessableEntityError("Dati non validi: " + err.Error()).Write(w)
		return
	}

	id, err := s.backend.AppendTransaction(r.Context(), tx)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save transaction",
			log.FieldError, err,
			log.FieldOwner, owner,
			"description", tx.Description,
			"amount_cents", tx.Amount.Cents,
			"kind", string(tx.Kind))
		InternalServerError("Errore nel salvataggio del movimento").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalWrites, 1)
	s.invalidateRecords(owner)
	s.logger.InfoContext(r.Context(), "Transaction created",
		log.FieldOwner, owner,
		log.FieldRecordID, id,
		"kind", string(tx.Kind),
		"amount_cents", tx.Amount.Cents)

	NewHTMXResponse().
		Status(http.StatusOK).
		TriggerRecordChanged().
		TriggerFormReset().
		TriggerSuccessNotification(label).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(label) +
			` (#` + strconv.FormatInt(id, 10) + `): ` +
			template.HTMLEscapeString(tx.Description) +
			` · ` + formatEuros(tx.Amount.Cents) + `</div>`).
		Write(w)
}

// handleUpdateTransaction applies a partial edit. Only submitted fields
// change; everything else keeps its stored value.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
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

	patch, errResp := transactionPatchFromRequest(parser)
	if errResp != nil {
		errResp.Write(w)
		return
	}
	if patch.IsZero() {
		UnprocessableEntityError("Nessuna modifica richiesta").Write(w)
		return
	}

	if err := s.backend.UpdateTransaction(r.Context(), owner, id, patch); err != nil {
		s.writeTransactionError(w, r, "update", owner, id, err)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalWrites, 1)
	s.invalidateRecords(owner)
	s.logger.InfoContext(r.Context(), "Transaction updated",
		log.FieldOwner, owner, log.FieldRecordID, id)

	NewHTMXResponse().
		Status(http.StatusOK).
		TriggerRecordChanged().
		TriggerSuccessNotification("Movimento aggiornato").
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
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

	if err := s.backend.DeleteTransaction(r.Context(), owner, id); err != nil {
		s.writeTransactionError(w, r, "delete", owner, id, err)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalWrites, 1)
	s.invalidateRecords(owner)
	s.logger.InfoContext(r.Context(), "Transaction deleted",
		log.FieldOwner, owner, log.FieldRecordID, id)

	NewHTMXResponse().
		Status(http.StatusOK).
		TriggerRecordChanged().
		TriggerSuccessNotification("Movimento eliminato").
		Write(w)
}

// handlePayTransaction marks an expense as paid.
func (s *Server) handlePayTransaction(w http.ResponseWriter, r *http.Request) {
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

	paid := core.StatusPaid
	patch := core.TransactionPatch{Status: &paid}
	if err := s.backend.UpdateTransaction(r.Context(), owner, id, patch); err != nil {
		s.writeTransactionError(w, r, "pay", owner, id, err)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalWrites, 1)
	s.invalidateRecords(owner)
	s.logger.InfoContext(r.Context(), "Expense marked paid",
		log.FieldOwner, owner, log.FieldRecordID, id)

	NewHTMXResponse().
		Status(http.StatusOK).
		TriggerRecordChanged().
		TriggerSuccessNotification("Spesa segnata come pagata").
		Write(w)
}

// transactionPatchFromRequest builds a patch from the submitted fields
// only. A field left out of the request leaves the stored value alone.
func transactionPatchFromRequest(parser *RequestBodyParser) (core.TransactionPatch, *HTMXResponseBuilder) {
	var patch core.TransactionPatch

	if parser.Has("date") {
		d, err := parseDate(parser.Get("date"))
		if err != nil {
			return patch, UnprocessableEntityError("Data non valida")
		}
		patch.Date = &d
	}
	if parser.Has("description") {
		v := parser.Get("description")
		patch.Description = &v
	}
	if parser.Has("amount") {
		cents, err := core.ParseDecimalToCents(parser.Get("amount"))
		if err != nil {
			return patch, UnprocessableEntityError("Importo non valido")
		}
		patch.Amount = &core.Money{Cents: cents}
	}
	if parser.Has("category") {
		v := parser.Get("category")
		patch.Category = &v
	}

	if parser.Has("payer") {
		v := parser.Get("payer")
		patch.Payer = &v
	}
	if parser.Has("bank") {
		v := parser.Get("bank")
		patch.Bank = &v
	}
	if parser.Has("installments") {
		plan, err := parsePlanParam(parser.Get("installments"))
		if err != nil {
			return patch, UnprocessableEntityError("Numero di rate non valido")
		}
		patch.Plan = &plan
	}

	if parser.Has("recurring") {
		v := parser.Get("recurring") == "on" || parser.Get("recurring") == "true"
		patch.Recurring = &v
	}
	if parser.Has("recurrence_count") {
		n, err := strconv.Atoi(parser.Get("recurrence_count"))
		if err != nil {
			return patch, UnprocessableEntityError("Numero di ripetizioni non valido")
		}
		patch.RecurrenceCount = &n
	}
	if parser.Has("status") {
		v := core.ExpenseStatus(parser.Get("status"))
		patch.Status = &v
	}

	return patch, nil
}

// parsePlanParam maps the installment selector value to a payment plan.
// It accepts plan values directly ("single", "2x", "more_than_six") plus
// the bare count forms older clients submit: "1" or empty for a single
// payment, "more" for more than six, 2-6 for the matching plan.
func parsePlanParam(v string) (core.PaymentPlan, error) {
	switch v {
	case "", "1", string(core.PlanSingle):
		return core.PlanSingle, nil
	case "more", string(core.PlanMoreThanSix):
		return core.PlanMoreThanSix, nil
	}
	if plan := core.PaymentPlan(v); plan.Valid() {
		return plan, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return "", err
	}
	return core.InstallmentPlan(n)
}

// writeTransactionError maps backend errors onto HTTP responses.
func (s *Server) writeTransactionError(w http.ResponseWriter, r *http.Request, op, owner string, id int64, err error) {
	switch {
	case errors.Is(err, records.ErrNotFound):
		NotFoundError("Movimento non trovato").Write(w)
	case isValidationError(err):
		UnprocessableEntityError("Dati non validi: " + err.Error()).Write(w)
	default:
		s.logger.ErrorContext(r.Context(), "Transaction write failed",
			log.FieldError, err,
			log.FieldOperation, op,
			log.FieldOwner, owner,
			log.FieldRecordID, id)
		InternalServerError("Errore nel salvataggio del movimento").Write(w)
	}
}
