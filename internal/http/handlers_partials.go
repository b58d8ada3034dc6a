package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finanze/internal/core"
	"finanze/internal/report"
)

// Dashboard partials. Each handler renders one HTMX fragment from the
// owner's cached record set; errors render an inline placeholder so the
// rest of the page keeps working.

func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">Interfaccia non disponibile</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution error", "error", err, "template", name)
	}
}

func (s *Server) renderLoadError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<div class="placeholder">Errore nel caricamento dei dati</div>`))
}

// partialData resolves the owner and loads the record set shared by all
// partials. A false return means the response has been written already.
func (s *Server) partialData(w http.ResponseWriter, r *http.Request) (string, ownerData, bool) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return "", ownerData{}, false
	}
	owner, ok := s.ownerFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return "", ownerData{}, false
	}
	data, err := s.loadRecords(r.Context(), owner)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Record load failed", "error", err, "owner", owner, "path", r.URL.Path)
		s.renderLoadError(w)
		return "", ownerData{}, false
	}
	return owner, data, true
}

func monthBounds(ym report.YearMonth) (core.Date, core.Date) {
	from := ym.First()
	to := core.DateOf(ym.Next().First().AddDate(0, 0, -1))
	return from, to
}

// handleSummary renders the monthly totals card.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, data, ok := s.partialData(w, r)
	if !ok {
		return
	}
	ym := parseMonthParam(r)
	totals := report.MonthlySummary(data.Transactions, ym)

	s.renderPartial(w, r, "summary.html", struct {
		MonthValue        string
		MonthLabel        string
		Income            string
		PaidExpense       string
		UnpaidExpense     string
		RealBalance       string
		ProjectedBalance  string
		RealNegative      bool
		ProjectedNegative bool
	}{
		MonthValue:        ym.String(),
		MonthLabel:        report.MonthLabel(ym),
		Income:            formatEuros(totals.Income.Cents),
		PaidExpense:       formatEuros(totals.PaidExpense.Cents),
		UnpaidExpense:     formatEuros(totals.UnpaidExpense.Cents),
		RealBalance:       formatEuros(totals.RealBalance().Cents),
		ProjectedBalance:  formatEuros(totals.ProjectedBalance().Cents),
		RealNegative:      totals.RealBalance().Cents < 0,
		ProjectedNegative: totals.ProjectedBalance().Cents < 0,
	})
}

// handleTrend serves the month-by-month series as JSON for the chart.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	owner, ok := s.ownerFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	data, err := s.loadRecords(r.Context(), owner)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Record load failed", "error", err, "owner", owner, "path", r.URL.Path)
		http.Error(w, "record load failed", http.StatusInternalServerError)
		return
	}

	monthsBack := 6
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 24 {
			monthsBack = n
		}
	}

	type trendPointJSON struct {
		Month   string  `json:"month"`
		Label   string  `json:"label"`
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
		Balance float64 `json:"balance"`
	}
	points := report.MonthlyTrend(data.Transactions, monthsBack, time.Now())
	out := make([]trendPointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, trendPointJSON{
			Month:   p.Month.String(),
			Label:   report.MonthLabel(p.Month),
			Income:  p.Income.Euros(),
			Expense: p.Expense.Euros(),
			Balance: p.Balance.Euros(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// barRow is one horizontal bar in a breakdown partial. Width is a
// percentage of the largest entry, kept at 2 minimum so tiny amounts
// stay visible.
type barRow struct {
	Name   string
	Amount string
	Width  int
}

func barRows(entries []report.BreakdownEntry) []barRow {
	var maxCents int64
	for _, e := range entries {
		if e.Total.Cents > maxCents {
			maxCents = e.Total.Cents
		}
	}
	rows := make([]barRow, 0, len(entries))
	for _, e := range entries {
		width := 0
		if maxCents > 0 && e.Total.Cents > 0 {
			width = int((e.Total.Cents*100 + maxCents/2) / maxCents) // rounded percent
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		rows = append(rows, barRow{Name: e.Name, Amount: formatEuros(e.Total.Cents), Width: width})
	}
	return rows
}

type breakdownData struct {
	MonthLabel string
	Rows       []barRow
	Empty      bool
}

func (s *Server) renderBreakdown(w http.ResponseWriter, r *http.Request, templateName string, data ownerData, group func([]core.Transaction) []report.BreakdownEntry) {
	ym := parseMonthParam(r)
	from, to := monthBounds(ym)
	monthTxs := report.FilterTransactions(data.Transactions, report.TransactionFilter{From: from, To: to})
	rows := barRows(group(monthTxs))

	s.renderPartial(w, r, templateName, breakdownData{
		MonthLabel: report.MonthLabel(ym),
		Rows:       rows,
		Empty:      len(rows) == 0,
	})
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	_, data, ok := s.partialData(w, r)
	if !ok {
		return
	}
	s.renderBreakdown(w, r, "categories.html", data, report.PaidExpenseByCategory)
}

func (s *Server) handlePayerBreakdown(w http.ResponseWriter, r *http.Request) {
	_, data, ok := s.partialData(w, r)
	if !ok {
		return
	}
	s.renderBreakdown(w, r, "payers.html", data, report.IncomeByPayer)
}

func (s *Server) handleBankBreakdown(w http.ResponseWriter, r *http.Request) {
	_, data, ok := s.partialData(w, r)
	if !ok {
		return
	}
	s.renderBreakdown(w, r, "banks.html", data, report.IncomeByBank)
}

// transactionRow is one line of the history or recent-movements table.
type transactionRow struct {
	ID          int64
	Date        string
	Description string
	Category    string
	Amount      string
	IsExpense   bool
	Unpaid      bool
	Detail      string
}

func transactionRows(transactions []core.Transaction) []transactionRow {
	rows := make([]transactionRow, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, transactionRow{
			ID:          t.ID,
			Date:        formatDate(t.Date),
			Description: t.Description,
			Category:    t.Category,
			Amount:      formatEuros(report.SignedCents(t)),
			IsExpense:   t.Kind == core.KindExpense,
			Unpaid:      t.Kind == core.KindExpense && t.Expense != nil && t.Expense.Status == core.StatusUnpaid,
			Detail:      transactionDetail(t),
		})
	}
	return rows
}

func transactionDetail(t core.Transaction) string {
	switch t.Kind {
	case core.KindIncome:
		if t.Income == nil {
			return ""
		}
		if n, ok := t.Income.Plan.Installments(); ok {
			return fmt.Sprintf("%d rate", n)
		}
		if t.Income.Plan == core.PlanMoreThanSix {
			return "oltre 6 rate"
		}
	case core.KindExpense:
		if t.Expense != nil && t.Expense.Recurring {
			return fmt.Sprintf("mensile ×%d", t.Expense.RecurrenceCount)
		}
	}
	return ""
}

// handleRecent renders the latest movements card.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	_, data, ok := s.partialData(w, r)
	if !ok {
		return
	}
	recent := report.RecentTransactions(data.Transactions, 10)
	s.renderPartial(w, r, "recent.html", struct {
		Rows  []transactionRow
		Empty bool
	}{
		Rows:  transactionRows(recent),
		Empty: len(recent) == 0,
	})
}

// handleTransactionTable renders the filterable movement history.
func (s *Server) handleTransactionTable(w http.ResponseWriter, r *http.Request) {
	_, data, ok := s.partialData(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := report.TransactionFilter{
		Search:     sanitizeInput(q.Get("q")),
		Categories: q["category"],
	}
	switch q.Get("kind") {
	case "income":
		filter.Kind = core.KindIncome
	case "expense":
		filter.Kind = core.KindExpense
	}
	for _, v := range q["status"] {
		switch core.ExpenseStatus(v) {
		case core.StatusPaid:
			filter.Statuses = append(filter.Statuses, core.StatusPaid)
		case core.StatusUnpaid:
			filter.Statuses = append(filter.Statuses, core.StatusUnpaid)
		}
	}
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if d, err := parseDate(v); err == nil {
			filter.From = d
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		if d, err := parseDate(v); err == nil {
			filter.To = d
		}
	}

	filtered := report.FilterTransactions(data.Transactions, filter)
	// Newest first for the table.
	filtered = report.RecentTransactions(filtered, len(filtered))

	s.renderPartial(w, r, "transactions.html", struct {
		Rows  []transactionRow
		Total int
		Empty bool
	}{
		Rows:  transactionRows(filtered),
		Total: len(filtered),
		Empty: len(filtered) == 0,
	})
}

// goalRow is one savings goal card.
type goalRow struct {
	ID          int64
	Description string
	Category    string
	Current     string
	Target      string
	Percent     string
	Width       int
	DueDate     string
	Completed   bool
}

// handleGoalList renders the savings goal cards.
func (s *Server) handleGoalList(w http.ResponseWriter, r *http.Request) {
	_, data, ok := s.partialData(w, r)
	if !ok {
		return
	}

	rows := make([]goalRow, 0, len(data.Goals))
	for _, g := range data.Goals {
		pct := report.GoalProgress(g)
		width := int(pct.Round(0).IntPart())
		if width > 100 {
			width = 100
		}
		rows = append(rows, goalRow{
			ID:          g.ID,
			Description: g.Description,
			Category:    g.Category,
			Current:     formatEuros(g.Current.Cents),
			Target:      formatEuros(g.Target.Cents),
			Percent:     pct.StringFixed(0) + "%",
			Width:       width,
			DueDate:     formatDate(g.DueDate),
			Completed:   g.Status == core.GoalCompleted,
		})
	}

	s.renderPartial(w, r, "goals.html", struct {
		Rows  []goalRow
		Empty bool
	}{
		Rows:  rows,
		Empty: len(rows) == 0,
	})
}

// handleProjection renders the forward cash-flow estimate.
func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	_, data, ok := s.partialData(w, r)
	if !ok {
		return
	}

	monthsAhead := 3
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 12 {
			monthsAhead = n
		}
	}

	type projRow struct {
		Month    string
		Income   string
		Expense  string
		Balance  string
		Negative bool
	}
	points := report.CashFlowProjection(data.Transactions, monthsAhead, core.DateOf(time.Now()))
	rows := make([]projRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, projRow{
			Month:    report.MonthLabel(p.Month),
			Income:   formatEurosDecimal(p.Income),
			Expense:  formatEurosDecimal(p.Expense),
			Balance:  formatEurosDecimal(p.Balance),
			Negative: p.Balance.IsNegative(),
		})
	}

	s.renderPartial(w, r, "projection.html", struct {
		Rows []projRow
	}{Rows: rows})
}
