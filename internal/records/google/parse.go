package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"finanze/internal/core"
)

const dateLayout = "2006-01-02"

// Worksheet layouts, first row is a header.
//
//	Transactions!A:N  id owner kind date description amount category
//	                  payer bank plan installment_dates recurring recurrence_count status
//	Goals!A:H         id owner description target current category due_date status
//	Users!A:C         username password_hash created_at
const (
	transactionRange = "A:N"
	goalRange        = "A:H"
	userRange        = "A:C"
)

func transactionToRow(t core.Transaction) []interface{} {
	row := []interface{}{
		t.ID,
		t.Owner,
		string(t.Kind),
		t.Date.Format(dateLayout),
		t.Description,
		formatCents(t.Amount.Cents),
		t.Category,
		"", "", "", "", "", "", "",
	}
	if t.Income != nil {
		row[7] = t.Income.Payer
		row[8] = t.Income.Bank
		row[9] = string(t.Income.Plan)
		row[10] = joinDates(t.Income.InstallmentDates)
	}
	if t.Expense != nil {
		row[11] = strconv.FormatBool(t.Expense.Recurring)
		row[12] = t.Expense.RecurrenceCount
		row[13] = string(t.Expense.Status)
	}
	return row
}

// parseTransactionRow is deliberately lenient: rows written by hand in the
// spreadsheet should still show up as long as id, date and amount parse.
func parseTransactionRow(cols []string) (core.Transaction, error) {
	if len(cols) < 7 {
		return core.Transaction{}, fmt.Errorf("short row: %d columns", len(cols))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(cols[0]), 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("bad id %q: %w", cols[0], err)
	}

	owner := strings.TrimSpace(cols[1])
	if owner == "" {
		return core.Transaction{}, fmt.Errorf("row %d: missing owner", id)
	}

	kind := core.TransactionKind(strings.TrimSpace(cols[2]))
	if !kind.Valid() {
		return core.Transaction{}, fmt.Errorf("row %d: bad kind %q", id, cols[2])
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(cols[3]))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %d: bad date %q", id, cols[3])
	}

	cents, ok := parseEurosToCents(cols[5])
	if !ok {
		return core.Transaction{}, fmt.Errorf("row %d: bad amount %q", id, cols[5])
	}

	t := core.Transaction{
		ID:          id,
		Owner:       owner,
		Date:        core.DateOf(date),
		Description: strings.TrimSpace(cols[4]),
		Amount:      core.Money{Cents: cents},
		Kind:        kind,
		Category:    strings.TrimSpace(cols[6]),
	}

	switch kind {
	case core.KindIncome:
		income := &core.IncomeDetails{
			Payer: strings.TrimSpace(safeGet(cols, 7)),
			Bank:  strings.TrimSpace(safeGet(cols, 8)),
			Plan:  core.PaymentPlan(strings.TrimSpace(safeGet(cols, 9))),
		}
		if income.Plan == "" {
			income.Plan = core.PlanSingle
		}
		dates, err := splitDates(safeGet(cols, 10))
		if err != nil {
			return core.Transaction{}, fmt.Errorf("row %d: %w", id, err)
		}
		income.InstallmentDates = dates
		t.Income = income
	case core.KindExpense:
		expense := &core.ExpenseDetails{}
		if v := strings.TrimSpace(safeGet(cols, 11)); v != "" {
			recurring, err := strconv.ParseBool(v)
			if err != nil {
				return core.Transaction{}, fmt.Errorf("row %d: bad recurring flag %q", id, v)
			}
			expense.Recurring = recurring
		}
		if v := strings.TrimSpace(safeGet(cols, 12)); v != "" {
			count, err := strconv.Atoi(v)
			if err != nil {
				return core.Transaction{}, fmt.Errorf("row %d: bad recurrence count %q", id, v)
			}
			expense.RecurrenceCount = count
		}
		expense.Status = core.ExpenseStatus(strings.TrimSpace(safeGet(cols, 13)))
		if expense.Status == "" {
			expense.Status = core.StatusUnpaid
		}
		t.Expense = expense
	}

	return t, nil
}

func goalToRow(g core.Goal) []interface{} {
	return []interface{}{
		g.ID,
		g.Owner,
		g.Description,
		formatCents(g.Target.Cents),
		formatCents(g.Current.Cents),
		g.Category,
		g.DueDate.Format(dateLayout),
		string(g.Status),
	}
}

func parseGoalRow(cols []string) (core.Goal, error) {
	if len(cols) < 7 {
		return core.Goal{}, fmt.Errorf("short row: %d columns", len(cols))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(cols[0]), 10, 64)
	if err != nil {
		return core.Goal{}, fmt.Errorf("bad id %q: %w", cols[0], err)
	}

	owner := strings.TrimSpace(cols[1])
	if owner == "" {
		return core.Goal{}, fmt.Errorf("row %d: missing owner", id)
	}

	target, ok := parseEurosToCents(cols[3])
	if !ok {
		return core.Goal{}, fmt.Errorf("row %d: bad target %q", id, cols[3])
	}
	current, ok := parseEurosToCents(cols[4])
	if !ok {
		current = 0
	}

	due, err := time.Parse(dateLayout, strings.TrimSpace(cols[6]))
	if err != nil {
		return core.Goal{}, fmt.Errorf("row %d: bad due date %q", id, cols[6])
	}

	status := core.GoalStatus(strings.TrimSpace(safeGet(cols, 7)))
	if status == "" {
		status = core.GoalInProgress
	}

	return core.Goal{
		ID:          id,
		Owner:       owner,
		Description: strings.TrimSpace(cols[2]),
		Target:      core.Money{Cents: target},
		Current:     core.Money{Cents: current},
		Category:    strings.TrimSpace(cols[5]),
		DueDate:     core.DateOf(due),
		Status:      status,
	}, nil
}

func userToRow(u core.User) []interface{} {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return []interface{}{u.Username, u.PasswordHash, createdAt.Format(time.RFC3339)}
}

func parseUserRow(cols []string) (core.User, error) {
	if len(cols) < 2 {
		return core.User{}, fmt.Errorf("short row: %d columns", len(cols))
	}
	u := core.User{
		Username:     strings.TrimSpace(cols[0]),
		PasswordHash: cols[1],
	}
	if u.Username == "" {
		return core.User{}, fmt.Errorf("missing username")
	}
	if v := strings.TrimSpace(safeGet(cols, 2)); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			u.CreatedAt = ts
		}
	}
	return u, nil
}

func joinDates(dates []core.Date) string {
	if len(dates) == 0 {
		return ""
	}
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.Format(dateLayout)
	}
	return strings.Join(parts, ";")
}

func splitDates(s string) ([]core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	dates := make([]core.Date, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ts, err := time.Parse(dateLayout, p)
		if err != nil {
			return nil, fmt.Errorf("bad installment date %q", p)
		}
		dates = append(dates, core.DateOf(ts))
	}
	return dates, nil
}

// formatCents renders cents as a plain decimal so USER_ENTERED stores a
// number without float drift.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func parseEurosToCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Normalize decimal comma
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if f < 0 {
		return int64((f * 100.0) - 0.5), true
	}
	cents := int64((f * 100.0) + 0.5)
	return cents, true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
