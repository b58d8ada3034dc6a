package report

import (
	"sort"
	"strings"

	"finanze/internal/core"
)

// TransactionFilter narrows a record list for the history table. Zero
// fields mean "no constraint".
type TransactionFilter struct {
	Search     string // case-insensitive substring over description and category
	Kind       core.TransactionKind
	Categories []string
	Statuses   []core.ExpenseStatus // applied to expenses only; income always passes
	From, To   core.Date            // inclusive bounds
}

// FilterTransactions applies f and returns the surviving rows in their
// original order.
func FilterTransactions(transactions []core.Transaction, f TransactionFilter) []core.Transaction {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []core.Transaction
	for _, t := range transactions {
		if f.Kind != "" && t.Kind != f.Kind {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Description), search) &&
			!strings.Contains(strings.ToLower(t.Category), search) {
			continue
		}
		if len(f.Categories) > 0 && !containsString(f.Categories, t.Category) {
			continue
		}
		if len(f.Statuses) > 0 && t.Kind == core.KindExpense {
			if t.Expense == nil || !containsStatus(f.Statuses, t.Expense.Status) {
				continue
			}
		}
		if !f.From.IsZero() && t.Date.Before(f.From.Time) {
			continue
		}
		if !f.To.IsZero() && t.Date.After(f.To.Time) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// RecentTransactions returns up to n rows sorted by date descending,
// original order preserved within a day.
func RecentTransactions(transactions []core.Transaction, n int) []core.Transaction {
	if n <= 0 {
		return nil
	}
	sorted := append([]core.Transaction(nil), transactions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date.Time)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// SignedCents is the display amount: expenses show negative even though
// they are stored positive.
func SignedCents(t core.Transaction) int64 {
	if t.Kind == core.KindExpense {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}

// Payers lists the distinct income payers alphabetically, empties dropped.
func Payers(transactions []core.Transaction) []string {
	return distinctIncomeField(transactions, func(d *core.IncomeDetails) string { return d.Payer })
}

// Banks lists the distinct income banks alphabetically, empties dropped.
func Banks(transactions []core.Transaction) []string {
	return distinctIncomeField(transactions, func(d *core.IncomeDetails) string { return d.Bank })
}

func distinctIncomeField(transactions []core.Transaction, field func(*core.IncomeDetails) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range transactions {
		if t.Kind != core.KindIncome || t.Income == nil {
			continue
		}
		v := strings.TrimSpace(field(t.Income))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsStatus(list []core.ExpenseStatus, v core.ExpenseStatus) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
