package report

import (
	"sort"
	"strings"

	"finanze/internal/core"
)

// BreakdownEntry is one grouping key with its summed amount.
type BreakdownEntry struct {
	Name  string
	Total core.Money
}

// breakdown groups matching transactions by key and sums their amounts,
// sorted by total descending. Ties keep first-encountered order; rows with
// an empty key are excluded rather than grouped under a sentinel.
func breakdown(transactions []core.Transaction, match func(core.Transaction) bool, key func(core.Transaction) string) []BreakdownEntry {
	totals := make(map[string]int64)
	var order []string
	for _, t := range transactions {
		if !usableAmount(t) || !match(t) {
			continue
		}
		k := strings.TrimSpace(key(t))
		if k == "" {
			continue
		}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] += t.Amount.Cents
	}
	entries := make([]BreakdownEntry, 0, len(order))
	for _, k := range order {
		entries = append(entries, BreakdownEntry{Name: k, Total: core.Money{Cents: totals[k]}})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total.Cents > entries[j].Total.Cents
	})
	return entries
}

// PaidExpenseByCategory sums paid expenses per spending category.
func PaidExpenseByCategory(transactions []core.Transaction) []BreakdownEntry {
	return breakdown(transactions,
		func(t core.Transaction) bool {
			return t.Kind == core.KindExpense && t.Expense != nil && t.Expense.Status == core.StatusPaid
		},
		func(t core.Transaction) string { return t.Category })
}

// IncomeByPayer sums income per payer.
func IncomeByPayer(transactions []core.Transaction) []BreakdownEntry {
	return breakdown(transactions,
		func(t core.Transaction) bool { return t.Kind == core.KindIncome && t.Income != nil },
		func(t core.Transaction) string { return t.Income.Payer })
}

// IncomeByBank sums income per receiving bank.
func IncomeByBank(transactions []core.Transaction) []BreakdownEntry {
	return breakdown(transactions,
		func(t core.Transaction) bool { return t.Kind == core.KindIncome && t.Income != nil },
		func(t core.Transaction) string { return t.Income.Bank })
}
