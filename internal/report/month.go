// Package report is the aggregation engine: pure functions over in-memory
// transaction and goal records that derive the dashboard numbers (monthly
// summary, trend series, category breakdowns, goal progress, cash-flow
// projection). The engine never touches storage and is total over its
// input: empty lists yield zero-valued output and malformed rows are
// skipped, never reported as errors.
package report

import (
	"fmt"
	"time"

	"finanze/internal/core"
)

// YearMonth keys one calendar month bucket.
type YearMonth struct {
	Year  int
	Month int // 1-12
}

// MonthOf returns the bucket a date falls in.
func MonthOf(d core.Date) YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

// ParseYearMonth parses the "2006-01" form.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse year-month %q: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: int(t.Month())}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// AddMonths steps the bucket n months forward (or back for negative n).
func (ym YearMonth) AddMonths(n int) YearMonth {
	total := ym.Year*12 + ym.Month - 1 + n
	y, m := total/12, total%12
	if m < 0 {
		y--
		m += 12
	}
	return YearMonth{Year: y, Month: m + 1}
}

func (ym YearMonth) Next() YearMonth {
	return ym.AddMonths(1)
}

func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// First returns the first day of the month.
func (ym YearMonth) First() core.Date {
	return core.NewDate(ym.Year, ym.Month, 1)
}

// usableAmount reports whether a row's amount can enter a sum. Rows with
// a non-positive amount are skipped, wherever they came from.
func usableAmount(t core.Transaction) bool {
	return t.Amount.Cents > 0
}

// usableDate reports whether a row can be bucketed by month.
func usableDate(t core.Transaction) bool {
	return !t.Date.IsZero()
}
