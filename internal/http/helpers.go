package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finanze/internal/core"
	"finanze/internal/report"
)

// parseMonthParam reads the "month" query parameter as YYYY-MM, falling
// back to the current month when absent or malformed.
func parseMonthParam(r *http.Request) report.YearMonth {
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if ym, err := report.ParseYearMonth(v); err == nil {
			return ym
		}
	}
	return report.MonthOf(core.DateOf(time.Now()))
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsedTime, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return core.Date{}, err
	}
	return core.DateOf(parsedTime), nil
}

// formatEuros formats cents as a Euro currency string (e.g., "€12,34").
func formatEuros(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	euros := cents / 100
	rem := cents % 100
	s := strconv.FormatInt(euros, 10) + "," + fmt.Sprintf("%02d", rem)
	if neg {
		return "-€" + s
	}
	return "€" + s
}

// formatEurosDecimal renders a decimal euro amount through formatEuros.
func formatEurosDecimal(d decimal.Decimal) string {
	return formatEuros(d.Shift(2).Round(0).IntPart())
}

// formatDate renders a record date for display as dd/mm/yyyy.
func formatDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// isValidationError distinguishes bad input from backend failures, so
// handlers can answer 422 instead of 500.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrEmptyDescription,
		core.ErrDescriptionTooLong,
		core.ErrEmptyCategory,
		core.ErrUnknownKind,
		core.ErrKindMismatch,
		core.ErrInvalidPlan,
		core.ErrInstallmentDates,
		core.ErrInvalidRecurrence,
		core.ErrInvalidStatus,
		core.ErrInvalidTarget,
		core.ErrInvalidProgress,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
