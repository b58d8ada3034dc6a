package report

import (
	"testing"

	"finanze/internal/core"
)

func TestParseYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2024-01")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if ym.Year != 2024 || ym.Month != 1 {
		t.Fatalf("expected 2024-01, got %+v", ym)
	}
	if ym.String() != "2024-01" {
		t.Fatalf("expected string 2024-01, got %s", ym.String())
	}
	for _, bad := range []string{"", "2024", "2024-13", "24-01", "2024-1", "jan-2024"} {
		if _, err := ParseYearMonth(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestYearMonthAddMonths(t *testing.T) {
	cases := []struct {
		in   YearMonth
		n    int
		want YearMonth
	}{
		{YearMonth{2024, 1}, 1, YearMonth{2024, 2}},
		{YearMonth{2024, 12}, 1, YearMonth{2025, 1}},
		{YearMonth{2024, 6}, -6, YearMonth{2023, 12}},
		{YearMonth{2024, 1}, -1, YearMonth{2023, 12}},
		{YearMonth{2024, 3}, 0, YearMonth{2024, 3}},
		{YearMonth{2024, 1}, 25, YearMonth{2026, 2}},
	}
	for i, tc := range cases {
		if got := tc.in.AddMonths(tc.n); got != tc.want {
			t.Fatalf("case %d: %v + %d = %v, want %v", i, tc.in, tc.n, got, tc.want)
		}
	}
}

func TestYearMonthBeforeAndFirst(t *testing.T) {
	if !(YearMonth{2023, 12}).Before(YearMonth{2024, 1}) {
		t.Fatalf("2023-12 must sort before 2024-01")
	}
	if (YearMonth{2024, 2}).Before(YearMonth{2024, 2}) {
		t.Fatalf("a month is not before itself")
	}
	if first := (YearMonth{2024, 2}).First(); !first.Equal(core.NewDate(2024, 2, 1).Time) {
		t.Fatalf("expected 2024-02-01, got %v", first)
	}
}

func TestMonthOf(t *testing.T) {
	if ym := MonthOf(core.NewDate(2024, 7, 31)); ym != (YearMonth{2024, 7}) {
		t.Fatalf("expected 2024-07, got %+v", ym)
	}
}
