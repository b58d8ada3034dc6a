package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	good := []struct {
		in   string
		want int64
	}{
		{"1", 100},
		{"1.0", 100},
		{"1.23", 123},
		{"1,23", 123},
		{"0.01", 1},
		{".5", 50},
		{"5.", 500},
		{"1.005", 101}, // half-up on the third decimal
		{"1.004", 100},
		{" 2.50 ", 250},
	}
	for _, tc := range good {
		got, err := ParseDecimalToCents(tc.in)
		if err != nil {
			t.Fatalf("ParseDecimalToCents(%q): unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	bad := []string{
		"",
		"0",
		"0.004",
		"-1",
		"+3",
		"abc",
		"1.2.3",
		"1e3",
		"92233720368547759",
	}
	for _, in := range bad {
		if _, err := ParseDecimalToCents(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseDecimalToCents(%q): expected ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestMoneyEuros(t *testing.T) {
	if got := (Money{Cents: 1234}).Euros(); got != 12.34 {
		t.Errorf("Euros() = %v, want 12.34", got)
	}
	if got := (Money{Cents: -50}).Euros(); got != -0.5 {
		t.Errorf("Euros() = %v, want -0.5", got)
	}
}
