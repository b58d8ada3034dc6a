package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

const (
	PlanSingle      PaymentPlan = "single"
	PlanMoreThanSix PaymentPlan = "more_than_six"
)

const (
	StatusUnpaid ExpenseStatus = "unpaid"
	StatusPaid   ExpenseStatus = "paid"
)

const (
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
)

// MaxRecurrenceCount bounds how many monthly occurrences a recurring
// expense may declare, current month included.
const MaxRecurrenceCount = 60

type (
	TransactionKind string

	// PaymentPlan describes how an income arrives: in one payment, in a
	// small number of monthly installments ("2x".."6x"), or in more than
	// six (tracked but not projected per installment).
	PaymentPlan string

	ExpenseStatus string

	GoalStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single income or expense record. Exactly one of
	// Income or Expense is non-nil, selected by Kind.
	Transaction struct {
		ID          int64
		Owner       string
		Date        Date
		Description string
		Amount      Money
		Kind        TransactionKind
		Category    string
		Income      *IncomeDetails
		Expense     *ExpenseDetails
	}

	IncomeDetails struct {
		Payer            string
		Bank             string
		Plan             PaymentPlan
		InstallmentDates []Date
	}

	ExpenseDetails struct {
		Recurring       bool
		RecurrenceCount int // total monthly occurrences, current one included
		Status          ExpenseStatus
	}

	Goal struct {
		ID          int64
		Owner       string
		Description string
		Target      Money
		Category    string
		DueDate     Date
		Current     Money
		Status      GoalStatus
	}

	User struct {
		Username     string
		PasswordHash string
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrEmptyCategory      = errors.New("empty category")
	ErrUnknownKind        = errors.New("unknown transaction kind")
	ErrKindMismatch       = errors.New("details do not match transaction kind")
	ErrInvalidPlan        = errors.New("invalid payment plan")
	ErrInstallmentDates   = errors.New("installment dates do not match plan")
	ErrInvalidRecurrence  = errors.New("invalid recurrence count")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidTarget      = errors.New("target amount must be positive")
	ErrInvalidProgress    = errors.New("progress amount must be positive")
)

// NewDate creates a Date at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

// Month returns the month as 1-12.
func (d Date) Month() int { return int(d.Time.Month()) }

// Year returns the year.
func (d Date) Year() int { return d.Time.Year() }

// IsEmpty reports whether the date is unset.
func (d Date) IsEmpty() bool { return d.IsZero() }

// AddMonths steps the date forward n calendar months, clamping the day to
// the target month's length (Jan 31 +1 month = Feb 28/29), unlike
// time.AddDate which rolls the overflow into the next month.
func (d Date) AddMonths(n int) Date {
	y, m, day := d.Date()
	total := int(m) - 1 + n
	ny := y + total/12
	nm := time.Month(total%12 + 1)
	if total < 0 && total%12 != 0 {
		ny--
		nm += 12
	}
	if last := daysIn(ny, nm); day > last {
		day = last
	}
	return NewDate(ny, int(nm), day)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (s ExpenseStatus) Valid() bool {
	return s == StatusUnpaid || s == StatusPaid
}

func (s GoalStatus) Valid() bool {
	return s == GoalInProgress || s == GoalCompleted
}

// InstallmentPlan returns the plan for n monthly installments. Only 2..6
// have their own plan; anything above is PlanMoreThanSix.
func InstallmentPlan(n int) (PaymentPlan, error) {
	if n < 2 {
		return "", ErrInvalidPlan
	}
	if n > 6 {
		return PlanMoreThanSix, nil
	}
	return PaymentPlan(strconv.Itoa(n) + "x"), nil
}

// Installments returns (n, true) when the plan is a 2x..6x installment
// plan, and (0, false) for single payments and more-than-six.
func (p PaymentPlan) Installments() (int, bool) {
	s := string(p)
	if len(s) != 2 || s[1] != 'x' {
		return 0, false
	}
	n := int(s[0] - '0')
	if n < 2 || n > 6 {
		return 0, false
	}
	return n, true
}

func (p PaymentPlan) Valid() bool {
	if p == PlanSingle || p == PlanMoreThanSix {
		return true
	}
	_, ok := p.Installments()
	return ok
}

// NewIncome builds an income transaction. When the plan is an installment
// plan and no dates are given, they default to one per installment starting
// at the transaction date, one calendar month apart.
func NewIncome(owner string, date Date, description string, amount Money, category, payer, bank string, plan PaymentPlan, installmentDates []Date) Transaction {
	det := &IncomeDetails{Payer: payer, Bank: bank, Plan: plan, InstallmentDates: installmentDates}
	if n, ok := plan.Installments(); ok && len(installmentDates) == 0 {
		det.InstallmentDates = DefaultInstallmentDates(date, n)
	}
	return Transaction{
		Owner:       owner,
		Date:        date,
		Description: description,
		Amount:      amount,
		Kind:        KindIncome,
		Category:    category,
		Income:      det,
	}
}

// NewExpense builds an expense transaction, Unpaid unless told otherwise.
func NewExpense(owner string, date Date, description string, amount Money, category string, recurring bool, recurrenceCount int, status ExpenseStatus) Transaction {
	if status == "" {
		status = StatusUnpaid
	}
	if !recurring {
		recurrenceCount = 0
	}
	return Transaction{
		Owner:       owner,
		Date:        date,
		Description: description,
		Amount:      amount,
		Kind:        KindExpense,
		Category:    category,
		Expense:     &ExpenseDetails{Recurring: recurring, RecurrenceCount: recurrenceCount, Status: status},
	}
}

// DefaultInstallmentDates returns n dates one calendar month apart, the
// first at start.
func DefaultInstallmentDates(start Date, n int) []Date {
	if n < 1 {
		return nil
	}
	dates := make([]Date, n)
	for i := range dates {
		dates[i] = start.AddMonths(i)
	}
	return dates
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Owner) == "" {
		return errors.New("missing owner")
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	switch t.Kind {
	case KindIncome:
		if t.Income == nil || t.Expense != nil {
			return ErrKindMismatch
		}
		return t.Income.validate()
	case KindExpense:
		if t.Expense == nil || t.Income != nil {
			return ErrKindMismatch
		}
		return t.Expense.validate()
	default:
		return ErrUnknownKind
	}
}

func (d *IncomeDetails) validate() error {
	if !d.Plan.Valid() {
		return ErrInvalidPlan
	}
	if n, ok := d.Plan.Installments(); ok {
		if len(d.InstallmentDates) != n {
			return fmt.Errorf("%w: plan %s needs %d dates, got %d", ErrInstallmentDates, d.Plan, n, len(d.InstallmentDates))
		}
		for _, dt := range d.InstallmentDates {
			if err := dt.Validate(); err != nil {
				return fmt.Errorf("%w: %v", ErrInstallmentDates, err)
			}
		}
	} else if len(d.InstallmentDates) != 0 {
		return fmt.Errorf("%w: plan %s carries no installment dates", ErrInstallmentDates, d.Plan)
	}
	return nil
}

func (d *ExpenseDetails) validate() error {
	if !d.Status.Valid() {
		return ErrInvalidStatus
	}
	if d.Recurring {
		if d.RecurrenceCount < 1 || d.RecurrenceCount > MaxRecurrenceCount {
			return ErrInvalidRecurrence
		}
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Owner) == "" {
		return errors.New("missing owner")
	}
	if len(strings.TrimSpace(g.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(g.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if g.Target.Cents <= 0 {
		return ErrInvalidTarget
	}
	if strings.TrimSpace(g.Category) == "" {
		return ErrEmptyCategory
	}
	if err := g.DueDate.Validate(); err != nil {
		return err
	}
	if g.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	if !g.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Complete marks the goal reached: status flips to Completed and the
// current amount snaps to the target.
func (g *Goal) Complete() {
	g.Status = GoalCompleted
	g.Current = g.Target
}

// AddProgress adds a positive amount to the goal's current total. Progress
// may pass the target without changing the status.
func (g *Goal) AddProgress(amount Money) error {
	if amount.Cents <= 0 {
		return ErrInvalidProgress
	}
	g.Current.Cents += amount.Cents
	return nil
}
