package core

// TransactionPatch is a field-level edit: nil fields are left untouched.
// Income-only and expense-only fields may only be set when the target
// transaction has that kind; Apply rejects mismatches.
type TransactionPatch struct {
	Date        *Date
	Description *string
	Amount      *Money
	Category    *string

	Payer            *string
	Bank             *string
	Plan             *PaymentPlan
	InstallmentDates *[]Date

	Recurring       *bool
	RecurrenceCount *int
	Status          *ExpenseStatus
}

// GoalPatch edits a goal's descriptive fields. Progress and completion are
// separate operations, not patch fields.
type GoalPatch struct {
	Description *string
	Target      *Money
	Category    *string
	DueDate     *Date
}

func (p TransactionPatch) IsZero() bool {
	return p == TransactionPatch{}
}

func (p GoalPatch) IsZero() bool {
	return p == GoalPatch{}
}

func (p TransactionPatch) touchesIncome() bool {
	return p.Payer != nil || p.Bank != nil || p.Plan != nil || p.InstallmentDates != nil
}

func (p TransactionPatch) touchesExpense() bool {
	return p.Recurring != nil || p.RecurrenceCount != nil || p.Status != nil
}

// Apply returns t with the patch applied and validated. t itself is not
// modified; detail structs are copied before editing.
func (p TransactionPatch) Apply(t Transaction) (Transaction, error) {
	switch t.Kind {
	case KindIncome:
		if p.touchesExpense() {
			return Transaction{}, ErrKindMismatch
		}
		if t.Income != nil {
			det := *t.Income
			det.InstallmentDates = append([]Date(nil), det.InstallmentDates...)
			t.Income = &det
		}
	case KindExpense:
		if p.touchesIncome() {
			return Transaction{}, ErrKindMismatch
		}
		if t.Expense != nil {
			det := *t.Expense
			t.Expense = &det
		}
	default:
		return Transaction{}, ErrUnknownKind
	}

	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}

	if t.Kind == KindIncome && t.Income != nil {
		if p.Payer != nil {
			t.Income.Payer = *p.Payer
		}
		if p.Bank != nil {
			t.Income.Bank = *p.Bank
		}
		if p.Plan != nil {
			t.Income.Plan = *p.Plan
			// A new installment plan without explicit dates regenerates the
			// defaults from the (possibly just patched) transaction date.
			if n, ok := t.Income.Plan.Installments(); ok && p.InstallmentDates == nil {
				t.Income.InstallmentDates = DefaultInstallmentDates(t.Date, n)
			}
			if _, ok := t.Income.Plan.Installments(); !ok && p.InstallmentDates == nil {
				t.Income.InstallmentDates = nil
			}
		}
		if p.InstallmentDates != nil {
			t.Income.InstallmentDates = append([]Date(nil), (*p.InstallmentDates)...)
		}
	}
	if t.Kind == KindExpense && t.Expense != nil {
		if p.Recurring != nil {
			t.Expense.Recurring = *p.Recurring
			if !t.Expense.Recurring {
				t.Expense.RecurrenceCount = 0
			}
		}
		if p.RecurrenceCount != nil {
			t.Expense.RecurrenceCount = *p.RecurrenceCount
		}
		if p.Status != nil {
			t.Expense.Status = *p.Status
		}
	}

	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Apply returns g with the patch applied and validated.
func (p GoalPatch) Apply(g Goal) (Goal, error) {
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Target != nil {
		g.Target = *p.Target
	}
	if p.Category != nil {
		g.Category = *p.Category
	}
	if p.DueDate != nil {
		g.DueDate = *p.DueDate
	}
	if g.Status == GoalCompleted {
		// Completion pins current to target; keep the invariant through
		// target edits.
		g.Current = g.Target
	}
	if err := g.Validate(); err != nil {
		return Goal{}, err
	}
	return g, nil
}
