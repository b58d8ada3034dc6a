package core

import "strconv"

// Fixed suggestion catalogs for the entry forms. The fields themselves stay
// free-form text; these are the options the UI offers first.

func ExpenseCategories() []string {
	return []string{
		"Alimentari", "Trasporti", "Casa", "Svago", "Istruzione",
		"Salute", "Bollette", "Shopping", "Investimenti", "Altro",
	}
}

func IncomeCategories() []string {
	return []string{"Vendita prodotto", "Prestazione servizio", "Stipendio", "Investimento", "Altro"}
}

func GoalCategories() []string {
	return []string{
		"Viaggio", "Auto", "Casa", "Istruzione", "Salute",
		"Investimento", "Fondo di emergenza", "Altro",
	}
}

func PaymentPlans() []PaymentPlan {
	return []PaymentPlan{PlanSingle, "2x", "3x", "4x", "5x", "6x", PlanMoreThanSix}
}

// Label returns the select-option text for a plan.
func (p PaymentPlan) Label() string {
	switch p {
	case PlanSingle:
		return "Pagamento unico"
	case PlanMoreThanSix:
		return "Più di 6 rate"
	}
	if n, ok := p.Installments(); ok {
		return strconv.Itoa(n) + " rate"
	}
	return string(p)
}
