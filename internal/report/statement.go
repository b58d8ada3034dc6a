package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"

	"finanze/internal/core"
)

var monthNames = [...]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// MonthLabel returns the Italian display name for ym, e.g. "Marzo 2025".
func MonthLabel(ym YearMonth) string {
	if ym.Month < 1 || ym.Month > 12 {
		return ym.String()
	}
	return monthNames[ym.Month-1] + " " + strconv.Itoa(ym.Year)
}

// WriteMonthlyStatement renders the owner's statement for one month as a
// PDF: a summary block, the month's transactions date-ascending, and the
// goal progress list.
func WriteMonthlyStatement(w io.Writer, owner string, ym YearMonth, transactions []core.Transaction, goals []core.Goal) error {
	totals := MonthlySummary(transactions, ym)

	lastDay := core.DateOf(ym.Next().First().AddDate(0, 0, -1))
	rows := FilterTransactions(transactions, TransactionFilter{From: ym.First(), To: lastDay})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date.Time) })

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(20, 20, 20)
	pdf.Cell(0, 10, tr("Estratto conto · "+MonthLabel(ym)))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, tr("Titolare: "+owner))
	pdf.Ln(10)

	// Summary block
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 10)

	sumW := []float64{36.4, 36.4, 36.4, 36.4, 36.4}
	headers := []string{"Entrate", "Spese pagate", "Spese da pagare", "Saldo reale", "Saldo previsto"}
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(sumW[i], 9, tr(h), "1", ln, "C", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 10)
	values := []string{
		euro(totals.Income.Cents),
		euro(totals.PaidExpense.Cents),
		euro(totals.UnpaidExpense.Cents),
		euro(totals.RealBalance().Cents),
		euro(totals.ProjectedBalance().Cents),
	}
	for i, v := range values {
		ln := 0
		if i == len(values)-1 {
			ln = 1
		}
		pdf.CellFormat(sumW[i], 9, tr(v), "1", ln, "C", false, 0, "")
	}
	pdf.Ln(6)

	// Transaction table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	colW := []float64{24, 20, 72, 38, 28}
	writeTxHeader := func() {
		pdf.CellFormat(colW[0], 8, "Data", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "Tipo", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[2], 8, "Descrizione", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[3], 8, "Categoria", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[4], 8, "Importo", "1", 1, "R", true, 0, "")
	}
	writeTxHeader()

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(30, 30, 30)
	for _, t := range rows {
		if pdf.GetY() > 262 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 10)
			writeTxHeader()
			pdf.SetFont("Helvetica", "", 9)
		}

		kind := "Entrata"
		amount := euro(t.Amount.Cents)
		if t.Kind == core.KindExpense {
			kind = "Spesa"
			amount = euro(-t.Amount.Cents)
			if t.Expense != nil && t.Expense.Status == core.StatusUnpaid {
				kind = "Spesa*"
			}
		}
		pdf.CellFormat(colW[0], 7, t.Date.Format("02/01/2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 7, tr(kind), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[2], 7, tr(clip(t.Description, 52)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 7, tr(clip(t.Category, 26)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[4], 7, tr(amount), "1", 1, "R", false, 0, "")
	}
	if len(rows) == 0 {
		pdf.CellFormat(182, 7, tr("Nessun movimento nel mese"), "1", 1, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, tr("* spesa non ancora pagata"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Goal progress block
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(20, 20, 20)
	pdf.Cell(0, 8, tr("Obiettivi di risparmio"))
	pdf.Ln(8)

	if len(goals) == 0 {
		pdf.SetFont("Helvetica", "", 9)
		pdf.Cell(0, 6, tr("Nessun obiettivo attivo"))
		pdf.Ln(6)
	} else {
		pdf.SetFont("Helvetica", "B", 10)
		goalW := []float64{72, 34, 34, 22, 20}
		pdf.CellFormat(goalW[0], 8, "Obiettivo", "1", 0, "L", true, 0, "")
		pdf.CellFormat(goalW[1], 8, "Accumulato", "1", 0, "R", true, 0, "")
		pdf.CellFormat(goalW[2], 8, "Traguardo", "1", 0, "R", true, 0, "")
		pdf.CellFormat(goalW[3], 8, "%", "1", 0, "C", true, 0, "")
		pdf.CellFormat(goalW[4], 8, "Stato", "1", 1, "C", true, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		for _, g := range goals {
			status := "attivo"
			if g.Status == core.GoalCompleted {
				status = "raggiunto"
			}
			pdf.CellFormat(goalW[0], 7, tr(clip(g.Description, 50)), "1", 0, "L", false, 0, "")
			pdf.CellFormat(goalW[1], 7, tr(euro(g.Current.Cents)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(goalW[2], 7, tr(euro(g.Target.Cents)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(goalW[3], 7, GoalProgress(g).StringFixed(0)+"%", "1", 0, "C", false, 0, "")
			pdf.CellFormat(goalW[4], 7, tr(status), "1", 1, "C", false, 0, "")
		}
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, tr("Generato il "+time.Now().Format("02/01/2006 15:04")), "", 0, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render statement pdf: %w", err)
	}
	return nil
}

// euro formats cents as "€12,34"; negatives carry a leading minus.
func euro(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("€%d,%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
