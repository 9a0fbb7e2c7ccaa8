// Package export writes the ledger to an xlsx workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"financeflow/internal/core"
)

const (
	ExpensesSheet = "Expenses"
	BudgetsSheet  = "Budgets"
	ContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Workbook builds a workbook with one sheet of expenses (newest first) and
// one of budgets. Amounts are written as numbers so they can be summed.
func Workbook(expenses []core.Expense, budgets []core.Budget) (*excelize.File, error) {
	f := excelize.NewFile()

	// the default sheet becomes the expenses sheet
	if err := f.SetSheetName(f.GetSheetName(0), ExpensesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(BudgetsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create budgets sheet: %w", err)
	}

	if err := writeExpenses(f, expenses); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeBudgets(f, budgets); err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write renders the workbook straight to w.
func Write(w io.Writer, expenses []core.Expense, budgets []core.Budget) error {
	f, err := Workbook(expenses, budgets)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeExpenses(f *excelize.File, expenses []core.Expense) error {
	if err := f.SetSheetRow(ExpensesSheet, "A1", &[]any{"Date", "Category", "Description", "Amount", "ID"}); err != nil {
		return fmt.Errorf("write expense header: %w", err)
	}
	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		amount, _ := e.Amount.Float64()
		row := []any{e.Date.Format("2006-01-02"), e.Category, e.Description, amount, e.ID}
		if err := f.SetSheetRow(ExpensesSheet, cell, &row); err != nil {
			return fmt.Errorf("write expense %s: %w", e.ID, err)
		}
	}
	_ = f.SetColWidth(ExpensesSheet, "A", "A", 12)
	_ = f.SetColWidth(ExpensesSheet, "B", "B", 18)
	_ = f.SetColWidth(ExpensesSheet, "C", "C", 30)
	_ = f.SetColWidth(ExpensesSheet, "D", "D", 12)
	_ = f.SetColWidth(ExpensesSheet, "E", "E", 38)
	return nil
}

func writeBudgets(f *excelize.File, budgets []core.Budget) error {
	if err := f.SetSheetRow(BudgetsSheet, "A1", &[]any{"Category", "Monthly limit"}); err != nil {
		return fmt.Errorf("write budget header: %w", err)
	}
	for i, b := range budgets {
		limit, _ := b.Limit.Float64()
		row := []any{b.Category, limit}
		if err := f.SetSheetRow(BudgetsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write budget %s: %w", b.Category, err)
		}
	}
	if len(budgets) > 0 {
		total := fmt.Sprintf("A%d", len(budgets)+2)
		if err := f.SetSheetRow(BudgetsSheet, total, &[]any{"Total"}); err != nil {
			return err
		}
		if err := f.SetCellFormula(BudgetsSheet, fmt.Sprintf("B%d", len(budgets)+2), fmt.Sprintf("SUM(B2:B%d)", len(budgets)+1)); err != nil {
			return fmt.Errorf("write budget total: %w", err)
		}
	}
	_ = f.SetColWidth(BudgetsSheet, "A", "A", 20)
	_ = f.SetColWidth(BudgetsSheet, "B", "B", 14)
	return nil
}
