package http

import (
	"net/http"

	"financeflow/internal/core"
	applog "financeflow/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(toExpensesJSON(s.ledger.Expenses())).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if resp := ParseBodyOrFail(p); resp != nil {
		resp.Write(w)
		return
	}

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}
	date, err := parseDate(p.Get("date"), s.now(), s.location)
	if err != nil {
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}

	e, err := s.ledger.AddExpense(r.Context(), core.ExpenseInput{
		Amount:      amount,
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Date:        date,
	})
	if err != nil {
		s.writeMutationError(w, r, "Failed to add expense", err)
		return
	}
	s.invalidateViews()

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogExpenseAdded(r.Context(), e.ID, e.Amount.StringFixed(2), e.Category)

	NewJSONResponse().
		Status(http.StatusCreated).
		Data(toExpenseJSON(e)).
		NotifySuccess("Expense added successfully").
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		BadRequestError("Missing expense id").Write(w)
		return
	}

	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		s.writeMutationError(w, r, "Failed to delete expense", err)
		return
	}
	s.invalidateViews()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense deleted",
		applog.FieldExpenseID, id,
		applog.FieldOperation, applog.OpDelete)

	NewJSONResponse().
		Data(map[string]string{"id": id}).
		NotifySuccess("Expense deleted").
		Write(w)
}
