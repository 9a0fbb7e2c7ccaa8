package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"financeflow/internal/budgetedit"
	"financeflow/internal/core"
	applog "financeflow/internal/log"
)

// ledgerBudgets commits drafts through the ledger so replacements are
// announced like any other mutation.
type ledgerBudgets struct{ ledger Ledger }

func (l ledgerBudgets) List() []core.Budget { return l.ledger.Budgets() }

func (l ledgerBudgets) ReplaceAll(ctx context.Context, budgets []core.Budget) error {
	return l.ledger.ReplaceBudgets(ctx, budgets)
}

// draftFor returns the staged budget editor of user, starting one from the
// committed set when needed.
func (s *Server) draftFor(user string) *budgetedit.Draft {
	s.draftsMu.Lock()
	defer s.draftsMu.Unlock()
	d, ok := s.drafts[user]
	if !ok {
		d = budgetedit.New(ledgerBudgets{ledger: s.ledger})
		s.drafts[user] = d
	}
	return d
}

func (s *Server) dropDraft(user string) {
	s.draftsMu.Lock()
	defer s.draftsMu.Unlock()
	delete(s.drafts, user)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets := s.ledger.Budgets()
	NewJSONResponse().Data(budgetsJSON{
		Budgets: toBudgetsJSON(budgets),
		Total:   newMoney(core.SumLimits(budgets)),
	}).Write(w)
}

type budgetRequest struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
}

// handleReplaceBudgets replaces the whole budget set in one step.
func (s *Server) handleReplaceBudgets(w http.ResponseWriter, r *http.Request) {
	var req []budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError("Expected a JSON array of budgets").Write(w)
		return
	}

	budgets := make([]core.Budget, len(req))
	for i, b := range req {
		budgets[i] = core.Budget{Category: sanitizeInput(b.Category), Limit: b.Limit.Round(2)}
	}
	if err := s.ledger.ReplaceBudgets(r.Context(), budgets); err != nil {
		s.writeMutationError(w, r, "Failed to save budgets", err)
		return
	}
	s.invalidateViews()
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Budgets replaced",
		applog.FieldBudgetCount, len(budgets),
		applog.FieldOperation, applog.OpReplace)

	NewJSONResponse().Data(budgetsJSON{
		Budgets: toBudgetsJSON(budgets),
		Total:   newMoney(core.SumLimits(budgets)),
	}).NotifySuccess("Budgets saved").Write(w)
}

func (s *Server) draftView(d *budgetedit.Draft) draftJSON {
	return draftJSON{
		Budgets:   toBudgetsJSON(d.Budgets()),
		Total:     newMoney(d.Total()),
		Available: d.AvailableCategories(),
	}
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	d := s.draftFor(userFromContext(r.Context()))
	NewJSONResponse().Data(s.draftView(d)).Write(w)
}

func (s *Server) handleDraftAdd(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if resp := ParseBodyOrFail(p); resp != nil {
		resp.Write(w)
		return
	}
	limit, err := core.ParseLimit(p.Get("limit"))
	if err != nil {
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}

	d := s.draftFor(userFromContext(r.Context()))
	if err := d.Add(p.Get("category"), limit); err != nil {
		if errors.Is(err, budgetedit.ErrCategoryExists) {
			ConflictError(validationMessage(err)).Write(w)
			return
		}
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(s.draftView(d)).Write(w)
}

func (s *Server) handleDraftUpdate(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.PathValue("category"))
	p := NewRequestBodyParser(r)
	if resp := ParseBodyOrFail(p); resp != nil {
		resp.Write(w)
		return
	}
	limit, err := core.ParseLimit(p.Get("limit"))
	if err != nil {
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}

	d := s.draftFor(userFromContext(r.Context()))
	if err := d.UpdateLimit(category, limit); err != nil {
		if errors.Is(err, budgetedit.ErrUnknownCategory) {
			NotFoundError("No budget for category " + category).Write(w)
			return
		}
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}
	NewJSONResponse().Data(s.draftView(d)).Write(w)
}

func (s *Server) handleDraftRemove(w http.ResponseWriter, r *http.Request) {
	d := s.draftFor(userFromContext(r.Context()))
	d.Remove(strings.TrimSpace(r.PathValue("category")))
	NewJSONResponse().Data(s.draftView(d)).Write(w)
}

func (s *Server) handleDraftCommit(w http.ResponseWriter, r *http.Request) {
	d := s.draftFor(userFromContext(r.Context()))
	if err := d.Commit(r.Context()); err != nil {
		s.writeMutationError(w, r, "Failed to save budgets", err)
		return
	}
	s.invalidateViews()
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Budget draft committed",
		applog.FieldBudgetCount, len(d.Budgets()),
		applog.FieldOperation, applog.OpReplace)

	NewJSONResponse().Data(s.draftView(d)).NotifySuccess("Budgets saved").Write(w)
}

func (s *Server) handleDraftDiscard(w http.ResponseWriter, r *http.Request) {
	d := s.draftFor(userFromContext(r.Context()))
	d.Discard()
	NewJSONResponse().Data(s.draftView(d)).Write(w)
}
