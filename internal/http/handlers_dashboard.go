package http

import (
	"bytes"
	"fmt"
	"net/http"

	"financeflow/internal/export"
	applog "financeflow/internal/log"
)

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	now := s.today()
	ref := ParseMonthParams(r.URL.Query(), now).ReferenceDate(now)
	NewJSONResponse().Data(toOverviewJSON(s.getOverview(ref))).Write(w)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	now := s.today()
	ref := ParseMonthParams(r.URL.Query(), now).ReferenceDate(now)
	NewJSONResponse().Data(toReportJSON(s.getReport(ref))).Write(w)
}

// handleExport streams every expense and budget as an xlsx workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	expenses := s.ledger.Expenses()
	budgets := s.ledger.Budgets()

	var buf bytes.Buffer
	if err := export.Write(&buf, expenses, budgets); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Failed to build export", err, applog.ComponentExport, applog.OpExport, nil)
		InternalServerError("Failed to build export").Write(w)
		return
	}

	filename := fmt.Sprintf("financeflow-%s.xlsx", s.today().Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Export written",
		applog.FieldOperation, applog.OpExport,
		"expenses", len(expenses),
		applog.FieldBudgetCount, len(budgets))
}
