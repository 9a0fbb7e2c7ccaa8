package http

import (
	"context"
	"net/http"
	"time"

	"financeflow/internal/core"
	applog "financeflow/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
	}).Write(w)
}

// handleReady reports whether the persistent store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.ready == nil {
		checks["store"] = "not_checked"
	} else if err := s.ready.Ping(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["cache"] = map[string]int{
		"overview_entries": s.overviewCache.Size(),
		"report_entries":   s.reportCache.Size(),
	}
	checks["rate_limiter"] = map[string]int{"active_clients": s.rateLimiter.ActiveClients()}

	NewJSONResponse().Status(httpStatus).Data(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string][]string{
		"expense": core.ExpenseCategories,
		"budget":  core.BudgetCategories,
	}).Write(w)
}

// today is the current instant in the configured timezone.
func (s *Server) today() time.Time {
	return s.now().In(s.location)
}
