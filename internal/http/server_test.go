package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	applog "financeflow/internal/log"
	"financeflow/internal/repository"
	"financeflow/internal/services"
	"financeflow/internal/session"
	"financeflow/internal/storage"
	"financeflow/internal/storage/memory"
)

var fixedNow = time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

// newTestServer wires the real ledger over an empty in-memory store.
func newTestServer(t *testing.T, cfg Config) (*Server, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	for _, key := range []string{storage.KeyExpenses, storage.KeyBudgets} {
		if err := store.Set(ctx, key, "[]"); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	ledger := services.NewLedgerService(
		repository.NewExpenseRepository(store),
		repository.NewBudgetRepository(store),
		session.NewManager(store),
		nil,
	)
	if err := ledger.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cfg.Ready = store
	srv := NewServer(cfg, ledger, applog.Discard())
	srv.now = func() time.Time { return fixedNow }
	return srv, store
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, srv *Server) {
	t.Helper()
	if rr := do(t, srv, http.MethodPost, "/api/session/login", `{"email":"ana@example.com"}`); rr.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv, store := newTestServer(t, Config{})

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s missing request id", path)
		}
	}

	_ = store.Close()
	if rr := do(t, srv, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 after store close, got %d", rr.Code)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t, Config{})

	if rr := do(t, srv, http.MethodGet, "/api/expenses", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/session/login", `{"email":"  "}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty email, got %d", rr.Code)
	}

	login(t, srv)
	rr := do(t, srv, http.MethodGet, "/api/session", "")
	got := decode[sessionJSON](t, rr)
	if !got.Authenticated || got.User != "ana@example.com" {
		t.Fatalf("unexpected session %+v", got)
	}
	if rr := do(t, srv, http.MethodGet, "/api/expenses", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	if rr := do(t, srv, http.MethodPost, "/api/session/logout", ""); rr.Code != http.StatusOK {
		t.Fatalf("logout status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/expenses", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rr.Code)
	}
}

func TestSignupLogsIn(t *testing.T) {
	srv, store := newTestServer(t, Config{})

	rr := do(t, srv, http.MethodPost, "/api/session/signup", `{"email":"bo@example.com","name":"Bo","password":"s3cret"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup status=%d body=%s", rr.Code, rr.Body.String())
	}
	users, ok, _ := store.Get(context.Background(), storage.KeyUsers)
	if !ok || !strings.Contains(users, "bo@example.com") || strings.Contains(users, "s3cret") {
		t.Fatalf("unexpected users log %q", users)
	}
	if rr := do(t, srv, http.MethodGet, "/api/budgets", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected signed in user, got %d", rr.Code)
	}
}

func TestCreateExpenseValidationAndSuccess(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	login(t, srv)

	cases := []struct {
		name string
		body string
	}{
		{"invalid amount", `{"amount":"abc","category":"Shopping","description":"x"}`},
		{"negative amount", `{"amount":"-5","category":"Shopping","description":"x"}`},
		{"missing description", `{"amount":"1.23","category":"Shopping","description":""}`},
		{"missing category", `{"amount":"1.23","category":"","description":"x"}`},
		{"bad date", `{"amount":"1.23","category":"Shopping","description":"x","date":"20/08/2025"}`},
		{"description too long", `{"amount":"1","category":"Shopping","description":"` + strings.Repeat("d", 201) + `"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rr := do(t, srv, http.MethodPost, "/api/expenses", tc.body); rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
			}
		})
	}

	if rr := do(t, srv, http.MethodPost, "/api/expenses", "{not json"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rr.Code)
	}

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"amount":1234.5,"category":"Shopping","description":"Laptop","date":"2025-08-15"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get(NotificationDurationHeader); got != "2000" {
		t.Fatalf("expected notify duration 2000, got %q", got)
	}
	e := decode[expenseJSON](t, rr)
	if e.ID == "" || e.Amount.Value != "1234.50" || e.Amount.Formatted != "$1,234.50" || e.Date != "2025-08-15" {
		t.Fatalf("unexpected expense %+v", e)
	}

	// form bodies work too and default the date to today
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader("amount=3,20&category=Other&description=Coffee"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("form create status=%d body=%s", rec.Code, rec.Body.String())
	}
	if e := decode[expenseJSON](t, rec); e.Date != "2025-08-20" || e.Amount.Value != "3.20" {
		t.Fatalf("unexpected form expense %+v", e)
	}

	list := decode[[]expenseJSON](t, do(t, srv, http.MethodGet, "/api/expenses", ""))
	if len(list) != 2 || list[0].Description != "Coffee" {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestDeleteExpense(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	login(t, srv)

	created := decode[expenseJSON](t, do(t, srv, http.MethodPost, "/api/expenses",
		`{"amount":"10","category":"Other","description":"Pens","date":"2025-08-01"}`))

	rr := do(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if list := decode[[]expenseJSON](t, do(t, srv, http.MethodGet, "/api/expenses", "")); len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}

	// unknown ids are a no-op
	if rr := do(t, srv, http.MethodDelete, "/api/expenses/missing", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown id, got %d", rr.Code)
	}
}

func TestOverviewReflectsMutations(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	login(t, srv)

	if rr := do(t, srv, http.MethodPut, "/api/budgets", `[{"category":"Food & Dining","limit":"500"}]`); rr.Code != http.StatusOK {
		t.Fatalf("replace budgets status=%d body=%s", rr.Code, rr.Body.String())
	}

	ov := decode[overviewJSON](t, do(t, srv, http.MethodGet, "/api/overview", ""))
	if ov.TotalSpent.Value != "0.00" || ov.Label != "August 2025" {
		t.Fatalf("unexpected empty overview %+v", ov)
	}

	do(t, srv, http.MethodPost, "/api/expenses", `{"amount":"450","category":"Food & Dining","description":"Groceries","date":"2025-08-10"}`)

	ov = decode[overviewJSON](t, do(t, srv, http.MethodGet, "/api/overview", ""))
	if ov.TotalSpent.Value != "450.00" || ov.RemainingBudget.Value != "50.00" {
		t.Fatalf("cached overview not invalidated: %+v", ov)
	}
	if len(ov.Budgets) != 1 || ov.Budgets[0].Percentage != "90.00" || ov.Budgets[0].Status != "warning" {
		t.Fatalf("unexpected budget rows %+v", ov.Budgets)
	}
	if len(ov.Recent) != 1 {
		t.Fatalf("expected 1 recent transaction, got %d", len(ov.Recent))
	}
}

func TestPinnedMonth(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	login(t, srv)

	do(t, srv, http.MethodPost, "/api/expenses", `{"amount":"62","category":"Travel","description":"Train","date":"2025-06-03"}`)

	rep := decode[reportJSON](t, do(t, srv, http.MethodGet, "/api/analytics?year=2025&month=6", ""))
	if rep.Month != 6 || rep.DayOfMonth != 30 || rep.DaysInMonth != 30 {
		t.Fatalf("expected last day of June as reference, got %+v", rep)
	}
	if rep.AverageDaily.Value != "2.07" {
		t.Fatalf("average daily=%s, want 2.07", rep.AverageDaily.Value)
	}
	if len(rep.Trend) != 6 || rep.Trend[5].Spent.Value != "62.00" {
		t.Fatalf("unexpected trend %+v", rep.Trend)
	}

	// out of range month falls back to the current one
	rep = decode[reportJSON](t, do(t, srv, http.MethodGet, "/api/analytics?month=13", ""))
	if rep.Month != 8 || rep.DayOfMonth != 20 {
		t.Fatalf("expected current month, got %d/%d", rep.Month, rep.DayOfMonth)
	}
}

func TestReplaceBudgets(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	login(t, srv)

	rr := do(t, srv, http.MethodPut, "/api/budgets", `[{"category":"Travel","limit":100},{"category":"Travel","limit":50}]`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for duplicates, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPut, "/api/budgets", `{"category":"Travel"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-array body, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPut, "/api/budgets", `[{"category":"Travel","limit":100},{"category":"Insurance","limit":"49.999"}]`)
	if rr.Code != http.StatusOK {
		t.Fatalf("replace status=%d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[budgetsJSON](t, do(t, srv, http.MethodGet, "/api/budgets", ""))
	if len(got.Budgets) != 2 || got.Total.Value != "150.00" {
		t.Fatalf("unexpected budgets %+v", got)
	}
}

func TestBudgetDraftFlow(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	login(t, srv)

	rr := do(t, srv, http.MethodPost, "/api/budgets/draft", `{"category":"Travel","limit":"300"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("draft add status=%d body=%s", rr.Code, rr.Body.String())
	}
	if rr := do(t, srv, http.MethodPost, "/api/budgets/draft", `{"category":"Travel","limit":"10"}`); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for existing category, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/budgets/draft", `{"category":"Gifts & Donations","limit":"0"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for zero limit on add, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPatch, "/api/budgets/draft/Travel", `{"limit":"-1"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for negative limit, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPatch, "/api/budgets/draft/Insurance", `{"limit":"5"}`); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown category, got %d", rr.Code)
	}

	draft := decode[draftJSON](t, do(t, srv, http.MethodPatch, "/api/budgets/draft/Travel", `{"limit":"0"}`))
	if draft.Total.Value != "0.00" || len(draft.Available) != 11 {
		t.Fatalf("unexpected draft %+v", draft)
	}

	// staged changes are invisible until committed
	if got := decode[budgetsJSON](t, do(t, srv, http.MethodGet, "/api/budgets", "")); len(got.Budgets) != 0 {
		t.Fatalf("draft leaked into committed set: %+v", got)
	}

	do(t, srv, http.MethodPatch, "/api/budgets/draft/Travel", `{"limit":"250"}`)
	if rr := do(t, srv, http.MethodPost, "/api/budgets/draft/commit", ""); rr.Code != http.StatusOK {
		t.Fatalf("commit status=%d", rr.Code)
	}
	got := decode[budgetsJSON](t, do(t, srv, http.MethodGet, "/api/budgets", ""))
	if len(got.Budgets) != 1 || got.Budgets[0].Limit.Value != "250.00" {
		t.Fatalf("unexpected committed budgets %+v", got)
	}

	do(t, srv, http.MethodDelete, "/api/budgets/draft/Travel", "")
	draft = decode[draftJSON](t, do(t, srv, http.MethodPost, "/api/budgets/draft/discard", ""))
	if len(draft.Budgets) != 1 || draft.Budgets[0].Category != "Travel" {
		t.Fatalf("discard should restore committed set, got %+v", draft)
	}
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	login(t, srv)
	do(t, srv, http.MethodPost, "/api/expenses", `{"amount":"9.99","category":"Other","description":"Book","date":"2025-08-02"}`)

	rr := do(t, srv, http.MethodGet, "/api/export.xlsx", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "application/vnd.openxmlformats") {
		t.Fatalf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rr.Body.String(), "PK") {
		t.Fatal("expected a zip container")
	}
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, Config{RateLimitPerMinute: 1})

	if rr := do(t, srv, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("first request status=%d", rr.Code)
	}
	rr := do(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}

func TestSuspiciousRequestBlocked(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	if rr := do(t, srv, http.MethodGet, "/.env", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
