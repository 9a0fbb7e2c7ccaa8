package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"financeflow/internal/analytics"
	"financeflow/internal/budgetedit"
	"financeflow/internal/cache"
	"financeflow/internal/core"
	applog "financeflow/internal/log"
	"financeflow/internal/middleware/ratelimit"
	"financeflow/internal/middleware/security"
	"financeflow/internal/middleware/trace"
	"financeflow/internal/storage"
)

// Ledger is the application surface the handlers drive.
type Ledger interface {
	Expenses() []core.Expense
	Budgets() []core.Budget
	AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ReplaceBudgets(ctx context.Context, budgets []core.Budget) error
	Login(ctx context.Context, email string) (string, error)
	Signup(ctx context.Context, u core.User) (string, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (string, bool, error)
}

// Config holds the knobs of the API server.
type Config struct {
	Addr               string
	Location           *time.Location
	CacheSize          int
	CacheTTL           time.Duration
	RateLimitPerMinute int
	// Ready is pinged by /readyz when set
	Ready storage.Pinger
}

type Server struct {
	http.Server
	ledger   Ledger
	logger   *applog.Logger
	location *time.Location
	ready    storage.Pinger
	now      func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	tracer           *trace.Middleware

	// Month views keyed by year-month, purged on every mutation. viewGen
	// counts purges so a view built before one is never cached after it.
	overviewCache *cache.LRUCache[analytics.Overview]
	reportCache   *cache.LRUCache[analytics.Report]
	viewMu        sync.Mutex
	viewGen       uint64

	draftsMu sync.Mutex
	drafts   map[string]*budgetedit.Draft

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(cfg Config, ledger Ledger, logger *applog.Logger) *Server {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 100
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = applog.Discard()
	}

	mux := http.NewServeMux()
	s := &Server{
		ledger:           ledger,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		location:         cfg.Location,
		ready:            cfg.Ready,
		now:              time.Now,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		overviewCache:    cache.NewLRUCache[analytics.Overview](cfg.CacheSize, cfg.CacheTTL),
		reportCache:      cache.NewLRUCache[analytics.Report](cfg.CacheSize, cfg.CacheTTL),
		drafts:           make(map[string]*budgetedit.Draft),
	}
	s.tracer = trace.NewMiddleware(s.logger, s.securityDetector.ExtractClientIP)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/session/login", s.handleLogin)
	mux.HandleFunc("POST /api/session/signup", s.handleSignup)
	mux.HandleFunc("POST /api/session/logout", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.handleCurrentUser)

	mux.HandleFunc("GET /api/categories", s.requireSession(s.handleCategories))
	mux.HandleFunc("GET /api/expenses", s.requireSession(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.requireSession(s.handleCreateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.requireSession(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/budgets", s.requireSession(s.handleListBudgets))
	mux.HandleFunc("PUT /api/budgets", s.requireSession(s.handleReplaceBudgets))
	mux.HandleFunc("GET /api/budgets/draft", s.requireSession(s.handleGetDraft))
	mux.HandleFunc("POST /api/budgets/draft", s.requireSession(s.handleDraftAdd))
	mux.HandleFunc("PATCH /api/budgets/draft/{category}", s.requireSession(s.handleDraftUpdate))
	mux.HandleFunc("DELETE /api/budgets/draft/{category}", s.requireSession(s.handleDraftRemove))
	mux.HandleFunc("POST /api/budgets/draft/commit", s.requireSession(s.handleDraftCommit))
	mux.HandleFunc("POST /api/budgets/draft/discard", s.requireSession(s.handleDraftDiscard))

	mux.HandleFunc("GET /api/overview", s.requireSession(s.handleOverview))
	mux.HandleFunc("GET /api/analytics", s.requireSession(s.handleAnalytics))
	mux.HandleFunc("GET /api/export.xlsx", s.requireSession(s.handleExport))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.tracer.Middleware(headers.Middleware(s.securityDetector.Middleware(limit(mux)))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// RateLimiter exposes the limiter so its stale-client sweep can be scheduled.
func (s *Server) RateLimiter() *ratelimit.Limiter { return s.rateLimiter }

// Caches returns the view caches for periodic expiry sweeps.
func (s *Server) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.overviewCache, s.reportCache}
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// requireSession rejects requests made while nobody is signed in.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok, err := s.ledger.CurrentUser(r.Context())
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to read current user", applog.FieldError, err)
			InternalServerError("Unable to read session").Write(w)
			return
		}
		if !ok {
			UnauthorizedError("Sign in required").Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

type contextKey string

const userContextKey contextKey = "user"

func userFromContext(ctx context.Context) string {
	user, _ := ctx.Value(userContextKey).(string)
	return user
}

func cacheKey(year int, month time.Month) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(int(month))
}

// invalidateViews drops every cached month view; any mutation can move
// totals in more than one month.
func (s *Server) invalidateViews() {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	s.viewGen++
	s.overviewCache.Purge()
	s.reportCache.Purge()
}

func (s *Server) viewGeneration() uint64 {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	return s.viewGen
}

// storeView runs set only if no purge happened since gen was read.
func (s *Server) storeView(gen uint64, set func()) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	if s.viewGen == gen {
		set()
	}
}

func (s *Server) getOverview(ref time.Time) analytics.Overview {
	key := cacheKey(ref.Year(), ref.Month())
	if ov, ok := s.overviewCache.Get(key); ok {
		return ov
	}
	gen := s.viewGeneration()
	ov := analytics.BuildOverview(s.ledger.Expenses(), s.ledger.Budgets(), ref)
	s.storeView(gen, func() { s.overviewCache.Set(key, ov) })
	return ov
}

func (s *Server) getReport(ref time.Time) analytics.Report {
	key := cacheKey(ref.Year(), ref.Month())
	if rep, ok := s.reportCache.Get(key); ok {
		return rep
	}
	gen := s.viewGeneration()
	rep := analytics.BuildAnalytics(s.ledger.Expenses(), s.ledger.Budgets(), ref)
	s.storeView(gen, func() { s.reportCache.Set(key, rep) })
	return rep
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Info("HTTP server shutting down",
			applog.FieldOperation, applog.OpShutdown,
			"requests_served", s.tracer.TotalRequests(),
			"suspicious_requests", s.securityDetector.SuspiciousCount())
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
