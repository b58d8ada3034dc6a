package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"finanze/internal/auth"
	"finanze/internal/backend"
	"finanze/internal/cache"
	"finanze/internal/config"
	"finanze/internal/core"
	"finanze/internal/log"
	"finanze/internal/middleware/ratelimit"
	"finanze/internal/middleware/security"
	"finanze/internal/middleware/trace"
	appweb "finanze/web"
)

// readTimeout bounds every backend fetch issued on behalf of a request,
// so a slow Sheets call cannot hang a partial.
const readTimeout = 7 * time.Second

// ownerData is one user's full record set, fetched in a single round and
// cached per owner.
type ownerData struct {
	Transactions []core.Transaction
	Goals        []core.Goal
}

type appMetrics struct {
	totalWrites int64
	cacheHits   int64
	cacheMisses int64
	uptime      time.Time
}

type Server struct {
	http.Server

	templates *template.Template
	backend   backend.Backend
	auth      *auth.Service
	logger    *log.Logger

	traceMiddleware  *trace.Middleware
	securityHeaders  *security.HeadersMiddleware
	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter

	dataCache    *cache.LRUCache[ownerData]
	cacheManager *cache.Manager

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(cfg *config.Config, be backend.Backend, authService *auth.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()

	s := &Server{
		backend:          be,
		auth:             authService,
		logger:           logger,
		securityHeaders:  security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		securityDetector: security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		dataCache:    cache.NewLRUCache[ownerData](256, cfg.CacheTTL),
		cacheManager: cache.NewManager(),
		appMetrics:   &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, logger)

	s.cacheManager.Register(s.dataCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.Templates, "templates/*.html")
	if err != nil {
		logger.Warn("failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := appweb.StaticDir(); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/logout", s.handleLogout)

	protected := func(h http.HandlerFunc) http.Handler {
		return s.auth.RequireUser(h)
	}
	mux.Handle("/", protected(s.handleIndex))

	mux.Handle("/ui/summary", protected(s.handleSummary))
	mux.Handle("/ui/trend", protected(s.handleTrend))
	mux.Handle("/ui/categories", protected(s.handleCategoryBreakdown))
	mux.Handle("/ui/payers", protected(s.handlePayerBreakdown))
	mux.Handle("/ui/banks", protected(s.handleBankBreakdown))
	mux.Handle("/ui/recent", protected(s.handleRecent))
	mux.Handle("/ui/goals", protected(s.handleGoalList))
	mux.Handle("/ui/projection", protected(s.handleProjection))
	mux.Handle("/ui/transactions", protected(s.handleTransactionTable))

	mux.Handle("/transactions", protected(s.handleCreateTransaction))
	mux.Handle("/transactions/update", protected(s.handleUpdateTransaction))
	mux.Handle("/transactions/delete", protected(s.handleDeleteTransaction))
	mux.Handle("/transactions/pay", protected(s.handlePayTransaction))

	mux.Handle("/goals", protected(s.handleCreateGoal))
	mux.Handle("/goals/update", protected(s.handleUpdateGoal))
	mux.Handle("/goals/delete", protected(s.handleDeleteGoal))
	mux.Handle("/goals/progress", protected(s.handleGoalProgress))
	mux.Handle("/goals/complete", protected(s.handleCompleteGoal))

	mux.Handle("/statement.pdf", protected(s.handleStatement))

	// Middleware chain, outermost first: request id and logging, threat
	// detection, security headers, rate limit on mutating methods.
	var handler http.Handler = mux
	handler = s.limitMutating(handler)
	handler = s.securityHeaders.Middleware(handler)
	handler = s.logSuspicious(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// limitMutating applies the rate limiter to everything except reads.
func (s *Server) limitMutating(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "rate limit exceeded",
			log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		w.Header().Set("Retry-After", "60")
		http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			next.ServeHTTP(w, r)
		default:
			limited.ServeHTTP(w, r)
		}
	})
}

// logSuspicious flags requests matching known attack patterns. They are
// logged, not blocked.
func (s *Server) logSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason, bad := s.securityDetector.Suspicion(r); bad {
			s.logger.WarnContext(r.Context(), "suspicious request detected",
				log.FieldRequestID, trace.GetRequestID(r.Context()),
				"reason", reason,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// loadRecords returns the owner's transactions and goals, fetched
// concurrently and cached per owner. Callers receive copies, the cached
// slices are never handed out.
func (s *Server) loadRecords(ctx context.Context, owner string) (ownerData, error) {
	if data, found := s.dataCache.Get(owner); found {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
		return copyOwnerData(data), nil
	}
	atomic.AddInt64(&s.appMetrics.cacheMisses, 1)

	cctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var data ownerData
	g, gctx := errgroup.WithContext(cctx)
	g.Go(func() error {
		transactions, err := s.backend.ListTransactions(gctx, owner)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		data.Transactions = transactions
		return nil
	})
	g.Go(func() error {
		goals, err := s.backend.ListGoals(gctx, owner)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		data.Goals = goals
		return nil
	})
	if err := g.Wait(); err != nil {
		return ownerData{}, err
	}

	s.dataCache.Set(owner, data)
	return copyOwnerData(data), nil
}

// invalidateRecords drops the owner's cache entry after any write.
func (s *Server) invalidateRecords(owner string) {
	s.dataCache.Delete(owner)
}

func copyOwnerData(data ownerData) ownerData {
	out := ownerData{
		Transactions: make([]core.Transaction, len(data.Transactions)),
		Goals:        make([]core.Goal, len(data.Goals)),
	}
	copy(out.Transactions, data.Transactions)
	copy(out.Goals, data.Goals)
	return out
}

// ownerFromRequest resolves the authenticated username; the auth
// middleware guarantees it is present on protected routes.
func (s *Server) ownerFromRequest(r *http.Request) (string, bool) {
	username, err := auth.UsernameFromContext(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "missing username on protected route",
			log.FieldPath, r.URL.Path, log.FieldError, err)
		return "", false
	}
	return username, true
}
