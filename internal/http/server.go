package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"mealbook/internal/auth"
	"mealbook/internal/log"
	"mealbook/internal/metrics"
	"mealbook/internal/middleware/ratelimit"
	"mealbook/internal/middleware/security"
	"mealbook/internal/middleware/trace"
	"mealbook/internal/services"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the application services the API exposes.
type Services struct {
	Members    *services.MemberService
	Meals      *services.MealService
	Expenses   *services.ExpenseService
	Deposits   *services.DepositService
	Dashboard  *services.DashboardService
	Settlement *services.SettlementService
}

// Options configures NewServer.
type Options struct {
	Addr               string
	Logger             *log.Logger
	JWT                *auth.JWTManager
	RateLimitPerMinute int
	TrustedProxies     []string
	Ready              Pinger
	Now                func() time.Time
}

type Server struct {
	http.Server

	svc      Services
	jwt      *auth.JWTManager
	ready    Pinger
	now      func() time.Time
	started  time.Time
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Health and metrics endpoints bypass auth and rate limiting.
func NewServer(svc Services, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		svc:      svc,
		jwt:      opts.JWT,
		ready:    opts.Ready,
		now:      opts.Now,
		started:  opts.Now(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			opts.Logger.Warn("Ignoring trusted proxy", log.FieldError, err.Error())
		}
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/members", s.handleListMembers)
	api.HandleFunc("POST /api/members", s.admin(s.handleAddMember))
	api.HandleFunc("PATCH /api/members/{id}", s.admin(s.handleSetMemberActive))
	api.HandleFunc("GET /api/meals", s.handleListMeals)
	api.HandleFunc("PUT /api/meals", s.admin(s.handleUpdateMeal))
	api.HandleFunc("GET /api/expenses", s.handleListExpenses)
	api.HandleFunc("POST /api/expenses", s.admin(s.handleAddExpense))
	api.HandleFunc("DELETE /api/expenses/{id}", s.admin(s.handleDeleteExpense))
	api.HandleFunc("GET /api/deposits", s.handleListDeposits)
	api.HandleFunc("POST /api/deposits", s.admin(s.handleAddDeposit))
	api.HandleFunc("GET /api/dashboard", s.handleDashboard)
	api.HandleFunc("POST /api/months/{period}/settle", s.admin(s.handleSettle))
	api.HandleFunc("GET /api/months/{period}/summary", s.handleSummary)

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
			"Rate limit exceeded", log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldPath, r.URL.Path)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.handleHealth)
	root.HandleFunc("GET /readyz", s.handleReady)
	root.Handle("GET /metrics", metrics.Handler())
	root.Handle("/api/", limited(s.authenticate(s.member(api))))

	tracer := trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           headers.Middleware(tracer.Middleware(s.detector.Middleware(root))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
