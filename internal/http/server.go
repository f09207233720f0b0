package http

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shortlog/internal/core"
	applog "shortlog/internal/log"
	"shortlog/internal/middleware/ratelimit"
	"shortlog/internal/middleware/security"
	"shortlog/internal/middleware/trace"
	"shortlog/internal/report"
	"shortlog/internal/services"
)

// Ledger is the roster and day-entry surface the API needs.
type Ledger interface {
	Workers(ctx context.Context) ([]core.Worker, error)
	AddWorker(ctx context.Context, name string) (core.Worker, error)
	RemoveWorker(ctx context.Context, id int64) error
	Entries(ctx context.Context) (core.EntryCollection, error)
	DayView(ctx context.Context, dateKey string) (services.DayView, error)
	SaveEntry(ctx context.Context, dateKey string, e core.DayEntry) (services.SaveResult, error)
	Preview(unrecorded, short float64, attendees int) core.DailySplit
	PenaltyRules() services.PenaltyRules
}

// Reports is the month report surface the API needs.
type Reports interface {
	MonthReport(ctx context.Context, year int, month time.Month) (core.MonthReport, error)
	Renderer(f report.Format) (report.Renderer, error)
	Export(ctx context.Context, w io.Writer, f report.Format, year int, month time.Month) error
	FileName(f report.Format, year int, month time.Month) string
	RequestSync(ctx context.Context, year int, month time.Month) (bool, error)
}

// Deps are the collaborators of the HTTP server. Ready is optional.
type Deps struct {
	Ledger             Ledger
	Reports            Reports
	Logger             *applog.Logger
	RateLimitPerMinute int
	Ready              func(context.Context) error
}

type Server struct {
	http.Server
	ledger   Ledger
	reports  Reports
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	ready    func(context.Context) error
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and returns a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		Server: http.Server{
			Addr:           addr,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 64 << 10,
		},
		ledger:   deps.Ledger,
		reports:  deps.Reports,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		detector: security.NewDetector(),
		ready:    deps.Ready,
		now:      time.Now,
	}
	s.tracer = trace.NewMiddleware(deps.Logger, s.detector.ExtractClientIP)
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.tracer.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded. Please try again later.")
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)

		r.Route("/workers", func(r chi.Router) {
			r.Get("/", s.handleListWorkers)
			r.Post("/", s.handleAddWorker)
			r.Delete("/{id}", s.handleRemoveWorker)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Get("/{date}", s.handleGetEntry)
			r.Put("/{date}", s.handleSaveEntry)
		})

		r.Route("/penalty", func(r chi.Router) {
			r.Post("/preview", s.handlePreview)
			r.Get("/rules", s.handleRules)
		})

		r.Route("/reports/{year}/{month}", func(r chi.Router) {
			r.Get("/", s.handleMonthReport)
			r.Get("/export", s.handleExport)
			r.Post("/sync", s.handleSync)
		})
	})

	return r
}

// Shutdown stops the limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
