package web

import (
	"log/slog"
	"net/http"
	"time"

	"f1league-app/internal/auth"
	"f1league-app/internal/league"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

type Options struct {
	// Tokens signs admin sessions. Admin login is disabled when nil.
	Tokens       *auth.Tokens
	PasswordHash string
	SessionTTL   time.Duration
	Logger       *slog.Logger
	// Metrics is mounted at /metrics when set.
	Metrics       http.Handler
	DevMode       bool
	SecureCookies bool
	LoginLimiter  *IPRateLimiter
}

type Server struct {
	league    *league.Service
	templates *Templates
	opts      Options
	logger    *slog.Logger
}

func NewServer(svc *league.Service, templates *Templates, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	if opts.LoginLimiter == nil {
		opts.LoginLimiter = NewIPRateLimiter(rate.Every(6*time.Second), 5)
	}
	return &Server{
		league:    svc,
		templates: templates,
		opts:      opts,
		logger:    opts.Logger.With("component", "web"),
	}
}

func (s *Server) adminEnabled() bool {
	return s.opts.Tokens != nil && s.opts.PasswordHash != ""
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(WithRole(s.opts.Tokens))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics)
	}

	r.Get("/", s.handleHome)
	r.Get("/standings", s.handleStandings)
	r.Get("/standings/export.xlsx", s.handleStandingsExport)
	r.Get("/events", s.handleEvents)
	r.Get("/events/{eventID}", s.handleEventShow)
	r.Get("/roster", s.handleRoster)
	r.Get("/grid", s.handleGrid)
	r.Get("/stats", s.handleStats)
	r.Get("/stats/progression.png", s.handleProgressionChart)

	r.Get("/admin/login", s.handleLogin)
	r.With(RateLimitMiddleware(s.opts.LoginLimiter)).Post("/admin/login", s.handleLoginPost)
	r.Post("/admin/logout", s.handleLogout)
	if s.opts.DevMode {
		r.Post("/dev/login", s.handleDevLogin)
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Post("/events/{eventID}/result", s.handleResultSave)
		r.Post("/events/{eventID}/reset", s.handleResultReset)
		r.Post("/roster", s.handleRosterAdd)
		r.Post("/roster/{entryID}/remove", s.handleRosterRemove)
		r.Post("/roster/{entryID}/competitor", s.handleRosterReassign)
		r.Post("/grid/{competitorID}", s.handleGroupAssign)
		r.Post("/grid/{competitorID}/reset", s.handleGroupReset)
		r.Post("/admin/reset", s.handleLeagueReset)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/standings", s.handleAPIStandings)
		r.Get("/standings/constructors", s.handleAPIConstructors)
		r.Get("/awards", s.handleAPIAwards)
		r.Get("/stats/placements", s.handleAPIPlacements)
	})

	return r
}
