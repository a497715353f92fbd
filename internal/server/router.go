// Package server assembles the HTTP surface.
package server

import (
	"net/http"
	"time"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/internal/handlers"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/middleware"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
	"github.com/diewo77/go-crm/pdf"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

// Options are the collaborators of the router. Only DB is required.
type Options struct {
	DB      *gorm.DB
	Config  *config.Config
	Clock   clock.Clock
	Logger  *logging.Logger
	Metrics *metrics.Metrics
	Mailer  services.Mailer
	// Limiter throttles POST /leads; defaults to an in-memory bucket.
	Limiter middleware.Limiter
}

func (o *Options) defaults() {
	if o.Config == nil {
		o.Config = &config.Config{}
	}
	if o.Clock == nil {
		o.Clock = clock.Real(o.Config.Location())
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
	if o.Limiter == nil {
		limit := o.Config.Redis.LeadsPerMinute
		if limit <= 0 {
			limit = 10
		}
		o.Limiter = middleware.NewMemoryLimiter(limit, time.Minute)
	}
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(o Options) http.Handler {
	o.defaults()
	cfg, clk, log := o.Config, o.Clock, o.Logger

	svc := services.New(services.Deps{DB: o.DB, Clock: clk, Metrics: o.Metrics}, o.Mailer, cfg.App.PublicURL)
	auth.Configure(cfg.Auth.SessionSecret, cfg.Auth.JWTSecret)
	auth.SetUserVerifier(svc.Users.Exists)

	theme := pdf.Theme{CompanyName: cfg.App.CompanyName, BrandColor: cfg.PDF.BrandColor}
	clients := handlers.NewClientHandler(svc.Clients, clk, log)
	notes := handlers.NewNoteHandler(svc.Notes, clk, log)
	followUps := handlers.NewFollowUpHandler(svc.FollowUps, clk, log)
	proposals := handlers.NewProposalHandler(svc.Proposals, theme, o.Metrics, clk, log)
	projects := handlers.NewProjectHandler(svc.Projects, theme, o.Metrics, clk, log)
	dashboard := handlers.NewDashboardHandler(svc.Dashboard, svc.FollowUps, clk, log)
	leads := handlers.NewLeadHandler(svc.Leads, o.Metrics, clk, log)
	authH := handlers.NewAuthHandler(svc.Users, cfg.Auth.JWTTTL, clk, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(o.Metrics))
	r.Use(middleware.Prefs)
	r.Use(auth.Middleware)

	// --- Health endpoints ---
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := o.DB.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", o.Metrics.Handler())

	// --- Public ---
	r.With(middleware.RateLimit(o.Limiter, "leads", o.Metrics, log)).Post("/leads", leads.Register)
	r.Get("/leads/verify", leads.Verify)
	r.Post("/login", authH.Login)
	r.Post("/logout", authH.Logout)

	// --- Authenticated ---
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/dashboard", dashboard.Show)
		r.Post("/dashboard/seguimientos/{id}/completar", dashboard.CompleteFollowUp)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", clients.List)
			r.Post("/", clients.Create)
			r.Get("/{id}", clients.Show)
			r.Put("/{id}", clients.Update)
			r.Delete("/{id}", clients.Delete)
		})

		r.Post("/notas", notes.Create)
		r.Put("/notas/{id}", notes.Update)
		r.Delete("/notas/{id}", notes.Delete)

		r.Route("/seguimientos", func(r chi.Router) {
			r.Get("/", followUps.List)
			r.Post("/", followUps.Create)
			r.Put("/{id}", followUps.Update)
			r.Delete("/{id}", followUps.Delete)
			r.Post("/{id}/completar", followUps.Complete)
		})
		r.Get("/api/seguimientos/pendientes", followUps.Pending)

		r.Route("/propuestas", func(r chi.Router) {
			r.Get("/", proposals.List)
			r.Post("/", proposals.Create)
			r.Get("/{id}", proposals.Show)
			r.Put("/{id}", proposals.Update)
			r.Delete("/{id}", proposals.Delete)
			r.Post("/{id}/enviar", proposals.MarkAsSent)
			r.Post("/{id}/cambiar-estado", proposals.ChangeStatus)
			r.Post("/{id}/followup", proposals.RecordFollowup)
			r.Post("/{id}/duplicar", proposals.Duplicate)
			r.Get("/{id}/pdf", proposals.PDF)
			r.Post("/{id}/convertir-proyecto", proposals.Convert)
		})

		r.Route("/proyectos", func(r chi.Router) {
			r.Get("/", projects.List)
			r.Get("/{id}", projects.Show)
			r.Get("/{id}/edit", projects.Edit)
			r.Put("/{id}", projects.Update)
			r.Delete("/{id}", projects.Delete)
			r.Post("/{id}/cambiar-estado", projects.ChangeStatus)
			r.Post("/{id}/iniciar", projects.Transition(services.TransitionStart))
			r.Post("/{id}/pausar", projects.Transition(services.TransitionPause))
			r.Post("/{id}/reanudar", projects.Transition(services.TransitionResume))
			r.Post("/{id}/completar", projects.Transition(services.TransitionComplete))
			r.Get("/{id}/pdf", projects.PDF)
			r.Post("/{id}/tareas", projects.AddTask)
			r.Post("/{id}/tareas/reordenar", projects.ReorderTasks)
			r.Put("/{id}/tareas/{task}", projects.UpdateTask)
			r.Delete("/{id}/tareas/{task}", projects.DeleteTask)
			r.Post("/{id}/tareas/{task}/completar", projects.ToggleTask)
		})
	})
	return r
}
