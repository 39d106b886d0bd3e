package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/Nok1969/regent-work-order-system/internal/config"
	"github.com/Nok1969/regent-work-order-system/internal/handlers"
	"github.com/Nok1969/regent-work-order-system/internal/middleware"
	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/repository"
	"github.com/Nok1969/regent-work-order-system/internal/service"
	"github.com/Nok1969/regent-work-order-system/internal/ws"
)

// Deps carries the services constructed once in main; the router only
// wires them to routes.
type Deps struct {
	Log           zerolog.Logger
	Cfg           config.Config
	Auth          *service.AuthService
	Repairs       *service.RepairService
	Notifications *service.NotificationService
	RepairRepo    repository.RepairRepository
	UserRepo      repository.UserRepository
	Objects       handlers.ObjectStore
	Hub           *ws.Hub
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.Recoverer(d.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.Cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))
	r.Use(middleware.WithAuth(d.Log, d.Auth))

	// Health
	r.Get("/healthz", handlers.Health())

	ah := handlers.NewAuthHTTP(d.Auth, d.Cfg.SessionTTL)
	rh := handlers.NewRepairHTTP(d.Repairs, d.RepairRepo, d.UserRepo, d.Objects)
	nh := handlers.NewNotificationHTTP(d.Notifications)
	uh := handlers.NewUserHTTP(d.UserRepo, d.Auth)
	ph := handlers.NewReportsHTTP(d.RepairRepo)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", ah.Register())
		r.Post("/login", ah.Login())
		r.Post("/logout", ah.Logout())
		r.Get("/me", ah.Me())
	})

	r.Route("/api/repairs", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", rh.List())
		r.Post("/", rh.Create())
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", rh.Get())
			r.With(middleware.RequireRoles(models.RoleTechnician, models.RoleManager, models.RoleAdmin)).
				Patch("/status", rh.UpdateStatus())
			r.With(middleware.RequireRoles(models.RoleManager, models.RoleAdmin)).
				Patch("/assign", rh.Assign())
			r.Post("/attachments", rh.UploadAttachment())
		})
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", nh.List())
		r.Post("/{id}/read", nh.MarkAsRead())
		r.Post("/read-all", nh.MarkAllAsRead())
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRoles(models.RoleManager, models.RoleAdmin)).Get("/", uh.List())
		r.With(middleware.RequireRoles(models.RoleAdmin)).Post("/", uh.Create())
		r.Route("/{id}", func(r chi.Router) {
			r.With(middleware.RequireRoles(models.RoleAdmin)).Patch("/role", uh.UpdateRole())
			r.With(middleware.RequireRoles(models.RoleAdmin)).Patch("/active", uh.SetActive())
			r.With(middleware.RequireSelfOrRoles(models.RoleAdmin)).Patch("/basic", uh.UpdateBasic())
			r.With(middleware.RequireSelfOrRoles(models.RoleAdmin)).Patch("/password", uh.UpdatePassword())
		})
	})

	r.Route("/api/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/summary", ph.Summary())
		r.Get("/work-types", ph.WorkTypes())
	})

	r.Get("/api/ws", handlers.NotificationStream(d.Log, d.Hub, d.Cfg.Origin))

	return r
}
