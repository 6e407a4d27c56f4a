package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-client/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-client/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// NewRequestLogger builds the JSON slog logger used for ECS access logs.
func NewRequestLogger(w io.Writer, env, version string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env == "production")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-devapi"),
		slog.String("version", version),
		slog.String("env", env),
	)
}

type RouterConfig struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Request    RequestHandler
	Manager    ManagerHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/profile", h.Auth.Profile)
			r.Put("/profile", h.Auth.UpdateProfile)
		})
	})

	// Requires authentication
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/time", func(r chi.Router) {
			r.Get("/today", h.Attendance.Today)
			r.Get("/history", h.Attendance.History)
			r.Get("/statistics", h.Attendance.Statistics)
			r.Post("/{action}", h.Attendance.Clock)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Route("/leave", func(r chi.Router) {
				r.Post("/", h.Request.CreateLeave)
				r.Get("/", h.Request.ListLeave)
				r.Patch("/{id}", h.Request.UpdateLeaveStatus)
				r.Delete("/{id}", h.Request.DeleteLeave)
			})
			r.Route("/time-modification", func(r chi.Router) {
				r.Post("/", h.Request.CreateTimeModification)
				r.Get("/", h.Request.ListTimeModification)
				r.Patch("/{id}", h.Request.UpdateTimeModificationStatus)
				r.Delete("/{id}", h.Request.DeleteTimeModification)
			})
		})

		// Manager only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireManager)

			r.Route("/manager", func(r chi.Router) {
				r.Get("/dashboard", h.Manager.Dashboard)
				r.Get("/team", h.Manager.Team)
				r.Get("/team/attendance", h.Manager.TeamAttendance)
				r.Get("/alerts", h.Manager.Alerts)
				r.Patch("/alerts/{id}/read", h.Manager.MarkAlertRead)
				r.Get("/reports/monthly/{year}/{month}", h.Manager.MonthlyReport)
				r.Post("/export", h.Manager.Export)
			})
			r.Get("/exports/{file}", h.Manager.Download)
		})
	})

	return r
}
