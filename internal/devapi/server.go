package devapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/backend"
	"github.com/cmlabs-hris/attendance-client/internal/config"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/attendance-client/internal/handler/http"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-client/internal/repository/memory"
)

// App is a fully wired development API.
type App struct {
	Router    http.Handler
	Jobs      *cron.AttendanceJobs
	Scheduler *cron.Scheduler
}

// Options overrides pieces of the wiring, mostly for tests.
type Options struct {
	Seed      *fixtures.Seed
	Storage   storage.Storage
	Logger    *slog.Logger
	Now       time.Time
	SkipJobs  bool
	JobsEvery time.Duration
}

// New builds the repositories, services, handlers and jobs described by cfg.
func New(ctx context.Context, cfg *config.DevAPIConfig, opts Options) (*App, error) {
	loc, err := cfg.Workday.Location()
	if err != nil {
		return nil, err
	}
	workday, err := attendance.ParseWorkday(cfg.Workday.Start, cfg.Workday.End, cfg.Workday.LateGrace, loc)
	if err != nil {
		return nil, err
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return nil, err
	}

	fileStorage := opts.Storage
	if fileStorage == nil {
		if cfg.Exports.Dir != "" {
			local, err := storage.NewLocalStorage(cfg.Exports.Dir)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize export storage: %w", err)
			}
			fileStorage = local
		} else {
			fileStorage = storage.NewMemoryStorage()
		}
	}

	userRepo := memory.NewUserRepository()
	attendanceRepo := memory.NewAttendanceRepository()
	leaveRepo := memory.NewLeaveRequestRepository()
	timeModRepo := memory.NewTimeModificationRepository()
	alertRepo := memory.NewAlertRepository()

	seed := opts.Seed
	if seed == nil {
		seed, err = fixtures.Load(cfg.Fixtures.Path)
		if err != nil {
			return nil, err
		}
	}
	today := opts.Now
	if today.IsZero() {
		today = time.Now()
	}
	if err := seed.Apply(ctx, userRepo, attendanceRepo, workday, today); err != nil {
		return nil, err
	}

	alertService := backend.NewAlertService(alertRepo)
	authService := backend.NewAuthService(userRepo, JWTService)
	attendanceService := backend.NewAttendanceService(attendanceRepo, userRepo, alertService, workday)
	requestService := backend.NewRequestService(leaveRepo, timeModRepo, userRepo, attendanceRepo, workday)
	managerService := backend.NewManagerService(userRepo, attendanceRepo, alertService, requestService, fileStorage, workday)

	handlers := appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authService),
		Attendance: appHTTP.NewAttendanceHandler(attendanceService),
		Request:    appHTTP.NewRequestHandler(requestService),
		Manager:    appHTTP.NewManagerHandler(managerService),
	}
	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         opts.Logger,
	}, JWTService, handlers)

	app := &App{
		Router: router,
		Jobs:   cron.NewAttendanceJobs(attendanceRepo, userRepo, alertService, workday),
	}
	if !opts.SkipJobs {
		every := opts.JobsEvery
		if every <= 0 {
			every = cfg.Jobs.Interval
		}
		app.Scheduler = cron.NewScheduler()
		app.Jobs.RegisterJobs(app.Scheduler, every)
	}
	return app, nil
}

// Start runs the background jobs until ctx ends.
func (a *App) Start(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Start(ctx)
	}
}

// Stop waits for background jobs to finish.
func (a *App) Stop() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
}
