package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/config"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/storage"
	attendanceService "github.com/cmlabs-hris/attendance-client/internal/service/attendance"
	authService "github.com/cmlabs-hris/attendance-client/internal/service/auth"
	managerService "github.com/cmlabs-hris/attendance-client/internal/service/manager"
	requestService "github.com/cmlabs-hris/attendance-client/internal/service/request"
	"github.com/cmlabs-hris/attendance-client/internal/state/daily"
	"github.com/cmlabs-hris/attendance-client/internal/state/session"
)

// Options overrides the process environment, mainly for tests.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Storage replaces the session directory from the config
	Storage storage.Storage

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// App is the attendance command-line client: one session, one set of services.
type App struct {
	cfg    *config.ClientConfig
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	store      *session.Store
	api        *apiclient.Client
	auth       *authService.AuthServiceImpl
	attendance *attendanceService.AttendanceServiceImpl
	requests   *requestService.RequestServiceImpl
	manager    *managerService.ManagerServiceImpl
	daily      *daily.State

	now     func() time.Time
	expired atomic.Bool
	root    *Command
}

func New(cfg *config.ClientConfig, opts Options) (*App, error) {
	a := &App{
		cfg:    cfg,
		in:     opts.Stdin,
		out:    opts.Stdout,
		errOut: opts.Stderr,
		now:    time.Now,
	}
	if a.in == nil {
		a.in = os.Stdin
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	if a.errOut == nil {
		a.errOut = os.Stderr
	}

	st := opts.Storage
	if st == nil {
		if cfg.Session.Dir == "" {
			st = storage.NewMemoryStorage()
		} else {
			local, err := storage.NewLocalStorage(cfg.Session.Dir)
			if err != nil {
				return nil, fmt.Errorf("failed to open session directory: %w", err)
			}
			st = local
		}
	}
	a.store = session.NewStore(st)

	clientOpts := []apiclient.Option{
		apiclient.WithTokenSource(a.store),
		apiclient.WithUnauthorizedHandler(a.store.HandleUnauthorized),
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(opts.HTTPClient))
	}
	if opts.Logger != nil {
		clientOpts = append(clientOpts, apiclient.WithLogger(opts.Logger))
	}
	api, err := apiclient.NewClient(cfg.API.BaseURL, cfg.API.Timeout, clientOpts...)
	if err != nil {
		return nil, err
	}
	a.api = api

	a.auth = authService.NewAuthService(api, a.store)
	a.attendance = attendanceService.NewAttendanceService(api)
	a.requests = requestService.NewRequestService(api, a.store)
	a.manager = managerService.NewManagerService(api, a.store)
	a.daily = daily.NewState(a.attendance)

	a.store.OnLogout(func(reason session.LogoutReason) {
		if reason == session.ReasonUnauthorized {
			a.expired.Store(true)
		}
		a.daily.Clear()
		a.requests.Reset()
	})

	a.root = a.commands()
	return a, nil
}

// Run executes one command line and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	err := a.run(ctx, args)
	if err == nil {
		return ExitOK
	}

	if a.expired.Load() {
		fmt.Fprintln(a.errOut, "error: "+SessionExpiredMessage)
		return ExitLoginRequired
	}
	msg, code := describe(err)
	fmt.Fprintf(a.errOut, "error: %s\n", msg)
	return code
}

func (a *App) run(ctx context.Context, args []string) error {
	cmd := a.root.Find(args)
	if !cmd.Public && !isHelpRequest(args) {
		if err := a.auth.Restore(ctx); err != nil {
			return err
		}
		if !a.store.Snapshot().Authenticated {
			return errLoginRequired
		}
	}
	return a.root.Execute(ctx, a.out, args)
}

func isHelpRequest(args []string) bool {
	for _, arg := range args {
		if isHelpFlag(arg) {
			return true
		}
	}
	return len(args) == 0
}

// Root exposes the command tree, e.g. for help output.
func (a *App) Root() *Command {
	return a.root
}

var errManagerOnly = errors.New("this command is only available to managers")

func (a *App) requireManager() error {
	if !a.store.IsManager() {
		return errManagerOnly
	}
	return nil
}
