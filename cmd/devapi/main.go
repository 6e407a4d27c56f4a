package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/config"
	"github.com/cmlabs-hris/attendance-client/internal/devapi"
	appHTTP "github.com/cmlabs-hris/attendance-client/internal/handler/http"
)

var version = "dev"

func main() {
	cfg, err := config.LoadDevAPI()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	// LOG_LEVEL was checked by Validate.
	level, _ := config.ParseLogLevel(cfg.App.LogLevel)
	logger := appHTTP.NewRequestLogger(os.Stdout, cfg.App.Env, version, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := devapi.New(ctx, cfg, devapi.Options{Logger: logger})
	if err != nil {
		slog.Error("Failed to build dev API", "error", err)
		os.Exit(1)
	}
	app.Start(ctx)
	defer app.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Server running", "addr", "http://localhost"+srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
