package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/pflag"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/cron"
)

func (a *App) watchCommand() *Command {
	var interval time.Duration
	return &Command{
		Name:    "watch",
		Summary: "Follow today's status, and new alerts for managers, until interrupted",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("watch", pflag.ContinueOnError)
			fs.DurationVar(&interval, "interval", a.cfg.Watch.Interval, "refresh interval")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if interval <= 0 {
				return usageErrorf("--interval must be positive")
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			w := &watcher{app: a, stop: cancel, seen: map[string]bool{}}

			scheduler := cron.NewScheduler()
			scheduler.AddJob("refresh_today", interval, w.refreshToday)
			if a.store.IsManager() {
				scheduler.AddJob("poll_alerts", interval, w.pollAlerts)
			}
			scheduler.Start(ctx)
			<-ctx.Done()
			scheduler.Stop()

			if a.expired.Load() {
				return errLoginRequired
			}
			return nil
		},
	}
}

// watcher holds what the watch loop has already shown.
type watcher struct {
	app  *App
	stop context.CancelFunc

	mu       sync.Mutex
	lastLine string
	seen     map[string]bool
}

func (w *watcher) refreshToday(ctx context.Context) error {
	if err := w.app.daily.Reload(ctx); err != nil {
		return w.failed(ctx, err)
	}

	d := w.app.daily
	line := phaseLabel(d.Status())
	if rec := d.Record(); rec != nil {
		line = fmt.Sprintf("%s (%s), worked %s", line, rec.Status, workedLabel(d.WorkingTime()))
	}
	if next, ok := d.NextAction(); ok {
		line += ", next " + next.Path()
	}

	w.mu.Lock()
	changed := line != w.lastLine
	w.lastLine = line
	w.mu.Unlock()
	if changed {
		w.print("%s  %s\n", w.app.now().Format("15:04:05"), line)
	}
	return nil
}

func (w *watcher) pollAlerts(ctx context.Context) error {
	alerts, err := w.app.manager.Alerts(ctx, 0)
	if err != nil {
		return w.failed(ctx, err)
	}

	unread := alert.Unread(alerts)
	for i := len(unread) - 1; i >= 0; i-- {
		al := unread[i]
		w.mu.Lock()
		fresh := !w.seen[al.ID]
		w.seen[al.ID] = true
		w.mu.Unlock()
		if fresh {
			w.print("%s  alert %s: %s\n", w.app.now().Format("15:04:05"), al.Type, al.Message)
		}
	}
	return nil
}

// failed reports a refresh error. An auth failure ends the watch.
func (w *watcher) failed(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	if apiclient.IsAuth(err) {
		w.stop()
		return nil
	}
	msg, _ := describe(err)
	w.print("%s  %s\n", w.app.now().Format("15:04:05"), msg)
	return nil
}

func (w *watcher) print(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.app.out, format, args...)
}
