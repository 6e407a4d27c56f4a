package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

var errEndBreakFirst = errors.New("end your break before clocking out")

func (a *App) statusCommand() *Command {
	return &Command{
		Name:    "status",
		Summary: "Show today's record and this month's totals",
		Run: func(ctx context.Context, args []string) error {
			now := a.now()
			monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

			var stats attendance.Stats
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return a.daily.Reload(gctx)
			})
			g.Go(func() error {
				var err error
				stats, err = a.attendance.Statistics(gctx, monthStart.Format(validator.DateLayout), now.Format(validator.DateLayout))
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			a.printToday()
			a.printf("\nThis month: %s over %d days, %d late, %d absent\n",
				hoursLabel(stats.TotalHours), stats.TotalDays, stats.LateDays, stats.AbsentDays)
			return nil
		},
	}
}

func (a *App) printToday() {
	rec := a.daily.Record()
	tw := newTable(a.out)
	if rec == nil {
		tw.row("Today", a.now().Format(validator.DateLayout))
		tw.row("Status", phaseLabel(a.daily.Status()))
	} else {
		tw.row("Today", rec.Date)
		tw.row("Status", fmt.Sprintf("%s (%s)", phaseLabel(a.daily.Status()), rec.Status))
		tw.row("Clock in", clock(rec.ClockIn))
		tw.row("Break", breakSpan(rec))
		tw.row("Clock out", clock(rec.ClockOut))
		tw.row("Worked", workedLabel(a.daily.WorkingTime()))
	}
	if next, ok := a.daily.NextAction(); ok {
		tw.row("Next", next.Path())
	} else {
		tw.row("Next", "done for today")
	}
	tw.flush()
}

var clockDone = map[attendance.Action]string{
	attendance.ActionClockIn:    "Clocked in",
	attendance.ActionClockOut:   "Clocked out",
	attendance.ActionBreakStart: "Break started",
	attendance.ActionBreakEnd:   "Break ended",
}

func (a *App) clockCommand(name, summary string) *Command {
	action, _ := attendance.ActionFromPath(name)
	var lat, lng float64

	cmd := &Command{
		Name:    name,
		Summary: summary,
		Run: func(ctx context.Context, args []string) error {
			if err := a.daily.Reload(ctx); err != nil {
				return err
			}
			if err := unavailable(a.daily.Record(), action); err != nil {
				return err
			}

			var loc *attendance.Location
			if lat != 0 || lng != 0 {
				loc = &attendance.Location{Lat: lat, Lng: lng}
			}
			rec, err := a.daily.Perform(ctx, action, loc)
			if err != nil {
				return err
			}

			at := rec.ClockIn
			switch action {
			case attendance.ActionClockOut:
				at = rec.ClockOut
			case attendance.ActionBreakStart:
				at = rec.BreakStart
			case attendance.ActionBreakEnd:
				at = rec.BreakEnd
			}
			a.printf("%s at %s (%s)\n", clockDone[action], clock(at), rec.Status)
			if action == attendance.ActionClockOut {
				a.printf("Worked %s today\n", workedLabel(attendance.ComputeWorkingTime(rec, *rec.ClockOut)))
			}
			return nil
		},
	}
	if action == attendance.ActionClockIn || action == attendance.ActionClockOut {
		cmd.Flags = func() *pflag.FlagSet {
			fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
			fs.Float64Var(&lat, "lat", 0, "latitude of the current location")
			fs.Float64Var(&lng, "lng", 0, "longitude of the current location")
			return fs
		}
	}
	return cmd
}

// unavailable explains why action cannot be taken against r, or returns nil.
func unavailable(r *attendance.Record, action attendance.Action) error {
	if attendance.Allowed(r, action) {
		return nil
	}
	clockedIn := r != nil && r.ClockIn != nil
	closed := r.Closed()

	switch action {
	case attendance.ActionClockIn:
		return attendance.ErrAlreadyClockedIn
	case attendance.ActionClockOut:
		if !clockedIn {
			return attendance.ErrNotClockedIn
		}
		if closed {
			return attendance.ErrAlreadyClockedOut
		}
		return errEndBreakFirst
	case attendance.ActionBreakStart:
		if !clockedIn {
			return attendance.ErrNotClockedIn
		}
		if closed {
			return attendance.ErrAlreadyClockedOut
		}
		return attendance.ErrBreakAlreadyTaken
	case attendance.ActionBreakEnd:
		if closed {
			return attendance.ErrAlreadyClockedOut
		}
		return attendance.ErrNotOnBreak
	}
	return attendance.ErrInvalidAction
}

func (a *App) historyCommand() *Command {
	var month string
	return &Command{
		Name:    "history",
		Summary: "List a month of attendance records",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
			fs.StringVar(&month, "month", "", "month as YYYY-MM (default current month)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			year, mon, err := parseMonth(month, a.now())
			if err != nil {
				return err
			}
			records, err := a.attendance.History(ctx, year, mon)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				a.printf("No attendance records for %04d-%02d\n", year, mon)
				return nil
			}

			now := a.now()
			tw := newTable(a.out)
			tw.row("DATE", "IN", "BREAK", "OUT", "WORKED", "STATUS")
			for i := range records {
				r := &records[i]
				tw.row(r.Date, clock(r.ClockIn), breakSpan(r), clock(r.ClockOut),
					workedLabel(attendance.ComputeWorkingTime(r, now)), string(r.Status))
			}
			tw.flush()
			a.printf("\nTotal: %s\n", hoursLabel(attendance.SumHours(records)))
			return nil
		},
	}
}

func (a *App) statsCommand() *Command {
	var start, end string
	return &Command{
		Name:    "stats",
		Summary: "Summarise attendance over a date range",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
			fs.StringVar(&start, "start", "", "first day as YYYY-MM-DD (default first of this month)")
			fs.StringVar(&end, "end", "", "last day as YYYY-MM-DD (default today)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			now := a.now()
			if start == "" {
				start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(validator.DateLayout)
			}
			if end == "" {
				end = now.Format(validator.DateLayout)
			}

			stats, err := a.attendance.Statistics(ctx, start, end)
			if err != nil {
				return err
			}
			tw := newTable(a.out)
			tw.row("Period", stats.StartDate+" to "+stats.EndDate)
			tw.row("Days", fmt.Sprint(stats.TotalDays))
			tw.row("Present", fmt.Sprint(stats.PresentDays))
			tw.row("Late", fmt.Sprint(stats.LateDays))
			tw.row("Absent", fmt.Sprint(stats.AbsentDays))
			tw.row("Hours", hoursLabel(stats.TotalHours))
			tw.row("Average", hoursLabel(stats.AverageHours))
			tw.flush()
			return nil
		},
	}
}

// parseMonth reads YYYY-MM, defaulting to the month of now.
func parseMonth(s string, now time.Time) (int, int, error) {
	if s == "" {
		return now.Year(), int(now.Month()), nil
	}
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, validator.ValidationErrors{{Field: "month", Message: "month must be in YYYY-MM format"}}
	}
	return t.Year(), int(t.Month()), nil
}
