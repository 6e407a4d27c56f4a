package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/report"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

func (a *App) dashboardCommand() *Command {
	return &Command{
		Name:    "dashboard",
		Summary: "Show today's team overview",
		Run: func(ctx context.Context, args []string) error {
			if err := a.requireManager(); err != nil {
				return err
			}
			d, err := a.manager.Dashboard(ctx)
			if err != nil {
				return err
			}
			tw := newTable(a.out)
			tw.row("Team size", fmt.Sprint(d.TeamSize))
			tw.row("Present", fmt.Sprint(d.TodayPresent))
			tw.row("Late", fmt.Sprint(d.TodayLate))
			tw.row("Absent", fmt.Sprint(d.TodayAbsent))
			tw.row("Unread alerts", fmt.Sprint(d.UnreadAlerts))
			tw.row("Pending approvals", fmt.Sprint(d.PendingApprovals))
			tw.flush()
			return nil
		},
	}
}

func (a *App) teamCommand() *Command {
	var date string
	return &Command{
		Name:    "team",
		Summary: "List team members",
		Run: func(ctx context.Context, args []string) error {
			if err := a.requireManager(); err != nil {
				return err
			}
			team, err := a.manager.Team(ctx)
			if err != nil {
				return err
			}
			if len(team) == 0 {
				a.printf("No team members\n")
				return nil
			}
			tw := newTable(a.out)
			tw.row("EMPLOYEE ID", "NAME", "DEPARTMENT", "EMAIL")
			for _, u := range team {
				tw.row(u.EmployeeID, u.Name, orDash(u.Department), orDash(u.Email))
			}
			tw.flush()
			return nil
		},
		Subcommands: []*Command{{
			Name:    "attendance",
			Summary: "Show the team's records for one day",
			Flags: func() *pflag.FlagSet {
				fs := pflag.NewFlagSet("attendance", pflag.ContinueOnError)
				fs.StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
				return fs
			},
			Run: func(ctx context.Context, args []string) error {
				if err := a.requireManager(); err != nil {
					return err
				}
				if date == "" {
					date = a.now().Format(validator.DateLayout)
				}
				records, err := a.manager.TeamAttendance(ctx, date)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					a.printf("No attendance records for %s\n", date)
					return nil
				}
				now := a.now()
				tw := newTable(a.out)
				tw.row("EMPLOYEE", "IN", "BREAK", "OUT", "WORKED", "STATUS")
				for i := range records {
					r := &records[i]
					tw.row(r.UserName, clock(r.ClockIn), breakSpan(r), clock(r.ClockOut),
						workedLabel(attendance.ComputeWorkingTime(r, now)), string(r.Status))
				}
				tw.flush()
				return nil
			},
		}},
	}
}

func (a *App) alertsCommand() *Command {
	var (
		limit      int
		unreadOnly bool
	)
	return &Command{
		Name:    "alerts",
		Summary: "List attendance alerts, newest first",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("alerts", pflag.ContinueOnError)
			fs.IntVar(&limit, "limit", 20, "maximum number of alerts, 0 for all")
			fs.BoolVar(&unreadOnly, "unread", false, "only show unread alerts")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := a.requireManager(); err != nil {
				return err
			}
			if limit < 0 {
				return usageErrorf("--limit must not be negative")
			}
			alerts, err := a.manager.Alerts(ctx, limit)
			if err != nil {
				return err
			}
			if unreadOnly {
				alerts = alert.Unread(alerts)
			}
			a.printAlerts(alerts)
			return nil
		},
		Subcommands: []*Command{{
			Name:    "read",
			Summary: "Mark an alert as read",
			Usage:   "attendance alerts read <id>",
			Run: func(ctx context.Context, args []string) error {
				if err := requireArgs(args, 1, "attendance alerts read <id>"); err != nil {
					return err
				}
				if err := a.requireManager(); err != nil {
					return err
				}
				if _, err := a.manager.MarkAlertRead(ctx, args[0]); err != nil {
					return err
				}
				a.printf("Alert %s marked as read\n", args[0])
				return nil
			},
		}},
	}
}

func (a *App) printAlerts(alerts []alert.Alert) {
	if len(alerts) == 0 {
		a.printf("No alerts\n")
		return
	}
	now := a.now()
	tw := newTable(a.out)
	tw.row("", "ID", "TYPE", "EMPLOYEE", "DATE", "MESSAGE", "RAISED")
	for _, al := range alerts {
		tw.row(unreadMark(al), al.ID, string(al.Type), al.UserName, al.Date, al.Message, ago(al.CreatedAt, now))
	}
	tw.flush()
}

func unreadMark(al alert.Alert) string {
	if al.IsRead {
		return " "
	}
	return "*"
}

func (a *App) reportCommand() *Command {
	var month, userID string
	return &Command{
		Name:    "report",
		Summary: "Show the monthly attendance report per employee",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("report", pflag.ContinueOnError)
			fs.StringVar(&month, "month", "", "month as YYYY-MM (default current month)")
			fs.StringVar(&userID, "user", "", "only report on this user id")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := a.requireManager(); err != nil {
				return err
			}
			year, mon, err := parseMonth(month, a.now())
			if err != nil {
				return err
			}
			req := report.MonthlyReportRequest{Year: year, Month: mon}
			if userID != "" {
				req.UserID = &userID
			}
			reports, err := a.manager.MonthlyReport(ctx, req)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				a.printf("No report data for %04d-%02d\n", year, mon)
				return nil
			}
			tw := newTable(a.out)
			tw.row("EMPLOYEE", "DAYS", "PRESENT", "LATE", "ABSENT", "HOURS", "AVERAGE")
			for _, r := range reports {
				s := r.Stats
				tw.row(orDash(r.UserName), fmt.Sprint(s.TotalDays), fmt.Sprint(s.PresentDays), fmt.Sprint(s.LateDays),
					fmt.Sprint(s.AbsentDays), hoursLabel(s.TotalHours), hoursLabel(s.AverageHours))
			}
			tw.flush()
			return nil
		},
	}
}

func (a *App) exportCommand() *Command {
	var start, end, format, output string
	return &Command{
		Name:    "export",
		Summary: "Export team attendance for a date range and download it",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
			fs.StringVar(&start, "start", "", "first day as YYYY-MM-DD")
			fs.StringVar(&end, "end", "", "last day as YYYY-MM-DD")
			fs.StringVar(&format, "format", string(report.FormatCSV), "csv or excel")
			fs.StringVarP(&output, "output", "o", "", "file to write (default attendance_<start>_<end>.csv)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := a.requireManager(); err != nil {
				return err
			}
			req := report.ExportRequest{StartDate: start, EndDate: end, Format: report.Format(strings.ToLower(format))}
			resp, err := a.manager.Export(ctx, req)
			if err != nil {
				return err
			}

			if output == "" {
				output = fmt.Sprintf("attendance_%s_%s.csv", start, end)
			}
			n, err := a.download(ctx, resp.DownloadURL, output)
			if err != nil {
				return err
			}
			a.printf("Saved %s (%s)\n", output, bytesLabel(n))
			return nil
		},
	}
}

// download writes to a temporary file next to path and renames it into place.
func (a *App) download(ctx context.Context, url, path string) (int64, error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(f.Name())

	n, err := a.manager.DownloadExport(ctx, url, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return n, nil
}
