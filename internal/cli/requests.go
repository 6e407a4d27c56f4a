package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/attendance-client/internal/domain/request"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

func (a *App) leaveCommand() *Command {
	var leaveType, start, end, reason, status string
	return &Command{
		Name:    "leave",
		Summary: "Submit, list and withdraw leave requests",
		Subcommands: []*Command{
			{
				Name:    "create",
				Summary: "Submit a leave request",
				Usage:   "attendance leave create --type annual --start 2024-06-03 --end 2024-06-05 --reason text",
				Flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
					fs.StringVar(&leaveType, "type", "annual", "leave type: annual, sick, personal, special, maternity, paternity, paid")
					fs.StringVar(&start, "start", "", "first day of leave as YYYY-MM-DD")
					fs.StringVar(&end, "end", "", "last day of leave as YYYY-MM-DD (default same as start)")
					fs.StringVar(&reason, "reason", "", "reason shown to the approver")
					return fs
				},
				Run: func(ctx context.Context, args []string) error {
					if end == "" {
						end = start
					}
					req := request.CreateLeaveRequest{
						Type:      request.LeaveType(strings.ToUpper(leaveType)),
						StartDate: start,
						EndDate:   end,
						Reason:    reason,
					}
					if err := req.Validate(); err != nil {
						return err
					}
					lr, err := a.requests.CreateLeave(ctx, req)
					if err != nil {
						return err
					}
					a.printf("Leave request %s submitted for %d day(s), waiting for approval\n", lr.ID, req.Days())
					return nil
				},
			},
			{
				Name:    "list",
				Summary: "List leave requests",
				Flags:   statusFlag(&status),
				Run: func(ctx context.Context, args []string) error {
					filter, err := parseFilter(status)
					if err != nil {
						return err
					}
					items, err := a.requests.ListLeave(ctx, filter)
					if err != nil {
						return err
					}
					a.printLeave(items)
					return nil
				},
			},
			{
				Name:    "withdraw",
				Summary: "Withdraw one of your pending leave requests",
				Usage:   "attendance leave withdraw <id>",
				Run: func(ctx context.Context, args []string) error {
					if err := requireArgs(args, 1, "attendance leave withdraw <id>"); err != nil {
						return err
					}
					if _, err := a.requests.ListLeave(ctx, request.ListFilter{}); err != nil {
						return err
					}
					if err := a.requests.DeleteLeave(ctx, args[0]); err != nil {
						return err
					}
					a.printf("Leave request %s withdrawn\n", args[0])
					return nil
				},
			},
		},
	}
}

func (a *App) timeModCommand() *Command {
	var date, clockIn, clockOut, reason, status string
	return &Command{
		Name:    "time-mod",
		Summary: "Ask for a correction of a past day's clock times",
		Subcommands: []*Command{
			{
				Name:    "create",
				Summary: "Submit a time modification",
				Usage:   "attendance time-mod create --date 2024-05-14 --in 09:00 --out 17:30 --reason text",
				Flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
					fs.StringVar(&date, "date", "", "day to correct as YYYY-MM-DD")
					fs.StringVar(&clockIn, "in", "", "requested clock-in as HH:MM")
					fs.StringVar(&clockOut, "out", "", "requested clock-out as HH:MM")
					fs.StringVar(&reason, "reason", "", "reason shown to the approver")
					return fs
				},
				Run: func(ctx context.Context, args []string) error {
					req := request.CreateTimeModificationRequest{Date: date, Reason: reason}
					var errs validator.ValidationErrors
					if t, ok := wallTime(date, clockIn); ok {
						req.RequestedClockIn = t
					} else if clockIn != "" {
						errs.Add("in", "in must be HH:MM on a valid date")
					}
					if t, ok := wallTime(date, clockOut); ok {
						req.RequestedClockOut = t
					} else if clockOut != "" {
						errs.Add("out", "out must be HH:MM on a valid date")
					}
					if err := errs.OrNil(); err != nil {
						return err
					}
					if err := req.Validate(); err != nil {
						return err
					}

					tm, err := a.requests.CreateTimeModification(ctx, req)
					if err != nil {
						return err
					}
					a.printf("Time modification %s submitted for %s, waiting for approval\n", tm.ID, tm.Date)
					return nil
				},
			},
			{
				Name:    "list",
				Summary: "List time modifications",
				Flags:   statusFlag(&status),
				Run: func(ctx context.Context, args []string) error {
					filter, err := parseFilter(status)
					if err != nil {
						return err
					}
					items, err := a.requests.ListTimeModification(ctx, filter)
					if err != nil {
						return err
					}
					a.printTimeMods(items)
					return nil
				},
			},
			{
				Name:    "withdraw",
				Summary: "Withdraw one of your pending time modifications",
				Usage:   "attendance time-mod withdraw <id>",
				Run: func(ctx context.Context, args []string) error {
					if err := requireArgs(args, 1, "attendance time-mod withdraw <id>"); err != nil {
						return err
					}
					if _, err := a.requests.ListTimeModification(ctx, request.ListFilter{}); err != nil {
						return err
					}
					if err := a.requests.DeleteTimeModification(ctx, args[0]); err != nil {
						return err
					}
					a.printf("Time modification %s withdrawn\n", args[0])
					return nil
				},
			},
		},
	}
}

func (a *App) approvalsCommand() *Command {
	return &Command{
		Name:    "approvals",
		Summary: "List requests waiting for a manager decision",
		Run: func(ctx context.Context, args []string) error {
			if err := a.requireManager(); err != nil {
				return err
			}

			var (
				leave    []request.LeaveRequest
				timeMods []request.TimeModificationRequest
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				leave, err = a.requests.ListLeave(gctx, request.PendingOnly())
				return err
			})
			g.Go(func() error {
				var err error
				timeMods, err = a.requests.ListTimeModification(gctx, request.PendingOnly())
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			if len(leave)+len(timeMods) == 0 {
				a.printf("Nothing waiting for approval\n")
				return nil
			}
			now := a.now()
			tw := newTable(a.out)
			tw.row("KIND", "ID", "EMPLOYEE", "DETAIL", "SUBMITTED")
			for _, lr := range leave {
				tw.row(string(request.KindLeave), lr.ID, lr.UserName, leaveDetail(lr), ago(lr.CreatedAt, now))
			}
			for _, tm := range timeMods {
				tw.row(string(request.KindTimeModification), tm.ID, tm.UserName, timeModDetail(tm), ago(tm.CreatedAt, now))
			}
			tw.flush()
			return nil
		},
	}
}

func (a *App) decisionCommand(name, summary string) *Command {
	status := request.StatusApproved
	if name == "reject" {
		status = request.StatusRejected
	}
	var comment string
	usage := fmt.Sprintf("attendance %s <leave|time-mod> <id> [--comment text]", name)

	return &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
			fs.StringVar(&comment, "comment", "", "note for the requester")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 2, usage); err != nil {
				return err
			}
			if err := a.requireManager(); err != nil {
				return err
			}

			req := request.UpdateStatusRequest{Status: status}
			if comment != "" {
				req.Comment = &comment
			}
			id := args[1]
			verb := strings.ToLower(string(status))

			switch args[0] {
			case "leave":
				if _, err := a.requests.ListLeave(ctx, request.PendingOnly()); err != nil {
					return err
				}
				if _, err := a.requests.UpdateLeaveStatus(ctx, id, req); err != nil {
					return err
				}
				a.printf("Leave request %s %s\n", id, verb)
			case "time-mod":
				if _, err := a.requests.ListTimeModification(ctx, request.PendingOnly()); err != nil {
					return err
				}
				if _, err := a.requests.UpdateTimeModificationStatus(ctx, id, req); err != nil {
					return err
				}
				a.printf("Time modification %s %s\n", id, verb)
			default:
				return usageErrorf("unknown request kind %q, expected leave or time-mod", args[0])
			}
			return nil
		},
	}
}

func statusFlag(status *string) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
		fs.StringVar(status, "status", "", "only show pending, approved or rejected requests")
		return fs
	}
}

func parseFilter(status string) (request.ListFilter, error) {
	st, err := request.ParseStatus(status)
	if err != nil {
		return request.ListFilter{}, err
	}
	return request.ListFilter{Status: st}, nil
}

// wallTime combines a YYYY-MM-DD date and HH:MM into a local timestamp.
func wallTime(date, hhmm string) (*time.Time, bool) {
	offset, ok := validator.IsValidClock(hhmm)
	if !ok {
		return nil, false
	}
	day, err := time.ParseInLocation(validator.DateLayout, date, time.Local)
	if err != nil {
		return nil, false
	}
	t := day.Add(offset)
	return &t, true
}

func leaveDetail(lr request.LeaveRequest) string {
	span := lr.StartDate
	if lr.EndDate != lr.StartDate {
		span += " to " + lr.EndDate
	}
	return strings.ToLower(string(lr.Type)) + " " + span
}

func timeModDetail(tm request.TimeModificationRequest) string {
	return fmt.Sprintf("%s in %s out %s", tm.Date, clock(tm.RequestedClockIn), clock(tm.RequestedClockOut))
}

func (a *App) printLeave(items []request.LeaveRequest) {
	if len(items) == 0 {
		a.printf("No leave requests\n")
		return
	}
	now := a.now()
	v, _ := a.requests.Viewer()
	tw := newTable(a.out)
	tw.row("ID", "EMPLOYEE", "DETAIL", "STATUS", "SUBMITTED", "ACTIONS")
	for _, lr := range items {
		tw.row(lr.ID, lr.UserName, leaveDetail(lr), decisionLabel(lr.Status, lr.ApprovedBy), ago(lr.CreatedAt, now), controlsLabel(lr, v))
	}
	tw.flush()
}

func (a *App) printTimeMods(items []request.TimeModificationRequest) {
	if len(items) == 0 {
		a.printf("No time modifications\n")
		return
	}
	now := a.now()
	v, _ := a.requests.Viewer()
	tw := newTable(a.out)
	tw.row("ID", "EMPLOYEE", "DETAIL", "STATUS", "SUBMITTED", "ACTIONS")
	for _, tm := range items {
		tw.row(tm.ID, tm.UserName, timeModDetail(tm), decisionLabel(tm.Status, tm.ApprovedBy), ago(tm.CreatedAt, now), controlsLabel(tm, v))
	}
	tw.flush()
}

// controlsLabel lists what v may do with item; terminal requests show "-".
func controlsLabel(item request.Item, v request.Viewer) string {
	controls := request.Controls(item, v)
	names := make([]string, len(controls))
	for i, c := range controls {
		names[i] = string(c)
	}
	return orDash(strings.Join(names, ","))
}

func decisionLabel(status request.Status, by *string) string {
	if by == nil || status == request.StatusPending {
		return string(status)
	}
	return fmt.Sprintf("%s by %s", status, *by)
}
