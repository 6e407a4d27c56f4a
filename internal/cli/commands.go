package cli

import "fmt"

func (a *App) commands() *Command {
	return &Command{
		Name:    "attendance",
		Public:  true,
		Summary: "Attendance client: clock actions, requests and team reports",
		Subcommands: []*Command{
			a.loginCommand(),
			a.logoutCommand(),
			a.profileCommand(),
			a.statusCommand(),
			a.clockCommand("clock-in", "Start the working day"),
			a.clockCommand("clock-out", "End the working day"),
			a.clockCommand("break-start", "Start today's break"),
			a.clockCommand("break-end", "End today's break"),
			a.historyCommand(),
			a.statsCommand(),
			a.leaveCommand(),
			a.timeModCommand(),
			a.approvalsCommand(),
			a.decisionCommand("approve", "Approve a pending request"),
			a.decisionCommand("reject", "Reject a pending request"),
			a.dashboardCommand(),
			a.teamCommand(),
			a.alertsCommand(),
			a.reportCommand(),
			a.exportCommand(),
			a.watchCommand(),
		},
	}
}

func requireArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return usageErrorf("usage: %s", usage)
	}
	return nil
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}
