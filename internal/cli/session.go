package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
)

func (a *App) loginCommand() *Command {
	var (
		employeeID    string
		passwordStdin bool
	)
	return &Command{
		Name:    "login",
		Summary: "Log in with an employee ID and password",
		Usage:   "attendance login <employee-id> [--password-stdin]",
		Public:  true,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVar(&employeeID, "employee-id", "", "employee ID, may also be given as the first argument")
			fs.BoolVar(&passwordStdin, "password-stdin", false, "read the password from standard input")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if employeeID == "" && len(args) > 0 {
				employeeID = args[0]
			}
			password, err := a.readPassword(passwordStdin)
			if err != nil {
				return err
			}

			resp, err := a.auth.Login(ctx, auth.LoginRequest{EmployeeID: strings.TrimSpace(employeeID), Password: password})
			if err != nil {
				return err
			}
			a.printf("Logged in as %s (%s, %s)\n", resp.User.Name, resp.User.EmployeeID, strings.ToLower(string(resp.User.Role)))
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func (a *App) readPassword(fromStdin bool) (string, error) {
	if f, ok := a.in.(*os.File); ok && !fromStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.errOut, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) logoutCommand() *Command {
	return &Command{
		Name:    "logout",
		Summary: "End the session on this machine",
		Public:  true,
		Run: func(ctx context.Context, args []string) error {
			// A stale session is purged by Restore; there is nothing to tell the server then.
			_ = a.auth.Restore(ctx)
			if err := a.auth.Logout(ctx); err != nil {
				return err
			}
			a.printf("Logged out\n")
			return nil
		},
	}
}

func (a *App) profileCommand() *Command {
	var name, email, department string
	cmd := &Command{
		Name:    "profile",
		Summary: "Show the logged-in user",
		Run: func(ctx context.Context, args []string) error {
			u, ok := a.store.User()
			if !ok {
				return errLoginRequired
			}
			a.printUser(u)
			return nil
		},
	}
	cmd.Subcommands = []*Command{{
		Name:    "update",
		Summary: "Change name, email or department",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("update", pflag.ContinueOnError)
			fs.StringVar(&name, "name", "", "display name")
			fs.StringVar(&email, "email", "", "email address")
			fs.StringVar(&department, "department", "", "department")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			var patch user.ProfileUpdate
			if name != "" {
				patch.Name = &name
			}
			if email != "" {
				patch.Email = &email
			}
			if department != "" {
				patch.Department = &department
			}
			if patch.Name == nil && patch.Email == nil && patch.Department == nil {
				return usageErrorf("nothing to update, pass --name, --email or --department")
			}
			if err := patch.Validate(); err != nil {
				return err
			}

			u, err := a.auth.UpdateProfile(ctx, patch)
			if err != nil {
				return err
			}
			a.printUser(u)
			return nil
		},
	}}
	return cmd
}

func (a *App) printUser(u user.User) {
	tw := newTable(a.out)
	tw.row("Name", u.Name)
	tw.row("Employee ID", u.EmployeeID)
	tw.row("Email", orDash(u.Email))
	tw.row("Department", orDash(u.Department))
	tw.row("Role", strings.ToLower(string(u.Role)))
	tw.flush()
}
