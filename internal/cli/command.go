package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is one node of the CLI tree.
type Command struct {
	// Name is the command name as typed by the user
	Name string

	// Summary is a one-line description shown in the parent's help listing
	Summary string

	// Usage is shown in the command's own help; synthesized when empty
	Usage string

	// Flags returns a configured flag set. Called once per execution.
	Flags func() *pflag.FlagSet

	Subcommands []*Command

	// Run executes the command with the positional args left after flag parsing
	Run func(ctx context.Context, args []string) error

	// Public commands work without a session
	Public bool

	parent *Command
}

// Execute parses args and dispatches to a subcommand or to Run.
func (c *Command) Execute(ctx context.Context, w io.Writer, args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(w)
		return nil
	}

	if len(c.Subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		for _, sub := range c.Subcommands {
			if sub.Name == args[0] {
				sub.parent = c
				return sub.Execute(ctx, w, args[1:])
			}
		}
		return usageErrorf("unknown command %q\n\nRun '%s --help' for usage.", args[0], c.fullName())
	}

	if c.Run == nil {
		c.PrintHelp(w)
		return usageErrorf("subcommand required")
	}

	if c.Flags != nil {
		flagSet := c.Flags()
		flagSet.SetOutput(io.Discard)
		if err := flagSet.Parse(args); err != nil {
			return usageErrorf("%s\n\nRun '%s --help' for usage.", err, c.fullName())
		}
		args = flagSet.Args()
	}

	return c.Run(ctx, args)
}

// Find resolves the command that args would dispatch to.
func (c *Command) Find(args []string) *Command {
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		var next *Command
		for _, sub := range c.Subcommands {
			if sub.Name == args[0] {
				next = sub
				break
			}
		}
		if next == nil {
			break
		}
		c, args = next, args[1:]
	}
	return c
}

// PrintHelp writes help output to w.
func (c *Command) PrintHelp(w io.Writer) {
	if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	switch {
	case c.Usage != "":
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	case len(c.Subcommands) > 0:
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", c.fullName())
	default:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", c.fullName())
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}

	if c.Flags != nil {
		var flagHelp strings.Builder
		flagSet := c.Flags()
		flagSet.SetOutput(&flagHelp)
		flagSet.PrintDefaults()
		if flagHelp.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
		}
	}
}

func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
