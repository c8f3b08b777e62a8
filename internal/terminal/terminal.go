// Package terminal implements the planctl command-line interface.
package terminal

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	reporter *Reporter
	now      func() time.Time
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	// Now overrides the clock used as the projection start; defaults to time.Now.
	Now func() time.Time
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cli := &CLI{
		reporter: NewReporter(opts.Output),
		now:      opts.Now,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args; used by tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "planctl",
		Short:         "Savings goal projection and payroll tax tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.reporter.out)

	cmd.AddCommand(NewTaxCmd(cli.reporter))
	cmd.AddCommand(NewAnalyzeCmd(cli.reporter, cli.now))

	return cmd
}
