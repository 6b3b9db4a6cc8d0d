// Package cmd implements the navsim CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (run, validate).
package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

type globalOptions struct {
	logLevel  string
	configDir string
	noColor   bool
}

// NewRootCommand builds the navsim command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{configDir: "."}
	root := &cobra.Command{
		Use:   "navsim",
		Short: "Replay navigation scripts against the navstack engine",
		Long: `navsim drives navstack owners from a YAML script and prints each
owner's container stacks after every step.

Scripts run in virtual time by default, so exit and enter animations take no
wall-clock time while still holding back queued operations. Use --realtime to
run owners on real loopers instead.

Use "navsim <command> --help" for more information about a command.`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides navsim.yaml")
	flags.StringVar(&opts.configDir, "config-dir", opts.configDir, "Directory containing navsim.yaml")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newRunCommand(opts), newValidateCommand())
	return root
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
