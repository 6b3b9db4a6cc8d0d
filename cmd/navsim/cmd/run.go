package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/go-drift/navstack/cmd/navsim/internal/config"
	"github.com/go-drift/navstack/cmd/navsim/internal/script"
	"github.com/go-drift/navstack/pkg/logging"
)

type runOptions struct {
	catalog   string
	realtime  bool
	tags      bool
	finalOnly bool
	strict    bool
	timeout   time.Duration
}

func (o *runOptions) bindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.catalog, "catalog", "", "Animation catalog YAML; overrides navsim.yaml")
	fs.BoolVar(&o.realtime, "realtime", false, "Run on real loopers and wall-clock time")
	fs.BoolVar(&o.tags, "tags", false, "Show screen tags")
	fs.BoolVar(&o.finalOnly, "final", false, "Print only the settled state of each owner")
	fs.BoolVar(&o.strict, "strict", false, "Exit with an error if any navigation fault was reported")
	fs.DurationVar(&o.timeout, "timeout", 0, "Abort the replay after this long (0 disables)")
}

func newRunCommand(g *globalOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Replay a navigation script",
		Long: `Replay a navigation script and print every owner's stacks after each step.

Visible screens are printed in green, hidden screens dimmed in parentheses.
Faults reported by the engine (for example pushing a screen that was already
popped) are listed per owner and do not stop the replay.`,
		Example: `  navsim run session.yaml
  navsim run session.yaml --catalog anims.yaml --tags
  navsim run session.yaml --realtime --timeout 10s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, args[0], g, o)
		},
	}
	o.bindFlags(cmd.Flags())
	return cmd
}

func runScript(cmd *cobra.Command, path string, g *globalOptions, o *runOptions) error {
	cfg, err := config.Resolve(g.configDir, config.Overrides{LogLevel: g.logLevel, CatalogPath: o.catalog})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	s, err := script.LoadFile(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	res, err := script.Run(ctx, s, script.Options{
		Resolver:         catalog,
		DefaultAnimation: cfg.DefaultAnimation,
		Logger:           logger,
		Realtime:         o.realtime,
	})
	if err != nil {
		return err
	}
	if err := script.Render(cmd.OutOrStdout(), res, script.RenderOptions{Tags: o.tags, FinalOnly: o.finalOnly}); err != nil {
		return err
	}

	if o.strict {
		faults := 0
		for _, owner := range res.Owners {
			faults += len(owner.Faults)
		}
		if faults > 0 {
			return fmt.Errorf("%d navigation faults reported", faults)
		}
	}
	return nil
}
