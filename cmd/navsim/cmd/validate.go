package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/navstack/cmd/navsim/internal/script"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <script.yaml>",
		Short: "Check a navigation script without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := script.LoadFile(args[0])
			if err != nil {
				return err
			}
			steps := 0
			for _, o := range s.Owners {
				steps += len(o.Steps)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d owners, %d steps)\n", args[0], len(s.Owners), steps)
			return nil
		},
	}
}
