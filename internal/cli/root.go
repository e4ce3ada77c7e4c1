// Package cli implements the splay command line interface: spec
// validation, an operator console, journal replay, and bot simulation.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string
}

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"text", "json"}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// NewRootCommand creates the splay root command with all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "splay",
		Short: "Splay deterministic tabletop game engine",
		Long: `Splay tracks physical card games as deterministic state machines.

Game rules are data: a spec describes cards, zones, actions, and card
effects, and a pure reducer folds player actions over immutable state.
Every accepted action lands in a SQLite journal, so any game can be
replayed and verified byte for byte.

Commands:
  validate  Check a game spec without running it
  run       Operator console over a journaled game session
  replay    Re-derive journaled games and verify fingerprints
  simulate  Play a full game with greedy bots
  test      Run scenario files against the engine`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q (valid: text, json)", opts.Format)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text or json)")

	cmd.AddCommand(
		NewValidateCommand(opts),
		NewRunCommand(opts),
		NewReplayCommand(opts),
		NewSimulateCommand(opts),
		NewTestCommand(opts),
	)

	return cmd
}
