package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/splay/internal/engine"
	"github.com/roach88/splay/internal/games/innovation"
	"github.com/roach88/splay/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	GameID   string // optional, a single game only
}

// ReplayGameResult is the replay outcome for one game.
type ReplayGameResult struct {
	GameID   string `json:"game_id"`
	Applied  int    `json:"applied"`
	Verified int    `json:"verified"`
	Diverged bool   `json:"diverged"`
	// DivergedAt is the seq of the first mismatching entry, -1 when
	// the journal verified cleanly.
	DivergedAt int64  `json:"diverged_at"`
	Phase      string `json:"phase"`
	Winner     string `json:"winner,omitempty"`
}

// ReplayResult is the overall replay outcome.
type ReplayResult struct {
	Games       []ReplayGameResult `json:"games"`
	TotalGames  int                `json:"total_games"`
	AllVerified bool               `json:"all_verified"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}
	cfg, _ := LoadConfig()

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-derive journaled games and verify fingerprints",
		Long: `Replay journaled games from their initial snapshots and verify that
every entry's state fingerprint matches what the reducer produces now.

A diverged journal means the recorded history no longer reproduces the
recorded states, either through data corruption or a rules change since
the game was played.

Exit codes:
  0 - every journal verified
  1 - at least one journal diverged
  2 - command error (database not found, unknown game, ...)

Examples:
  splay replay --db ./splay.db
  splay replay --db ./splay.db --game innovation_42 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", cfg.DatabasePath, "path to SQLite journal")
	cmd.Flags().StringVar(&opts.GameID, "game", "", "replay a single game only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var gameIDs []string
	if opts.GameID != "" {
		gameIDs = []string{opts.GameID}
	} else {
		gameIDs, err = st.ListGames(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list games", err)
		}
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if len(gameIDs) == 0 {
		if opts.Format == "json" {
			return formatter.Success(ReplayResult{Games: []ReplayGameResult{}, AllVerified: true})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No games found in database.")
		return nil
	}

	cfg, _ := LoadConfig()
	e := engine.New(innovation.Spec(), engine.WithLogger(newLogger(opts.RootOptions, cfg)))

	result := ReplayResult{
		Games:       make([]ReplayGameResult, 0, len(gameIDs)),
		TotalGames:  len(gameIDs),
		AllVerified: true,
	}
	for _, gameID := range gameIDs {
		final, report, err := store.Replay(ctx, st, e, gameID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay game %s", gameID), err)
		}
		game := ReplayGameResult{
			GameID:     gameID,
			Applied:    report.Applied,
			Verified:   report.Verified,
			Diverged:   report.FirstDivergence >= 0,
			DivergedAt: report.FirstDivergence,
			Phase:      string(final.Phase),
			Winner:     final.WinnerID,
		}
		result.Games = append(result.Games, game)
		if game.Diverged {
			result.AllVerified = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	if result.AllVerified {
		return formatter.Success(result)
	}
	_ = formatter.Error("E_DIVERGED", "fingerprint verification failed", result)
	return NewExitError(ExitFailure, "fingerprint verification failed")
}

func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d game(s)\n\n", result.TotalGames)
	for _, game := range result.Games {
		status := "✓"
		if game.Diverged {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Game: %s\n", status, game.GameID)
		fmt.Fprintf(w, "  Actions: %d applied, %d verified\n", game.Applied, game.Verified)
		if verbose {
			fmt.Fprintf(w, "  Phase: %s\n", game.Phase)
			if game.Winner != "" {
				fmt.Fprintf(w, "  Winner: %s\n", game.Winner)
			}
		}
		if game.Diverged {
			fmt.Fprintf(w, "  Warning: journal diverges at seq %d\n", game.DivergedAt)
		}
		fmt.Fprintln(w)
	}

	if result.AllVerified {
		fmt.Fprintln(w, "✓ All journals verified")
		return nil
	}
	fmt.Fprintln(w, "✗ Fingerprint verification failed")
	return NewExitError(ExitFailure, "fingerprint verification failed")
}
