package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/splay/internal/bots"
	"github.com/roach88/splay/internal/engine"
	"github.com/roach88/splay/internal/games/innovation"
	"github.com/roach88/splay/internal/session"
	"github.com/roach88/splay/internal/state"
	"github.com/roach88/splay/internal/store"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Seed       int64
	Players    int
	MaxActions int
	Database   string
	GameID     string
}

// SimResult summarizes a simulated game.
type SimResult struct {
	GameID       string         `json:"game_id"`
	Seed         int64          `json:"seed"`
	Players      int            `json:"players"`
	Actions      int            `json:"actions"`
	Turns        int            `json:"turns"`
	Winner       string         `json:"winner,omitempty"`
	WinReason    string         `json:"win_reason,omitempty"`
	Scores       map[string]int `json:"scores"`
	Achievements map[string]int `json:"achievements"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a full game with greedy bots",
		Long: `Simulate a complete game of the bundled Innovation ruleset with one
greedy bot per seat.

The same seed and player count always produce the same game. With --db
the simulation runs through a journaled session, so the finished game
can be inspected and verified with the replay command.

Exit codes:
  0 - game finished
  1 - game did not finish within the action cap
  2 - command error

Examples:
  splay simulate --seed 42
  splay simulate --seed 7 --players 3 --db ./splay.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "shuffle seed")
	cmd.Flags().IntVar(&opts.Players, "players", 2, "number of players (2-4)")
	cmd.Flags().IntVar(&opts.MaxActions, "max-actions", 1000, "abort after this many actions")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal the game to this SQLite database")
	cmd.Flags().StringVar(&opts.GameID, "game", "", "game id (default derives from the seed)")

	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	cfg, _ := LoadConfig()
	logger := newLogger(opts.RootOptions, cfg)

	gs := innovation.Spec()
	playerIDs := make([]string, opts.Players)
	for i := range playerIDs {
		playerIDs[i] = fmt.Sprintf("p%d", i+1)
	}
	gameID := opts.GameID
	if gameID == "" {
		gameID = fmt.Sprintf("sim_%d", opts.Seed)
	}

	initial, err := innovation.NewGame(gs, innovation.SetupConfig{
		GameID:    gameID,
		PlayerIDs: playerIDs,
		Seed:      opts.Seed,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up game", err)
	}

	e := engine.New(gs, engine.WithLogger(logger))

	var final *state.GameState
	var applied int
	if opts.Database != "" {
		final, applied, err = simulateJournaled(opts, cmd, e, initial)
	} else {
		final, applied, err = bots.Autoplay(e, initial, opts.MaxActions)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "simulation failed", err)
	}

	result := SimResult{
		GameID:       final.GameID,
		Seed:         opts.Seed,
		Players:      opts.Players,
		Actions:      applied,
		Turns:        final.TurnNumber,
		Winner:       final.WinnerID,
		WinReason:    final.WinReason,
		Scores:       make(map[string]int, len(final.Players)),
		Achievements: make(map[string]int, len(final.Players)),
	}
	for i := range final.Players {
		p := &final.Players[i]
		result.Scores[p.ID] = engine.Score(gs, p)
		result.Achievements[p.ID] = len(p.Achievements)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if final.Phase != state.PhaseGameOver {
		if opts.Format == "json" {
			_ = formatter.Error("E_UNFINISHED", fmt.Sprintf("game did not finish within %d actions", opts.MaxActions), result)
		} else {
			fmt.Fprintf(formatter.Writer, "✗ Game %s did not finish within %d actions\n", result.GameID, opts.MaxActions)
		}
		return NewExitError(ExitFailure, "game did not finish")
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputSimText(formatter, result)
}

// simulateJournaled drives the bots through a journaled session so the
// game lands in the store action by action.
func simulateJournaled(opts *SimulateOptions, cmd *cobra.Command, e *engine.Engine, initial *state.GameState) (*state.GameState, int, error) {
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, 0, fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	mgr := session.NewManager(e, st)
	sess, err := mgr.Create(ctx, initial)
	if err != nil {
		return nil, 0, fmt.Errorf("create session: %w", err)
	}

	bot := bots.NewGreedy(e)
	applied := 0
	for applied < opts.MaxActions {
		cur := sess.State()
		if cur.Phase == state.PhaseGameOver {
			break
		}
		actorID := cur.CurrentPlayer().ID
		if cur.Phase == state.PhaseChoice && cur.ChoiceRequired != nil {
			actorID = cur.ChoiceRequired.PlayerID
		}
		act, ok := bot.ChooseAction(cur, actorID)
		if !ok {
			return cur, applied, fmt.Errorf("no action for player %s after %d actions", actorID, applied)
		}
		if _, err := sess.Submit(ctx, act); err != nil {
			return cur, applied, fmt.Errorf("submit action %d: %w", applied, err)
		}
		applied++
	}
	return sess.State(), applied, nil
}

func outputSimText(formatter *OutputFormatter, result SimResult) error {
	w := formatter.Writer
	fmt.Fprintf(w, "Game %s finished after %d actions (%d turns)\n", result.GameID, result.Actions, result.Turns)
	fmt.Fprintf(w, "Winner: %s (%s)\n\n", result.Winner, result.WinReason)

	ids := make([]string, 0, len(result.Scores))
	for id := range result.Scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  %s: %d points, %d achievement(s)\n", id, result.Scores[id], result.Achievements[id])
	}
	return nil
}
