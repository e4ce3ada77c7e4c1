package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/engine"
	"github.com/roach88/splay/internal/games/innovation"
	"github.com/roach88/splay/internal/session"
	"github.com/roach88/splay/internal/state"
	"github.com/roach88/splay/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	GameID   string
	Players  int
	Seed     int64
}

// StateSummary is the condensed view of a game printed after each
// accepted action.
type StateSummary struct {
	GameID           string         `json:"game_id"`
	Phase            string         `json:"phase"`
	Turn             int            `json:"turn"`
	CurrentPlayer    string         `json:"current_player"`
	ActionsRemaining int            `json:"actions_remaining"`
	PendingChoice    *ChoiceSummary `json:"pending_choice,omitempty"`
	Winner           string         `json:"winner,omitempty"`
	WinReason        string         `json:"win_reason,omitempty"`
	Changes          []string       `json:"changes,omitempty"`
	Instructions     []string       `json:"physical_instructions,omitempty"`
}

// ChoiceSummary describes the choice a game is suspended on.
type ChoiceSummary struct {
	ChoiceID string   `json:"choice_id"`
	PlayerID string   `json:"player_id"`
	Prompt   string   `json:"prompt,omitempty"`
	Options  []string `json:"options"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}
	cfg, _ := LoadConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Operator console over a journaled game session",
		Long: `Run an operator console for one game session.

The console reads one JSON action per line from stdin and submits it to
the session; accepted actions are journaled before the next line is
read. Rejected actions print their rule error code and leave the game
untouched. Resuming an existing game id replays its journal first.

Console input:
  {"kind":"draw","player_id":"p1"}        submit an action
  actions                                 list legal actions
  state                                   print the state summary
  quit                                    end the session

Examples:
  splay run --db ./splay.db --players 2 --seed 42
  splay run --db ./splay.db --game innovation_42 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", cfg.DatabasePath, "path to SQLite journal")
	cmd.Flags().StringVar(&opts.GameID, "game", "", "game id to create or resume")
	cmd.Flags().IntVar(&opts.Players, "players", 2, "number of players for a new game (2-4)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "shuffle seed for a new game")

	return cmd
}

func runConsole(opts *RunOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, _ := LoadConfig()
	logger := newLogger(opts.RootOptions, cfg)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	gs := innovation.Spec()
	e := engine.New(gs, engine.WithLogger(logger))
	mgr := session.NewManager(e, st, session.WithLogger(logger))

	sess, err := openSession(opts, cmd, mgr)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	printSummary(formatter, sess.State())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case line == "quit" || line == "exit":
			return nil
		case line == "state":
			printSummary(formatter, sess.State())
			continue
		case line == "actions":
			printLegalActions(formatter, sess.LegalActions())
			continue
		}

		var act action.Action
		if err := json.Unmarshal([]byte(line), &act); err != nil {
			_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("bad action: %v", err), nil)
			continue
		}

		prev := sess.State()
		next, err := sess.Submit(ctx, act)
		if err != nil {
			code := string(engine.ErrorCode(err))
			if code == "" {
				code = ErrCodeGeneric
			}
			_ = formatter.Error(code, err.Error(), nil)
			continue
		}
		summary := summarize(next)
		summary.Changes, summary.Instructions = e.Narrate(prev, next)
		printResult(formatter, summary)
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "reading input", err)
	}
	return nil
}

// openSession resumes the named game, creating it fresh when the store
// has never seen the id.
func openSession(opts *RunOptions, cmd *cobra.Command, mgr *session.Manager) (*session.Session, error) {
	ctx := cmd.Context()

	if opts.GameID != "" {
		sess, err := mgr.Resume(ctx, opts.GameID)
		if err == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "resumed game %s\n", opts.GameID)
			return sess, nil
		}
		if !errors.Is(err, store.ErrGameNotFound) {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to resume game %s", opts.GameID), err)
		}
	}

	playerIDs := make([]string, opts.Players)
	for i := range playerIDs {
		playerIDs[i] = fmt.Sprintf("p%d", i+1)
	}
	initial, err := innovation.NewGame(innovation.Spec(), innovation.SetupConfig{
		GameID:    opts.GameID,
		PlayerIDs: playerIDs,
		Seed:      opts.Seed,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to set up game", err)
	}
	sess, err := mgr.Create(ctx, initial)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create game", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "created game %s\n", sess.GameID())
	return sess, nil
}

func summarize(st *state.GameState) StateSummary {
	summary := StateSummary{
		GameID:           st.GameID,
		Phase:            string(st.Phase),
		Turn:             st.TurnNumber,
		CurrentPlayer:    st.CurrentPlayer().ID,
		ActionsRemaining: st.ActionsRemaining,
		Winner:           st.WinnerID,
		WinReason:        st.WinReason,
	}
	if st.ChoiceRequired != nil {
		summary.PendingChoice = &ChoiceSummary{
			ChoiceID: st.ChoiceRequired.ChoiceID,
			PlayerID: st.ChoiceRequired.PlayerID,
			Prompt:   st.ChoiceRequired.Prompt,
			Options:  st.ChoiceRequired.Options,
		}
	}
	return summary
}

func printSummary(formatter *OutputFormatter, st *state.GameState) {
	printResult(formatter, summarize(st))
}

// printResult prints instruction lines before the summary line so the
// operator reads what to move at the table first.
func printResult(formatter *OutputFormatter, summary StateSummary) {
	if formatter.Format == "json" {
		_ = formatter.Success(summary)
		return
	}
	for _, instruction := range summary.Instructions {
		fmt.Fprintf(formatter.Writer, "do: %s\n", instruction)
	}
	fmt.Fprintf(formatter.Writer, "ok game=%s phase=%s turn=%d current=%s actions=%d",
		summary.GameID, summary.Phase, summary.Turn, summary.CurrentPlayer, summary.ActionsRemaining)
	if summary.PendingChoice != nil {
		fmt.Fprintf(formatter.Writer, " choice=%s chooser=%s options=%v",
			summary.PendingChoice.ChoiceID, summary.PendingChoice.PlayerID, summary.PendingChoice.Options)
	}
	if summary.Winner != "" {
		fmt.Fprintf(formatter.Writer, " winner=%s reason=%s", summary.Winner, summary.WinReason)
	}
	fmt.Fprintln(formatter.Writer)
}

func printLegalActions(formatter *OutputFormatter, actions []action.Action) {
	if formatter.Format == "json" {
		_ = formatter.Success(actions)
		return
	}
	if len(actions) == 0 {
		fmt.Fprintln(formatter.Writer, "no legal actions")
		return
	}
	for _, act := range actions {
		data, err := json.Marshal(act)
		if err != nil {
			continue
		}
		fmt.Fprintf(formatter.Writer, "%s\n", data)
	}
}
