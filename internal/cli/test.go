package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/splay/internal/engine"
	"github.com/roach88/splay/internal/games/innovation"
	"github.com/roach88/splay/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	ShowTrace bool
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string               `json:"name"`
	File   string               `json:"file"`
	Passed bool                 `json:"passed"`
	Error  string               `json:"error,omitempty"`
	Trace  []harness.TraceEvent `json:"trace,omitempty"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml> [...]",
		Short: "Run scenario files against the engine",
		Long: `Run YAML scenario files against the bundled ruleset.

Each scenario sets up a table, drives a flow of actions (including
expected rejections), and asserts on the final state. The trace of each
step is printed with --trace or in JSON output.

Exit codes:
  0 - all scenarios passed
  1 - at least one scenario failed
  2 - a scenario file could not be loaded`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.ShowTrace, "trace", false, "print the step trace for each scenario")

	return cmd
}

func runScenarios(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	cfg, _ := LoadConfig()
	e := engine.New(innovation.Spec(), engine.WithLogger(newLogger(opts.RootOptions, cfg)))

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	results := make([]ScenarioResult, 0, len(paths))
	failed := 0
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load scenario %s", path), err)
		}

		res := ScenarioResult{Name: scenario.Name, File: path, Passed: true}
		runResult, err := harness.Run(e, scenario)
		if err != nil {
			res.Passed = false
			res.Error = err.Error()
			failed++
		}
		if runResult != nil {
			res.Trace = runResult.Trace
		}
		results = append(results, res)
	}

	if opts.Format == "json" {
		if failed > 0 {
			_ = formatter.Error("E_SCENARIO", fmt.Sprintf("%d of %d scenario(s) failed", failed, len(results)), results)
			return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
		}
		return formatter.Success(results)
	}

	w := cmd.OutOrStdout()
	for _, res := range results {
		if res.Passed {
			fmt.Fprintf(w, "✓ %s (%d steps)\n", res.Name, len(res.Trace))
		} else {
			fmt.Fprintf(w, "✗ %s\n  %s\n", res.Name, res.Error)
		}
		if opts.ShowTrace {
			for _, ev := range res.Trace {
				fmt.Fprintf(w, "  [%d] %s player=%s result=%s phase=%s\n", ev.Seq, ev.Action, ev.Player, ev.Result, ev.Phase)
			}
		}
	}
	if failed > 0 {
		fmt.Fprintf(w, "\n✗ %d of %d scenario(s) failed\n", failed, len(results))
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
	}
	fmt.Fprintf(w, "\n✓ All %d scenario(s) passed\n", len(results))
	return nil
}
