package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationIssue is one spec problem found during validation.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation output for a spec path.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	GameID  string            `json:"game_id,omitempty"`
	Cards   int               `json:"cards,omitempty"`
	Actions int               `json:"actions,omitempty"`
	Errors  []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <spec-path>",
		Short: "Check a game spec without running it",
		Long: `Validate a game spec against the schema and semantic rules.

Accepts a .cue file, a .json file, or a directory of CUE files. Checks
the schema, then compiles every embedded expression and verifies card,
zone, and effect references. A spec that validates cleanly is safe to
hand to the engine.

Exit codes:
  0 - spec is valid
  1 - spec failed validation
  2 - spec could not be loaded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, specPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	gs, loadErrs := LoadGameSpec(specPath)

	// A nil spec means the path could not be loaded at all.
	if gs == nil {
		var loadErr *LoadError
		if errors.As(loadErrs[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Error())
		}
		_ = formatter.Error(ErrCodeGeneric, loadErrs[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrs[0].Error())
	}

	if len(loadErrs) > 0 {
		return outputValidationErrors(formatter, loadErrs)
	}

	formatter.VerboseLog("spec %s: %d cards, %d actions", gs.GameID, len(gs.Cards), len(gs.Actions))

	result := ValidationResult{
		Valid:   true,
		GameID:  gs.GameID,
		Cards:   len(gs.Cards),
		Actions: len(gs.Actions),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s is valid (%d cards, %d actions)\n", gs.GameID, result.Cards, result.Actions)
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, loadErrs []error) error {
	issues := make([]ValidationIssue, len(loadErrs))
	for i, err := range loadErrs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			issues[i] = ValidationIssue{Code: loadErr.Code, Message: loadErr.Error()}
		} else {
			issues[i] = ValidationIssue{Code: ErrCodeGeneric, Message: err.Error()}
		}
	}

	if formatter.Format == "json" {
		result := ValidationResult{Valid: false, Errors: issues}
		_ = formatter.Error(issues[0].Code, fmt.Sprintf("validation failed with %d error(s)", len(issues)), result)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", issue.Code, issue.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
