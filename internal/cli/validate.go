package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// ValidationIssue is one schema or load problem found in a spec directory.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Pos     string `json:"pos,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// String renders the result for text output.
func (r ValidationResult) String() string {
	if r.Valid {
		return "valid"
	}
	out := "invalid:"
	for _, issue := range r.Issues {
		out += "\n  [" + issue.Code + "] "
		if issue.Pos != "" {
			out += issue.Pos + ": "
		}
		out += issue.Message
	}
	return out
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate a run spec without sampling",
		Long: `Validate a CUE run spec against the embedded schema without sampling.

Reports every problem found (schema violations, missing fields, dimension
mismatches) with file positions where available.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadRunSpec(specsDir, LoadModeCollectAll)

	// Hard load failures (missing directory, no files) are command errors,
	// not validation verdicts.
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		_ = formatter.Error(ErrCodeGeneric, loadErrors[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	result := ValidationResult{Valid: len(loadErrors) == 0, Files: loadResult.FileCount}
	for _, err := range loadErrors {
		issue := ValidationIssue{Code: ErrCodeGeneric, Message: err.Error()}
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			issue.Code = loadErr.Code
			issue.Message = loadErr.Message
			if loadErr.Pos.IsValid() {
				issue.Pos = loadErr.Pos.String()
			}
		}
		result.Issues = append(result.Issues, issue)
	}

	if err := formatter.Success(result); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	if !result.Valid {
		return NewExitError(ExitFailure, "spec validation failed")
	}
	return nil
}
