package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/extsql/internal/compiler"
	"github.com/roach88/extsql/internal/entity"
	"github.com/roach88/extsql/internal/graph"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                       `json:"valid"`
	Descriptors int                        `json:"descriptors"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
	Cycles      []compiler.CycleWarning    `json:"cycles,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Check a manifest without rendering",
		Long: `Check a descriptor manifest and report every problem found.

Structural checks (names, bootstrap and finalize markers, declared
entities) and a cycle analysis over descriptor references run first and
report all findings together. When they pass, the entity graph is built
to resolve every reference.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	path, err := resolveManifest(opts, args)
	if err != nil {
		return buildFailure(formatter, err)
	}

	m, err := compiler.LoadManifest(path)
	if err != nil {
		return buildFailure(formatter, err)
	}

	formatter.VerboseLog("Validating %d descriptor(s) from %s", len(m.Descriptors), path)

	result := ValidateManifest(m)
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}

	return outputValidateSuccess(formatter, result)
}

// ValidateManifest runs the structural checks and the cycle analysis, then
// builds the graph if both are clean.
func ValidateManifest(m *compiler.Manifest) ValidationResult {
	result := ValidationResult{
		Descriptors: len(m.Descriptors),
		Errors:      compiler.Validate(m),
		Cycles:      compiler.AnalyzeCycles(m),
	}

	if len(result.Errors) == 0 && len(result.Cycles) == 0 {
		if err := buildManifest(m); err != nil {
			result.Errors = append(result.Errors, graphValidationError(err))
		}
	}

	result.Valid = len(result.Errors) == 0 && len(result.Cycles) == 0
	return result
}

func buildManifest(m *compiler.Manifest) error {
	reg, err := m.Registry()
	if err != nil {
		return err
	}
	_, err = graph.Build(reg)
	return err
}

// graphValidationError converts a graph build error into a validation
// error keyed by the descriptor it was raised for.
func graphValidationError(err error) compiler.ValidationError {
	var e *entity.Error
	if !errors.As(err, &e) {
		return compiler.ValidationError{Field: "sql", Message: err.Error(), Code: ErrCodeGeneric}
	}

	field := "sql"
	if e.Entity != "" {
		field = "sql." + e.Entity
	}
	if e.Ref != "" {
		field += ".requires"
	}
	return compiler.ValidationError{
		Field:   field,
		Message: e.Error(),
		Code:    string(e.Code),
	}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Manifest valid (%d descriptor(s))\n", result.Descriptors)
	return nil
}

// outputValidationErrors outputs every validation error and cycle.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	count := len(result.Errors) + len(result.Cycles)

	if formatter.Format == "json" {
		first := CLIError{Code: compiler.ErrCodeGeneric}
		switch {
		case len(result.Errors) > 0:
			first = CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
		case len(result.Cycles) > 0:
			first = CLIError{Code: string(entity.ErrCodeCyclicDependency), Message: result.Cycles[0].Message}
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &first,
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return reported(NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", count)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range result.Errors {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	for _, c := range result.Cycles {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", entity.ErrCodeCyclicDependency, c.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return reported(NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", count)))
}
