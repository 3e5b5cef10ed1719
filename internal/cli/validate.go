package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/algotrace/internal/schema"
	"github.com/roach88/algotrace/internal/trace"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Steps  int            `json:"steps"`
	Errors []schema.Issue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document|->",
		Short: "Validate a trace document",
		Long: `Validate a trace document against the trace schema.

Checks the record shape and capacity bounds, and that every record's keys
appear in canonical order (arrays, variables, highlights, nodes, edges,
message). Use - to read the document from stdin.

Exit codes:
  0 - Document is valid
  1 - Document is invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	data, err := readDocument(path, cmd.InOrStdin())
	if err != nil {
		if os.IsNotExist(err) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("document not found: %s", path), nil)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to read document", err)
	}
	formatter.VerboseLog("Read %d bytes from %s", len(data), path)

	result := validateDocument(data)
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

func readDocument(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// validateDocument runs the schema and key-order checks. Key order is only
// checked once the document is structurally valid.
func validateDocument(data []byte) ValidationResult {
	if err := schema.Validate(data); err != nil {
		return ValidationResult{Errors: validationIssues(err)}
	}
	if err := schema.ValidateKeyOrder(data); err != nil {
		return ValidationResult{Errors: validationIssues(err)}
	}

	doc, err := trace.ParseDocument(data)
	if err != nil {
		return ValidationResult{Errors: validationIssues(err)}
	}
	return ValidationResult{Valid: true, Steps: doc.Len()}
}

func validationIssues(err error) []schema.Issue {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return verr.Issues
	}
	return []schema.Issue{{Message: err.Error()}}
}

func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	message := fmt.Sprintf("document invalid: %d issue(s)", len(result.Errors))

	if formatter.Format == "json" {
		if err := formatter.Encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeInvalidDocument,
				Message: message,
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, message)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✗ %s\n", message)
	for _, issue := range result.Errors {
		if issue.Line > 0 {
			fmt.Fprintf(w, "  line %d: %s\n", issue.Line, issue)
			continue
		}
		fmt.Fprintf(w, "  %s\n", issue)
	}
	return NewExitError(ExitFailure, message)
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Encode(CLIResponse{
			Status: "ok",
			Data:   result,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Document valid (%d steps)\n", result.Steps)
	return nil
}
