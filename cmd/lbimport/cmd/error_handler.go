package cmd

import (
	"fmt"
	"os"

	"loyalty-statement-import/pkg/errors"
	"loyalty-statement-import/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler turns pipeline errors into user-facing messages and exit
// codes.
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	log, err := logger.New(logger.DefaultConfig())
	if err != nil {
		log = logger.NewNop()
	}
	return &CLIErrorHandler{
		logger:  log.WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints the error and returns the process exit code.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	if importErr, ok := errors.AsImportError(err); ok {
		return h.handleImportError(importErr)
	}
	return h.handleGenericError(err)
}

func (h *CLIErrorHandler) handleImportError(err *errors.ImportError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return exitCodeFor(err.Category)
}

func (h *CLIErrorHandler) handleGenericError(err error) int {
	if os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}
	if os.IsPermission(err) {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if !h.verbose {
		fmt.Fprintf(os.Stderr, "Run with --verbose for more detail\n")
	}
	return 1
}

// exitCodeFor maps error categories to exit codes: 2 for problems the user
// can fix in their input, 3 for unresolved conflicts, 4 for backup store
// failures, 1 for everything else.
func exitCodeFor(category errors.Category) int {
	switch category {
	case errors.CategoryInput, errors.CategoryParse, errors.CategoryConfig:
		return 2
	case errors.CategoryConflict, errors.CategoryResolve:
		return 3
	case errors.CategoryBackup:
		return 4
	default:
		return 1
	}
}
