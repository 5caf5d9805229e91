package reviewbench

import (
	"errors"
	"strings"
)

// Sentinel errors for the failure sources of a run.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	report, err := svc.Run(ctx, cfg)
//	if errors.Is(err, reviewbench.ErrSourceLoad) {
//	    // CSV file missing or malformed
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSourceLoad indicates the CSV source could not be read or parsed.
	ErrSourceLoad = errors.New("source load failed")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrExecutionFailed indicates a SQL statement failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrApprovalDenied indicates the user declined clearing the table.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// usageErrorFragments are substrings of cobra/pflag argument errors.
var usageErrorFragments = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrSourceLoad):
		return ExitSourceError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	}

	errStr := err.Error()
	for _, fragment := range usageErrorFragments {
		if strings.Contains(errStr, fragment) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
