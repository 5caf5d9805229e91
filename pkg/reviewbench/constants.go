package reviewbench

import "time"

// Exit codes for semantic error classification.
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Run completed
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (invalid flags or arguments)
	ExitPanic           = 3  // Internal panic
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
	ExitApprovalDenied  = 12 // User declined clearing the table
	ExitExecutionFailed = 13 // SQL statement failed
	ExitSourceError     = 14 // CSV file missing or malformed
)

// Defaults for the IMDB review dataset.
const (
	DefaultDatabaseName = "imdb_review_kaggle"
	DefaultUsername     = "postgres"
	DefaultTableName    = "reviews"
	DefaultCSVPath      = "imdb_master.csv"
	DefaultEncoding     = "iso-8859-1"

	// DefaultPageSize is the number of rows fetched per page by the batch updater.
	DefaultPageSize = 100

	// BatchSentinel is written to every row's type column by the batch updater.
	BatchSentinel = "test1"

	// BulkSentinel is written to every row's type column by the full-table updater.
	BulkSentinel = "test2"
)

const (
	// DefaultRetryInitialDelay is the initial delay before the first connection retry.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the maximum delay between connection retries.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultConnectRetries is zero: a failed connection aborts the run.
	DefaultConnectRetries = 0
)

// DefaultForceApprovalCountdown is the pause before a forced clear on an
// interactive terminal.
const DefaultForceApprovalCountdown = 3 * time.Second
