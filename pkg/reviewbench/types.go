package reviewbench

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ReviewRecord is one data row of the review CSV.
// RowNumber holds the raw text of the unnamed index column.
type ReviewRecord struct {
	RowNumber string
	Type      string
	Review    string
	Label     string
	File      string
}

// UpdateStrategy selects how the type column is rewritten.
type UpdateStrategy string

const (
	// StrategyBatch walks the table page by page with one UPDATE per row.
	StrategyBatch UpdateStrategy = "batch"
	// StrategyBulk issues a single UPDATE for the whole table.
	StrategyBulk UpdateStrategy = "bulk"
)

// PaginationMode selects how the batch updater advances between pages.
type PaginationMode string

const (
	// PaginationOffset pages with LIMIT/OFFSET.
	PaginationOffset PaginationMode = "offset"
	// PaginationKeyset pages with WHERE id > last_seen_id.
	PaginationKeyset PaginationMode = "keyset"
)

// InsertMethod selects how records reach the table.
type InsertMethod string

const (
	// InsertBatch sends one parameterised INSERT per record in a single pgx batch.
	InsertBatch InsertMethod = "batch"
	// InsertCopy streams records with the COPY protocol.
	InsertCopy InsertMethod = "copy"
)

// ParseUpdateStrategy converts a flag value into an UpdateStrategy.
func ParseUpdateStrategy(s string) (UpdateStrategy, error) {
	switch UpdateStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyBatch:
		return StrategyBatch, nil
	case StrategyBulk:
		return StrategyBulk, nil
	default:
		return "", fmt.Errorf("unknown update strategy %q (want batch or bulk): %w", s, ErrInvalidConfig)
	}
}

// ParsePaginationMode converts a flag value into a PaginationMode.
func ParsePaginationMode(s string) (PaginationMode, error) {
	switch PaginationMode(strings.ToLower(strings.TrimSpace(s))) {
	case PaginationOffset:
		return PaginationOffset, nil
	case PaginationKeyset:
		return PaginationKeyset, nil
	default:
		return "", fmt.Errorf("unknown pagination mode %q (want offset or keyset): %w", s, ErrInvalidConfig)
	}
}

// ParseInsertMethod converts a flag value into an InsertMethod.
func ParseInsertMethod(s string) (InsertMethod, error) {
	switch InsertMethod(strings.ToLower(strings.TrimSpace(s))) {
	case InsertBatch:
		return InsertBatch, nil
	case InsertCopy:
		return InsertCopy, nil
	default:
		return "", fmt.Errorf("unknown insert method %q (want batch or copy): %w", s, ErrInvalidConfig)
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateIdentifier reports whether name is an allowed table identifier.
// Only plain unquoted PostgreSQL identifiers are accepted.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("identifier %q must match %s: %w", name, identifierPattern.String(), ErrInvalidConfig)
	}
	return nil
}

// RunConfig contains all parameters needed for one load-and-benchmark run.
type RunConfig struct {
	// CSVPath is the review CSV to load.
	CSVPath string

	// Encoding is the character set of the CSV file.
	Encoding string

	// TableName is the target table.
	TableName string

	// Connection is the resolved database connection.
	Connection *ConnectionConfig

	// CleanTable deletes all existing rows before insertion.
	CleanTable bool

	// Strategy selects the update pass.
	Strategy UpdateStrategy

	// Pagination selects how the batch updater pages through the table.
	Pagination PaginationMode

	// InsertMethod selects how records are inserted.
	InsertMethod InsertMethod

	// PageSize is the number of rows per page for the batch updater.
	PageSize int

	// BatchSentinel and BulkSentinel are the values written by each strategy.
	BatchSentinel string
	BulkSentinel  string

	// Timeout bounds the whole run. Zero means no timeout.
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Sentinel returns the value written by the configured strategy.
func (c *RunConfig) Sentinel() string {
	if c.Strategy == StrategyBulk {
		return c.BulkSentinel
	}
	return c.BatchSentinel
}

// Validate checks if the RunConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *RunConfig) Validate() error {
	var errs []error

	if c.CSVPath == "" {
		errs = append(errs, fmt.Errorf("CSVPath is required: %w", ErrInvalidConfig))
	}

	if err := ValidateIdentifier(c.TableName); err != nil {
		errs = append(errs, fmt.Errorf("TableName: %w", err))
	}

	if c.Connection == nil {
		errs = append(errs, fmt.Errorf("Connection is required: %w", ErrInvalidConfig))
	} else if c.Connection.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}

	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page size must be positive, got %d: %w", c.PageSize, ErrInvalidConfig))
	}

	switch c.Strategy {
	case StrategyBatch, StrategyBulk:
	default:
		errs = append(errs, fmt.Errorf("unknown update strategy %q: %w", c.Strategy, ErrInvalidConfig))
	}

	switch c.Pagination {
	case PaginationOffset, PaginationKeyset:
	default:
		errs = append(errs, fmt.Errorf("unknown pagination mode %q: %w", c.Pagination, ErrInvalidConfig))
	}

	switch c.InsertMethod {
	case InsertBatch, InsertCopy:
	default:
		errs = append(errs, fmt.Errorf("unknown insert method %q: %w", c.InsertMethod, ErrInvalidConfig))
	}

	if c.Sentinel() == "" {
		errs = append(errs, fmt.Errorf("sentinel value for %s strategy is empty: %w", c.Strategy, ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// ConnectRetries is the number of retries after a transient connection failure.
	ConnectRetries int

	// Azure Entra ID parameters (AuthMethodAzureEntraID).
	// If all three are provided, Service Principal authentication is used,
	// otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the project:region:instance name for AuthMethodGoogleIAM.
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// UpdateResult describes one completed update pass.
type UpdateResult struct {
	Strategy   UpdateStrategy `yaml:"strategy"`
	Pagination PaginationMode `yaml:"pagination,omitempty"`
	PageSize   int            `yaml:"page_size,omitempty"`

	// Fetches counts page queries including the terminating empty one.
	Fetches int `yaml:"fetches"`

	// Pages counts non-empty pages, each committed once.
	Pages int `yaml:"pages"`

	RowsUpdated int64         `yaml:"rows_updated"`
	Elapsed     time.Duration `yaml:"elapsed"`
}

// PageProgress is reported after each committed page.
type PageProgress struct {
	Page        int
	RowsInPage  int
	RowsUpdated int64
	LastID      int64

	// Duration covers the page fetch, its row updates and the commit.
	Duration time.Duration
}

// InsertOutcome describes what the bulk inserter did.
type InsertOutcome struct {
	// Skipped is true when the table already had rows.
	Skipped bool `yaml:"skipped"`

	// ExistingRows is the COUNT(row_number) observed before inserting.
	ExistingRows int64 `yaml:"existing_rows"`

	Inserted int64         `yaml:"inserted"`
	Elapsed  time.Duration `yaml:"elapsed"`
}
