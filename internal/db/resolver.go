package db

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vvka-141/reviewbench/internal/config"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is not a flag. Use $PGPASSWORD, ~/.pgpass or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided.
// Database is excluded because it may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// AzureFlags represents Azure Entra ID CLI flags.
// Client secret only comes from AZURE_CLIENT_SECRET.
type AzureFlags struct {
	Enabled  bool
	TenantID string // Overrides AZURE_TENANT_ID
	ClientID string // Overrides AZURE_CLIENT_ID
}

// AWSFlags represents AWS RDS IAM CLI flags.
type AWSFlags struct {
	Enabled bool
	Region  string // Overrides AWS_REGION
}

// GoogleFlags represents Google Cloud SQL IAM CLI flags.
type GoogleFlags struct {
	Enabled  bool
	Instance string // project:region:instance
}

// CloudFlags groups the cloud authentication flags.
type CloudFlags struct {
	Azure  AzureFlags
	AWS    AWSFlags
	Google GoogleFlags
}

// EnvVars represents PostgreSQL standard and cloud SDK environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	// REVIEWBENCH_CONNECTION_STRING wins over DATABASE_URL.
	REVIEWBENCH_CONNECTION_STRING string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string

	AWS_REGION string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:                        os.Getenv("PGHOST"),
		PGPORT:                        os.Getenv("PGPORT"),
		PGUSER:                        os.Getenv("PGUSER"),
		PGPASSWORD:                    os.Getenv("PGPASSWORD"),
		PGDATABASE:                    os.Getenv("PGDATABASE"),
		PGSSLMODE:                     os.Getenv("PGSSLMODE"),
		DATABASE_URL:                  os.Getenv("DATABASE_URL"),
		REVIEWBENCH_CONNECTION_STRING: os.Getenv("REVIEWBENCH_CONNECTION_STRING"),
		AZURE_TENANT_ID:               os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:               os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:           os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:                    os.Getenv("AWS_REGION"),
	}
}

// HasAzureCredentials returns true if Azure Entra ID environment variables are set.
func (e *EnvVars) HasAzureCredentials() bool {
	return e.AZURE_TENANT_ID != "" || e.AZURE_CLIENT_ID != ""
}

// connectionStringFromEnv returns the environment connection string, if any.
func (e *EnvVars) connectionStringFromEnv() string {
	if e.REVIEWBENCH_CONNECTION_STRING != "" {
		return e.REVIEWBENCH_CONNECTION_STRING
	}
	return e.DATABASE_URL
}

// ResolveConnectionParams resolves connection parameters with this precedence:
//
//  1. --connection flag
//  2. granular flags (-h, -p, -U, -d, --sslmode)
//  3. REVIEWBENCH_CONNECTION_STRING, then DATABASE_URL, when no granular flag is set
//  4. PG* environment variables
//  5. reviewbench.yaml
//  6. defaults (localhost:5432, user postgres, database imdb_review_kaggle)
//
// Specifying both --connection and granular flags is an error.
// -d always overrides the database of a connection string.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*reviewbench.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://postgres@localhost:5432/%s\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U postgres -d %s\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=postgres: %w",
			reviewbench.DefaultDatabaseName, reviewbench.DefaultDatabaseName, reviewbench.ErrInvalidConfig,
		)
	}

	var cfg *reviewbench.ConnectionConfig
	var err error

	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.connectionStringFromEnv() != "":
		cfg, err = resolveFromConnectionString(envVars.connectionStringFromEnv(), envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, pc)
	}
	if err != nil {
		return nil, err
	}

	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}
	if pc.ConnectRetries > 0 {
		cfg.ConnectRetries = pc.ConnectRetries
	}

	if err := applyCloudAuth(cfg, cloudFlags, envVars, pc); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyCloudAuth selects the authentication method and attaches its credentials.
// Explicit flags win; reviewbench.yaml auth_method comes next; Azure environment
// credentials switch to Entra ID when nothing else was chosen.
func applyCloudAuth(cfg *reviewbench.ConnectionConfig, flags *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	enabled := 0
	for _, on := range []bool{flags.Azure.Enabled, flags.AWS.Enabled, flags.Google.Enabled} {
		if on {
			enabled++
		}
	}
	if enabled > 1 {
		return fmt.Errorf("--azure, --aws and --google are mutually exclusive: %w", reviewbench.ErrInvalidConfig)
	}

	method := reviewbench.AuthMethodStandard
	switch {
	case flags.Azure.Enabled:
		method = reviewbench.AuthMethodAzureEntraID
	case flags.AWS.Enabled:
		method = reviewbench.AuthMethodAWSIAM
	case flags.Google.Enabled:
		method = reviewbench.AuthMethodGoogleIAM
	case pc.AuthMethod != "":
		m, err := ParseAuthMethod(pc.AuthMethod)
		if err != nil {
			return err
		}
		method = m
	case flags.Azure.TenantID != "" || flags.Azure.ClientID != "" || env.HasAzureCredentials():
		method = reviewbench.AuthMethodAzureEntraID
	}

	cfg.AuthMethod = method

	switch method {
	case reviewbench.AuthMethodAzureEntraID:
		cfg.AzureTenantID = firstNonEmpty(flags.Azure.TenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(flags.Azure.ClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case reviewbench.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWS.Region, env.AWS_REGION, pc.AWSRegion)
		if cfg.AWSRegion == "" {
			return fmt.Errorf("AWS IAM auth requires --aws-region or $AWS_REGION: %w", reviewbench.ErrInvalidConfig)
		}
	case reviewbench.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.Google.Instance, pc.GoogleInstance)
	}
	return nil
}

// ParseAuthMethod converts a config value ("standard", "aws", "google", "azure") into an AuthMethod.
func ParseAuthMethod(s string) (reviewbench.AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return reviewbench.AuthMethodStandard, nil
	case "aws", "aws-iam":
		return reviewbench.AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return reviewbench.AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return reviewbench.AuthMethodAzureEntraID, nil
	default:
		return 0, fmt.Errorf("unknown auth_method %q: %w", s, reviewbench.ErrUnsupportedAuthMethod)
	}
}

// resolveFromConnectionString parses connStr and applies PGSSLMODE as a fallback,
// following libpq behavior.
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*reviewbench.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %v: %w", err, reviewbench.ErrInvalidConfig)
	}

	if cfg.SSLMode == "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}
	if cfg.Password == "" {
		cfg.Password = envVars.PGPASSWORD
	}
	return cfg, nil
}

// resolveFromGranularParams builds a ConnectionConfig from flags, environment,
// project file and defaults, in that order for each parameter.
func resolveFromGranularParams(flags *GranularConnFlags, envVars *EnvVars, pc config.ConnectionConfig) (*reviewbench.ConnectionConfig, error) {
	cfg := newDefaultConfig()

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, cfg.Host)

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", envVars.PGPORT, reviewbench.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	}

	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username, cfg.Username)
	cfg.Password = envVars.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database, cfg.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, "prefer")

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
