package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vvka-141/reviewbench/internal/config"
	"github.com/vvka-141/reviewbench/internal/db"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// connectionFlags holds the connection-related flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	azure          bool
	azureTenantID  string
	azureClientID  string
	aws            bool
	awsRegion      string
	google         bool
	googleInstance string
	connectRetries int
}

func bindConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	flags := cmd.Flags()

	flags.StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI, keyword/value or ADO.NET format).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username, --sslmode).\n"+
			"Alternative: REVIEWBENCH_CONNECTION_STRING or DATABASE_URL environment variable.\n"+
			"Example: postgresql://postgres@localhost:5432/imdb_review_kaggle")

	// Precedence: flag > environment variable > reviewbench.yaml > default
	flags.StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > localhost")
	flags.IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > 5432")
	flags.StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or "+reviewbench.DefaultUsername+")")
	flags.StringVarP(&f.database, "database", "d", "",
		"Database name (default: $PGDATABASE or "+reviewbench.DefaultDatabaseName+")\n"+
			"Overrides the database of a connection string")
	flags.StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")

	flags.BoolVar(&f.azure, "azure", false,
		"Enable Azure Entra ID authentication\n"+
			"Uses DefaultAzureCredential chain (Managed Identity, Azure CLI, etc.)")
	flags.StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	flags.StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")

	flags.BoolVar(&f.aws, "aws", false,
		"Enable AWS RDS IAM authentication")
	flags.StringVar(&f.awsRegion, "aws-region", "",
		"AWS region of the RDS instance (overrides $AWS_REGION)")

	flags.BoolVar(&f.google, "google", false,
		"Enable Google Cloud SQL IAM authentication")
	flags.StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")

	flags.IntVar(&f.connectRetries, "connect-retries", reviewbench.DefaultConnectRetries,
		"Retries after a transient connection failure (default 0: single attempt)\n"+
			"SQL statements are never retried")
}

// resolveConnectionFromFlags resolves the connection from flags, environment,
// reviewbench.yaml and defaults.
func resolveConnectionFromFlags(
	cmd *cobra.Command,
	f connectionFlags,
	projectCfg *config.ProjectConfig,
) (*reviewbench.ConnectionConfig, error) {
	granularFlags := &db.GranularConnFlags{
		Host:     f.host,
		Port:     f.port,
		Username: f.username,
		Database: f.database,
		SSLMode:  f.sslMode,
	}

	cloudFlags := &db.CloudFlags{
		Azure: db.AzureFlags{
			Enabled:  f.azure,
			TenantID: f.azureTenantID,
			ClientID: f.azureClientID,
		},
		AWS: db.AWSFlags{
			Enabled: f.aws,
			Region:  f.awsRegion,
		},
		Google: db.GoogleFlags{
			Enabled:  f.google,
			Instance: f.googleInstance,
		},
	}

	connConfig, err := db.ResolveConnectionParams(
		f.connection,
		granularFlags,
		cloudFlags,
		db.LoadFromEnvironment(),
		projectCfg,
	)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("connect-retries") {
		if f.connectRetries < 0 {
			return nil, fmt.Errorf("--connect-retries cannot be negative: %w", reviewbench.ErrInvalidConfig)
		}
		connConfig.ConnectRetries = f.connectRetries
	}

	return connConfig, nil
}

// logConnectionVerbose logs connection details. The password is never printed.
func logConnectionVerbose(w io.Writer, connConfig *reviewbench.ConnectionConfig) {
	fmt.Fprintf(w, "[VERBOSE] Connection resolved:\n")
	fmt.Fprintf(w, "  Host: %s\n", connConfig.Host)
	fmt.Fprintf(w, "  Port: %d\n", connConfig.Port)
	fmt.Fprintf(w, "  User: %s\n", connConfig.Username)
	fmt.Fprintf(w, "  Database: %s\n", connConfig.Database)
	fmt.Fprintf(w, "  SSL Mode: %s\n", connConfig.SSLMode)
	fmt.Fprintf(w, "  Auth Method: %s\n", connConfig.AuthMethod)
	if connConfig.ConnectRetries > 0 {
		fmt.Fprintf(w, "  Connect Retries: %d\n", connConfig.ConnectRetries)
	}
}
