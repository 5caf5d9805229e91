package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/reviewbench/internal/retry"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// Connection pool configuration constants.
// A run uses exactly one connection for its whole lifetime.
const (
	DefaultMaxConns        = 1
	DefaultMinConns        = 0
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger reviewbench.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("NOTICE: %s", notice.Message)
	}
}

func newRetryExecutor(config *reviewbench.ConnectionConfig, logger reviewbench.Logger) *retry.Executor {
	backoff := retry.NewExponentialBackoff(config.ConnectRetries,
		retry.WithInitialDelay(reviewbench.DefaultRetryInitialDelay),
		retry.WithMaxDelay(reviewbench.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(retry.NewConnectionClassifier(), backoff).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Info("Connection attempt failed (%v), retrying in %v (%d/%d)",
				err, delay.Round(time.Millisecond), attempt+1, config.ConnectRetries)
		})
}

// openPool parses connStr, applies pool settings and pings the server.
func openPool(ctx context.Context, config *reviewbench.ConnectionConfig, connStr string, logger reviewbench.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	configurePool(poolConfig, logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	return pool, nil
}

// StandardConnector connects with username/password authentication.
// Transient failures are retried config.ConnectRetries times.
type StandardConnector struct {
	config        *reviewbench.ConnectionConfig
	logger        reviewbench.Logger
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a new StandardConnector.
func NewStandardConnector(config *reviewbench.ConnectionConfig, logger reviewbench.Logger) *StandardConnector {
	return &StandardConnector{
		config:        config,
		logger:        logger,
		retryExecutor: newRetryExecutor(config, logger),
	}
}

// Connect establishes a connection pool using standard authentication.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, c.config, connStr, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// ConnectorFactory builds a Connector for a resolved configuration.
type ConnectorFactory func(config *reviewbench.ConnectionConfig, logger reviewbench.Logger) (reviewbench.Connector, error)

// NewConnector creates the Connector matching config.AuthMethod.
func NewConnector(config *reviewbench.ConnectionConfig, logger reviewbench.Logger) (reviewbench.Connector, error) {
	switch config.AuthMethod {
	case reviewbench.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case reviewbench.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case reviewbench.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case reviewbench.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, reviewbench.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or ~/.pgpass)
  - Wrong username (default: %s)

Original error: %w`, database, reviewbench.DefaultUsername, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  createdb %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)

Original error: %w`, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *reviewbench.ConnectionConfig, logger reviewbench.Logger) (reviewbench.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Cloud SQL IAM authentication.
func newGoogleConnector(config *reviewbench.ConnectionConfig, logger reviewbench.Logger) (reviewbench.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", reviewbench.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", reviewbench.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, logger), nil
}

// newAzureConnector creates a token-based connector with the Azure Entra ID token provider.
// Explicit tenant, client and secret select Service Principal auth;
// otherwise the DefaultAzureCredential chain is used.
func newAzureConnector(config *reviewbench.ConnectionConfig, logger reviewbench.Logger) (reviewbench.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure", logger), nil
}
