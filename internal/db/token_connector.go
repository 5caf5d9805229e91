package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/reviewbench/internal/retry"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// TokenBasedConnector connects to cloud providers that authenticate with
// short-lived tokens (AWS IAM, Azure Entra ID). The token is the password.
type TokenBasedConnector struct {
	config        *reviewbench.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	logger        reviewbench.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName appears in messages (e.g. "AWS IAM", "Azure").
func NewTokenBasedConnector(config *reviewbench.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger reviewbench.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: newRetryExecutor(config, logger),
		providerName:  providerName,
		logger:        logger,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		// fresh token per attempt
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		c.logger.Verbose("Acquired token from %s", c.tokenProvider)

		if time.Until(expiresOn) < 5*time.Minute {
			c.logger.Info("Warning: %s token expires in %v", c.providerName, time.Until(expiresOn).Round(time.Second))
		}

		configWithToken := *c.config
		configWithToken.Password = token

		pool, err = openPool(ctx, c.config, BuildConnectionString(&configWithToken), c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
