package reviewbench

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector is a unified interface for establishing database connections.
// Implementations handle the supported authentication methods
// (standard credentials, AWS IAM, Google Cloud SQL IAM, Azure Entra ID).
type Connector interface {
	// Connect establishes a connection pool to the database.
	// The returned pool must be closed by the caller.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
