package reviewbench

import "context"

// ReviewTable abstracts the operations the run performs on the target table.
// The PostgreSQL implementation lives in internal/store.
//
// Thread-Safety: implementations are bound to a single connection and are
// NOT safe for concurrent use.
type ReviewTable interface {
	// Name returns the table name.
	Name() string

	// EnsureTable creates the table if it does not exist.
	// Returns true if the table was created.
	EnsureTable(ctx context.Context) (bool, error)

	// CountRows returns COUNT(row_number).
	CountRows(ctx context.Context) (int64, error)

	// Insert writes every record in one transaction and returns the number inserted.
	Insert(ctx context.Context, records []ReviewRecord, method InsertMethod) (int64, error)

	// DeleteAll removes every row and returns the number deleted.
	DeleteAll(ctx context.Context) (int64, error)

	// SetTypeAll sets type on every row in one statement and returns the rows affected.
	SetTypeAll(ctx context.Context, value string) (int64, error)

	// BeginPage opens the transaction that covers one page of the batch walk.
	BeginPage(ctx context.Context) (PageTx, error)
}

// PageRequest selects one page of ids, ordered by id ascending.
type PageRequest struct {
	Mode  PaginationMode
	Limit int

	// Offset is used by PaginationOffset.
	Offset int64

	// AfterID is used by PaginationKeyset.
	AfterID int64
}

// PageTx is a transaction scoped to one page of the batch walk.
type PageTx interface {
	// FetchIDs returns the ids of the requested page. An empty slice ends the walk.
	FetchIDs(ctx context.Context, req PageRequest) ([]int64, error)

	// SetType updates the type column of a single row.
	SetType(ctx context.Context, id int64, value string) error

	Commit(ctx context.Context) error

	// Rollback is a no-op after Commit.
	Rollback(ctx context.Context) error
}

// RecordSource loads review records from a file.
type RecordSource interface {
	Load(path, encoding string) ([]ReviewRecord, error)
}
