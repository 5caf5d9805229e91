package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// DBTX is the subset of *pgxpool.Conn and *pgx.Conn the table needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Table implements reviewbench.ReviewTable for one PostgreSQL table.
type Table struct {
	conn   DBTX
	name   string
	ident  string
	logger reviewbench.Logger
}

var _ reviewbench.ReviewTable = (*Table)(nil)

// NewTable binds the named table to conn. The name must pass
// reviewbench.ValidateIdentifier.
func NewTable(conn DBTX, name string, logger reviewbench.Logger) (*Table, error) {
	if conn == nil {
		return nil, fmt.Errorf("connection is required: %w", reviewbench.ErrInvalidConfig)
	}
	if err := reviewbench.ValidateIdentifier(name); err != nil {
		return nil, err
	}
	return &Table{
		conn:   conn,
		name:   name,
		ident:  pgx.Identifier{name}.Sanitize(),
		logger: logger,
	}, nil
}

func (t *Table) Name() string { return t.name }

// sql renders a query template for this table.
func (t *Table) sql(template string) string {
	return fmt.Sprintf(template, t.ident)
}

func execError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, reviewbench.ErrExecutionFailed, err)
}

func (t *Table) EnsureTable(ctx context.Context) (bool, error) {
	var exists bool
	if err := t.conn.QueryRow(ctx, queryTableExists, t.name).Scan(&exists); err != nil {
		return false, execError("failed to check table existence", err)
	}
	if exists {
		t.logger.Verbose("Table %s exists", t.name)
		return false, nil
	}

	if _, err := t.conn.Exec(ctx, t.sql(queryCreateTable)); err != nil {
		return false, execError(fmt.Sprintf("failed to create table %s", t.name), err)
	}
	t.logger.Verbose("Created table %s", t.name)
	return true, nil
}

func (t *Table) CountRows(ctx context.Context) (int64, error) {
	var count int64
	if err := t.conn.QueryRow(ctx, t.sql(queryCountRows)).Scan(&count); err != nil {
		return 0, execError("failed to count rows", err)
	}
	return count, nil
}

// Insert writes records in a single transaction.
func (t *Table) Insert(ctx context.Context, records []reviewbench.ReviewRecord, method reviewbench.InsertMethod) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := t.conn.Begin(ctx)
	if err != nil {
		return 0, execError("failed to begin insert transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var inserted int64
	switch method {
	case reviewbench.InsertCopy:
		inserted, err = t.insertCopy(ctx, tx, records)
	case reviewbench.InsertBatch, "":
		inserted, err = t.insertBatch(ctx, tx, records)
	default:
		return 0, fmt.Errorf("unknown insert method %q: %w", method, reviewbench.ErrInvalidConfig)
	}
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, execError("failed to commit insert", err)
	}
	return inserted, nil
}

func (t *Table) insertBatch(ctx context.Context, tx pgx.Tx, records []reviewbench.ReviewRecord) (int64, error) {
	query := t.sql(queryInsertRow)
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(query, r.RowNumber, r.Type, r.Review, r.Label, r.File)
	}

	br := tx.SendBatch(ctx, batch)
	var inserted int64
	for i := range records {
		tag, err := br.Exec()
		if err != nil {
			br.Close() //nolint:errcheck
			return 0, execError(fmt.Sprintf("failed to insert record %d (row_number %q)", i+1, records[i].RowNumber), err)
		}
		inserted += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, execError("failed to finish insert batch", err)
	}
	return inserted, nil
}

func (t *Table) insertCopy(ctx context.Context, tx pgx.Tx, records []reviewbench.ReviewRecord) (int64, error) {
	rows := make([][]any, len(records))
	for i, r := range records {
		n, err := strconv.ParseInt(r.RowNumber, 10, 32)
		if err != nil {
			return 0, execError(fmt.Sprintf("record %d has non-integer row_number %q", i+1, r.RowNumber), err)
		}
		rows[i] = []any{int32(n), r.Type, r.Review, r.Label, r.File}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{t.name}, copyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, execError("failed to copy records", err)
	}
	return n, nil
}

func (t *Table) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := t.conn.Exec(ctx, t.sql(queryDeleteAll))
	if err != nil {
		return 0, execError(fmt.Sprintf("failed to delete rows from %s", t.name), err)
	}
	return tag.RowsAffected(), nil
}

func (t *Table) SetTypeAll(ctx context.Context, value string) (int64, error) {
	tag, err := t.conn.Exec(ctx, t.sql(querySetTypeAll), value)
	if err != nil {
		return 0, execError("failed to update all rows", err)
	}
	return tag.RowsAffected(), nil
}

func (t *Table) BeginPage(ctx context.Context) (reviewbench.PageTx, error) {
	tx, err := t.conn.Begin(ctx)
	if err != nil {
		return nil, execError("failed to begin page transaction", err)
	}
	return &pageTx{tx: tx, table: t}, nil
}

// pageTx is one page of the batch walk.
type pageTx struct {
	tx    pgx.Tx
	table *Table
}

func (p *pageTx) FetchIDs(ctx context.Context, req reviewbench.PageRequest) ([]int64, error) {
	var rows pgx.Rows
	var err error

	switch req.Mode {
	case reviewbench.PaginationKeyset:
		rows, err = p.tx.Query(ctx, p.table.sql(queryPageKeyset), req.AfterID, req.Limit)
	case reviewbench.PaginationOffset, "":
		rows, err = p.tx.Query(ctx, p.table.sql(queryPageOffset), req.Limit, req.Offset)
	default:
		return nil, fmt.Errorf("unknown pagination mode %q: %w", req.Mode, reviewbench.ErrInvalidConfig)
	}
	if err != nil {
		return nil, execError("failed to fetch page", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, execError("failed to read page ids", err)
	}
	return ids, nil
}

func (p *pageTx) SetType(ctx context.Context, id int64, value string) error {
	if _, err := p.tx.Exec(ctx, p.table.sql(querySetTypeByID), value, id); err != nil {
		return execError(fmt.Sprintf("failed to update row %d", id), err)
	}
	return nil
}

func (p *pageTx) Commit(ctx context.Context) error {
	if err := p.tx.Commit(ctx); err != nil {
		return execError("failed to commit page", err)
	}
	return nil
}

func (p *pageTx) Rollback(ctx context.Context) error {
	err := p.tx.Rollback(ctx)
	if err == nil || errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return execError("failed to roll back page", err)
}
