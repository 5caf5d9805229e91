package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// ProgressFunc receives a report after every committed page.
type ProgressFunc func(reviewbench.PageProgress)

// Updater rewrites the type column of every row.
type Updater interface {
	Update(ctx context.Context) (*reviewbench.UpdateResult, error)
}

// BatchUpdater walks the table in id order, one transaction per page and one
// UPDATE per row. The walk ends at the first empty page.
//
// Rows inserted or deleted by other sessions during the walk are not guarded
// against; with offset pagination they can shift page boundaries.
type BatchUpdater struct {
	table    reviewbench.ReviewTable
	logger   reviewbench.Logger
	pageSize int
	mode     reviewbench.PaginationMode
	sentinel string
	progress ProgressFunc
	now      func() time.Time
}

// NewBatchUpdater creates a BatchUpdater. Panics if table or logger is nil.
func NewBatchUpdater(table reviewbench.ReviewTable, logger reviewbench.Logger, pageSize int, mode reviewbench.PaginationMode, sentinel string) *BatchUpdater {
	if table == nil {
		panic("table cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if mode == "" {
		mode = reviewbench.PaginationOffset
	}
	return &BatchUpdater{
		table:    table,
		logger:   logger,
		pageSize: pageSize,
		mode:     mode,
		sentinel: sentinel,
		now:      time.Now,
	}
}

// WithProgress returns a copy of u that reports each committed page to fn.
func (u *BatchUpdater) WithProgress(fn ProgressFunc) *BatchUpdater {
	clone := *u
	clone.progress = fn
	return &clone
}

func (u *BatchUpdater) Update(ctx context.Context) (*reviewbench.UpdateResult, error) {
	if u.pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d: %w", u.pageSize, reviewbench.ErrInvalidConfig)
	}

	result := &reviewbench.UpdateResult{
		Strategy:   reviewbench.StrategyBatch,
		Pagination: u.mode,
		PageSize:   u.pageSize,
	}

	req := reviewbench.PageRequest{Mode: u.mode, Limit: u.pageSize}
	start := u.now()
	last := start

	for {
		ids, err := u.processPage(ctx, req)
		result.Fetches++
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", result.Pages+1, err)
		}
		if len(ids) == 0 {
			break
		}

		done := u.now()
		pageTime := done.Sub(last)
		last = done

		result.Pages++
		result.RowsUpdated += int64(len(ids))

		req.Offset += int64(u.pageSize)
		req.AfterID = ids[len(ids)-1]

		u.logger.Verbose("Page %d committed: %d rows (last id %d)", result.Pages, len(ids), req.AfterID)
		if u.progress != nil {
			u.progress(reviewbench.PageProgress{
				Page:        result.Pages,
				RowsInPage:  len(ids),
				RowsUpdated: result.RowsUpdated,
				LastID:      req.AfterID,
				Duration:    pageTime,
			})
		}
	}

	result.Elapsed = u.now().Sub(start)
	return result, nil
}

// processPage runs one page transaction and returns the ids it updated.
// An empty page is rolled back rather than committed.
func (u *BatchUpdater) processPage(ctx context.Context, req reviewbench.PageRequest) ([]int64, error) {
	page, err := u.table.BeginPage(ctx)
	if err != nil {
		return nil, err
	}
	defer page.Rollback(ctx) //nolint:errcheck

	ids, err := page.FetchIDs(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	for _, id := range ids {
		if err := page.SetType(ctx, id, u.sentinel); err != nil {
			return nil, err
		}
	}

	if err := page.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

// BulkUpdater sets the type column of every row with one statement.
type BulkUpdater struct {
	table    reviewbench.ReviewTable
	sentinel string
	now      func() time.Time
}

// NewBulkUpdater creates a BulkUpdater. Panics if table is nil.
func NewBulkUpdater(table reviewbench.ReviewTable, sentinel string) *BulkUpdater {
	if table == nil {
		panic("table cannot be nil")
	}
	return &BulkUpdater{table: table, sentinel: sentinel, now: time.Now}
}

func (u *BulkUpdater) Update(ctx context.Context) (*reviewbench.UpdateResult, error) {
	start := u.now()
	n, err := u.table.SetTypeAll(ctx, u.sentinel)
	if err != nil {
		return nil, err
	}
	return &reviewbench.UpdateResult{
		Strategy:    reviewbench.StrategyBulk,
		RowsUpdated: n,
		Elapsed:     u.now().Sub(start),
	}, nil
}

var (
	_ Updater = (*BatchUpdater)(nil)
	_ Updater = (*BulkUpdater)(nil)
)
