package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/reviewbench/internal/logging"
	testhelpers "github.com/vvka-141/reviewbench/internal/testing"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

func sampleRecords(n int) []reviewbench.ReviewRecord {
	records := make([]reviewbench.ReviewRecord, n)
	for i := range records {
		records[i] = reviewbench.ReviewRecord{
			RowNumber: fmt.Sprint(i),
			Type:      "test",
			Review:    fmt.Sprintf("review %d, with 'quotes'", i),
			Label:     "pos",
			File:      fmt.Sprintf("%d_7.txt", i),
		}
	}
	return records
}

func newIntegrationTable(t *testing.T) (*Table, context.Context) {
	t.Helper()

	connString := testhelpers.RequireDatabase(t)
	config := testhelpers.CreateTestDB(t, connString)
	conn := testhelpers.AcquireTestConn(t, config)

	table, err := NewTable(conn, reviewbench.DefaultTableName, logging.NewNullLogger())
	require.NoError(t, err)
	return table, context.Background()
}

func TestTable_EnsureTableIsIdempotent(t *testing.T) {
	table, ctx := newIntegrationTable(t)

	created, err := table.EnsureTable(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = table.EnsureTable(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	count, err := table.CountRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestTable_InsertMethods(t *testing.T) {
	for _, method := range []reviewbench.InsertMethod{reviewbench.InsertBatch, reviewbench.InsertCopy} {
		t.Run(string(method), func(t *testing.T) {
			table, ctx := newIntegrationTable(t)
			_, err := table.EnsureTable(ctx)
			require.NoError(t, err)

			inserted, err := table.Insert(ctx, sampleRecords(3), method)
			require.NoError(t, err)
			assert.Equal(t, int64(3), inserted)

			count, err := table.CountRows(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)

			var review string
			require.NoError(t, table.conn.QueryRow(ctx, `SELECT review FROM reviews WHERE row_number = 2`).Scan(&review))
			assert.Equal(t, "review 2, with 'quotes'", review)
		})
	}
}

func TestTable_InsertRejectsNonIntegerRowNumber(t *testing.T) {
	for _, method := range []reviewbench.InsertMethod{reviewbench.InsertBatch, reviewbench.InsertCopy} {
		t.Run(string(method), func(t *testing.T) {
			table, ctx := newIntegrationTable(t)
			_, err := table.EnsureTable(ctx)
			require.NoError(t, err)

			records := sampleRecords(2)
			records[1].RowNumber = "abc"

			_, err = table.Insert(ctx, records, method)
			require.Error(t, err)
			assert.True(t, errors.Is(err, reviewbench.ErrExecutionFailed))

			// one transaction: nothing was kept
			count, err := table.CountRows(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)
		})
	}
}

func TestTable_DeleteAllAndSetTypeAll(t *testing.T) {
	table, ctx := newIntegrationTable(t)
	_, err := table.EnsureTable(ctx)
	require.NoError(t, err)
	_, err = table.Insert(ctx, sampleRecords(5), reviewbench.InsertBatch)
	require.NoError(t, err)

	updated, err := table.SetTypeAll(ctx, reviewbench.BulkSentinel)
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated)

	var others int
	require.NoError(t, table.conn.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE type <> 'test2'`).Scan(&others))
	assert.Equal(t, 0, others)

	deleted, err := table.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)

	count, err := table.CountRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestTable_PageModes(t *testing.T) {
	table, ctx := newIntegrationTable(t)
	_, err := table.EnsureTable(ctx)
	require.NoError(t, err)
	_, err = table.Insert(ctx, sampleRecords(5), reviewbench.InsertBatch)
	require.NoError(t, err)

	page, err := table.BeginPage(ctx)
	require.NoError(t, err)
	defer page.Rollback(ctx) //nolint:errcheck

	first, err := page.FetchIDs(ctx, reviewbench.PageRequest{Mode: reviewbench.PaginationOffset, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Less(t, first[0], first[1])

	second, err := page.FetchIDs(ctx, reviewbench.PageRequest{Mode: reviewbench.PaginationKeyset, Limit: 10, AfterID: first[1]})
	require.NoError(t, err)
	assert.Len(t, second, 3)

	offsetTail, err := page.FetchIDs(ctx, reviewbench.PageRequest{Mode: reviewbench.PaginationOffset, Limit: 10, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, second, offsetTail)

	empty, err := page.FetchIDs(ctx, reviewbench.PageRequest{Mode: reviewbench.PaginationOffset, Limit: 10, Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, page.SetType(ctx, first[0], reviewbench.BatchSentinel))
	require.NoError(t, page.Commit(ctx))
	assert.NoError(t, page.Rollback(ctx), "rollback after commit is a no-op")

	var typ string
	require.NoError(t, table.conn.QueryRow(ctx, `SELECT type FROM reviews WHERE id = $1`, first[0]).Scan(&typ))
	assert.Equal(t, reviewbench.BatchSentinel, typ)
}

func TestTable_PageRollbackDiscardsUpdates(t *testing.T) {
	table, ctx := newIntegrationTable(t)
	_, err := table.EnsureTable(ctx)
	require.NoError(t, err)
	_, err = table.Insert(ctx, sampleRecords(1), reviewbench.InsertBatch)
	require.NoError(t, err)

	page, err := table.BeginPage(ctx)
	require.NoError(t, err)
	ids, err := page.FetchIDs(ctx, reviewbench.PageRequest{Mode: reviewbench.PaginationOffset, Limit: 1})
	require.NoError(t, err)
	require.NoError(t, page.SetType(ctx, ids[0], "discarded"))
	require.NoError(t, page.Rollback(ctx))

	var typ string
	require.NoError(t, table.conn.QueryRow(ctx, `SELECT type FROM reviews WHERE id = $1`, ids[0]).Scan(&typ))
	assert.Equal(t, "test", typ)
}

func TestTable_MissingTableFails(t *testing.T) {
	table, ctx := newIntegrationTable(t)

	_, err := table.CountRows(ctx)
	require.Error(t, err)
	assert.Equal(t, reviewbench.ExitExecutionFailed, reviewbench.ExitCodeForError(err))
}
