package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/reviewbench/internal/logging"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

func threeRecords() []reviewbench.ReviewRecord {
	return []reviewbench.ReviewRecord{
		{RowNumber: "0", Type: "test", Review: "a", Label: "pos", File: "0_1.txt"},
		{RowNumber: "1", Type: "test", Review: "b", Label: "neg", File: "1_1.txt"},
		{RowNumber: "2", Type: "train", Review: "c", Label: "unsup", File: "2_1.txt"},
	}
}

func TestInsertIfEmpty_InsertsIntoEmptyTable(t *testing.T) {
	table := newFakeTable(0)

	outcome, err := InsertIfEmpty(context.Background(), table, threeRecords(), reviewbench.InsertBatch, io.Discard, logging.NewNullLogger())
	require.NoError(t, err)

	assert.False(t, outcome.Skipped)
	assert.Equal(t, int64(3), outcome.Inserted)
	count, _ := table.CountRows(context.Background())
	assert.Equal(t, int64(3), count)
}

func TestInsertIfEmpty_SkipsPopulatedTable(t *testing.T) {
	table := newFakeTable(5)
	var stdout, stderr bytes.Buffer

	outcome, err := InsertIfEmpty(context.Background(), table, threeRecords(), reviewbench.InsertBatch, &stdout, logging.NewConsoleLoggerTo(&stderr, false))
	require.NoError(t, err)

	assert.True(t, outcome.Skipped)
	assert.Equal(t, int64(5), outcome.ExistingRows)
	assert.Equal(t, int64(0), outcome.Inserted)
	assert.Equal(t, SkipInsertMessage+"\n", stdout.String())
	assert.Empty(t, stderr.String())

	count, _ := table.CountRows(context.Background())
	assert.Equal(t, int64(5), count)
}

func TestInsertIfEmpty_Errors(t *testing.T) {
	countErr := errors.New("count failed")
	table := newFakeTable(0)
	table.countErr = countErr
	_, err := InsertIfEmpty(context.Background(), table, threeRecords(), reviewbench.InsertBatch, io.Discard, logging.NewNullLogger())
	assert.ErrorIs(t, err, countErr)

	insertErr := errors.New("insert failed")
	table = newFakeTable(0)
	table.insertErr = insertErr
	_, err = InsertIfEmpty(context.Background(), table, threeRecords(), reviewbench.InsertCopy, io.Discard, logging.NewNullLogger())
	assert.ErrorIs(t, err, insertErr)
}
