package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// SkipInsertMessage is printed to stdout when the table already holds rows.
const SkipInsertMessage = "Data was populated, skipping insert"

// InsertIfEmpty inserts records only when COUNT(row_number) is zero.
// A populated table is not an error: the outcome reports Skipped.
func InsertIfEmpty(ctx context.Context, table reviewbench.ReviewTable, records []reviewbench.ReviewRecord, method reviewbench.InsertMethod, stdout io.Writer, logger reviewbench.Logger) (*reviewbench.InsertOutcome, error) {
	existing, err := table.CountRows(ctx)
	if err != nil {
		return nil, err
	}

	if existing > 0 {
		fmt.Fprintln(stdout, SkipInsertMessage)
		return &reviewbench.InsertOutcome{Skipped: true, ExistingRows: existing}, nil
	}

	start := time.Now()
	inserted, err := table.Insert(ctx, records, method)
	if err != nil {
		return nil, err
	}
	logger.Verbose("Inserted %d rows into %s using %s", inserted, table.Name(), method)

	return &reviewbench.InsertOutcome{Inserted: inserted, Elapsed: time.Since(start)}, nil
}
