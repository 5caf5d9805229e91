package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// ForcedApprover approves clearing the table without asking. With a non-zero
// countdown it prints a warning and waits, giving the user a chance to press Ctrl+C.
type ForcedApprover struct {
	verbose   bool
	countdown time.Duration
	output    io.Writer
	sleepFn   func(time.Duration)
}

// NewForcedApprover creates a ForcedApprover that waits countdown before approving.
func NewForcedApprover(verbose bool, countdown time.Duration) reviewbench.Approver {
	return &ForcedApprover{
		verbose:   verbose,
		countdown: countdown,
		output:    os.Stderr,
		sleepFn:   time.Sleep,
	}
}

func (a *ForcedApprover) RequestApproval(ctx context.Context, tableName string) (bool, error) {
	seconds := int(a.countdown.Seconds())
	if seconds <= 0 {
		if a.verbose {
			fmt.Fprintf(a.output, "Clearing table %s (forced)\n", tableName)
		}
		return true, nil
	}

	fmt.Fprintf(a.output, "\nDANGER: every row of table '%s' will be deleted.\n", tableName)
	for i := seconds; i > 0; i-- {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(a.output)
			return false, err
		}
		fmt.Fprintf(a.output, "\rDeleting in: %d seconds... (Press Ctrl+C to cancel)", i)
		a.sleepFn(time.Second)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with clearing %s...                              \n", tableName)
	return true, nil
}

var _ reviewbench.Approver = (*ForcedApprover)(nil)
