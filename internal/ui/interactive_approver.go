package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// InteractiveApprover asks the user to type the table name before it is cleared.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates an InteractiveApprover reading stdin.
func NewInteractiveApprover(verbose bool) reviewbench.Approver {
	return &InteractiveApprover{verbose: verbose, input: os.Stdin, output: os.Stderr}
}

func (a *InteractiveApprover) RequestApproval(ctx context.Context, tableName string) (bool, error) {
	fmt.Fprintf(a.output, "\n⚠️  WARNING: --clean_table will DELETE every row of table '%s'\n", tableName)
	fmt.Fprintln(a.output, "Existing rows will be permanently deleted before the CSV is reloaded.")
	fmt.Fprintf(a.output, "\nTo confirm, type the table name '%s' and press Enter: ", tableName)

	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	// the read blocks until a newline; ctx cancellation abandons it
	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == tableName {
			fmt.Fprintln(a.output, "✓ Confirmed. Clearing table...")
			return true, nil
		}
		fmt.Fprintf(a.output, "✗ Input '%s' does not match table name '%s'. Operation cancelled.\n", input, tableName)
		return false, nil
	}
}

var _ reviewbench.Approver = (*InteractiveApprover)(nil)
