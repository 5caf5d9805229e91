package reviewbench

import "context"

// Approver confirms destructive operations before they run.
//
// Implementations:
//   - ForcedApprover: approves immediately (--force or non-interactive)
//   - InteractiveApprover: asks the user to type the table name
type Approver interface {
	// RequestApproval asks for confirmation before deleting every row of tableName.
	// Returns false without error when the user declines.
	RequestApproval(ctx context.Context, tableName string) (bool, error)
}
