package app

import "ckpt-go/internal/history"

// Operation tracks a CLI invocation that may mutate project state.
// Operations are created in memory with ID=0. Only mutating commands
// persist them (giving them an auto-increment ID from the history ledger).
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string // history.StatusSuccess or history.StatusError
}

// NewOperation creates a new in-memory operation record.
func NewOperation(operation, parameters string) *Operation {
	return &Operation{
		Operation:  operation,
		Parameters: parameters,
		Status:     history.StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the ledger.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}
