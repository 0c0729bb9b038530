package batched

import "fmt"

// IterationLimitError indicates the exchange loop hit its hard cap without
// the backend producing a final answer. Partial output is never returned.
type IterationLimitError struct {
	Iterations     int
	BatchesFetched int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("no final answer after %d iterations (%d batches fetched)", e.Iterations, e.BatchesFetched)
}
