// Package document holds registry records for indexed candidate documents.
package document

// Record describes one indexed document: where its chunks live and the
// display metadata the ranker attaches to results. Registry rows are
// read-only from the ranking engine's perspective.
type Record struct {
	ID         string
	Agent      string
	Title      string
	Collection string
	Keywords   []string
	UpdatedAt  int64
}
