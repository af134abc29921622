package rank

import (
	"context"

	"github.com/kailas-cloud/matchdex/internal/domain/document"
	"github.com/kailas-cloud/matchdex/internal/usecase/retrieve"
)

// Retriever returns a document's normalized hits, best first. An empty slice
// means the document is unavailable or its index held no chunks.
type Retriever interface {
	Retrieve(ctx context.Context, documentID, query string, k int, threshold float64) []retrieve.Hit
}

// DocumentReader resolves registry metadata for result shaping. Optional:
// a nil reader leaves results with identifiers only.
type DocumentReader interface {
	Get(ctx context.Context, documentID string) (document.Record, error)
}
