package retrieve

import (
	"context"

	"github.com/kailas-cloud/matchdex/internal/domain/scoring"
)

// Chunk is a retrieved unit of document content with a backend-native score.
type Chunk struct {
	Text     string
	Metadata map[string]string
	RawScore float64
}

// Hit is a chunk with its score normalized onto [0, 1], higher is better.
type Hit struct {
	Text      string
	Metadata  map[string]string
	Relevance float64
}

// Index is the similarity-search collaborator: the k nearest content chunks
// of one document for a query. Must be idempotent and side-effect-free.
type Index interface {
	Search(ctx context.Context, documentID, query string, k int) ([]Chunk, error)

	// Convention declares the score scale Search emits. Backends that cannot
	// declare one return scoring.Auto and accept batch sniffing.
	Convention() scoring.Convention
}
