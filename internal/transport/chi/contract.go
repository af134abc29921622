package chi

import (
	"context"

	matchdex "github.com/kailas-cloud/matchdex"
	"github.com/kailas-cloud/matchdex/internal/domain/document"
)

// Engine is the consumer interface over the ranking facade (ISP).
type Engine interface {
	Rank(ctx context.Context, agent string, candidateIDs []string, query string) (matchdex.RankOutput, error)
	RankAll(ctx context.Context, agent, query string) (matchdex.RankOutput, error)
	AddDocument(ctx context.Context, in matchdex.DocumentInput) error
	Documents(ctx context.Context, agent string) ([]document.Record, error)
	RemoveDocument(ctx context.Context, agent, id string) error
}

// Pinger reports backing store liveness for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
