// Package retrieve turns similarity-search output into a thresholded,
// normalized hit list, guaranteeing a non-empty result whenever the index
// held any chunks at all.
package retrieve

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain/scoring"
)

// Service retrieves and normalizes document chunks.
type Service struct {
	index      Index
	queryRetry bool
	logger     *zap.Logger
}

// New creates a retrieval service.
func New(index Index, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, logger: logger}
}

// WithQueryRetry enables a second retrieval pass with a normalized query when
// the first pass produces nothing above the threshold.
func (s *Service) WithQueryRetry() *Service {
	s.queryRetry = true
	return s
}

// Retrieve returns the document's hits sorted best-first, filtered to
// relevance >= threshold. If the filter empties the set, the top-k unfiltered
// hits are returned instead: an empty context degrades downstream answers
// worse than a low-confidence one. An index lookup failure yields an empty
// result — the caller treats the document as unavailable, not as a hard
// error.
func (s *Service) Retrieve(
	ctx context.Context, documentID, query string, k int, threshold float64,
) []Hit {
	hits, all := s.pass(ctx, documentID, query, k, threshold)
	if len(hits) > 0 {
		return hits
	}

	if s.queryRetry && len(all) > 0 {
		if norm := NormalizeQuery(query); norm != "" && norm != query {
			retried, _ := s.pass(ctx, documentID, norm, k, threshold)
			if len(retried) > 0 {
				return retried
			}
		}
	}

	// Fallback: nothing cleared the bar, return the best of what exists.
	return all
}

// pass runs one search+normalize+filter round. Returns the thresholded hits
// and the full sorted set for fallback.
func (s *Service) pass(
	ctx context.Context, documentID, query string, k int, threshold float64,
) (filtered, all []Hit) {
	chunks, err := s.index.Search(ctx, documentID, query, k)
	if err != nil {
		s.logger.Warn("index lookup failed, treating document as unavailable",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
		return nil, nil
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	raw := make([]float64, len(chunks))
	for i, c := range chunks {
		raw[i] = c.RawScore
	}
	relevance := scoring.Normalize(raw, s.index.Convention())

	all = make([]Hit, len(chunks))
	for i, c := range chunks {
		all[i] = Hit{Text: c.Text, Metadata: c.Metadata, Relevance: relevance[i]}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Relevance > all[j].Relevance
	})

	for _, h := range all {
		if h.Relevance >= threshold {
			filtered = append(filtered, h)
		}
	}
	return filtered, all
}
