// Package matchdex ranks candidate documents against free-form recruiter
// queries: criteria extraction, synonym-aware query rewriting, per-document
// retrieval and gated scoring behind one facade.
package matchdex

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/candidate"
	"github.com/kailas-cloud/matchdex/internal/domain/criteria"
	"github.com/kailas-cloud/matchdex/internal/domain/document"
	"github.com/kailas-cloud/matchdex/internal/repository/index"
	"github.com/kailas-cloud/matchdex/internal/repository/registry"
	"github.com/kailas-cloud/matchdex/internal/usecase/intent"
	"github.com/kailas-cloud/matchdex/internal/usecase/rank"
)

// Engine composes criteria extraction, query rewriting, and candidate
// ranking over a document registry and a vector index.
type Engine struct {
	extractor *intent.Extractor
	rewriter  *intent.Rewriter
	ranker    *rank.Service
	docs      *registry.Repo
	index     *index.Store
	logger    *zap.Logger
}

// ChunkInput is one unit of document text to index.
type ChunkInput struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// DocumentInput describes one document to register and index.
type DocumentInput struct {
	ID         string
	Agent      string
	Title      string
	Collection string
	Keywords   []string
	Chunks     []ChunkInput
}

// RankOutput carries the ranked candidates together with the criteria and
// rewritten query that produced them.
type RankOutput struct {
	Results  []candidate.Result
	Criteria criteria.Criteria
	Query    string
}

// NewEngine creates the ranking engine facade.
func NewEngine(
	extractor *intent.Extractor, rewriter *intent.Rewriter, ranker *rank.Service,
	docs *registry.Repo, idx *index.Store, logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		extractor: extractor,
		rewriter:  rewriter,
		ranker:    ranker,
		docs:      docs,
		index:     idx,
		logger:    logger,
	}
}

// Close releases the ranking worker pool.
func (e *Engine) Close() {
	e.ranker.Close()
}

// Rank extracts criteria from the query, rewrites it for retrieval, and
// ranks the given candidate documents for one agent.
func (e *Engine) Rank(
	ctx context.Context, agent string, candidateIDs []string, query string,
) (RankOutput, error) {
	crit := e.extractor.Extract(ctx, query)
	rewritten := e.rewriter.Rewrite(&crit)

	e.logger.Debug("ranking candidates",
		zap.String("agent", agent),
		zap.Int("candidates", len(candidateIDs)),
		zap.String("query", rewritten),
	)

	results, err := e.ranker.Rank(ctx, candidateIDs, rewritten, &crit)
	if err != nil {
		return RankOutput{}, err
	}

	return RankOutput{
		Results:  e.attachMetadata(ctx, agent, results),
		Criteria: crit,
		Query:    rewritten,
	}, nil
}

// RankAll ranks every document registered for the agent.
func (e *Engine) RankAll(ctx context.Context, agent, query string) (RankOutput, error) {
	records, err := e.docs.List(ctx, agent)
	if err != nil {
		return RankOutput{}, fmt.Errorf("list documents for agent %s: %w", agent, err)
	}
	if len(records) == 0 {
		return RankOutput{}, domain.ErrNoCandidates
	}

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return e.Rank(ctx, agent, ids, query)
}

// AddDocument registers a document and indexes its chunks.
func (e *Engine) AddDocument(ctx context.Context, in DocumentInput) error {
	rec := document.Record{
		ID:         in.ID,
		Agent:      in.Agent,
		Title:      in.Title,
		Collection: in.Collection,
		Keywords:   in.Keywords,
	}
	if err := e.docs.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("register document: %w", err)
	}

	if len(in.Chunks) == 0 {
		return nil
	}

	chunks := make([]index.Chunk, len(in.Chunks))
	for i, ch := range in.Chunks {
		chunks[i] = index.Chunk{ID: ch.ID, Text: ch.Text, Metadata: ch.Metadata}
	}
	if _, err := e.index.AddChunks(ctx, in.ID, chunks); err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	return nil
}

// Documents lists the registry records for one agent, newest first.
func (e *Engine) Documents(ctx context.Context, agent string) ([]document.Record, error) {
	return e.docs.List(ctx, agent)
}

// RemoveDocument drops a document from the registry and its index.
func (e *Engine) RemoveDocument(ctx context.Context, agent, id string) error {
	if _, err := e.docs.Get(ctx, agent, id); err != nil {
		return err
	}
	if err := e.docs.Delete(ctx, agent, id); err != nil {
		return err
	}
	if err := e.index.DeleteDocument(ctx, id); err != nil {
		// Registry entry is gone; an orphaned collection is only disk waste.
		e.logger.Warn("delete document index", zap.String("document_id", id), zap.Error(err))
	}
	return nil
}

// attachMetadata rebuilds results with registry titles, collections and
// keywords for the agent. Unregistered documents pass through untouched.
func (e *Engine) attachMetadata(
	ctx context.Context, agent string, results []candidate.Result,
) []candidate.Result {
	if agent == "" {
		return results
	}
	out := make([]candidate.Result, len(results))
	for i := range results {
		res := &results[i]
		rec, err := e.docs.Get(ctx, agent, res.DocumentID())
		if err != nil {
			if !errors.Is(err, domain.ErrDocumentNotFound) {
				e.logger.Debug("registry lookup failed",
					zap.String("document_id", res.DocumentID()), zap.Error(err))
			}
			out[i] = results[i]
			continue
		}
		out[i] = candidate.New(
			res.DocumentID(), res.Score(), rec.Title, res.Highlight(),
			rec.Collection, rec.Keywords, res.Metadata(),
		)
	}
	return out
}
