// Package index stores document chunks in an embedded chromem-go vector
// database, one collection per document, and serves similarity search to
// the retrieval layer.
package index

import (
	"context"
	"fmt"
	"os"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/scoring"
	"github.com/kailas-cloud/matchdex/internal/usecase/retrieve"
)

// Embedder is the consumer interface for turning text into vectors (ISP).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds vector store settings.
type Config struct {
	Path       string             `yaml:"path"`
	Compress   bool               `yaml:"compress"`
	Convention scoring.Convention `yaml:"convention"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "./data/index"
	}
	if c.Convention == "" {
		c.Convention = scoring.Auto
	}
}

// Chunk is one unit of document text submitted for indexing.
type Chunk struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Store implements chunk indexing and similarity search over chromem-go.
type Store struct {
	db       *chromem.DB
	embedder Embedder
	conv     scoring.Convention
	logger   *zap.Logger
}

// NewStore opens (or creates) the persistent vector database.
func NewStore(cfg Config, embedder Embedder, logger *zap.Logger) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()

	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory %s: %w", cfg.Path, err)
	}

	db, err := chromem.NewPersistentDB(cfg.Path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("open vector database: %w", err)
	}

	logger.Info("vector index opened",
		zap.String("path", cfg.Path),
		zap.Bool("compress", cfg.Compress),
	)

	return &Store{db: db, embedder: embedder, conv: cfg.Convention, logger: logger}, nil
}

func (s *Store) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.Embed(ctx, text)
	}
}

// AddChunks indexes the chunks of one document, replacing nothing: chunks
// with the same ID overwrite, new IDs accumulate.
func (s *Store) AddChunks(ctx context.Context, documentID string, chunks []Chunk) ([]string, error) {
	if documentID == "" {
		return nil, fmt.Errorf("document id is required")
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index")
	}

	collection, err := s.db.GetOrCreateCollection(collectionName(documentID), nil, s.embeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("create collection for document %s: %w", documentID, err)
	}

	docs := make([]chromem.Document, len(chunks))
	ids := make([]string, len(chunks))
	for i, ch := range chunks {
		id := ch.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", documentID, i)
		}
		ids[i] = id

		embedding, err := s.embedder.Embed(ctx, ch.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: embed chunk %s: %v", domain.ErrEmbeddingProviderError, id, err)
		}

		docs[i] = chromem.Document{
			ID:        id,
			Content:   ch.Text,
			Metadata:  ch.Metadata,
			Embedding: embedding,
		}
	}

	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return nil, fmt.Errorf("index chunks for document %s: %w", documentID, err)
	}

	s.logger.Debug("indexed document chunks",
		zap.String("document_id", documentID),
		zap.Int("count", len(chunks)),
	)
	return ids, nil
}

// Search returns up to k chunks of one document ranked by similarity to
// the query. A document with no collection is unavailable; an empty
// collection yields no chunks and no error.
func (s *Store) Search(ctx context.Context, documentID, query string, k int) ([]retrieve.Chunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}

	collection := s.db.GetCollection(collectionName(documentID), s.embeddingFunc())
	if collection == nil {
		return nil, fmt.Errorf("%w: document %s has no index", domain.ErrIndexUnavailable, documentID)
	}

	count := collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query document %s: %w", documentID, err)
	}

	chunks := make([]retrieve.Chunk, len(results))
	for i, r := range results {
		chunks[i] = retrieve.Chunk{
			Text:     r.Content,
			Metadata: r.Metadata,
			RawScore: float64(r.Similarity),
		}
	}
	return chunks, nil
}

// Convention declares how raw scores should be read. chromem reports
// cosine similarity, which for the embedding models in use lands in
// [0, 1]; the default Auto passes those through and repairs strays.
func (s *Store) Convention() scoring.Convention {
	return s.conv
}

// DeleteDocument drops a document's chunk collection.
func (s *Store) DeleteDocument(_ context.Context, documentID string) error {
	if err := s.db.DeleteCollection(collectionName(documentID)); err != nil {
		return fmt.Errorf("delete collection for document %s: %w", documentID, err)
	}
	return nil
}

// collectionName maps a document ID onto chromem's naming rules:
// 3-63 characters from [a-zA-Z0-9._-], so every ID gets a stable prefix
// and invalid runes become dashes.
func collectionName(documentID string) string {
	var b strings.Builder
	b.WriteString("doc-")
	for _, r := range documentID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	name := b.String()
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}
