// Package registry stores candidate document records in Redis hashes:
// the document-to-collection mapping and display metadata the ranking
// engine reads per agent.
package registry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/document"
)

// store is the consumer interface for document records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

const defaultKeyPrefix = "matchdex:doc:"

// Repo implements document record storage over a hash store.
type Repo struct {
	store  store
	prefix string
	now    func() time.Time
}

// New creates a registry repository.
func New(s store) *Repo {
	return &Repo{store: s, prefix: defaultKeyPrefix, now: time.Now}
}

// WithKeyPrefix overrides the key namespace.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

// Upsert stores or refreshes a document record, stamping UpdatedAt.
func (r *Repo) Upsert(ctx context.Context, rec document.Record) error {
	if rec.ID == "" || rec.Agent == "" {
		return fmt.Errorf("document id and agent are required")
	}
	rec.UpdatedAt = r.now().Unix()

	if err := r.store.HSet(ctx, r.key(rec.Agent, rec.ID), recordToHash(rec)); err != nil {
		return fmt.Errorf("hset document %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves one document record.
func (r *Repo) Get(ctx context.Context, agent, id string) (document.Record, error) {
	m, err := r.store.HGetAll(ctx, r.key(agent, id))
	if err != nil {
		return document.Record{}, fmt.Errorf("hgetall document %s: %w", id, err)
	}
	if len(m) == 0 {
		return document.Record{}, domain.ErrDocumentNotFound
	}
	return recordFromHash(m)
}

// List returns all document records for an agent, most recently updated
// first.
func (r *Repo) List(ctx context.Context, agent string) ([]document.Record, error) {
	keys, err := r.store.Scan(ctx, r.key(agent, "*"))
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	if len(keys) == 0 {
		return []document.Record{}, nil
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi documents: %w", err)
	}

	records := make([]document.Record, 0, len(rows))
	for i, m := range rows {
		if len(m) == 0 {
			continue
		}
		rec, err := recordFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse document %s: %w", keys[i], err)
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UpdatedAt != records[j].UpdatedAt {
			return records[i].UpdatedAt > records[j].UpdatedAt
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// Delete removes a document record.
func (r *Repo) Delete(ctx context.Context, agent, id string) error {
	if err := r.store.Del(ctx, r.key(agent, id)); err != nil {
		return fmt.Errorf("del document %s: %w", id, err)
	}
	return nil
}

func (r *Repo) key(agent, id string) string {
	return r.prefix + agent + ":" + id
}

// AgentReader binds a Repo to one agent, satisfying the ranker's
// DocumentReader contract.
type AgentReader struct {
	repo  *Repo
	agent string
}

// NewAgentReader creates a per-agent document reader.
func NewAgentReader(repo *Repo, agent string) *AgentReader {
	return &AgentReader{repo: repo, agent: agent}
}

// Get retrieves one document record for the bound agent.
func (a *AgentReader) Get(ctx context.Context, id string) (document.Record, error) {
	return a.repo.Get(ctx, a.agent, id)
}
