// Package rank runs retrieval across a candidate set and produces the final
// ranked list: hard gates exclude, soft boosts adjust, similarity decides
// the rest.
package rank

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/candidate"
	"github.com/kailas-cloud/matchdex/internal/domain/criteria"
	"github.com/kailas-cloud/matchdex/internal/domain/scoring"
	"github.com/kailas-cloud/matchdex/internal/domain/synonyms"
	"github.com/kailas-cloud/matchdex/internal/metrics"
	"github.com/kailas-cloud/matchdex/internal/usecase/retrieve"
)

// Ranking parameter defaults.
const (
	DefaultTopK = 5
	// DefaultBaseThreshold is the relevance floor a candidate's best chunk
	// must clear to stay in the running.
	DefaultBaseThreshold = 0.30
	// gateChunks is how many top chunks feed the gate/boost text.
	gateChunks = 3
	// DefaultParallelism bounds concurrent per-candidate retrievals.
	DefaultParallelism = 4
)

// Config holds ranking parameters.
type Config struct {
	TopK          int
	BaseThreshold float64
	Parallelism   int
}

// ApplyDefaults fills unset parameters.
func (c *Config) ApplyDefaults() {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.BaseThreshold <= 0 {
		c.BaseThreshold = DefaultBaseThreshold
	}
	if c.Parallelism <= 0 {
		c.Parallelism = DefaultParallelism
	}
}

// Service ranks candidate documents against a query and criteria.
type Service struct {
	retriever Retriever
	docs      DocumentReader
	table     *synonyms.Table
	weights   scoring.Weights
	cfg       Config
	pool      *ants.Pool
	logger    *zap.Logger
}

// New creates a ranking service. docs may be nil.
func New(
	retriever Retriever, docs DocumentReader, table *synonyms.Table,
	weights scoring.Weights, cfg Config, logger *zap.Logger,
) (*Service, error) {
	if table == nil {
		table = synonyms.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	weights.ApplyDefaults()
	cfg.ApplyDefaults()

	pool, err := ants.NewPool(cfg.Parallelism)
	if err != nil {
		return nil, err
	}

	return &Service{
		retriever: retriever,
		docs:      docs,
		table:     table,
		weights:   weights,
		cfg:       cfg,
		pool:      pool,
		logger:    logger,
	}, nil
}

// Close releases the worker pool.
func (s *Service) Close() {
	s.pool.Release()
}

// Rank retrieves every candidate in parallel, gates and boosts per the
// criteria, and returns surviving candidates sorted by final score
// descending. Ties keep the insertion order of candidateIDs. A per-candidate
// failure skips that candidate only; domain.ErrNoCandidates is returned when
// every candidate was unavailable.
func (s *Service) Rank(
	ctx context.Context, candidateIDs []string, query string, crit *criteria.Criteria,
) ([]candidate.Result, error) {
	if crit == nil {
		crit = &criteria.Criteria{}
	}
	if len(candidateIDs) == 0 {
		metrics.RankRequestsTotal.WithLabelValues("no_candidates").Inc()
		return nil, domain.ErrNoCandidates
	}
	metrics.RankCandidatesEvaluated.Observe(float64(len(candidateIDs)))

	type outcome struct {
		result    candidate.Result
		kept      bool
		hadChunks bool
	}
	outcomes := make([]outcome, len(candidateIDs))

	var wg sync.WaitGroup
	for i, id := range candidateIDs {
		i, id := i, id
		wg.Add(1)
		task := func() {
			defer wg.Done()
			hits := s.retriever.Retrieve(ctx, id, query, s.cfg.TopK, s.cfg.BaseThreshold)
			if len(hits) == 0 {
				return
			}
			outcomes[i].hadChunks = true
			if res, ok := s.score(ctx, id, hits, crit); ok {
				outcomes[i] = outcome{result: res, kept: true, hadChunks: true}
			}
		}
		if err := s.pool.Submit(task); err != nil {
			// Pool exhausted or released; degrade to inline execution.
			task()
		}
	}
	wg.Wait()

	results := make([]candidate.Result, 0, len(outcomes))
	anyChunks := false
	for _, o := range outcomes {
		anyChunks = anyChunks || o.hadChunks
		if o.kept {
			results = append(results, o.result)
		}
	}
	if !anyChunks {
		metrics.RankRequestsTotal.WithLabelValues("no_candidates").Inc()
		return nil, domain.ErrNoCandidates
	}
	metrics.RankRequestsTotal.WithLabelValues("ok").Inc()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})

	if crit.ResultLimit != nil && *crit.ResultLimit > 0 && len(results) > *crit.ResultLimit {
		results = results[:*crit.ResultLimit]
	}
	return results, nil
}

// score applies the base floor, hard gates, and soft boosts to one candidate.
func (s *Service) score(
	ctx context.Context, id string, hits []retrieve.Hit, crit *criteria.Criteria,
) (candidate.Result, bool) {
	best := hits[0].Relevance
	for _, h := range hits[1:] {
		if h.Relevance > best {
			best = h.Relevance
		}
	}
	// The retriever's fallback may hand back sub-threshold hits; the floor
	// applies to the candidate's best chunk here.
	if best < s.cfg.BaseThreshold {
		return candidate.Result{}, false
	}

	text := gateText(hits)

	for _, term := range crit.EffectiveRequired() {
		if !synonyms.ContainsTerm(text, term) {
			return candidate.Result{}, false
		}
	}
	for _, term := range criteria.NormalizeTerms(crit.ExcludeTerms) {
		if synonyms.ContainsTerm(text, term) {
			return candidate.Result{}, false
		}
	}

	final := scoring.Clamp01(best + s.boosts(text, crit))

	var (
		title      string
		collection string
		keywords   []string
	)
	if s.docs != nil {
		rec, err := s.docs.Get(ctx, id)
		if err != nil {
			s.logger.Debug("registry lookup failed, keeping bare result",
				zap.String("document_id", id), zap.Error(err))
		} else {
			title = rec.Title
			collection = rec.Collection
			keywords = rec.Keywords
		}
	}

	return candidate.New(
		id, final, title, hits[0].Text, collection, keywords, hits[0].Metadata,
	), true
}

// boosts computes the additive adjustment for a candidate's gate text.
func (s *Service) boosts(text string, crit *criteria.Criteria) float64 {
	var sum float64

	if anyTermIn(text, crit.Locations) {
		sum += s.weights.LocationBoost
	}

	if crit.ExclusiveMode && len(crit.IncludeTerms) > 0 {
		switch n := s.countExclusivityExtras(text, crit); {
		case n >= 2:
			sum -= s.weights.ExclusivityMajor
		case n == 1:
			sum -= s.weights.ExclusivityMinor
		}
	}

	var optional float64
	for _, term := range criteria.NormalizeTerms(crit.OptionalTerms) {
		if synonyms.ContainsTerm(text, term) {
			optional += s.weights.OptionalBoost
		}
	}
	if optional > s.weights.OptionalCap {
		optional = s.weights.OptionalCap
	}
	sum += optional

	if anyTermIn(text, crit.Titles) {
		sum += s.weights.TitleBoost
	}
	if anyTermIn(text, crit.Seniority) {
		sum += s.weights.SeniorityBoost
	}
	if anyTermIn(text, crit.Domains) {
		sum += s.weights.DomainBoost
	}
	return sum
}

// countExclusivityExtras counts distinct recognized-vocabulary terms present
// in the text but outside the requested skill set. Synonym expansions of the
// requested skills do not count as extras.
func (s *Service) countExclusivityExtras(text string, crit *criteria.Criteria) int {
	allowed := make(map[string]struct{})
	for _, inc := range criteria.NormalizeTerms(crit.IncludeTerms) {
		allowed[inc] = struct{}{}
		for _, syn := range s.table.Expand(inc) {
			allowed[syn] = struct{}{}
		}
	}

	extras := 0
	for _, term := range s.table.MatchTokens(text) {
		if _, ok := allowed[term]; !ok {
			extras++
		}
	}
	return extras
}

// gateText concatenates the top chunks' text, lower-cased, for term matching.
func gateText(hits []retrieve.Hit) string {
	n := len(hits)
	if n > gateChunks {
		n = gateChunks
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = hits[i].Text
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}

func anyTermIn(text string, terms []string) bool {
	for _, term := range criteria.NormalizeTerms(terms) {
		if synonyms.ContainsTerm(text, term) {
			return true
		}
	}
	return false
}
