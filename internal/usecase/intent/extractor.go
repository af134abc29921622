// Package intent turns free-text hiring queries into structured criteria
// and expands criteria back into enriched retrieval strings.
package intent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain/criteria"
	"github.com/kailas-cloud/matchdex/internal/domain/synonyms"
	"github.com/kailas-cloud/matchdex/internal/metrics"
)

// Extractor parses free text into criteria via an ordered strategy chain:
// structured completion first, then a deterministic vocabulary scan, then a
// narrow keyword completion. The first strategy that yields anything wins.
// Extract never fails: the zero Criteria (similarity-only ranking) is the
// terminal fallback.
type Extractor struct {
	completer  Completer
	table      *synonyms.Table
	logger     *zap.Logger
	strategies []strategy
}

// strategy attempts one extraction approach. ok=false means "try the next".
type strategy struct {
	name string
	try  func(ctx context.Context, query string) (criteria.Criteria, bool)
}

// NewExtractor creates a criteria extractor. completer may be nil, which
// disables the completion-backed strategies and leaves the deterministic
// vocabulary scan.
func NewExtractor(completer Completer, table *synonyms.Table, logger *zap.Logger) *Extractor {
	if table == nil {
		table = synonyms.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{completer: completer, table: table, logger: logger}
	if completer != nil {
		e.strategies = append(e.strategies, strategy{"completion", e.completionStrategy})
	}
	e.strategies = append(e.strategies, strategy{"vocabulary", e.vocabularyStrategy})
	if completer != nil {
		e.strategies = append(e.strategies, strategy{"keyword", e.keywordStrategy})
	}
	return e
}

// Extract parses a free-text query into Criteria. The raw query is always
// retained for final-query composition, whatever the strategies produce.
func (e *Extractor) Extract(ctx context.Context, query string) criteria.Criteria {
	for _, st := range e.strategies {
		if c, ok := st.try(ctx, query); ok {
			metrics.ExtractionStrategyTotal.WithLabelValues(st.name).Inc()
			c.RawQuery = query
			return c
		}
	}
	metrics.ExtractionStrategyTotal.WithLabelValues("none").Inc()
	return criteria.Criteria{RawQuery: query}
}

// completionStrategy asks for a one-shot fixed-schema JSON object.
func (e *Extractor) completionStrategy(ctx context.Context, query string) (criteria.Criteria, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return criteria.Criteria{}, false
	}

	text, err := e.completer.Complete(ctx, criteriaSystemPrompt, query, true)
	if err != nil {
		e.logger.Debug("criteria completion failed", zap.Error(err))
		return criteria.Criteria{}, false
	}

	c, ok := parseCriteriaJSON(text)
	if !ok {
		e.logger.Debug("criteria completion returned unparseable output")
		return criteria.Criteria{}, false
	}
	if c.IsEmpty() {
		// Well-formed but contentless; let the deterministic scan decide.
		return criteria.Criteria{}, false
	}
	return c, true
}

// vocabularyStrategy scans the query against the recognized skill vocabulary.
// Deterministic; populates include terms only and never synthesizes a bound,
// filter, or gate flag.
func (e *Extractor) vocabularyStrategy(_ context.Context, query string) (criteria.Criteria, bool) {
	terms := e.table.MatchTokens(query)
	if len(terms) == 0 {
		return criteria.Criteria{}, false
	}
	return criteria.Criteria{IncludeTerms: terms}, true
}

// keywordStrategy asks a second, narrower completion for up to 10 keywords
// and folds them into both the include terms and the extras bag.
func (e *Extractor) keywordStrategy(ctx context.Context, query string) (criteria.Criteria, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return criteria.Criteria{}, false
	}

	text, err := e.completer.Complete(ctx, keywordSystemPrompt, query, true)
	if err != nil {
		e.logger.Debug("keyword completion failed", zap.Error(err))
		return criteria.Criteria{}, false
	}

	keywords := parseKeywords(text, maxFallbackKeywords)
	if len(keywords) == 0 {
		return criteria.Criteria{}, false
	}
	return criteria.Criteria{IncludeTerms: keywords, Extras: keywords}, true
}
