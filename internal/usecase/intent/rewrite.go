package intent

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/matchdex/internal/domain/criteria"
	"github.com/kailas-cloud/matchdex/internal/domain/synonyms"
)

const (
	// maxSkillExpansions caps synonym-expanded skill terms in the rewritten query.
	maxSkillExpansions = 8
	// maxExtraTerms caps loose extra tokens in the rewritten query.
	maxExtraTerms = 6
	// fallbackQuery still enables a best-effort similarity search when the
	// criteria and the raw query are both empty.
	fallbackQuery = "relevant experience and skills"
)

// Rewriter expands structured criteria into an enriched retrieval string.
type Rewriter struct {
	table *synonyms.Table
}

// NewRewriter creates a query rewriter over a synonym table.
func NewRewriter(table *synonyms.Table) *Rewriter {
	if table == nil {
		table = synonyms.Default()
	}
	return &Rewriter{table: table}
}

// Rewrite builds a compact pipe-delimited string of labeled clauses, skipping
// empty fields, ending with the raw query. With no clauses it returns the raw
// query verbatim, or a generic fallback when that too is empty.
func (r *Rewriter) Rewrite(c *criteria.Criteria) string {
	include := criteria.NormalizeTerms(c.IncludeTerms)

	var skillTerms []string
	for _, s := range include {
		skillTerms = append(skillTerms, r.table.Expand(s)...)
	}
	skillTerms = capTerms(criteria.NormalizeTerms(skillTerms), maxSkillExpansions)

	var parts []string
	appendClause := func(label string, terms []string) {
		terms = criteria.NormalizeTerms(terms)
		if len(terms) > 0 {
			parts = append(parts, label+": "+strings.Join(terms, ", "))
		}
	}

	appendClause("required", c.RequiredTerms)
	appendClause("optional", c.OptionalTerms)
	appendClause("skills", skillTerms)
	appendClause("excluded", c.ExcludeTerms)
	appendClause("locations", c.Locations)
	if c.MinYears != nil {
		parts = append(parts, fmt.Sprintf("TotalExperienceYears: >= %d", *c.MinYears))
	}
	if c.RecentYears != nil && *c.RecentYears > 0 {
		parts = append(parts, fmt.Sprintf("recent experience window: %d years", *c.RecentYears))
	}
	if c.ExclusiveMode && len(include) > 0 {
		parts = append(parts, "primary skills only: "+strings.Join(include, ", "))
	}
	appendClause("titles", c.Titles)
	appendClause("seniority", c.Seniority)
	appendClause("domains", c.Domains)
	appendClause("extras", capTerms(criteria.NormalizeTerms(c.Extras), maxExtraTerms))

	raw := strings.TrimSpace(c.RawQuery)
	if len(parts) == 0 {
		if raw != "" {
			return raw
		}
		return fallbackQuery
	}
	if raw != "" {
		parts = append(parts, raw)
	}
	return strings.Join(parts, " | ")
}
