// Package criteria holds the structured representation of a free-text
// hiring query: term sets, numeric bounds, and categorical filters.
package criteria

import "strings"

// SortBy is the requested result ordering.
type SortBy string

// Sort preference constants. Empty means unspecified.
const (
	SortRelevance  SortBy = "relevance"
	SortRecency    SortBy = "recency"
	SortExperience SortBy = "experience"
)

// IsValid checks if the sort preference is one of the supported values.
func (s SortBy) IsValid() bool {
	return s == SortRelevance || s == SortRecency || s == SortExperience
}

// RemoteMode is the requested work arrangement. Empty means unspecified.
type RemoteMode string

// Work arrangement constants.
const (
	RemoteAny    RemoteMode = "any"
	RemoteOnly   RemoteMode = "remote"
	RemoteHybrid RemoteMode = "hybrid"
	RemoteOnsite RemoteMode = "onsite"
)

// IsValid checks if the mode is one of the supported values.
func (m RemoteMode) IsValid() bool {
	return m == RemoteAny || m == RemoteOnly || m == RemoteHybrid || m == RemoteOnsite
}

// Criteria is the structured form of a free-text query. Every set defaults
// to empty and every scalar to nil/false: an all-empty Criteria is valid and
// means "no structured constraint, rank by similarity alone".
type Criteria struct {
	IncludeTerms  []string
	RequiredTerms []string
	OptionalTerms []string
	ExcludeTerms  []string

	// RequireAll makes the include set mandatory alongside RequiredTerms.
	RequireAll bool
	// ExclusiveMode marks "X only" queries that penalize unrequested skills.
	ExclusiveMode bool

	MinYears    *int
	MaxYears    *int
	RecentYears *int

	Locations []string
	Titles    []string
	Seniority []string
	Domains   []string

	// Remote, AvailabilityDays and Immediate describe work arrangement and
	// start-date constraints. They annotate results only; ranking does not
	// gate on them.
	Remote           RemoteMode
	AvailabilityDays *int
	Immediate        bool

	ResultLimit *int
	Sort        SortBy

	// Extras carries loose tokens that enrich retrieval but never gate.
	Extras []string

	// RawQuery is the original user text, retained for final-query
	// composition even when structured extraction fails entirely.
	RawQuery string
}

// IsEmpty reports whether no structured constraint is set. RawQuery is not a
// constraint and does not count.
func (c *Criteria) IsEmpty() bool {
	return len(c.IncludeTerms) == 0 &&
		len(c.RequiredTerms) == 0 &&
		len(c.OptionalTerms) == 0 &&
		len(c.ExcludeTerms) == 0 &&
		!c.RequireAll && !c.ExclusiveMode &&
		c.MinYears == nil && c.MaxYears == nil && c.RecentYears == nil &&
		len(c.Locations) == 0 && len(c.Titles) == 0 &&
		len(c.Seniority) == 0 && len(c.Domains) == 0 &&
		c.Remote == "" && c.AvailabilityDays == nil && !c.Immediate &&
		c.ResultLimit == nil && c.Sort == "" &&
		len(c.Extras) == 0
}

// EffectiveRequired returns the set of terms a candidate must exhibit:
// RequiredTerms always, plus IncludeTerms when RequireAll is set.
// Order-preserving, deduplicated.
func (c *Criteria) EffectiveRequired() []string {
	if !c.RequireAll {
		return NormalizeTerms(c.RequiredTerms)
	}
	merged := make([]string, 0, len(c.RequiredTerms)+len(c.IncludeTerms))
	merged = append(merged, c.RequiredTerms...)
	merged = append(merged, c.IncludeTerms...)
	return NormalizeTerms(merged)
}

// NormalizeTerms lower-cases, trims, and deduplicates terms, preserving
// first-seen order and dropping empties.
func NormalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
