package intent

import (
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/matchdex/internal/domain/criteria"
)

const maxFallbackKeywords = 10

const criteriaSystemPrompt = `Extract structured hiring criteria from the user text. Return STRICT JSON only.
Schema: {
  "include_skills": string[],
  "required_skills": string[],
  "optional_skills": string[],
  "exclude_skills": string[],
  "require_all": boolean,
  "must_only": boolean,
  "min_years": integer|null,
  "max_years": integer|null,
  "recent_years": integer|null,
  "locations": string[],
  "titles": string[],
  "seniority_levels": string[],
  "domains": string[],
  "remote_mode": "any"|"remote"|"hybrid"|"onsite"|null,
  "availability_days": integer|null,
  "immediate": boolean|null,
  "top_n": integer|null,
  "sort_by": "relevance"|"experience"|"recency"|null,
  "extras": string[]
}
All arrays and strings must be lower-case; do not guess facts, use null/[] when absent.`

const keywordSystemPrompt = `Extract up to 10 lower-case search keywords from the user text. ` +
	`Return STRICT JSON only: {"keywords": string[]}. No commentary.`

// parseCriteriaJSON decodes a completion response into Criteria. The payload
// is untrusted: unrecognized fields are ignored, fields of the wrong type are
// dropped rather than rejecting the whole object.
func parseCriteriaJSON(text string) (criteria.Criteria, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return criteria.Criteria{}, false
	}

	c := criteria.Criteria{
		IncludeTerms:     termList(raw, "include_skills"),
		RequiredTerms:    termList(raw, "required_skills"),
		OptionalTerms:    termList(raw, "optional_skills"),
		ExcludeTerms:     termList(raw, "exclude_skills"),
		RequireAll:       boolField(raw, "require_all"),
		ExclusiveMode:    boolField(raw, "must_only"),
		MinYears:         intField(raw, "min_years"),
		MaxYears:         intField(raw, "max_years"),
		RecentYears:      intField(raw, "recent_years"),
		Locations:        termList(raw, "locations"),
		Titles:           termList(raw, "titles"),
		Seniority:        termList(raw, "seniority_levels"),
		Domains:          termList(raw, "domains"),
		AvailabilityDays: intField(raw, "availability_days"),
		Immediate:        boolField(raw, "immediate"),
		ResultLimit:      intField(raw, "top_n"),
		Extras:           capTerms(termList(raw, "extras"), maxFallbackKeywords),
	}
	if s, ok := raw["remote_mode"].(string); ok {
		mode := criteria.RemoteMode(strings.ToLower(s))
		if mode.IsValid() {
			c.Remote = mode
		}
	}
	if s, ok := raw["sort_by"].(string); ok {
		sort := criteria.SortBy(strings.ToLower(s))
		if sort.IsValid() {
			c.Sort = sort
		}
	}
	return c, true
}

// parseKeywords decodes the narrow keyword response: either
// {"keywords": [...]}, a bare JSON array, or plain comma/newline-separated
// text from providers ignoring the JSON instruction.
func parseKeywords(text string, limit int) []string {
	cleaned := stripFences(text)

	var wrapped struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err == nil && len(wrapped.Keywords) > 0 {
		return capTerms(criteria.NormalizeTerms(wrapped.Keywords), limit)
	}

	var bare []string
	if err := json.Unmarshal([]byte(cleaned), &bare); err == nil {
		return capTerms(criteria.NormalizeTerms(bare), limit)
	}

	split := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	return capTerms(criteria.NormalizeTerms(split), limit)
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func termList(raw map[string]any, key string) []string {
	items, ok := raw[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return criteria.NormalizeTerms(out)
}

func boolField(raw map[string]any, key string) bool {
	b, _ := raw[key].(bool)
	return b
}

func intField(raw map[string]any, key string) *int {
	f, ok := raw[key].(float64)
	if !ok || f != float64(int(f)) || f < 0 {
		return nil
	}
	n := int(f)
	return &n
}

func capTerms(terms []string, limit int) []string {
	if len(terms) > limit {
		return terms[:limit]
	}
	return terms
}
