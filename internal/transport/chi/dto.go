package chi

import (
	"math"

	matchdex "github.com/kailas-cloud/matchdex"
	"github.com/kailas-cloud/matchdex/internal/domain/candidate"
	"github.com/kailas-cloud/matchdex/internal/domain/criteria"
	"github.com/kailas-cloud/matchdex/internal/domain/document"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type rankRequest struct {
	Agent        string   `json:"agent"`
	CandidateIDs []string `json:"candidate_ids,omitempty"`
	Query        string   `json:"query"`
}

type rankResponse struct {
	Query    string      `json:"query"`
	Criteria criteriaDTO `json:"criteria"`
	Results  []matchDTO  `json:"results"`
	Total    int         `json:"total"`
	Message  string      `json:"message,omitempty"`
}

type criteriaDTO struct {
	IncludeTerms     []string `json:"include_terms,omitempty"`
	RequiredTerms    []string `json:"required_terms,omitempty"`
	OptionalTerms    []string `json:"optional_terms,omitempty"`
	ExcludeTerms     []string `json:"exclude_terms,omitempty"`
	RequireAll       bool     `json:"require_all,omitempty"`
	ExclusiveMode    bool     `json:"exclusive_mode,omitempty"`
	MinYears         *int     `json:"min_years,omitempty"`
	MaxYears         *int     `json:"max_years,omitempty"`
	RecentYears      *int     `json:"recent_years,omitempty"`
	Locations        []string `json:"locations,omitempty"`
	Titles           []string `json:"titles,omitempty"`
	Seniority        []string `json:"seniority,omitempty"`
	Domains          []string `json:"domains,omitempty"`
	RemoteMode       string   `json:"remote_mode,omitempty"`
	AvailabilityDays *int     `json:"availability_days,omitempty"`
	Immediate        bool     `json:"immediate,omitempty"`
	ResultLimit      *int     `json:"result_limit,omitempty"`
	Sort             string   `json:"sort,omitempty"`
	Extras           []string `json:"extras,omitempty"`
}

type matchDTO struct {
	DocumentID   string            `json:"document_id"`
	Score        float64           `json:"score"`
	ScorePercent float64           `json:"score_percent"`
	Title        string            `json:"title,omitempty"`
	Highlight    string            `json:"highlight,omitempty"`
	Collection   string            `json:"collection,omitempty"`
	Keywords     []string          `json:"keywords,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type chunkDTO struct {
	ID       string            `json:"id,omitempty"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type upsertDocumentRequest struct {
	ID         string     `json:"id"`
	Title      string     `json:"title,omitempty"`
	Collection string     `json:"collection,omitempty"`
	Keywords   []string   `json:"keywords,omitempty"`
	Chunks     []chunkDTO `json:"chunks,omitempty"`
}

type documentDTO struct {
	ID         string   `json:"id"`
	Agent      string   `json:"agent"`
	Title      string   `json:"title,omitempty"`
	Collection string   `json:"collection,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	UpdatedAt  int64    `json:"updated_at"`
}

type documentListResponse struct {
	Items []documentDTO `json:"items"`
	Total int           `json:"total"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func criteriaToDTO(c criteria.Criteria) criteriaDTO {
	return criteriaDTO{
		IncludeTerms:     c.IncludeTerms,
		RequiredTerms:    c.RequiredTerms,
		OptionalTerms:    c.OptionalTerms,
		ExcludeTerms:     c.ExcludeTerms,
		RequireAll:       c.RequireAll,
		ExclusiveMode:    c.ExclusiveMode,
		MinYears:         c.MinYears,
		MaxYears:         c.MaxYears,
		RecentYears:      c.RecentYears,
		Locations:        c.Locations,
		Titles:           c.Titles,
		Seniority:        c.Seniority,
		Domains:          c.Domains,
		RemoteMode:       string(c.Remote),
		AvailabilityDays: c.AvailabilityDays,
		Immediate:        c.Immediate,
		ResultLimit:      c.ResultLimit,
		Sort:             string(c.Sort),
		Extras:           c.Extras,
	}
}

func matchToDTO(r *candidate.Result) matchDTO {
	return matchDTO{
		DocumentID:   r.DocumentID(),
		Score:        r.Score(),
		ScorePercent: math.Round(r.Score()*1000) / 10,
		Title:        r.Title(),
		Highlight:    r.Highlight(),
		Collection:   r.Collection(),
		Keywords:     r.Keywords(),
		Metadata:     r.Metadata(),
	}
}

func rankOutputToResponse(out matchdex.RankOutput) rankResponse {
	results := make([]matchDTO, len(out.Results))
	for i := range out.Results {
		results[i] = matchToDTO(&out.Results[i])
	}
	return rankResponse{
		Query:    out.Query,
		Criteria: criteriaToDTO(out.Criteria),
		Results:  results,
		Total:    len(results),
	}
}

func documentToDTO(rec document.Record) documentDTO {
	return documentDTO{
		ID:         rec.ID,
		Agent:      rec.Agent,
		Title:      rec.Title,
		Collection: rec.Collection,
		Keywords:   rec.Keywords,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func documentFromUpsert(agent string, req upsertDocumentRequest) matchdex.DocumentInput {
	chunks := make([]matchdex.ChunkInput, len(req.Chunks))
	for i, ch := range req.Chunks {
		chunks[i] = matchdex.ChunkInput{ID: ch.ID, Text: ch.Text, Metadata: ch.Metadata}
	}
	return matchdex.DocumentInput{
		ID:         req.ID,
		Agent:      agent,
		Title:      req.Title,
		Collection: req.Collection,
		Keywords:   req.Keywords,
		Chunks:     chunks,
	}
}
