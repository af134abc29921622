package registry

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/matchdex/internal/domain/document"
)

// Hash field names for document records.
const (
	fieldID         = "id"
	fieldAgent      = "agent"
	fieldTitle      = "title"
	fieldCollection = "collection"
	fieldKeywords   = "keywords"
	fieldUpdatedAt  = "updated_at"
)

func recordToHash(rec document.Record) map[string]string {
	m := map[string]string{
		fieldID:         rec.ID,
		fieldAgent:      rec.Agent,
		fieldTitle:      rec.Title,
		fieldCollection: rec.Collection,
		fieldUpdatedAt:  strconv.FormatInt(rec.UpdatedAt, 10),
	}
	if len(rec.Keywords) > 0 {
		// Marshal of a string slice cannot fail.
		data, _ := json.Marshal(rec.Keywords)
		m[fieldKeywords] = string(data)
	}
	return m
}

func recordFromHash(m map[string]string) (document.Record, error) {
	rec := document.Record{
		ID:         m[fieldID],
		Agent:      m[fieldAgent],
		Title:      m[fieldTitle],
		Collection: m[fieldCollection],
	}
	if rec.ID == "" {
		return document.Record{}, fmt.Errorf("document hash missing id")
	}
	if raw := m[fieldKeywords]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Keywords); err != nil {
			return document.Record{}, fmt.Errorf("parse keywords: %w", err)
		}
	}
	if raw := m[fieldUpdatedAt]; raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return document.Record{}, fmt.Errorf("parse updated_at: %w", err)
		}
		rec.UpdatedAt = ts
	}
	return rec, nil
}
