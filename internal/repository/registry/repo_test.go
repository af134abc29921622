package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/document"
)

func TestUpsertValidation(t *testing.T) {
	repo := New(&mockStore{})

	if err := repo.Upsert(context.Background(), document.Record{Agent: "recruiter"}); err == nil {
		t.Fatal("expected error for missing id")
	}
	if err := repo.Upsert(context.Background(), document.Record{ID: "doc-1"}); err == nil {
		t.Fatal("expected error for missing agent")
	}
}

func TestUpsertStampsUpdatedAt(t *testing.T) {
	var captured map[string]string
	repo := New(&mockStore{
		hsetFn: func(_ context.Context, key string, fields map[string]string) error {
			if key != "matchdex:doc:recruiter:doc-1" {
				t.Fatalf("unexpected key %q", key)
			}
			captured = fields
			return nil
		},
	})
	repo.now = func() time.Time { return time.Unix(1700000000, 0) }

	rec := document.Record{
		ID:       "doc-1",
		Agent:    "recruiter",
		Title:    "Senior Java Engineer",
		Keywords: []string{"java", "spring"},
	}
	if err := repo.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured[fieldUpdatedAt] != "1700000000" {
		t.Errorf("expected stamped updated_at, got %q", captured[fieldUpdatedAt])
	}
	if captured[fieldKeywords] != `["java","spring"]` {
		t.Errorf("unexpected keywords field %q", captured[fieldKeywords])
	}
}

func TestGetNotFound(t *testing.T) {
	repo := New(&mockStore{})

	_, err := repo.Get(context.Background(), "recruiter", "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestGetStoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := New(&mockStore{
		hgetAllFn: func(context.Context, string) (map[string]string, error) {
			return nil, storeErr
		},
	})

	_, err := repo.Get(context.Background(), "recruiter", "doc-1")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	repo := New(newMemStore())
	repo.now = func() time.Time { return time.Unix(1700000000, 0) }

	rec := document.Record{
		ID:         "doc-1",
		Agent:      "recruiter",
		Title:      "Backend Engineer",
		Collection: "resumes-2026",
		Keywords:   []string{"golang", "kubernetes"},
	}
	if err := repo.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.Get(context.Background(), "recruiter", "doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != rec.Title || got.Collection != rec.Collection {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.UpdatedAt != 1700000000 {
		t.Errorf("expected stamped timestamp, got %d", got.UpdatedAt)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "golang" {
		t.Errorf("unexpected keywords %v", got.Keywords)
	}
}

func TestListOrdering(t *testing.T) {
	store := newMemStore()
	repo := New(store)

	ts := int64(1700000000)
	for _, rec := range []document.Record{
		{ID: "doc-b", Agent: "recruiter"},
		// doc-a shares doc-b's timestamp to exercise the ID tie-break.
		{ID: "doc-a", Agent: "recruiter"},
		{ID: "doc-c", Agent: "recruiter"},
	} {
		if rec.ID == "doc-c" {
			ts++
		}
		repo.now = func() time.Time { return time.Unix(ts, 0) }
		if err := repo.Upsert(context.Background(), rec); err != nil {
			t.Fatalf("upsert %s: %v", rec.ID, err)
		}
	}

	records, err := repo.List(context.Background(), "recruiter")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	// doc-c is newest; doc-a and doc-b tie and sort by ID.
	want := []string{"doc-c", "doc-a", "doc-b"}
	for i, id := range want {
		if records[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, records[i].ID)
		}
	}
}

func TestListScopedToAgent(t *testing.T) {
	repo := New(newMemStore())

	for _, rec := range []document.Record{
		{ID: "doc-1", Agent: "recruiter"},
		{ID: "doc-2", Agent: "sales"},
	} {
		if err := repo.Upsert(context.Background(), rec); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	records, err := repo.List(context.Background(), "recruiter")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].ID != "doc-1" {
		t.Errorf("expected only recruiter documents, got %+v", records)
	}
}

func TestListEmpty(t *testing.T) {
	repo := New(newMemStore())

	records, err := repo.List(context.Background(), "recruiter")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty list, got %d records", len(records))
	}
}

func TestDelete(t *testing.T) {
	store := newMemStore()
	repo := New(store)

	if err := repo.Upsert(context.Background(), document.Record{ID: "doc-1", Agent: "recruiter"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Delete(context.Background(), "recruiter", "doc-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := repo.Get(context.Background(), "recruiter", "doc-1")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound after delete, got %v", err)
	}
}

func TestWithKeyPrefix(t *testing.T) {
	var captured string
	repo := New(&mockStore{
		hsetFn: func(_ context.Context, key string, _ map[string]string) error {
			captured = key
			return nil
		},
	}).WithKeyPrefix("custom:")

	if err := repo.Upsert(context.Background(), document.Record{ID: "doc-1", Agent: "recruiter"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if captured != "custom:recruiter:doc-1" {
		t.Errorf("unexpected key %q", captured)
	}
}

func TestAgentReader(t *testing.T) {
	repo := New(newMemStore())
	if err := repo.Upsert(context.Background(), document.Record{ID: "doc-1", Agent: "recruiter", Title: "Engineer"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	reader := NewAgentReader(repo, "recruiter")
	rec, err := reader.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Title != "Engineer" {
		t.Errorf("unexpected record %+v", rec)
	}

	other := NewAgentReader(repo, "sales")
	if _, err := other.Get(context.Background(), "doc-1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound for other agent, got %v", err)
	}
}
