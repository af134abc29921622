package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/matchdex/internal/domain/scoring"
)

// --- Mocks ---

type mockIndex struct {
	chunks    []Chunk
	err       error
	conv      scoring.Convention
	calls     int
	chunksByQ map[string][]Chunk
	lastDocID string
	lastK     int
}

func (m *mockIndex) Search(_ context.Context, docID, query string, k int) ([]Chunk, error) {
	m.calls++
	m.lastDocID = docID
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	if m.chunksByQ != nil {
		return m.chunksByQ[query], nil
	}
	return m.chunks, nil
}

func (m *mockIndex) Convention() scoring.Convention {
	if m.conv == "" {
		return scoring.Auto
	}
	return m.conv
}

func chunk(text string, score float64) Chunk {
	return Chunk{Text: text, RawScore: score}
}

// --- Tests ---

func TestRetrieve_SortedAndThresholded(t *testing.T) {
	idx := &mockIndex{chunks: []Chunk{
		chunk("weak", 0.2),
		chunk("best", 0.9),
		chunk("ok", 0.6),
	}}
	svc := New(idx, nil)

	hits := svc.Retrieve(context.Background(), "cv-1", "java", 5, 0.5)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits above threshold, got %d", len(hits))
	}
	if hits[0].Text != "best" || hits[1].Text != "ok" {
		t.Errorf("hits not sorted best-first: %v, %v", hits[0].Text, hits[1].Text)
	}
	if idx.lastDocID != "cv-1" || idx.lastK != 5 {
		t.Errorf("index called with docID=%q k=%d", idx.lastDocID, idx.lastK)
	}
}

func TestRetrieve_FallbackNeverEmpty(t *testing.T) {
	idx := &mockIndex{chunks: []Chunk{
		chunk("low", 0.1),
		chunk("lower", 0.05),
	}}
	svc := New(idx, nil)

	hits := svc.Retrieve(context.Background(), "cv-1", "java", 5, 0.9)
	if len(hits) != 2 {
		t.Fatalf("fallback should return all %d hits, got %d", 2, len(hits))
	}
	if hits[0].Text != "low" {
		t.Errorf("fallback hits not sorted: first = %q", hits[0].Text)
	}
}

func TestRetrieve_IndexErrorYieldsEmpty(t *testing.T) {
	idx := &mockIndex{err: errors.New("collection absent")}
	svc := New(idx, nil)

	hits := svc.Retrieve(context.Background(), "cv-1", "java", 5, 0.3)
	if len(hits) != 0 {
		t.Errorf("expected empty result on index error, got %d hits", len(hits))
	}
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	svc := New(&mockIndex{}, nil)
	hits := svc.Retrieve(context.Background(), "cv-1", "java", 5, 0.3)
	if len(hits) != 0 {
		t.Errorf("expected no hits for empty index, got %d", len(hits))
	}
}

func TestRetrieve_CosineScoresNormalized(t *testing.T) {
	idx := &mockIndex{chunks: []Chunk{chunk("a", -0.2), chunk("b", 0.9)}}
	svc := New(idx, nil)

	hits := svc.Retrieve(context.Background(), "cv-1", "q", 2, 0)
	if hits[0].Relevance != 0.95 || hits[1].Relevance != 0.4 {
		t.Errorf("cosine normalization wrong: %v, %v", hits[0].Relevance, hits[1].Relevance)
	}
}

func TestRetrieve_QueryRetry(t *testing.T) {
	idx := &mockIndex{chunksByQ: map[string][]Chunk{
		"plz find Java devs": {chunk("noise", 0.1)},
		"find java devs":     {chunk("match", 0.8)},
	}}
	svc := New(idx, nil).WithQueryRetry()

	hits := svc.Retrieve(context.Background(), "cv-1", "plz find Java devs", 5, 0.5)
	if len(hits) != 1 || hits[0].Text != "match" {
		t.Fatalf("expected retried hit, got %v", hits)
	}
}

func TestRetrieve_RetryStillFallsBack(t *testing.T) {
	idx := &mockIndex{chunksByQ: map[string][]Chunk{
		"plz find Java devs": {chunk("noise", 0.1)},
		"find java devs":     {chunk("still weak", 0.2)},
	}}
	svc := New(idx, nil).WithQueryRetry()

	hits := svc.Retrieve(context.Background(), "cv-1", "plz find Java devs", 5, 0.5)
	if len(hits) != 1 || hits[0].Text != "noise" {
		t.Fatalf("expected fallback to first pass, got %v", hits)
	}
}

func TestNormalizeQuery(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plz gve me the Java engineer's details", "java engineer"},
		{"Can u tell me about Kafka?", "you kafka"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeQuery(tc.in); got != tc.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
