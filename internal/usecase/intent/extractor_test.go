package intent

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/matchdex/internal/domain/criteria"
	"github.com/kailas-cloud/matchdex/internal/metrics"
)

// --- Mocks ---

type mockCompleter struct {
	responses []string
	errs      []error
	calls     int
	systems   []string
}

func (m *mockCompleter) Complete(_ context.Context, system, _ string, _ bool) (string, error) {
	i := m.calls
	m.calls++
	m.systems = append(m.systems, system)
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	var resp string
	if i < len(m.responses) {
		resp = m.responses[i]
	}
	return resp, err
}

// --- Tests ---

func TestExtract_CompletionPath(t *testing.T) {
	comp := &mockCompleter{responses: []string{`{
		"include_skills": ["Java", "java", "kafka"],
		"required_skills": ["kafka"],
		"must_only": true,
		"min_years": 8,
		"locations": ["pune"],
		"top_n": 3,
		"sort_by": "relevance"
	}`}}
	e := NewExtractor(comp, nil, nil)

	c := e.Extract(context.Background(), "senior java only, Pune, 8+ years")

	if want := []string{"java", "kafka"}; !reflect.DeepEqual(c.IncludeTerms, want) {
		t.Errorf("IncludeTerms = %v, want %v", c.IncludeTerms, want)
	}
	if !c.ExclusiveMode {
		t.Error("ExclusiveMode should be set from must_only")
	}
	if c.MinYears == nil || *c.MinYears != 8 {
		t.Errorf("MinYears = %v, want 8", c.MinYears)
	}
	if c.ResultLimit == nil || *c.ResultLimit != 3 {
		t.Errorf("ResultLimit = %v, want 3", c.ResultLimit)
	}
	if c.Sort != criteria.SortRelevance {
		t.Errorf("Sort = %q", c.Sort)
	}
	if c.RawQuery != "senior java only, Pune, 8+ years" {
		t.Errorf("RawQuery = %q", c.RawQuery)
	}
	if comp.calls != 1 {
		t.Errorf("completer called %d times, want 1", comp.calls)
	}
}

func TestExtract_MalformedFieldsDropped(t *testing.T) {
	comp := &mockCompleter{responses: []string{`{
		"include_skills": ["java", 42, {"x": 1}],
		"min_years": "eight",
		"max_years": -2,
		"sort_by": "magic",
		"unknown_field": true
	}`}}
	e := NewExtractor(comp, nil, nil)

	c := e.Extract(context.Background(), "java people")
	if !reflect.DeepEqual(c.IncludeTerms, []string{"java"}) {
		t.Errorf("IncludeTerms = %v, want [java]", c.IncludeTerms)
	}
	if c.MinYears != nil || c.MaxYears != nil {
		t.Error("invalid numeric bounds must be dropped")
	}
	if c.Sort != "" {
		t.Errorf("invalid sort_by must be dropped, got %q", c.Sort)
	}
}

func TestExtract_CompletionErrorFallsBackToVocabulary(t *testing.T) {
	comp := &mockCompleter{errs: []error{errors.New("rate limited")}}
	e := NewExtractor(comp, nil, nil)

	c := e.Extract(context.Background(), "need a Kafka and Spark person")

	if !contains(c.IncludeTerms, "kafka") || !contains(c.IncludeTerms, "spark") {
		t.Errorf("vocabulary fallback missing terms: %v", c.IncludeTerms)
	}
	// Must-not-guess: fallback paths never synthesize bounds, filters, or gates.
	if c.RequireAll || c.ExclusiveMode || c.MinYears != nil ||
		len(c.Locations) != 0 || c.ResultLimit != nil {
		t.Errorf("fallback synthesized constraints: %+v", c)
	}
	if comp.calls != 1 {
		t.Errorf("keyword completion should not run when vocabulary matched, calls = %d", comp.calls)
	}
}

func TestExtract_KeywordFallback(t *testing.T) {
	comp := &mockCompleter{
		errs:      []error{errors.New("boom"), nil},
		responses: []string{"", `{"keywords": ["embedded firmware", "rtos", "RTOS"]}`},
	}
	e := NewExtractor(comp, nil, nil)

	c := e.Extract(context.Background(), "embedded firmware wizard")

	want := []string{"embedded firmware", "rtos"}
	if !reflect.DeepEqual(c.IncludeTerms, want) {
		t.Errorf("IncludeTerms = %v, want %v", c.IncludeTerms, want)
	}
	if !reflect.DeepEqual(c.Extras, want) {
		t.Errorf("Extras = %v, want %v", c.Extras, want)
	}
	if comp.calls != 2 {
		t.Errorf("completer calls = %d, want 2", comp.calls)
	}
}

func TestExtract_TotalFailureYieldsEmptyCriteria(t *testing.T) {
	comp := &mockCompleter{
		errs: []error{errors.New("boom"), errors.New("boom")},
	}
	e := NewExtractor(comp, nil, nil)

	c := e.Extract(context.Background(), "zzqq vvrr")
	if !c.IsEmpty() {
		t.Errorf("expected empty criteria, got %+v", c)
	}
	if c.RawQuery != "zzqq vvrr" {
		t.Errorf("RawQuery = %q", c.RawQuery)
	}
}

func TestExtract_NilCompleter(t *testing.T) {
	e := NewExtractor(nil, nil, nil)
	c := e.Extract(context.Background(), "python and aws, 5 years, remote")
	if !contains(c.IncludeTerms, "python") || !contains(c.IncludeTerms, "aws") {
		t.Errorf("IncludeTerms = %v", c.IncludeTerms)
	}
	if c.MinYears != nil {
		t.Error("vocabulary path must not guess numeric bounds")
	}
}

func TestExtract_EmptyCompletionObjectFallsThrough(t *testing.T) {
	comp := &mockCompleter{responses: []string{`{}`}}
	e := NewExtractor(comp, nil, nil)

	c := e.Extract(context.Background(), "golang services")
	if !contains(c.IncludeTerms, "golang") {
		t.Errorf("vocabulary scan should take over after empty object: %v", c.IncludeTerms)
	}
}

func TestParseKeywords_Formats(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{`{"keywords": ["a", "b"]}`, []string{"a", "b"}},
		{"```json\n[\"a\", \"b\"]\n```", []string{"a", "b"}},
		{"a, b\nc", []string{"a", "b", "c"}},
		{"", nil},
	}
	for _, tc := range cases {
		got := parseKeywords(tc.in, 10)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseKeywords(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func contains(list []string, term string) bool {
	for _, s := range list {
		if s == term {
			return true
		}
	}
	return false
}

func TestExtract_StrategyCounters(t *testing.T) {
	vocabBefore := testutil.ToFloat64(metrics.ExtractionStrategyTotal.WithLabelValues("vocabulary"))
	noneBefore := testutil.ToFloat64(metrics.ExtractionStrategyTotal.WithLabelValues("none"))

	e := NewExtractor(nil, nil, nil)
	e.Extract(context.Background(), "python and aws")
	if got := testutil.ToFloat64(metrics.ExtractionStrategyTotal.WithLabelValues("vocabulary")); got != vocabBefore+1 {
		t.Errorf("vocabulary counter = %v, want %v", got, vocabBefore+1)
	}

	e.Extract(context.Background(), "nothing recognizable here")
	if got := testutil.ToFloat64(metrics.ExtractionStrategyTotal.WithLabelValues("none")); got != noneBefore+1 {
		t.Errorf("none counter = %v, want %v", got, noneBefore+1)
	}
}

func TestExtract_WorkArrangementFields(t *testing.T) {
	comp := &mockCompleter{responses: []string{`{
		"include_skills": ["golang"],
		"remote_mode": "Hybrid",
		"availability_days": 30,
		"immediate": true
	}`}}
	e := NewExtractor(comp, nil, nil)

	c := e.Extract(context.Background(), "golang, hybrid, can start in 30 days")
	if c.Remote != criteria.RemoteHybrid {
		t.Errorf("Remote = %q, want hybrid", c.Remote)
	}
	if c.AvailabilityDays == nil || *c.AvailabilityDays != 30 {
		t.Errorf("AvailabilityDays = %v, want 30", c.AvailabilityDays)
	}
	if !c.Immediate {
		t.Error("Immediate should be set")
	}
}

func TestExtract_UnknownRemoteModeDropped(t *testing.T) {
	comp := &mockCompleter{responses: []string{`{
		"include_skills": ["golang"],
		"remote_mode": "moonbase"
	}`}}
	e := NewExtractor(comp, nil, nil)

	c := e.Extract(context.Background(), "golang on the moon")
	if c.Remote != "" {
		t.Errorf("invalid remote_mode must be dropped, got %q", c.Remote)
	}
}
