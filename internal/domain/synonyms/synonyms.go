// Package synonyms holds the process-wide, read-only skill vocabulary and
// synonym expansions used for query enrichment and heuristic term scans.
// Loaded once at startup, data-driven so the tables extend without code
// changes.
package synonyms

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table maps canonical terms to their expansions and knows the recognized
// skill vocabulary. Read-only after construction.
type Table struct {
	expansions map[string][]string
	vocab      map[string]struct{}
	vocabList  []string
}

// file is the YAML shape of a vocabulary file.
type file struct {
	Synonyms   map[string][]string `yaml:"synonyms"`
	Vocabulary []string            `yaml:"vocabulary"`
}

// Default returns the compiled-in table: a small set of common programming
// languages and stacks.
func Default() *Table {
	return build(
		map[string][]string{
			"java":       {"java", "j2ee", "spring", "springboot"},
			"python":     {"python", "django", "flask", "fastapi"},
			"javascript": {"javascript", "js", "node", "nodejs", "react"},
			"csharp":     {"c#", "csharp", ".net", "dotnet"},
			"golang":     {"go", "golang"},
		},
		[]string{
			"java", "j2ee", "spring", "springboot", "microservices",
			"python", "django", "flask", "fastapi",
			"javascript", "typescript", "node", "nodejs", "react",
			"c", "c++", "cpp", "c#", "csharp",
			"go", "golang", "ruby", "rails", "php",
			"scala", "kotlin", "rust", "swift", "objective-c",
			"kafka", "aws", "gcp", "azure", "sql", "spark", "hadoop",
		},
	)
}

// Load reads a table from a YAML file. Entries are lower-cased; vocabulary
// additionally absorbs every synonym expansion so scans recognize them.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	if len(f.Vocabulary) == 0 {
		return nil, fmt.Errorf("vocabulary %s: vocabulary list is empty", path)
	}

	return build(f.Synonyms, f.Vocabulary), nil
}

func build(syn map[string][]string, vocab []string) *Table {
	t := &Table{
		expansions: make(map[string][]string, len(syn)),
		vocab:      make(map[string]struct{}, len(vocab)),
	}
	for canonical, terms := range syn {
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		if canonical == "" {
			continue
		}
		lowered := make([]string, 0, len(terms))
		for _, s := range terms {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				lowered = append(lowered, s)
			}
		}
		t.expansions[canonical] = lowered
	}
	for _, v := range vocab {
		t.addVocab(v)
	}
	// Expansions belong to the recognized vocabulary as well.
	for _, terms := range t.expansions {
		for _, s := range terms {
			t.addVocab(s)
		}
	}
	return t
}

func (t *Table) addVocab(term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return
	}
	if _, ok := t.vocab[term]; ok {
		return
	}
	t.vocab[term] = struct{}{}
	t.vocabList = append(t.vocabList, term)
}

// Expand returns the expansion list for a term, or the term itself when no
// entry exists.
func (t *Table) Expand(term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if exp, ok := t.expansions[term]; ok {
		return exp
	}
	return []string{term}
}

// InVocabulary reports whether the term is a recognized skill token.
func (t *Table) InVocabulary(term string) bool {
	_, ok := t.vocab[strings.ToLower(strings.TrimSpace(term))]
	return ok
}

// Vocabulary returns the recognized terms in deterministic load order.
func (t *Table) Vocabulary() []string { return t.vocabList }

// MatchTokens scans text case-insensitively and returns the vocabulary terms
// present as whole words, in vocabulary order.
func (t *Table) MatchTokens(text string) []string {
	lowered := strings.ToLower(text)
	var found []string
	for _, term := range t.vocabList {
		if ContainsTerm(lowered, term) {
			found = append(found, term)
		}
	}
	return found
}

// ContainsTerm reports whether term occurs in text delimited by
// non-alphanumeric boundaries. Both arguments are expected lower-cased.
func ContainsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	return i == 0 || !isWordChar(s[i-1])
}

func boundaryAfter(s string, i int) bool {
	return i >= len(s) || !isWordChar(s[i])
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
