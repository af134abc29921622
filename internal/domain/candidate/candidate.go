// Package candidate holds a ranked candidate document result.
package candidate

import (
	"strings"
	"unicode/utf8"
)

// maxHighlightLen caps highlight snippets for display.
const maxHighlightLen = 320

// Result is a single ranked candidate. Constructed once per ranking pass,
// immutable, ordered by score descending.
type Result struct {
	documentID string
	score      float64
	title      string
	highlight  string
	collection string
	keywords   []string
	metadata   map[string]string
}

// New creates a candidate result.
func New(
	documentID string, score float64, title, highlight, collection string,
	keywords []string, metadata map[string]string,
) Result {
	return Result{
		documentID: documentID,
		score:      score,
		title:      title,
		highlight:  Snippet(highlight),
		collection: collection,
		keywords:   keywords,
		metadata:   metadata,
	}
}

// DocumentID returns the candidate document identifier.
func (r *Result) DocumentID() string { return r.documentID }

// Score returns the final relevance score in [0, 1].
func (r *Result) Score() float64 { return r.score }

// Title returns the candidate display title.
func (r *Result) Title() string { return r.title }

// Highlight returns the best-matching text snippet.
func (r *Result) Highlight() string { return r.highlight }

// Collection returns the backing vector collection name.
func (r *Result) Collection() string { return r.collection }

// Keywords returns the registry keywords for the document.
func (r *Result) Keywords() []string { return r.keywords }

// Metadata returns the source metadata of the best-matching chunk.
func (r *Result) Metadata() map[string]string { return r.metadata }

// Snippet flattens whitespace and truncates text to a display-sized
// highlight, appending an ellipsis when cut.
func Snippet(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	if len(s) <= maxHighlightLen {
		return s
	}
	cut := maxHighlightLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut]) + "..."
}
