package retrieve

import "strings"

// chat shorthand seen in real queries, fixed before retrieval.
var typoFixes = map[string]string{
	"u":   "you",
	"ur":  "your",
	"plz": "please",
	"pls": "please",
	"gve": "give",
	"cud": "could",
	"cn":  "can",
}

// filler words that carry no retrieval signal.
var stopwords = map[string]struct{}{
	"can": {}, "could": {}, "please": {}, "kindly": {}, "tell": {},
	"give": {}, "provide": {}, "me": {}, "about": {}, "details": {},
	"would": {}, "should": {}, "the": {}, "a": {}, "an": {}, "is": {},
	"are": {}, "be": {}, "on": {}, "in": {}, "for": {}, "of": {}, "to": {},
}

// NormalizeQuery lower-cases a chatty or typoed query, fixes common
// shorthand, strips punctuation and filler, and returns the kept tokens.
// Best-effort: a poor normalization only costs one extra retrieval pass.
func NormalizeQuery(query string) string {
	s := strings.ReplaceAll(strings.ToLower(query), "'s", "")

	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	var kept []string
	for _, tok := range strings.Fields(b.String()) {
		if fixed, ok := typoFixes[tok]; ok {
			tok = fixed
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
