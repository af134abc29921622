package scoring

// Convention identifies the score scale a search backend emits.
type Convention string

// Score convention constants.
const (
	// Auto inspects the batch and guesses the convention (legacy backends
	// that do not declare their scale).
	Auto Convention = "auto"
	// Similarity is cosine similarity in [-1, 1], larger is better.
	Similarity Convention = "similarity"
	// Distance is a distance in [0, 2], smaller is better.
	Distance Convention = "distance"
	// Bounded01 is an already-normalized relevance in [0, 1].
	Bounded01 Convention = "bounded01"
)

// IsValid checks if the convention is one of the supported values.
func (c Convention) IsValid() bool {
	return c == Auto || c == Similarity || c == Distance || c == Bounded01
}
