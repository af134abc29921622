// Package scoring maps backend-native similarity scores onto a single
// [0, 1] "higher is better" relevance scale and holds the ranking weights.
package scoring

// Normalize maps a batch of raw scores onto [0, 1], higher = more relevant.
// The convention applies to the whole batch; mixing conventions within one
// call is not supported.
func Normalize(raw []float64, conv Convention) []float64 {
	if len(raw) == 0 {
		return []float64{}
	}
	if conv == Auto || !conv.IsValid() {
		conv = detect(raw)
	}

	out := make([]float64, len(raw))
	for i, s := range raw {
		switch conv {
		case Similarity:
			out[i] = clamp01((s + 1) / 2)
		case Distance:
			out[i] = clamp01(1 - s/2)
		default:
			out[i] = clamp01(s)
		}
	}
	return out
}

// detect sniffs the batch for a convention: any negative value means cosine
// similarity in [-1, 1]; any value above 1 means a distance in [0, 2];
// otherwise the scores are taken as already bounded. Ambiguous when a foreign
// convention happens to span [0, 1] exactly, hence the explicit Convention
// values for backends that declare their scale.
func detect(raw []float64) Convention {
	for _, s := range raw {
		if s < 0 {
			return Similarity
		}
	}
	for _, s := range raw {
		if s > 1 {
			return Distance
		}
	}
	return Bounded01
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp01 bounds a score to [0, 1]. Exported for boost arithmetic in ranking.
func Clamp01(v float64) float64 { return clamp01(v) }
