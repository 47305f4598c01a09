// Package similarity provides the vector comparison kernel used by
// semantic search.
package similarity

import "math"

// Cosine returns the cosine similarity of two embedding vectors, in
// [-1,1]. It returns 0 when either vector is absent, empty, of
// mismatched length, or has zero norm. Callers must treat 0 as "no
// signal", not as orthogonality.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
