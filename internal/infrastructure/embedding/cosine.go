// Package embedding provides text embeddings and embedding-based similarity
// for mention contexts and company descriptions.
package embedding

import (
	"math"

	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// CosineSimilarity returns the cosine of the angle between a and b in
// [-1, 1].  Zero vectors yield 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Newf(errors.ErrCodeValidation,
			"vector dimensions differ: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
