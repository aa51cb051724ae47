package memory

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/model"
)

// Cosine calculates cosine similarity between two vectors of equal length.
// The result is in [-1, 1]. If either vector has zero norm the similarity
// is defined as 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, goerr.Wrap(model.ErrDimensionMismatch, "vector length differs",
			goerr.V("len_a", len(a)), goerr.V("len_b", len(b)))
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
