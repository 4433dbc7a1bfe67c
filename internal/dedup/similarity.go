package dedup

import (
	"fmt"
	"math"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
)

// Cosine returns the cosine similarity of two embedding vectors. Vectors of
// different dimensions cannot be compared and yield a validation error. A
// zero-magnitude vector has no direction, so its similarity to anything
// is 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.NewValidationError("embedding", fmt.Sprintf("dimension mismatch: %d vs %d", len(a), len(b)))
	}

	var dot, magA, magB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		magA += av * av
		magB += bv * bv
	}

	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}
