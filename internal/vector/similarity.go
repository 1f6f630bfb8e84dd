package vector

import "math"

// InnerProduct returns the dot product of a and b. Vectors are unit-normalized
// before they reach the index, so this equals cosine similarity. Mismatched or
// empty inputs score zero.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the Euclidean length of v.
func L2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
