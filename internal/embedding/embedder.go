// Package embedding provides text embedding via a remote OpenAI-compatible
// capability, with caching and a deterministic mock for tests.
package embedding

import (
	"context"

	"github.com/vuongthuydung/employee-support-chatbot/internal/vector"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Normalize scales v to unit length in place so that inner product search
// equals cosine similarity. Zero vectors are left unchanged.
func Normalize(v []float32) {
	norm := vector.L2Norm(v)
	if norm == 0 {
		return
	}
	inv := 1.0 / norm
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
