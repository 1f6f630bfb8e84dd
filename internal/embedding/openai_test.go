package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, baseURL string, dimensions int) *Client {
	t.Helper()
	t.Setenv("TEST_EMBED_KEY", "test-key")
	c, err := NewClient(ClientConfig{
		BaseURL:    baseURL,
		APIKeyEnv:  "TEST_EMBED_KEY",
		Model:      "test-model",
		Dimensions: dimensions,
		Timeout:    5 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func embeddingsHandler(t *testing.T, vectors map[int][]float32) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		type datum struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		var data []datum
		for idx, vec := range vectors {
			data = append(data, datum{Embedding: vec, Index: idx})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}
}

func TestNewClient_RequiresDimensions(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "test-key")
	if _, err := NewClient(ClientConfig{APIKeyEnv: "TEST_EMBED_KEY"}); err == nil {
		t.Error("expected error for zero dimensions")
	}
	if _, err := NewClient(ClientConfig{APIKeyEnv: "TEST_EMBED_KEY", Dimensions: -1}); err == nil {
		t.Error("expected error for negative dimensions")
	}
}

func TestClient_EmbedBatch(t *testing.T) {
	// Vectors come back index-keyed and unnormalized; the client must order
	// them by index and scale them to unit length.
	ts := httptest.NewServer(embeddingsHandler(t, map[int][]float32{
		1: {0, 2, 0},
		0: {3, 0, 0},
	}))
	defer ts.Close()
	c := newTestClient(t, ts.URL, 3)

	vecs, err := c.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Errorf("vectors not ordered by index: %v", vecs)
	}
	for i, v := range vecs {
		if n := normSquared(v); math.Abs(n-1) > 1e-6 {
			t.Errorf("vector %d has squared norm %f, want 1", i, n)
		}
	}
	if c.Dimensions() != 3 {
		t.Errorf("Dimensions() = %d, want 3", c.Dimensions())
	}
}

func TestClient_EmbedBatch_dimensionMismatch(t *testing.T) {
	ts := httptest.NewServer(embeddingsHandler(t, map[int][]float32{
		0: {1, 0},
	}))
	defer ts.Close()
	c := newTestClient(t, ts.URL, 3)

	if _, err := c.EmbedBatch(context.Background(), []string{"text"}); err == nil {
		t.Error("expected error for wrong vector dimension")
	}
	if c.Dimensions() != 3 {
		t.Errorf("Dimensions() = %d after failure, want 3", c.Dimensions())
	}
}

func TestClient_EmbedBatch_retriesOn429(t *testing.T) {
	var calls int32
	inner := embeddingsHandler(t, map[int][]float32{0: {0, 4, 0}})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		inner(w, r)
	}))
	defer ts.Close()
	c := newTestClient(t, ts.URL, 3)

	vecs, err := c.Embed(context.Background(), "text")
	if err != nil {
		t.Fatal(err)
	}
	if vecs[1] != 1 {
		t.Errorf("got %v, want unit vector on second axis", vecs)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}
