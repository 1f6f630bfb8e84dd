package vector

import (
	"context"
	"math"
	"testing"
)

func TestInnerProduct(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical unit vectors", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{0, 1}, []float32{0, -1}, -1},
		{"mismatched lengths", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", []float32{}, []float32{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InnerProduct(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("InnerProduct(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestL2Norm(t *testing.T) {
	if got := L2Norm([]float32{3, 4}); math.Abs(got-5) > 1e-9 {
		t.Errorf("L2Norm([3 4]) = %f, want 5", got)
	}
	if got := L2Norm([]float32{0, 0, 0}); got != 0 {
		t.Errorf("L2Norm(zero) = %f, want 0", got)
	}
	if got := L2Norm(nil); got != 0 {
		t.Errorf("L2Norm(nil) = %f, want 0", got)
	}
}

func TestSearch_ScoreIsInnerProduct(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	stored := []float32{0.6, 0.8, 0}
	if err := idx.Add(context.Background(), []Record{rec("a", "doc", stored...)}); err != nil {
		t.Fatal(err)
	}
	query := []float32{0, 0.8, 0.6}
	results, err := idx.Search(context.Background(), query, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	want := InnerProduct(query, stored)
	if math.Abs(results[0].Score-want) > 1e-9 {
		t.Errorf("score = %f, want %f", results[0].Score, want)
	}
}
