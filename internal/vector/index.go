// Package vector provides the persistent embedding-record index and
// nearest-neighbor similarity search.
package vector

import (
	"context"
	"fmt"
	"sort"
)

// Record is one immutable embedding record: a chunk's text, its vector, and
// the identifier of the document it came from. The index is the single owner
// of records; updates are new records, never in-place mutation.
type Record struct {
	ID      string
	Source  string
	Content string
	Vector  []float32
}

// Result is a single search hit.
type Result struct {
	Record Record
	Score  float64 // inner product; equals cosine similarity for normalized vectors
}

// Index defines embedding-record storage and similarity search.
type Index interface {
	// Add inserts records as one batch. Readers observe either none or all of them.
	Add(ctx context.Context, records []Record) error
	// Search returns up to k results ordered by descending score, ties broken
	// by insertion order. An empty index yields an empty result, not an error.
	Search(ctx context.Context, query []float32, k int) ([]Result, error)
	// Size returns the number of records in the index.
	Size() int
	Close() error
}

// searchRecords is the shared brute-force scorer. records must be in insertion
// order; sort stability preserves that order across equal scores.
func searchRecords(records []Record, query []float32, dimensions, k int) ([]Result, error) {
	if len(query) != dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), dimensions)
	}
	if k <= 0 || len(records) == 0 {
		return []Result{}, nil
	}
	results := make([]Result, len(records))
	for i, rec := range records {
		results[i] = Result{Record: rec, Score: InnerProduct(query, rec.Vector)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// checkRecords validates a batch before insertion.
func checkRecords(records []Record, dimensions int) error {
	for _, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("record has empty id")
		}
		if len(rec.Vector) != dimensions {
			return fmt.Errorf("vector dimension mismatch for %s: got %d, expected %d",
				rec.ID, len(rec.Vector), dimensions)
		}
	}
	return nil
}
