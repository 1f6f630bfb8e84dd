package vector

import (
	"context"
	"fmt"
	"sync"
)

// MemoryIndex is an in-memory index using brute-force inner product search.
// Suitable for tests; it does not survive process restarts.
type MemoryIndex struct {
	dimensions int
	records    []Record
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		records:    make([]Record, 0),
	}, nil
}

// Add appends records as one batch under a single lock acquisition.
func (m *MemoryIndex) Add(ctx context.Context, records []Record) error {
	if err := checkRecords(records, m.dimensions); err != nil {
		return err
	}
	copied := make([]Record, len(records))
	for i, rec := range records {
		vec := make([]float32, m.dimensions)
		copy(vec, rec.Vector)
		rec.Vector = vec
		copied[i] = rec
	}
	m.mu.Lock()
	m.records = append(m.records, copied...)
	m.mu.Unlock()
	return nil
}

// Search returns the top-k records by inner product.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return searchRecords(m.records, query, m.dimensions, k)
}

// Size returns the number of records in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}
