// Package ingest provides document chunking and the upload ingestion pipeline.
package ingest

import (
	"strings"

	"github.com/google/uuid"

	"github.com/vuongthuydung/employee-support-chatbot/internal/models"
)

// Chunker splits text into fixed-size overlapping rune windows.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in runes).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits text into DocumentChunks with overlapping windows. Consecutive
// chunks from one document share exactly the configured overlap; a text no
// longer than the chunk size yields a single chunk. Whitespace-only text
// yields nil. Each chunk gets a fresh unique id.
func (c *Chunker) Chunk(source, text string) []*models.DocumentChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	chunks := make([]*models.DocumentChunk, 0)
	chunkIndex := 0
	for i := 0; i < len(runes); i += step {
		end := i + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, &models.DocumentChunk{
			ID:         uuid.New().String(),
			Source:     source,
			Content:    string(runes[i:end]),
			ChunkIndex: chunkIndex,
		})
		chunkIndex++
		if end >= len(runes) {
			break
		}
	}
	return chunks
}
