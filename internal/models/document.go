// Package models defines core data structures for documents, chunks, questions, and answers.
package models

// DocumentChunk is a contiguous slice of a document's extracted text,
// the unit of embedding and retrieval.
type DocumentChunk struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Content    string `json:"content"`
	ChunkIndex int    `json:"chunk_index"`
}
