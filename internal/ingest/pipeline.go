package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vuongthuydung/employee-support-chatbot/internal/embedding"
	"github.com/vuongthuydung/employee-support-chatbot/internal/extract"
	"github.com/vuongthuydung/employee-support-chatbot/internal/vector"
	"github.com/vuongthuydung/employee-support-chatbot/internal/warehouse"
)

var (
	// ErrDuplicateDocument is returned when a document with the same name is already stored.
	ErrDuplicateDocument = errors.New("document already exists")
	// ErrEmptyDocument is returned when extraction/chunking yields nothing to index.
	ErrEmptyDocument = errors.New("document produced no chunks")
)

// Pipeline ingests an uploaded document: durable write, text extraction,
// chunking, embedding, and a single batch insert into the vector index.
type Pipeline struct {
	warehouse *warehouse.Warehouse
	extractor *extract.Extractor
	chunker   *Chunker
	embedder  embedding.Embedder
	index     vector.Index
	logger    *zap.Logger // optional; when set, logs ingestion events
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a logger for ingestion events.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates an ingestion pipeline with the given dependencies.
func NewPipeline(
	wh *warehouse.Warehouse,
	extractor *extract.Extractor,
	chunker *Chunker,
	embedder embedding.Embedder,
	index vector.Index,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		warehouse: wh,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest processes one uploaded document. The extension and duplicate gates
// run before any I/O; embedding failures abort before the index insert, so a
// document is never partially indexed.
func (p *Pipeline) Ingest(ctx context.Context, filename string, content []byte) error {
	kind, err := extract.KindForExtension(filepath.Ext(filename))
	if err != nil {
		return err
	}
	if p.warehouse.Exists(filename) {
		return fmt.Errorf("%w: %s", ErrDuplicateDocument, filename)
	}
	if err := p.warehouse.Save(filename, content); err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	text, err := p.extractor.Extract(content, kind)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	chunks := p.chunker.Chunk(filename, text)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("generate embeddings: %w", err)
	}
	records := make([]vector.Record, len(chunks))
	for i, ch := range chunks {
		records[i] = vector.Record{
			ID:      ch.ID,
			Source:  ch.Source,
			Content: ch.Content,
			Vector:  embeddings[i],
		}
	}
	if err := p.index.Add(ctx, records); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	if p.logger != nil {
		p.logger.Info("document ingested",
			zap.String("document", filename),
			zap.String("kind", string(kind)),
			zap.Int("chunks", len(chunks)),
		)
	}
	return nil
}
