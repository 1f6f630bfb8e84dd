// Package query orchestrates answering a question: language detection,
// similarity retrieval, and answer synthesis.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vuongthuydung/employee-support-chatbot/internal/embedding"
	"github.com/vuongthuydung/employee-support-chatbot/internal/generation"
	"github.com/vuongthuydung/employee-support-chatbot/internal/lang"
	"github.com/vuongthuydung/employee-support-chatbot/internal/models"
	"github.com/vuongthuydung/employee-support-chatbot/internal/vector"
)

var (
	// ErrEmptyQuestion is returned for empty or whitespace-only questions.
	ErrEmptyQuestion = errors.New("question cannot be empty")
	// ErrNoRelevantDocument is returned when the index yields no match.
	ErrNoRelevantDocument = errors.New("no relevant document found")
)

// Pipeline answers questions against the ingested document index.
type Pipeline struct {
	detector  lang.Detector
	embedder  embedding.Embedder
	index     vector.Index
	generator generation.Generator
	topK      int
	logger    *zap.Logger // optional
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a logger for query events.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// WithTopK overrides how many candidates are retrieved (default 1).
func WithTopK(k int) PipelineOption {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// NewPipeline creates a query pipeline with the given dependencies.
func NewPipeline(
	detector lang.Detector,
	embedder embedding.Embedder,
	index vector.Index,
	generator generation.Generator,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		detector:  detector,
		embedder:  embedder,
		index:     index,
		generator: generator,
		topK:      1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Answer runs the full retrieve-then-generate flow for one question.
// Empty input fails before any capability or index call. Capability failures
// come back wrapped, never as panics, so callers can distinguish them from
// the client-error and not-found sentinels.
func (p *Pipeline) Answer(ctx context.Context, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	language := p.detector.Detect(question)

	queryVec, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	results, err := p.index.Search(ctx, queryVec, p.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoRelevantDocument
	}
	top := results[0]
	if p.logger != nil {
		p.logger.Debug("retrieved chunk",
			zap.String("source", top.Record.Source),
			zap.Float64("score", top.Score),
			zap.String("language", language),
		)
	}

	text, err := p.generator.Generate(ctx, generation.Prompt{
		Content:  top.Record.Content,
		Question: question,
		Language: language,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}
	return &models.Answer{
		Source:   top.Record.Source,
		Text:     text,
		Language: language,
	}, nil
}
