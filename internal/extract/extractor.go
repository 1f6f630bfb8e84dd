// Package extract provides text extraction from uploaded document formats.
package extract

import (
	"fmt"
	"strings"
)

// ErrUnsupportedType is returned for extensions outside the supported set.
var ErrUnsupportedType = fmt.Errorf("file type not allowed: only .pdf and .docx are supported")

// Kind identifies a supported document format.
type Kind string

const (
	// KindPDF is a PDF document, extracted page by page.
	KindPDF Kind = "pdf"
	// KindDOCX is a Word-processor document, extracted paragraph by paragraph.
	KindDOCX Kind = "docx"
)

// KindForExtension maps a filename extension (with or without leading dot,
// any case) to a document Kind. Returns ErrUnsupportedType for anything else.
func KindForExtension(ext string) (Kind, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return KindPDF, nil
	case "docx":
		return KindDOCX, nil
	default:
		return "", ErrUnsupportedType
	}
}

// Extractor extracts plain text from document bytes.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract extracts text from content according to kind.
// PDF pages and DOCX paragraphs are joined with newlines.
func (e *Extractor) Extract(content []byte, kind Kind) (string, error) {
	switch kind {
	case KindPDF:
		return extractPDF(content)
	case KindDOCX:
		return extractDOCX(content)
	default:
		return "", ErrUnsupportedType
	}
}
