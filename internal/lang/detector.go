// Package lang classifies input text into one of two supported answer languages.
package lang

import "github.com/abadojack/whatlanggo"

// Detector decides the answer language for a question.
type Detector interface {
	Detect(text string) string
}

// BinaryDetector detects the question's language and collapses the result to
// a binary policy: the primary language when detected, the fallback for
// everything else (including undetectable input).
type BinaryDetector struct {
	primary  string
	fallback string
}

// NewBinaryDetector returns a detector with the given primary and fallback
// ISO 639-1 codes (e.g. "vi" and "en").
func NewBinaryDetector(primary, fallback string) *BinaryDetector {
	return &BinaryDetector{primary: primary, fallback: fallback}
}

// Detect returns the primary language code when text is detected as it,
// otherwise the fallback code.
func (d *BinaryDetector) Detect(text string) string {
	info := whatlanggo.Detect(text)
	if info.Lang != -1 && info.Lang.Iso6391() == d.primary {
		return d.primary
	}
	return d.fallback
}
