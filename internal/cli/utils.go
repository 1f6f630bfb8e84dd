// Package cli provides CLI output utilities for the chatbox tool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vuongthuydung/employee-support-chatbot/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a -output flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "json":
		return OutputJSON, nil
	case "text", "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteAnswer writes an answer to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAnswer(w io.Writer, answer *models.Answer, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	default:
		writeAnswerText(w, answer)
		return nil
	}
}

func writeAnswerText(w io.Writer, answer *models.Answer) {
	fmt.Fprintf(w, "Source: %s\n\n", answer.Source)
	fmt.Fprintln(w, answer.Text)
}

// StatusConfig holds configuration info returned by status.
type StatusConfig struct {
	ChunkSize        int    `json:"chunk_size,omitempty"`
	ChunkOverlap     int    `json:"chunk_overlap,omitempty"`
	TopK             int    `json:"top_k,omitempty"`
	PrimaryLanguage  string `json:"primary_language,omitempty"`
	FallbackLanguage string `json:"fallback_language,omitempty"`
	WarehouseDir     string `json:"warehouse_dir,omitempty"`
	IndexPath        string `json:"index_path,omitempty"`
}

// StatusResponse is the shape of GET /api/status response.
type StatusResponse struct {
	Documents int           `json:"documents"`
	IndexSize int           `json:"index_size"`
	Config    *StatusConfig `json:"config,omitempty"`
}

// WriteStatus writes a status response to w in the given format.
func WriteStatus(w io.Writer, status *StatusResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	default:
		writeStatusText(w, status)
		return nil
	}
}

func writeStatusText(w io.Writer, status *StatusResponse) {
	fmt.Fprintf(w, "documents:   %d   # files in the warehouse\n", status.Documents)
	fmt.Fprintf(w, "index_size:  %d   # chunk vectors in the index\n", status.IndexSize)
	if status.Config != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		if status.Config.ChunkSize > 0 {
			fmt.Fprintf(w, "chunk_size:         %d\n", status.Config.ChunkSize)
		}
		if status.Config.ChunkOverlap > 0 {
			fmt.Fprintf(w, "chunk_overlap:      %d\n", status.Config.ChunkOverlap)
		}
		if status.Config.TopK > 0 {
			fmt.Fprintf(w, "top_k:              %d\n", status.Config.TopK)
		}
		if status.Config.PrimaryLanguage != "" {
			fmt.Fprintf(w, "primary_language:   %s\n", status.Config.PrimaryLanguage)
		}
		if status.Config.FallbackLanguage != "" {
			fmt.Fprintf(w, "fallback_language:  %s\n", status.Config.FallbackLanguage)
		}
		if status.Config.WarehouseDir != "" {
			fmt.Fprintf(w, "warehouse_dir:      %s\n", status.Config.WarehouseDir)
		}
		if status.Config.IndexPath != "" {
			fmt.Fprintf(w, "index_path:         %s\n", status.Config.IndexPath)
		}
	}
}
