package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/vuongthuydung/employee-support-chatbot/internal/extract"
	"github.com/vuongthuydung/employee-support-chatbot/internal/ingest"
	"github.com/vuongthuydung/employee-support-chatbot/internal/models"
	"github.com/vuongthuydung/employee-support-chatbot/internal/query"
)

// maxUploadBytes caps in-memory multipart parsing.
const maxUploadBytes = 32 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	s.logger.Debug("upload request", zap.String("filename", header.Filename), zap.Int("bytes", len(content)))
	if err := s.ingest.Ingest(r.Context(), header.Filename, content); err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedType):
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ingest.ErrDuplicateDocument):
			s.respondError(w, http.StatusConflict, fmt.Sprintf("file %s already exists", header.Filename))
		case errors.Is(err, ingest.ErrEmptyDocument):
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.logger.Error("ingestion failed", zap.String("filename", header.Filename), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to update the index: %v", err))
		}
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("file %s uploaded and indexed successfully", header.Filename),
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var q models.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("ask request", zap.String("question", q.Question))
	answer, err := s.query.Answer(r.Context(), q.Question)
	if err != nil {
		switch {
		case errors.Is(err, query.ErrEmptyQuestion):
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, query.ErrNoRelevantDocument):
			s.respondError(w, http.StatusNotFound, err.Error())
		default:
			s.logger.Error("answer failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	docCount, err := s.warehouse.Count()
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents":  docCount,
		"index_size": s.index.Size(),
		"config": map[string]interface{}{
			"chunk_size":        s.config.Chat.ChunkSize,
			"chunk_overlap":     s.config.Chat.ChunkOverlap,
			"top_k":             s.config.Chat.TopK,
			"primary_language":  s.config.Chat.PrimaryLanguage,
			"fallback_language": s.config.Chat.FallbackLanguage,
			"warehouse_dir":     s.config.Storage.WarehouseDir,
			"index_path":        s.config.Storage.IndexPath,
		},
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
