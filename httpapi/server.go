// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/poiesic/docit/core"
	"github.com/poiesic/docit/ingest"
)

// maxUploadBytes caps a single uploaded file at 100 MiB.
const maxUploadBytes = 100 << 20

// Ingester triggers one ingestion run.
type Ingester interface {
	Run(ctx context.Context) (*core.IngestStats, error)
}

// Asker answers one question over the indexed corpus, retrieving up to topK
// chunks; topK <= 0 means the service default.
type Asker interface {
	Ask(ctx context.Context, question string, topK int) (*core.Answer, error)
}

// DocumentLister lists ingested documents, newest first.
type DocumentLister interface {
	ListDocuments(ctx context.Context, limit int) ([]*core.Document, error)
}

// UploadDirs names the destination directory per document type.
type UploadDirs struct {
	PDF   string
	Image string
	Audio string
}

// Server exposes ingestion, querying and document listing over HTTP.
type Server struct {
	ingester Ingester
	asker    Asker
	lister   DocumentLister
	uploads  UploadDirs
	logger   *slog.Logger
}

// NewServer creates the HTTP API over the given services.
func NewServer(ingester Ingester, asker Asker, lister DocumentLister, uploads UploadDirs) *Server {
	return &Server{
		ingester: ingester,
		asker:    asker,
		lister:   lister,
		uploads:  uploads,
		logger:   slog.Default().With("component", "httpapi"),
	}
}

// Router builds the chi router with all API routes mounted under /api.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/ingest", s.handleIngest)
		r.Post("/query", s.handleQuery)
		r.Get("/documents", s.handleDocuments)
		r.Post("/upload", s.handleUpload)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ingester.Run(r.Context())
	if err != nil {
		if errors.Is(err, ingest.ErrIngestionInProgress) {
			writeError(w, http.StatusConflict, err)
			return
		}
		s.logger.Error("ingestion failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type queryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.TopK < 0 {
		writeError(w, http.StatusBadRequest, errors.New("top_k must be non-negative"))
		return
	}

	answer, err := s.asker.Ask(r.Context(), req.Question, req.TopK)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, answer)
	case errors.Is(err, core.ErrEmptyQuestion):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, core.ErrIndexNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, core.ErrConfigMismatch):
		writeError(w, http.StatusConflict, err)
	default:
		s.logger.Error("query failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	docs, err := s.lister.ListDocuments(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing documents failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	type documentResponse struct {
		Name    string `json:"name"`
		Type    string `json:"type"`
		Pages   int    `json:"pages,omitempty"`
		OCR     bool   `json:"ocr,omitempty"`
		AddedAt string `json:"added_at"`
	}

	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentResponse{
			Name:    doc.Name,
			Type:    string(doc.Type),
			Pages:   doc.Pages,
			OCR:     doc.OCR,
			AddedAt: doc.AddedAt.Format("2006-01-02 15:04:05"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

// handleUpload stores an uploaded file into the directory matching its
// extension. Ingestion is not triggered; the caller runs it when done
// uploading.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("multipart field 'file' required"))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	dir, ok := s.uploadDir(name)
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("unsupported file type"))
		return
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("creating upload directory failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		s.logger.Error("creating uploaded file failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		s.logger.Error("writing uploaded file failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"name": name,
		"path": filepath.Join(dir, name),
	})
}

var uploadKinds = map[string]func(UploadDirs) string{
	".pdf":  func(d UploadDirs) string { return d.PDF },
	".png":  func(d UploadDirs) string { return d.Image },
	".jpg":  func(d UploadDirs) string { return d.Image },
	".jpeg": func(d UploadDirs) string { return d.Image },
	".tif":  func(d UploadDirs) string { return d.Image },
	".tiff": func(d UploadDirs) string { return d.Image },
	".webp": func(d UploadDirs) string { return d.Image },
	".wav":  func(d UploadDirs) string { return d.Audio },
	".mp3":  func(d UploadDirs) string { return d.Audio },
	".m4a":  func(d UploadDirs) string { return d.Audio },
	".ogg":  func(d UploadDirs) string { return d.Audio },
	".flac": func(d UploadDirs) string { return d.Audio },
}

func (s *Server) uploadDir(name string) (string, bool) {
	pick, ok := uploadKinds[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", false
	}
	return pick(s.uploads), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
