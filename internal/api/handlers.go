package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clipdocs/clipdocs/internal/pipeline"
	"github.com/clipdocs/clipdocs/internal/store"
	"github.com/clipdocs/clipdocs/internal/transcript"
)

// multipart memory threshold; larger uploads spill to disk.
const uploadMemoryLimit = 32 << 20

// Processor runs the video-to-documentation pipeline for one request.
type Processor interface {
	Process(ctx context.Context, in pipeline.Input) (*transcript.Document, error)
}

// Answerer handles grounded Q&A for /ask.
type Answerer interface {
	Answer(ctx context.Context, question, grounding string) (string, error)
}

// DocumentReader serves the archived-document endpoints. Nil when the
// archive is not configured.
type DocumentReader interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*store.DocumentRecord, error)
	ListDocuments(ctx context.Context, limit int) ([]store.DocumentSummary, error)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	in := pipeline.Input{
		VideoURL: r.FormValue("video_url"),
		Language: r.FormValue("language"),
	}

	if file, header, err := r.FormFile("video"); err == nil {
		defer file.Close()
		in.Upload = &pipeline.Upload{Filename: header.Filename, Content: file}
	}

	doc, err := s.pipeline.Process(r.Context(), in)
	if err != nil {
		if errors.Is(err, pipeline.ErrBadInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("pipeline failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) serveVideo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		writeError(w, http.StatusBadRequest, "invalid video name")
		return
	}

	path := filepath.Join(s.uploadDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "video not found")
		return
	}
	http.ServeFile(w, r, path)
}

type askRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.Context) == "" {
		writeError(w, http.StatusBadRequest, "question and context are required")
		return
	}

	answer, err := s.answerer.Answer(r.Context(), req.Question, req.Context)
	if err != nil {
		s.logger.Error("answer generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	if s.documents == nil {
		writeError(w, http.StatusNotFound, "document archive is not configured")
		return
	}

	docs, err := s.documents.ListDocuments(r.Context(), 50)
	if err != nil {
		s.logger.Error("failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []store.DocumentSummary{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	if s.documents == nil {
		writeError(w, http.StatusNotFound, "document archive is not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	rec, err := s.documents.GetDocument(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load document", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
