package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	router    *chi.Mux
	port      int
	pipeline  Processor
	answerer  Answerer
	documents DocumentReader
	uploadDir string
	logger    *slog.Logger
}

func NewServer(port int, pipeline Processor, answerer Answerer, documents DocumentReader, uploadDir string, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)

	s := &Server{
		router:    router,
		port:      port,
		pipeline:  pipeline,
		answerer:  answerer,
		documents: documents,
		uploadDir: uploadDir,
		logger:    logger,
	}
	router.Use(s.recoverer)

	router.Get("/health", s.health)
	router.Post("/upload", s.upload)
	router.Get("/videos/{name}", s.serveVideo)
	router.Post("/ask", s.ask)
	router.Get("/documents", s.listDocuments)
	router.Get("/documents/{id}", s.getDocument)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// recoverer converts panics into the structured error envelope instead of
// leaking a stack trace to the caller. Full detail still goes to the log.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil && rec != http.ErrAbortHandler {
				s.logger.Error("panic in handler",
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "an unexpected server error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
