package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clipdocs/clipdocs/internal/pipeline"
	"github.com/clipdocs/clipdocs/internal/transcript"
)

type stubProcessor struct {
	lastInput pipeline.Input
	doc       *transcript.Document
	err       error
	panicMsg  string
}

func (s *stubProcessor) Process(_ context.Context, in pipeline.Input) (*transcript.Document, error) {
	s.lastInput = in
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return nil, s.err
	}
	if (in.VideoURL == "") == (in.Upload == nil) {
		return nil, fmt.Errorf("%w: provide a video_url or a video file", pipeline.ErrBadInput)
	}
	return s.doc, nil
}

type stubAnswerer struct {
	answer string
	err    error
}

func (s *stubAnswerer) Answer(_ context.Context, _, _ string) (string, error) {
	return s.answer, s.err
}

func newTestServer(t *testing.T, proc *stubProcessor, ans *stubAnswerer) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(5000, proc, ans, nil, t.TempDir(), logger)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubAnswerer{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(fileContent))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUpload_WithURL(t *testing.T) {
	proc := &stubProcessor{doc: &transcript.Document{
		Segments: []transcript.FormattedSegment{{Text: "hi", Start: 0, FormattedTimestamp: "00:00:00"}},
		Sections: []transcript.Section{{Title: "Intro", Summary: "s", Timestamp: 0}},
		FAQs:     []transcript.FAQ{},
		VideoID:  "dQw4w9WgXcQ",
	}}
	srv := newTestServer(t, proc, &stubAnswerer{})

	body, contentType := multipartBody(t, map[string]string{
		"video_url": "https://youtu.be/dQw4w9WgXcQ",
		"language":  "en",
	}, "", "", "")

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if proc.lastInput.VideoURL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("pipeline received url %q", proc.lastInput.VideoURL)
	}
	if proc.lastInput.Language != "en" {
		t.Errorf("pipeline received language %q", proc.lastInput.Language)
	}

	var doc transcript.Document
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if doc.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("video_id = %q", doc.VideoID)
	}
	if len(doc.Segments) != 1 || doc.Segments[0].FormattedTimestamp != "00:00:00" {
		t.Errorf("segments = %+v", doc.Segments)
	}
}

func TestUpload_WithFile(t *testing.T) {
	proc := &stubProcessor{doc: &transcript.Document{PlaybackURL: "/videos/abc_demo.mp4"}}
	srv := newTestServer(t, proc, &stubAnswerer{})

	body, contentType := multipartBody(t, nil, "video", "demo.mp4", "fake video bytes")

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if proc.lastInput.Upload == nil || proc.lastInput.Upload.Filename != "demo.mp4" {
		t.Errorf("pipeline upload = %+v", proc.lastInput.Upload)
	}
}

func TestUpload_NoInput(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubAnswerer{})

	body, contentType := multipartBody(t, map[string]string{"language": "en"}, "", "", "")
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["error"] == "" {
		t.Error("expected error field in response")
	}
}

func TestUpload_PipelineFailure(t *testing.T) {
	proc := &stubProcessor{err: errors.New("extract audio: ffmpeg: exit status 1: Invalid data")}
	srv := newTestServer(t, proc, &stubAnswerer{})

	body, contentType := multipartBody(t, map[string]string{"video_url": "https://youtu.be/dQw4w9WgXcQ"}, "", "", "")
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	if !strings.Contains(resp["error"], "Invalid data") {
		t.Errorf("error should carry tool diagnostics, got %q", resp["error"])
	}
}

func TestUpload_PanicBecomesJSONError(t *testing.T) {
	proc := &stubProcessor{panicMsg: "something broke badly"}
	srv := newTestServer(t, proc, &stubAnswerer{})

	body, contentType := multipartBody(t, map[string]string{"video_url": "https://youtu.be/dQw4w9WgXcQ"}, "", "", "")
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("panic response is not JSON: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected error field")
	}
	if strings.Contains(resp["error"], "something broke badly") {
		t.Error("panic detail should not leak to the caller")
	}
}

func TestServeVideo(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubAnswerer{})
	if err := os.WriteFile(filepath.Join(srv.uploadDir, "abc_demo.mp4"), []byte("video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/videos/abc_demo.mp4", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "video bytes" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestServeVideo_NotFound(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubAnswerer{})

	req := httptest.NewRequest("GET", "/videos/missing.mp4", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestServeVideo_RejectsTraversal(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubAnswerer{})

	req := httptest.NewRequest("GET", "/videos/..config", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAsk(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubAnswerer{answer: "Version 2.1."})

	body := `{"question":"Which version?","context":"the transcript"}`
	req := httptest.NewRequest("POST", "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["answer"] != "Version 2.1." {
		t.Errorf("answer = %q", resp["answer"])
	}
}

func TestAsk_MissingFields(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubAnswerer{})

	for _, body := range []string{
		`{}`,
		`{"question":"only a question"}`,
		`{"context":"only context"}`,
		`{"question":"  ","context":"x"}`,
	} {
		req := httptest.NewRequest("POST", "/ask", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestAsk_InvalidJSON(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubAnswerer{})

	req := httptest.NewRequest("POST", "/ask", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAsk_GenerationFailure(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubAnswerer{err: errors.New("llm down")})

	body := `{"question":"q","context":"c"}`
	req := httptest.NewRequest("POST", "/ask", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestDocuments_ArchiveDisabled(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubAnswerer{})

	for _, path := range []string{"/documents", "/documents/4fe0f1ea-7b7b-4df3-9c1b-000000000000"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404 when archive disabled, got %d", path, w.Code)
		}
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubAnswerer{})

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
