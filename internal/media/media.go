// Package media acquires a local video file (yt-dlp download or saved
// upload) and extracts a speech-recognition-ready audio track from it
// with ffmpeg.
package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipdocs/clipdocs/internal/execx"
)

type Fetcher struct {
	runner  execx.Runner
	timeout time.Duration
	logger  *slog.Logger
}

func NewFetcher(runner execx.Runner, timeout time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{runner: runner, timeout: timeout, logger: logger}
}

// Download fetches url with yt-dlp into a uuid-named temp mp4 and
// returns its path. The caller owns the file and must remove it.
func (f *Fetcher) Download(ctx context.Context, url string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("clipdocs_%s.mp4", uuid.New().String()))

	f.logger.Info("downloading video", "url", url, "path", path)

	args := []string{
		"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		"--merge-output-format", "mp4",
		"-o", path,
		url,
	}
	if _, err := f.runner.Run(ctx, "yt-dlp", args...); err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("download video: yt-dlp produced no output file: %w", err)
	}

	f.logger.Info("video downloaded", "path", path)
	return path, nil
}

// SaveUpload persists an uploaded video under dir with a uuid-prefixed,
// sanitised name. It returns the stored path and the public name used by
// the playback endpoint. Uploads are kept after the request so they can
// be served back.
func SaveUpload(dir, filename string, r io.Reader) (path, name string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create upload dir: %w", err)
	}

	name = fmt.Sprintf("%s_%s", uuid.New().String(), sanitizeFilename(filename))
	path = filepath.Join(dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write upload: %w", err)
	}
	return path, name, nil
}

// sanitizeFilename keeps only characters safe to use in a served file
// name, dropping any path components the client sent.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || strings.Trim(b.String(), "._") == "" {
		return "upload"
	}
	return b.String()
}

type AudioExtractor struct {
	runner execx.Runner
	logger *slog.Logger
}

func NewAudioExtractor(runner execx.Runner, logger *slog.Logger) *AudioExtractor {
	return &AudioExtractor{runner: runner, logger: logger}
}

// Extract converts videoPath to a 16kHz mono PCM WAV, the format speech
// models want, and returns its path. The caller removes the file.
func (a *AudioExtractor) Extract(ctx context.Context, videoPath string) (string, error) {
	audioPath := filepath.Join(os.TempDir(), fmt.Sprintf("clipdocs_%s.wav", uuid.New().String()))

	a.logger.Info("extracting audio", "video", videoPath, "audio", audioPath)

	args := []string{
		"-i", videoPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		audioPath,
	}
	if _, err := a.runner.Run(ctx, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}

	a.logger.Info("audio extracted", "audio", audioPath)
	return audioPath, nil
}

// RemoveTemp deletes a temp file, logging instead of failing: cleanup
// must never decide the fate of a request.
func RemoveTemp(logger *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to remove temp file", "path", path, "error", err)
		}
		return
	}
	logger.Debug("removed temp file", "path", path)
}
