package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/clipdocs/clipdocs/internal/execx"
	"github.com/clipdocs/clipdocs/internal/transcript"
)

// LocalTranscriber shells out to a whisper.cpp binary with JSON output.
// Binary and model paths are validated once, on first use, so a broken
// install fails the first request instead of the whole process — and the
// check is safe under concurrent first requests.
type LocalTranscriber struct {
	runner    execx.Runner
	binPath   string
	modelPath string
	logger    *slog.Logger

	initOnce sync.Once
	initErr  error
}

func NewLocalTranscriber(runner execx.Runner, binPath, modelPath string, logger *slog.Logger) *LocalTranscriber {
	return &LocalTranscriber{
		runner:    runner,
		binPath:   binPath,
		modelPath: modelPath,
		logger:    logger,
	}
}

func (t *LocalTranscriber) init() error {
	t.initOnce.Do(func() {
		if _, err := os.Stat(t.modelPath); err != nil {
			t.initErr = fmt.Errorf("whisper model not found at %s: %w", t.modelPath, err)
			return
		}
		t.logger.Info("whisper engine ready", "bin", t.binPath, "model", t.modelPath)
	})
	return t.initErr
}

// whisperOutput matches whisper.cpp's -oj JSON file. Offsets are
// milliseconds from the start of the audio.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func (t *LocalTranscriber) Transcribe(ctx context.Context, audioPath, language string) ([]transcript.Segment, error) {
	if err := t.init(); err != nil {
		return nil, err
	}

	outPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	jsonPath := outPrefix + ".json"
	defer os.Remove(jsonPath)

	args := []string{
		"-m", t.modelPath,
		"-f", audioPath,
		"-oj",
		"-of", outPrefix,
	}
	if language != "" {
		args = append(args, "-l", language)
	}

	if _, err := t.runner.Run(ctx, t.binPath, args...); err != nil {
		return nil, fmt.Errorf("local transcription: %w", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	return parseOutput(data)
}

func parseOutput(data []byte) ([]transcript.Segment, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	segs := make([]transcript.Segment, 0, len(out.Transcription))
	for _, s := range out.Transcription {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		segs = append(segs, transcript.Segment{
			Text:  text,
			Start: float64(s.Offsets.From) / 1000,
			End:   float64(s.Offsets.To) / 1000,
		})
	}
	return segs, nil
}
