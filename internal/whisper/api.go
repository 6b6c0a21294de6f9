package whisper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/clipdocs/clipdocs/internal/transcript"
)

// APITranscriber transcribes through the OpenAI audio API, requesting
// verbose JSON so segment timestamps come back.
type APITranscriber struct {
	api    *openai.Client
	logger *slog.Logger
}

func NewAPITranscriber(api *openai.Client, logger *slog.Logger) *APITranscriber {
	return &APITranscriber{api: api, logger: logger}
}

func (t *APITranscriber) Transcribe(ctx context.Context, audioPath, language string) ([]transcript.Segment, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Language: language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := t.api.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("api transcription: %w", err)
	}

	segs := make([]transcript.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		segs = append(segs, transcript.Segment{
			Text:  text,
			Start: s.Start,
			End:   s.End,
		})
	}

	t.logger.Info("transcription complete", "segments", len(segs), "audio", audioPath)
	return segs, nil
}
