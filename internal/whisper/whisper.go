// Package whisper produces timestamped transcript segments from an audio
// file, either through the OpenAI transcription API or a local
// whisper.cpp binary.
package whisper

import (
	"context"

	"github.com/clipdocs/clipdocs/internal/transcript"
)

// Transcriber converts an audio file into ordered transcript segments.
// An empty result is not an error; silent or unintelligible audio simply
// yields an empty document downstream.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) ([]transcript.Segment, error)
}
