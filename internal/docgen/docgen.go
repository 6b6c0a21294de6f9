// Package docgen turns transcript chunks into documentation sections and
// a whole-transcript FAQ list through the text-generation API.
package docgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clipdocs/clipdocs/internal/llm"
	"github.com/clipdocs/clipdocs/internal/transcript"
)

type Synthesizer struct {
	llm    *llm.Client
	logger *slog.Logger
}

func New(llm *llm.Client, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{llm: llm, logger: logger}
}

// GenerateTitle produces a short, factual section title for a chunk.
func (s *Synthesizer) GenerateTitle(ctx context.Context, text string) (string, error) {
	title, err := s.llm.Complete(ctx, titleSystemPrompt, text, 30, 0.3)
	if err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}
	return strings.TrimSpace(title), nil
}

// Summarize produces a structured markdown summary of a chunk, grounded
// only in the given text.
func (s *Synthesizer) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := s.llm.Complete(ctx, summarySystemPrompt, text, 800, 0.3)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

type faqResponse struct {
	FAQs []transcript.FAQ `json:"faqs"`
}

// GenerateFAQs asks for 3-5 question/answer pairs derived from the full
// transcript. Any generation or parse failure degrades to an empty list;
// a missing FAQ section never fails a request.
func (s *Synthesizer) GenerateFAQs(ctx context.Context, fullText string) []transcript.FAQ {
	prompt := "Create the FAQ JSON from this transcript:\n\n" + fullText

	raw, err := s.llm.CompleteJSON(ctx, faqSystemPrompt, prompt, 1000, 0.2)
	if err != nil {
		s.logger.Error("faq generation failed", "error", err)
		return nil
	}

	var resp faqResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		s.logger.Error("faq response is not valid JSON", "error", err, "raw", raw)
		return nil
	}
	if len(resp.FAQs) == 0 {
		s.logger.Error("faq response has no faqs field or it is empty", "raw", raw)
		return nil
	}
	for _, f := range resp.FAQs {
		if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
			s.logger.Error("faq response has an item without question or answer", "raw", raw)
			return nil
		}
	}

	s.logger.Info("faqs generated", "count", len(resp.FAQs))
	return resp.FAQs
}

// Answer responds to a question using only the supplied grounding text.
func (s *Synthesizer) Answer(ctx context.Context, question, grounding string) (string, error) {
	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", grounding, question)
	answer, err := s.llm.Complete(ctx, answerSystemPrompt, prompt, 500, 0.3)
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
