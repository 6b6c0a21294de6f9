// Package pipeline runs the per-request video-to-documentation flow:
// acquire media, extract audio, transcribe, chunk, synthesize, assemble.
// Each request is independent and strictly sequential; temp files are
// removed on every exit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipdocs/clipdocs/internal/events"
	"github.com/clipdocs/clipdocs/internal/media"
	"github.com/clipdocs/clipdocs/internal/transcript"
	"github.com/clipdocs/clipdocs/internal/whisper"
	"github.com/clipdocs/clipdocs/internal/youtube"
)

// ErrBadInput marks user-correctable request problems (missing file or
// URL); the API layer maps it to a 400.
var ErrBadInput = errors.New("bad input")

// Fetcher downloads a remote video to a local temp file.
type Fetcher interface {
	Download(ctx context.Context, url string) (string, error)
}

// AudioExtractor converts a video file to a transcription-ready audio file.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath string) (string, error)
}

// Synthesizer generates documentation content from transcript text.
type Synthesizer interface {
	GenerateTitle(ctx context.Context, text string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	GenerateFAQs(ctx context.Context, fullText string) []transcript.FAQ
}

// Archive persists completed documents. Optional.
type Archive interface {
	SaveDocument(ctx context.Context, videoID, sourceURL string, doc transcript.Document) (uuid.UUID, error)
}

// EventSink publishes lifecycle events. Optional.
type EventSink interface {
	Publish(subject string, data any) error
}

// Input is one processing request: a video URL or an upload, never both.
type Input struct {
	VideoURL string
	Upload   *Upload
	Language string
}

// Upload is the uploaded video file from the request form.
type Upload struct {
	Filename string
	Content  io.Reader
}

type Pipeline struct {
	fetcher     Fetcher
	audio       AudioExtractor
	transcriber whisper.Transcriber
	synth       Synthesizer
	archive     Archive
	sink        EventSink
	uploadDir   string
	chunkOpts   transcript.ChunkOptions
	logger      *slog.Logger
}

func New(fetcher Fetcher, audio AudioExtractor, transcriber whisper.Transcriber, synth Synthesizer, uploadDir string, chunkOpts transcript.ChunkOptions, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		audio:       audio,
		transcriber: transcriber,
		synth:       synth,
		uploadDir:   uploadDir,
		chunkOpts:   chunkOpts,
		logger:      logger,
	}
}

// WithArchive enables document persistence.
func (p *Pipeline) WithArchive(a Archive) *Pipeline {
	p.archive = a
	return p
}

// WithEventSink enables lifecycle event publishing.
func (p *Pipeline) WithEventSink(s EventSink) *Pipeline {
	p.sink = s
	return p
}

// Process runs the full pipeline for one request. Temp files (downloaded
// video, extracted audio) are removed whether it succeeds or fails;
// saved uploads are kept so the playback endpoint can serve them.
func (p *Pipeline) Process(ctx context.Context, in Input) (*transcript.Document, error) {
	if (in.VideoURL == "") == (in.Upload == nil) {
		return nil, fmt.Errorf("%w: provide a video_url or a video file, not both or neither", ErrBadInput)
	}

	doc := &transcript.Document{
		Segments: []transcript.FormattedSegment{},
		Sections: []transcript.Section{},
		FAQs:     []transcript.FAQ{},
	}

	var tempFiles []string
	defer func() {
		for _, f := range tempFiles {
			media.RemoveTemp(p.logger, f)
		}
	}()

	// 1. Acquire a local video file.
	var videoPath string
	if in.VideoURL != "" {
		if id, ok := youtube.ExtractVideoID(in.VideoURL); ok {
			doc.VideoID = id
		}
		path, err := p.fetcher.Download(ctx, in.VideoURL)
		if err != nil {
			return nil, fmt.Errorf("acquire video: %w", err)
		}
		videoPath = path
		tempFiles = append(tempFiles, path)
	} else {
		if in.Upload.Filename == "" {
			return nil, fmt.Errorf("%w: no selected file", ErrBadInput)
		}
		path, name, err := media.SaveUpload(p.uploadDir, in.Upload.Filename, in.Upload.Content)
		if err != nil {
			return nil, fmt.Errorf("save upload: %w", err)
		}
		videoPath = path
		doc.PlaybackURL = "/videos/" + name
	}

	// 2. Extract audio.
	audioPath, err := p.audio.Extract(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	tempFiles = append(tempFiles, audioPath)

	// 3. Transcribe. An unavailable engine or empty result degrades to an
	// empty document rather than failing the request.
	segments, err := p.transcriber.Transcribe(ctx, audioPath, in.Language)
	if err != nil {
		p.logger.Error("transcription failed, returning empty transcript", "error", err)
		segments = nil
	}

	for _, seg := range segments {
		doc.Segments = append(doc.Segments, transcript.FormattedSegment{
			Text:               seg.Text,
			Start:              seg.Start,
			FormattedTimestamp: transcript.FormatTimestamp(seg.Start),
		})
	}

	if len(segments) == 0 {
		p.logger.Warn("no transcript segments, skipping generation")
		return doc, nil
	}

	// 4-5. Chunk and synthesize.
	chunks := transcript.ChunkSegments(segments, p.chunkOpts)
	doc.Sections = p.synthesizeSections(ctx, chunks)

	var texts []string
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	if faqs := p.synth.GenerateFAQs(ctx, strings.Join(texts, " ")); faqs != nil {
		doc.FAQs = faqs
	}

	p.finish(ctx, in, doc)
	return doc, nil
}

// sectionResult is the per-chunk outcome; failures become placeholder
// sections instead of aborting the run.
type sectionResult struct {
	section transcript.Section
	err     error
}

func (p *Pipeline) synthesizeSections(ctx context.Context, chunks []transcript.Chunk) []transcript.Section {
	results := make([]sectionResult, 0, len(chunks))
	for _, chunk := range chunks {
		results = append(results, p.synthesizeChunk(ctx, chunk))
	}

	sections := make([]transcript.Section, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			sections = append(sections, transcript.Section{
				Title:     "Error Generating Section",
				Summary:   fmt.Sprintf("Could not generate content for this part of the video. Error: %v", r.err),
				Timestamp: r.section.Timestamp,
			})
			continue
		}
		sections = append(sections, r.section)
	}
	return sections
}

func (p *Pipeline) synthesizeChunk(ctx context.Context, chunk transcript.Chunk) sectionResult {
	res := sectionResult{section: transcript.Section{Timestamp: chunk.Timestamp}}

	title, err := p.synth.GenerateTitle(ctx, chunk.Text)
	if err != nil {
		p.logger.Error("title generation failed", "timestamp", chunk.Timestamp, "error", err)
		res.err = err
		return res
	}
	summary, err := p.synth.Summarize(ctx, chunk.Text)
	if err != nil {
		p.logger.Error("summary generation failed", "timestamp", chunk.Timestamp, "error", err)
		res.err = err
		return res
	}

	res.section.Title = title
	res.section.Summary = summary
	return res
}

// finish archives the document and announces it. Both are best-effort.
func (p *Pipeline) finish(ctx context.Context, in Input, doc *transcript.Document) {
	var docID string
	if p.archive != nil {
		id, err := p.archive.SaveDocument(ctx, doc.VideoID, in.VideoURL, *doc)
		if err != nil {
			p.logger.Error("failed to archive document", "error", err)
		} else {
			docID = id.String()
		}
	}

	if p.sink != nil {
		err := p.sink.Publish(events.SubjectDocumentGenerated, events.DocumentGenerated{
			DocumentID: docID,
			VideoID:    doc.VideoID,
			SourceURL:  in.VideoURL,
			Segments:   len(doc.Segments),
			Sections:   len(doc.Sections),
			FAQs:       len(doc.FAQs),
			Timestamp:  time.Now().UTC(),
		})
		if err != nil {
			p.logger.Warn("failed to publish document event", "error", err)
		}
	}
}
