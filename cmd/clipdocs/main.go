package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipdocs/clipdocs/internal/api"
	"github.com/clipdocs/clipdocs/internal/config"
	"github.com/clipdocs/clipdocs/internal/docgen"
	"github.com/clipdocs/clipdocs/internal/events"
	"github.com/clipdocs/clipdocs/internal/execx"
	"github.com/clipdocs/clipdocs/internal/llm"
	"github.com/clipdocs/clipdocs/internal/media"
	"github.com/clipdocs/clipdocs/internal/pipeline"
	"github.com/clipdocs/clipdocs/internal/store"
	"github.com/clipdocs/clipdocs/internal/transcript"
	"github.com/clipdocs/clipdocs/internal/whisper"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("clipdocs starting", "port", cfg.Port)

	ctx := context.Background()

	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}

	// OpenAI client, shared by generation and API transcription.
	oai := llm.NewAPI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	llmClient := llm.NewClient(oai, cfg.OpenAIModel, llm.Options{
		Timeout:    time.Duration(cfg.LLMTimeoutSecs) * time.Second,
		MaxRetries: cfg.LLMMaxRetries,
	}, slog.Default())
	slog.Info("openai client ready", "model", cfg.OpenAIModel)

	runner := execx.New()

	// Transcription engine.
	var transcriber whisper.Transcriber
	switch cfg.WhisperMode {
	case "local":
		transcriber = whisper.NewLocalTranscriber(runner, cfg.WhisperBin, cfg.WhisperModel, slog.Default())
		slog.Info("local whisper engine configured", "bin", cfg.WhisperBin, "model", cfg.WhisperModel)
	default:
		transcriber = whisper.NewAPITranscriber(oai, slog.Default())
		slog.Info("whisper API transcription configured")
	}

	fetcher := media.NewFetcher(runner, time.Duration(cfg.FetchTimeoutSecs)*time.Second, slog.Default())
	audio := media.NewAudioExtractor(runner, slog.Default())
	synth := docgen.New(llmClient, slog.Default())

	chunkOpts := transcript.ChunkOptions{
		MaxWords:         cfg.ChunkMaxWords,
		PauseBreak:       cfg.ChunkPauseBreak,
		BreakOnBlankLine: cfg.ChunkBlankBreak,
	}

	proc := pipeline.New(fetcher, audio, transcriber, synth, cfg.UploadDir, chunkOpts, slog.Default())

	// Document archive (optional — clipdocs works without it, just no /documents)
	var documents api.DocumentReader
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		proc.WithArchive(db)
		documents = db
		slog.Info("document archive connected")
	} else {
		slog.Warn("DATABASE_URL not set — running without document archive")
	}

	// Event publishing (optional)
	if cfg.NatsURL != "" {
		pub, err := events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		proc.WithEventSink(pub)

		if err := pub.Publish(events.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set — running without event publishing")
	}

	srv := api.NewServer(cfg.Port, proc, synth, documents, cfg.UploadDir, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("clipdocs ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
