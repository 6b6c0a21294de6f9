package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	LogLevel      string
	UploadDir     string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	WhisperMode   string // "api" or "local"
	WhisperBin    string
	WhisperModel  string
	NatsURL       string
	NatsToken     string
	DatabaseURL   string

	ChunkMaxWords    int
	ChunkPauseBreak  float64 // seconds; 0 disables the pause predicate
	ChunkBlankBreak  bool
	LLMTimeoutSecs   int
	LLMMaxRetries    int
	FetchTimeoutSecs int
}

func Load() Config {
	// Missing .env is fine; values may come from the environment directly.
	_ = godotenv.Load()

	return Config{
		Port:          envInt("CLIPDOCS_PORT", 5000),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		UploadDir:     envStr("UPLOAD_DIR", "uploads"),
		OpenAIAPIKey:  envStr("OPENAI_API_KEY", ""),
		OpenAIModel:   envStr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: envStr("OPENAI_BASE_URL", ""),
		WhisperMode:   envStr("WHISPER_MODE", "api"),
		WhisperBin:    envStr("WHISPER_BIN", "whisper"),
		WhisperModel:  envStr("WHISPER_MODEL", "models/ggml-base.bin"),
		NatsURL:       envStr("NATS_URL", ""),
		NatsToken:     envStr("NATS_TOKEN", ""),
		DatabaseURL:   envStr("DATABASE_URL", ""),

		ChunkMaxWords:    envInt("CHUNK_MAX_WORDS", 150),
		ChunkPauseBreak:  envFloat("CHUNK_PAUSE_BREAK", 1.5),
		ChunkBlankBreak:  envBool("CHUNK_BREAK_ON_BLANK_LINE", false),
		LLMTimeoutSecs:   envInt("LLM_TIMEOUT_SECONDS", 120),
		LLMMaxRetries:    envInt("LLM_MAX_RETRIES", 3),
		FetchTimeoutSecs: envInt("FETCH_TIMEOUT_SECONDS", 600),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
