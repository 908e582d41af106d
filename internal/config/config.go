package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	GitHubToken    string
	GitHubUsername string
	GitHubBaseURL  string
	CommitLimit    int

	LLMProvider   string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	LLMBaseURL    string
	LLMAPIKey     string
	LLMModel      string

	// AnalysisDelay is the pause between two consecutive analysis calls.
	AnalysisDelay time.Duration

	SurrealURL  string
	SurrealNS   string
	SurrealDB   string
	SurrealUser string
	SurrealPass string

	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		GitHubUsername: os.Getenv("GITHUB_USERNAME"),
		GitHubBaseURL:  os.Getenv("GITHUB_BASE_URL"),
		CommitLimit:    getInt("COMMIT_LIMIT", 10),

		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		LLMBaseURL:    getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:     os.Getenv("LLM_API_KEY"),
		LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),

		AnalysisDelay: getDuration("ANALYSIS_DELAY", time.Second),

		SurrealURL:  os.Getenv("SURREAL_URL"),
		SurrealNS:   os.Getenv("SURREAL_NS"),
		SurrealDB:   os.Getenv("SURREAL_DB"),
		SurrealUser: os.Getenv("SURREAL_USER"),
		SurrealPass: os.Getenv("SURREAL_PASS"),

		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingAPIKey:  os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
	}

	// The SDK appends /rpc automatically
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/rpc")
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/")

	return cfg
}

// AnalysisAPIKey returns the credential of the configured generation provider.
func (c *Config) AnalysisAPIKey() string {
	if c.LLMProvider == ProviderOpenAI {
		return c.LLMAPIKey
	}
	return c.GeminiAPIKey
}

// StoreEnabled reports whether a SurrealDB endpoint is configured.
func (c *Config) StoreEnabled() bool {
	return c.SurrealURL != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logger.Warnf("invalid %s=%q; using default %d", key, v, defaultVal)
		return defaultVal
	}
	return n
}

// getDuration accepts a Go duration ("1500ms") or a bare number of milliseconds.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	logger.Warnf("invalid %s=%q; using default %s", key, v, defaultVal)
	return defaultVal
}
