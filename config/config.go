// Package config resolves paths and credentials from the environment, relative
// to a project root.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// RootEnv overrides the project root.
const RootEnv = "RECIPEVEC_ROOT"

// Embedding defaults, used when the environment does not name them.
const (
	DefaultUpstageBaseURL = "https://api.upstage.ai/v1"
	DefaultDocumentModel  = "solar-embedding-1-large-passage"
	DefaultQueryModel     = "solar-embedding-1-large-query"
)

// ErrMissingAPIKey is returned when no embedding API key is configured.
var ErrMissingAPIKey = errors.New("config: UPSTAGE_API_KEY is not set")

// Config is an immutable snapshot of the resolved configuration.
type Config struct {
	ProjectRoot string

	OpenAIAPIKey  string
	UpstageAPIKey string

	UpstageBaseURL string
	DocumentModel  string
	QueryModel     string
	LogLevel       string

	CrawledDataDir         string
	PreprocessedDataDir    string
	MergedPreprocessedFile string
	VectorStorePath        string
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ResolveProjectRoot returns RECIPEVEC_ROOT when set, otherwise the working
// directory. It falls back to "." if neither can be determined.
func ResolveProjectRoot() string {
	if root := os.Getenv(RootEnv); root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			return abs
		}
		return root
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Load reads <root>/.env when present and builds the configuration. A
// relative root is resolved against the working directory. Values
// already in the process environment take precedence over the file. Load
// never fails: a missing file is skipped silently and unreadable ones are
// logged.
func Load(root string) *Config {
	if root == "" {
		root = ResolveProjectRoot()
	} else if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "root", root, "error", err)
	}

	preprocessed := filepath.Join(root, "preprocessed_data")
	return &Config{
		ProjectRoot:   root,
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		UpstageAPIKey: os.Getenv("UPSTAGE_API_KEY"),

		UpstageBaseURL: getEnv("UPSTAGE_BASE_URL", DefaultUpstageBaseURL),
		DocumentModel:  getEnv("EMBEDDING_DOCUMENT_MODEL", DefaultDocumentModel),
		QueryModel:     getEnv("EMBEDDING_QUERY_MODEL", DefaultQueryModel),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		CrawledDataDir:         filepath.Join(root, "crawled_data"),
		PreprocessedDataDir:    preprocessed,
		MergedPreprocessedFile: filepath.Join(preprocessed, "all_recipes_cleaned.json"),
		VectorStorePath:        filepath.Join(root, "chroma_db"),
	}
}

// EmbeddingAPIKey returns the key used for the embedding API.
func (c *Config) EmbeddingAPIKey() (string, error) {
	if c.UpstageAPIKey == "" {
		return "", ErrMissingAPIKey
	}
	return c.UpstageAPIKey, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
