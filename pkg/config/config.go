package config

import (
	"fmt"
	"net/url"

	"github.com/go-playground/validator"

	"github.com/hexmerlin/kgseed/internal/util"
)

// Neo4jConfig holds connection parameters for the graph store.
type Neo4jConfig struct {
	URI      string `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"required"`
	Database string
}

// PostgresConfig holds connection parameters for the relational store used
// by the retrieval engine for vector and key-value persistence.
type PostgresConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required,min=1,max=65535"`
	User     string `validate:"required"`
	Password string `validate:"required"`
	Database string `validate:"required"`
}

// EmbeddingConfig describes the embedding service boundary: where to reach
// it, which model to use and the vector shape the engine expects.
type EmbeddingConfig struct {
	BaseURL    string `validate:"required"`
	APIKey     string
	Model      string `validate:"required"`
	Dimensions int    `validate:"required,min=1"`
	MaxTokens  int    `validate:"required,min=1"`
	BatchSize  int    `validate:"min=1"`
}

// LLMConfig describes the completion model handed to the retrieval engine.
type LLMConfig struct {
	BaseURL string `validate:"required"`
	APIKey  string
	Model   string `validate:"required"`
}

// Config is the immutable store configuration for a single pipeline run.
// It is constructed once from the environment and passed by reference to
// every stage; nothing mutates it mid-run.
type Config struct {
	Neo4j      Neo4jConfig    `validate:"required"`
	Postgres   PostgresConfig `validate:"required"`
	WorkingDir string         `validate:"required"`

	Adapter   string `validate:"oneof=ollama openai"`
	Embedding EmbeddingConfig
	LLM       LLMConfig
}

// FromEnv builds a Config from the process environment. util.LoadEnv should
// have been called first so a .env file is honored.
func FromEnv() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:      util.GetEnvString("NEO4J_URI", "bolt://localhost:7687"),
			Username: util.GetEnvString("NEO4J_USERNAME", "neo4j"),
			Password: util.GetEnv("NEO4J_PASSWORD"),
			Database: util.GetEnv("NEO4J_DATABASE"),
		},
		Postgres: PostgresConfig{
			Host:     util.GetEnvString("POSTGRES_HOST", "localhost"),
			Port:     util.GetEnvInt("POSTGRES_PORT", 5432),
			User:     util.GetEnvString("POSTGRES_USER", "postgres"),
			Password: util.GetEnv("POSTGRES_PASSWORD"),
			Database: util.GetEnvString("POSTGRES_DATABASE", "kgseed"),
		},
		WorkingDir: util.GetEnvString("WORKING_DIR", "rag_storage"),

		Adapter: util.GetEnvString("AI_ADAPTER", "ollama"),
		Embedding: EmbeddingConfig{
			BaseURL:    util.GetEnvString("AI_EMBED_URL", "http://127.0.0.1:11434"),
			APIKey:     util.GetEnv("AI_EMBED_KEY"),
			Model:      util.GetEnvString("EMBEDDING_MODEL", "bge-m3"),
			Dimensions: util.GetEnvInt("AI_EMBED_DIM", 1024),
			MaxTokens:  util.GetEnvInt("AI_EMBED_MAX_TOKENS", 32768),
			BatchSize:  util.GetEnvInt("AI_EMBED_BATCH", 32),
		},
		LLM: LLMConfig{
			BaseURL: util.GetEnvString("AI_CHAT_URL", "http://127.0.0.1:11434"),
			APIKey:  util.GetEnv("AI_CHAT_KEY"),
			Model:   util.GetEnvString("LLM_MODEL", "llama3.1"),
		},
	}
}

// Validate checks that all required connection parameters are present.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid store configuration: %w", err)
	}
	return nil
}

// PostgresURL renders the pgx connection string. Credentials are escaped so
// passwords containing URL metacharacters survive parsing.
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Postgres.User, c.Postgres.Password),
		Host:   fmt.Sprintf("%s:%d", c.Postgres.Host, c.Postgres.Port),
		Path:   "/" + c.Postgres.Database,
	}
	return u.String()
}

// Summary returns a single-line description of the configured stores for
// diagnostics. Credentials are never included.
func (c *Config) Summary() string {
	return fmt.Sprintf(
		"neo4j=%s postgres=%s:%d/%s working_dir=%s adapter=%s embed_model=%s dim=%d",
		c.Neo4j.URI,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Database,
		c.WorkingDir,
		c.Adapter,
		c.Embedding.Model,
		c.Embedding.Dimensions,
	)
}
