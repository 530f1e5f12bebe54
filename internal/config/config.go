// Package config loads configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// OpenAI embeddings
	OpenAIAPIKey  string
	OpenAIBaseURL string
	EmbedModel    string
	EmbedDim      int

	// Pinecone
	PineconeAPIKey string
	IndexName      string
	IndexCloud     string
	IndexRegion    string
	Namespace      string

	// Together chat
	TogetherAPIKey  string
	TogetherBaseURL string
	ChatModel       string

	// Twilio WhatsApp
	TwilioAccountSID string
	TwilioAuthToken  string
	WhatsAppFrom     string
	WhatsAppTo       string

	// Chunking defaults
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	TopK int

	// Ingestion
	IngestConcurrency int

	// Hosted-service timeouts
	EmbedTimeout time.Duration
	ChatTimeout  time.Duration
}

// Load reads a .env file if present, then the environment.
func Load() Config {
	godotenv.Load()

	return Config{
		Port: envOr("PORT", "8000"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com"),
		EmbedModel:    envOr("EMBED_MODEL", "text-embedding-ada-002"),
		EmbedDim:      envInt("EMBED_DIM", 1536),

		PineconeAPIKey: os.Getenv("PINECONE_API_KEY"),
		IndexName:      envOr("INDEX_NAME", "tesla-manuals"),
		IndexCloud:     envOr("INDEX_CLOUD", "aws"),
		IndexRegion:    envOr("INDEX_REGION", "us-east-1"),
		Namespace:      envOr("NAMESPACE", "manual"),

		TogetherAPIKey:  os.Getenv("TOGETHER_API_KEY"),
		TogetherBaseURL: envOr("TOGETHER_BASE_URL", "https://api.together.xyz"),
		ChatModel:       envOr("CHAT_MODEL", "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		WhatsAppFrom:     envOr("WHATSAPP_FROM", "+14155238886"),
		WhatsAppTo:       os.Getenv("WHATSAPP_TO"),

		ChunkSize:    envInt("CHUNK_SIZE", 800),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 200),

		TopK: envInt("TOP_K", 4),

		IngestConcurrency: envInt("INGEST_CONCURRENCY", 1),

		EmbedTimeout: envDuration("EMBED_TIMEOUT", 30*time.Second),
		ChatTimeout:  envDuration("CHAT_TIMEOUT", 120*time.Second),
	}
}

// Validate checks the keys the query pipeline needs. ValidateMessaging is
// separate so the ingestion CLI can run without Twilio credentials.
func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.PineconeAPIKey == "" {
		return fmt.Errorf("PINECONE_API_KEY is required")
	}
	if c.TogetherAPIKey == "" {
		return fmt.Errorf("TOGETHER_API_KEY is required")
	}
	return nil
}

// ValidateMessaging checks the keys the WhatsApp gateway needs.
func (c Config) ValidateMessaging() error {
	if c.TwilioAccountSID == "" {
		return fmt.Errorf("TWILIO_ACCOUNT_SID is required")
	}
	if c.TwilioAuthToken == "" {
		return fmt.Errorf("TWILIO_AUTH_TOKEN is required")
	}
	if c.WhatsAppTo == "" {
		return fmt.Errorf("WHATSAPP_TO is required")
	}
	return nil
}

func envOr(key, fallback string) string {
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

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
