package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the server. Everything is
// environment-provided; GCP credentials come either from
// GCP_SERVICE_ACCOUNT_KEY (a service-account JSON blob) or from ADC.
type Config struct {
	ProjectID           string
	VertexAIRegion      string
	GeminiModel         string
	BucketName          string
	FirestoreCollection string
	ServiceAccountKey   string

	Port           string
	RequestTimeout time.Duration
	MaxUploadSize  int64

	OCRBatchSize   int32
	MaxPromptChars int
}

// Load reads configuration from the environment (and an optional .env file),
// applies defaults, and validates the values the server cannot run without.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("VERTEX_AI_REGION", "us-central1")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("FIRESTORE_COLLECTION", "users")
	v.SetDefault("REQUEST_TIMEOUT", "300s")
	v.SetDefault("MAX_UPLOAD_SIZE", 20*1024*1024)
	v.SetDefault("OCR_BATCH_SIZE", 20)
	v.SetDefault("MAX_PROMPT_CHARS", 25000)

	v.AutomaticEnv()

	// Optional local .env for development.
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	c := &Config{
		ProjectID:           v.GetString("PROJECT_ID"),
		VertexAIRegion:      v.GetString("VERTEX_AI_REGION"),
		GeminiModel:         v.GetString("GEMINI_MODEL"),
		BucketName:          v.GetString("GCS_BUCKET_NAME"),
		FirestoreCollection: v.GetString("FIRESTORE_COLLECTION"),
		ServiceAccountKey:   v.GetString("GCP_SERVICE_ACCOUNT_KEY"),
		Port:                v.GetString("PORT"),
		RequestTimeout:      v.GetDuration("REQUEST_TIMEOUT"),
		MaxUploadSize:       v.GetInt64("MAX_UPLOAD_SIZE"),
		OCRBatchSize:        v.GetInt32("OCR_BATCH_SIZE"),
		MaxPromptChars:      v.GetInt("MAX_PROMPT_CHARS"),
	}

	if c.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if c.BucketName == "" {
		return nil, fmt.Errorf("GCS_BUCKET_NAME environment variable must be set")
	}
	if c.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", c.MaxUploadSize)
	}
	if c.OCRBatchSize <= 0 {
		return nil, fmt.Errorf("OCR_BATCH_SIZE must be > 0 (got %d)", c.OCRBatchSize)
	}
	if c.MaxPromptChars <= 0 {
		return nil, fmt.Errorf("MAX_PROMPT_CHARS must be > 0 (got %d)", c.MaxPromptChars)
	}

	return c, nil
}
