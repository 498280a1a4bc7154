package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PROJECT_ID", "test-project")
	t.Setenv("GCS_BUCKET_NAME", "test-bucket")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.VertexAIRegion != "us-central1" {
		t.Errorf("Expected default region us-central1, got %q", cfg.VertexAIRegion)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("Expected default model gemini-1.5-flash, got %q", cfg.GeminiModel)
	}
	if cfg.FirestoreCollection != "users" {
		t.Errorf("Expected default collection users, got %q", cfg.FirestoreCollection)
	}
	if cfg.OCRBatchSize != 20 {
		t.Errorf("Expected default OCR batch size 20, got %d", cfg.OCRBatchSize)
	}
	if cfg.MaxPromptChars != 25000 {
		t.Errorf("Expected default max prompt chars 25000, got %d", cfg.MaxPromptChars)
	}
	if cfg.RequestTimeout != 300*time.Second {
		t.Errorf("Expected default request timeout 300s, got %s", cfg.RequestTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PROJECT_ID", "test-project")
	t.Setenv("GCS_BUCKET_NAME", "test-bucket")
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("REQUEST_TIMEOUT", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %q", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-1.5-pro" {
		t.Errorf("Expected model override, got %q", cfg.GeminiModel)
	}
	if cfg.RequestTimeout != 2*time.Minute {
		t.Errorf("Expected request timeout 2m, got %s", cfg.RequestTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("PROJECT_ID", "")
	t.Setenv("GCS_BUCKET_NAME", "test-bucket")
	if _, err := Load(); err == nil {
		t.Error("Expected an error when PROJECT_ID is unset")
	}

	t.Setenv("PROJECT_ID", "test-project")
	t.Setenv("GCS_BUCKET_NAME", "")
	if _, err := Load(); err == nil {
		t.Error("Expected an error when GCS_BUCKET_NAME is unset")
	}
}
