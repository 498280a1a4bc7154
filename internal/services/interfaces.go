package services

import (
	"context"

	"github.com/the-steelix-flame/lexi-simplifai/internal/models"
)

// BlobStore is the slice of object storage the analysis pipeline needs.
// Implemented by gcp.GCSStore; tests substitute an in-memory fake.
type BlobStore interface {
	Upload(ctx context.Context, object, contentType string, data []byte) error
	Read(ctx context.Context, object string) ([]byte, error)
	Delete(ctx context.Context, object string) error
	ListPrefix(ctx context.Context, prefix string) ([]string, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
	URI(object string) string
}

// OCRRunner submits an asynchronous text-detection job and blocks until it
// resolves. Implemented by gcp.VisionOCR.
type OCRRunner interface {
	DetectDocumentText(ctx context.Context, sourceURI, mimeType, destinationURI string, batchSize int32) error
}

// TextGenerator produces model output for the two prompt shapes the app uses.
// Implemented by gcp.VertexClient.
type TextGenerator interface {
	GenerateAnalysis(ctx context.Context, prompt string) (string, error)
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}

// HistoryStore persists per-user analysis records. Implemented by
// gcp.FirestoreHistory.
type HistoryStore interface {
	Append(ctx context.Context, uid string, rec *models.AnalysisRecord) (string, error)
	List(ctx context.Context, uid string) ([]models.AnalysisRecord, error)
	DeleteAll(ctx context.Context, uid string) (int, error)
}

// TokenVerifier validates a bearer identity token and returns the caller's
// uid. Implemented by gcp.FirebaseVerifier.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}
