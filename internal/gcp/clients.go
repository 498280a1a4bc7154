package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/the-steelix-flame/lexi-simplifai/internal/config"
)

// ClientBundle holds every external collaborator the server talks to. It is
// built once at process start and handed to the request handlers, so there is
// no lazily-initialized module state to reason about.
type ClientBundle struct {
	Storage  *GCSStore
	OCR      *VisionOCR
	Vertex   *VertexClient
	History  *FirestoreHistory
	Verifier *FirebaseVerifier
}

// NewClientBundle constructs all GCP clients. When cfg.ServiceAccountKey is
// set it is used as an inline service-account JSON credential; otherwise the
// clients fall back to Application Default Credentials. The returned cleanup
// function closes everything that holds a connection.
func NewClientBundle(ctx context.Context, cfg *config.Config) (*ClientBundle, func(), error) {
	var opts []option.ClientOption
	if cfg.ServiceAccountKey != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.ServiceAccountKey)))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	ocr, err := NewVisionOCR(ctx, opts...)
	if err != nil {
		_ = storageClient.Close()
		return nil, nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	vertexClient, err := NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.GeminiModel, opts...)
	if err != nil {
		_ = storageClient.Close()
		_ = ocr.Close()
		return nil, nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		_ = storageClient.Close()
		_ = ocr.Close()
		_ = vertexClient.Close()
		return nil, nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	verifier, err := NewFirebaseVerifier(ctx, cfg.ProjectID, opts...)
	if err != nil {
		_ = storageClient.Close()
		_ = ocr.Close()
		_ = vertexClient.Close()
		_ = firestoreClient.Close()
		return nil, nil, fmt.Errorf("failed to create firebase verifier: %w", err)
	}

	bundle := &ClientBundle{
		Storage:  NewGCSStore(storageClient, cfg.BucketName),
		OCR:      ocr,
		Vertex:   vertexClient,
		History:  NewFirestoreHistory(firestoreClient, cfg.FirestoreCollection),
		Verifier: verifier,
	}

	cleanup := func() {
		_ = firestoreClient.Close()
		_ = vertexClient.Close()
		_ = ocr.Close()
		_ = storageClient.Close()
	}
	return bundle, cleanup, nil
}
