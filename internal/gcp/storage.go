package gcp

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
)

// maxConcurrentDeletes bounds the fan-out when removing OCR output shards.
const maxConcurrentDeletes = 10

// GCSStore wraps a storage client scoped to a single bucket. All temporary
// uploads and OCR outputs for the analysis pipeline live in this bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

// URI returns the gs:// URI for an object or prefix in the store's bucket.
func (s *GCSStore) URI(object string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, object)
}

// Upload writes data to the named object with the declared content type.
func (s *GCSStore) Upload(ctx context.Context, object, contentType string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write to GCS object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS write for %s: %w", object, err)
	}
	return nil
}

// Read returns the full content of the named object.
func (s *GCSStore) Read(ctx context.Context, object string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open GCS object %s: %w", object, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object %s: %w", object, err)
	}
	return data, nil
}

// Delete removes a single object.
func (s *GCSStore) Delete(ctx context.Context, object string) error {
	if err := s.client.Bucket(s.bucket).Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %s: %w", object, err)
	}
	return nil
}

// ListPrefix returns the names of all objects under prefix, in the order the
// service lists them. That order is not guaranteed to be page order for
// multi-page OCR output.
func (s *GCSStore) ListPrefix(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// DeleteByPrefix removes every object under prefix with bounded concurrency.
func (s *GCSStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	names, err := s.ListPrefix(ctx, prefix)
	if err != nil {
		return err
	}
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentDeletes)
	for _, name := range names {
		eg.Go(func() error {
			return s.Delete(gctx, name)
		})
	}
	return eg.Wait()
}
