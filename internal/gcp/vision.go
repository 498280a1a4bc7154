package gcp

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionOCR wraps the Cloud Vision image annotator for asynchronous
// full-document text detection against GCS objects.
type VisionOCR struct {
	client *vision.ImageAnnotatorClient
}

func NewVisionOCR(ctx context.Context, opts ...option.ClientOption) (*VisionOCR, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision.NewImageAnnotatorClient: %w", err)
	}
	return &VisionOCR{client: client}, nil
}

// DetectDocumentText submits an async batch annotate job reading the source
// object and writing paginated JSON output under destinationURI, then blocks
// until the operation resolves or ctx expires. There is no retry; a single
// failed attempt propagates to the caller.
func (v *VisionOCR) DetectDocumentText(ctx context.Context, sourceURI, mimeType, destinationURI string, batchSize int32) error {
	req := &visionpb.AsyncBatchAnnotateFilesRequest{
		Requests: []*visionpb.AsyncAnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					GcsSource: &visionpb.GcsSource{Uri: sourceURI},
					MimeType:  mimeType,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				OutputConfig: &visionpb.OutputConfig{
					GcsDestination: &visionpb.GcsDestination{Uri: destinationURI},
					BatchSize:      batchSize,
				},
			},
		},
	}

	op, err := v.client.AsyncBatchAnnotateFiles(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to submit async batch annotate job: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("async batch annotate job failed: %w", err)
	}
	return nil
}

func (v *VisionOCR) Close() error {
	return v.client.Close()
}
