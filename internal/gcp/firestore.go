package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/the-steelix-flame/lexi-simplifai/internal/models"
)

const analysesSubcollection = "analyses"

// FirestoreHistory stores per-user analysis records under
// <collection>/<uid>/analyses. Records are immutable after creation; the only
// write operations are append and bulk delete.
type FirestoreHistory struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreHistory(client *firestore.Client, collection string) *FirestoreHistory {
	return &FirestoreHistory{client: client, collection: collection}
}

func (h *FirestoreHistory) analyses(uid string) *firestore.CollectionRef {
	return h.client.Collection(h.collection).Doc(uid).Collection(analysesSubcollection)
}

// Append stores one record and returns its generated document id.
func (h *FirestoreHistory) Append(ctx context.Context, uid string, rec *models.AnalysisRecord) (string, error) {
	docRef, _, err := h.analyses(uid).Add(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("failed to append analysis record: %w", err)
	}
	return docRef.ID, nil
}

// List returns all records for uid, newest first.
func (h *FirestoreHistory) List(ctx context.Context, uid string) ([]models.AnalysisRecord, error) {
	docs, err := h.analyses(uid).OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis records: %w", err)
	}
	records := make([]models.AnalysisRecord, 0, len(docs))
	for _, doc := range docs {
		var rec models.AnalysisRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode analysis record %s: %w", doc.Ref.ID, err)
		}
		rec.ID = doc.Ref.ID
		records = append(records, rec)
	}
	return records, nil
}

// DeleteAll removes every record for uid and reports how many were deleted.
// The deletion covers the snapshot of documents visible when it lists; an
// append racing with it may survive.
func (h *FirestoreHistory) DeleteAll(ctx context.Context, uid string) (int, error) {
	docs, err := h.analyses(uid).Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list analysis records for deletion: %w", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	bw := h.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to enqueue delete for %s: %w", doc.Ref.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return 0, fmt.Errorf("failed to delete analysis record: %w", err)
		}
	}
	return len(docs), nil
}
