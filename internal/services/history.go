package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/the-steelix-flame/lexi-simplifai/internal/apperrors"
	"github.com/the-steelix-flame/lexi-simplifai/internal/models"
)

// HistoryService manages one user's saved analyses: append, ordered listing,
// and bulk delete. Records are immutable after creation.
type HistoryService struct {
	store HistoryStore
	now   func() time.Time
}

func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store, now: time.Now}
}

// Save appends one analysis for uid with a server-assigned creation
// timestamp and returns the stored record including its id.
func (s *HistoryService) Save(ctx context.Context, uid string, result *models.AnalysisResult) (*models.AnalysisRecord, error) {
	if result == nil || result.Summary == "" {
		return nil, apperrors.NewMissingInput("Analysis payload is required.")
	}

	rec := &models.AnalysisRecord{
		CreatedAt:      s.now().UTC(),
		AnalysisResult: *result,
	}
	id, err := s.store.Append(ctx, uid, rec)
	if err != nil {
		slog.Error("Failed to save analysis record", "uid", uid, "error", err)
		return nil, apperrors.NewDatabaseFailure("Failed to save analysis.", err)
	}
	rec.ID = id
	return rec, nil
}

// List returns all records for uid, newest first. An empty history yields an
// empty slice, not nil, so the JSON response is always an array.
func (s *HistoryService) List(ctx context.Context, uid string) ([]models.AnalysisRecord, error) {
	records, err := s.store.List(ctx, uid)
	if err != nil {
		slog.Error("Failed to fetch history", "uid", uid, "error", err)
		return nil, apperrors.NewDatabaseFailure("Failed to fetch history.", err)
	}
	if records == nil {
		records = []models.AnalysisRecord{}
	}
	return records, nil
}

// Clear deletes every record for uid and returns a status message.
func (s *HistoryService) Clear(ctx context.Context, uid string) (string, error) {
	deleted, err := s.store.DeleteAll(ctx, uid)
	if err != nil {
		slog.Error("Failed to clear history", "uid", uid, "error", err)
		return "", apperrors.NewDatabaseFailure("Failed to clear history.", err)
	}
	if deleted == 0 {
		return "No documents to delete.", nil
	}
	slog.Info("History cleared.", "uid", uid, "deleted", deleted)
	return "History cleared successfully.", nil
}
