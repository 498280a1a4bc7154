package services

import (
	"context"
	"log/slog"

	"github.com/the-steelix-flame/lexi-simplifai/internal/apperrors"
	"github.com/the-steelix-flame/lexi-simplifai/internal/gcp"
	"github.com/the-steelix-flame/lexi-simplifai/internal/models"
)

// QAService answers follow-up questions strictly from a previously produced
// summary. The grounding is a prompt-level contract: for unrelated questions
// the model is instructed to return gcp.QARefusalSentence verbatim, and the
// service passes that wording through untouched.
type QAService struct {
	llm TextGenerator
}

func NewQAService(llm TextGenerator) *QAService {
	return &QAService{llm: llm}
}

// Answer returns the model's answer for one question against one summary.
func (s *QAService) Answer(ctx context.Context, req *models.AskRequest) (string, error) {
	if req == nil || req.Summary == "" || req.Question == "" {
		return "", apperrors.NewMissingInput("Summary and question are required.")
	}

	answer, err := s.llm.GenerateAnswer(ctx, gcp.BuildQAPrompt(req.Summary, req.Question))
	if err != nil {
		slog.Error("Q&A model invocation failed", "error", err)
		return "", apperrors.NewLLMFailure("Failed to get an answer.", err)
	}
	return answer, nil
}
