package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/the-steelix-flame/lexi-simplifai/internal/apperrors"
	"github.com/the-steelix-flame/lexi-simplifai/internal/gcp"
	"github.com/the-steelix-flame/lexi-simplifai/internal/models"
)

const (
	ocrOutputPrefixFormat = "ocr-output/%s/"
	defaultLanguage       = "English"
	maxConcurrentReads    = 4
	cleanupTimeout        = time.Minute
)

// AnalyzerConfig holds the tunables of the analysis pipeline.
type AnalyzerConfig struct {
	OCRBatchSize   int32
	MaxPromptChars int
}

// AnalyzerService orchestrates one document analysis: temporary upload, OCR
// job, text aggregation, LLM prompt, response parsing, and the unconditional
// cleanup of every temporary storage artifact.
type AnalyzerService struct {
	blobs  BlobStore
	ocr    OCRRunner
	llm    TextGenerator
	config AnalyzerConfig
}

func NewAnalyzerService(blobs BlobStore, ocr OCRRunner, llm TextGenerator, config AnalyzerConfig) *AnalyzerService {
	return &AnalyzerService{blobs: blobs, ocr: ocr, llm: llm, config: config}
}

// AnalyzeRequest is the input for one analysis run.
type AnalyzeRequest struct {
	FileName       string
	ContentType    string
	Content        []byte
	TargetLanguage string
}

// ocrOutputFile mirrors the JSON shards Vision writes under the output
// prefix. Only the fields the pipeline reads are declared.
type ocrOutputFile struct {
	Responses []ocrResponse `json:"responses"`
}

type ocrResponse struct {
	FullTextAnnotation *struct {
		Text string `json:"text"`
	} `json:"fullTextAnnotation"`
	TextAnnotations []struct {
		Description string `json:"description"`
	} `json:"textAnnotations"`
}

// Process runs the full pipeline and returns a structured result or a typed
// error. Temporary storage objects are removed on every exit path; cleanup
// failures are logged and never mask the primary outcome.
func (s *AnalyzerService) Process(ctx context.Context, req *AnalyzeRequest) (*models.AnalysisResult, error) {
	if req == nil || len(req.Content) == 0 {
		return nil, apperrors.NewMissingInput("No file uploaded.")
	}
	language := req.TargetLanguage
	if language == "" {
		language = defaultLanguage
	}

	logCtx := slog.With("fileName", req.FileName, "contentType", req.ContentType, "language", language)
	logCtx.Info("Starting document analysis.", "sizeBytes", len(req.Content))

	tempObject := uuid.NewString() + "-" + req.FileName
	outputPrefix := fmt.Sprintf(ocrOutputPrefixFormat, uuid.NewString())
	defer s.cleanup(tempObject, outputPrefix, logCtx)

	pageCount := 0
	if req.ContentType == "application/pdf" {
		n, err := pdfPageCount(req.Content)
		if err != nil {
			logCtx.Warn("Failed to inspect PDF for page count.", "error", err)
		} else {
			pageCount = n
			logCtx = logCtx.With("pageCount", pageCount)
		}
	}

	if err := s.blobs.Upload(ctx, tempObject, req.ContentType, req.Content); err != nil {
		logCtx.Error("Failed to upload document to temporary storage", "error", err)
		return nil, apperrors.NewUploadFailure(err)
	}

	err := s.ocr.DetectDocumentText(ctx, s.blobs.URI(tempObject), req.ContentType, s.blobs.URI(outputPrefix), s.config.OCRBatchSize)
	if err != nil {
		logCtx.Error("OCR job failed", "error", err)
		return nil, apperrors.NewOCRFailure(err)
	}

	fullText, err := s.collectExtractedText(ctx, outputPrefix)
	if err != nil {
		logCtx.Error("Failed to read OCR output", "error", err)
		return nil, apperrors.NewOCRFailure(err)
	}
	if strings.TrimSpace(fullText) == "" {
		logCtx.Warn("OCR produced no readable text.")
		return nil, apperrors.NewNoReadableText()
	}

	// Bound cost and latency; truncation is silent and unflagged. The cut
	// must not split a multi-byte rune: the prompt travels to Vertex AI as a
	// protobuf string, which requires valid UTF-8.
	if len(fullText) > s.config.MaxPromptChars {
		cut := s.config.MaxPromptChars
		for cut > 0 && !utf8.RuneStart(fullText[cut]) {
			cut--
		}
		fullText = fullText[:cut]
	}

	raw, err := s.llm.GenerateAnalysis(ctx, gcp.BuildAnalyzerPrompt(fullText, language))
	if err != nil {
		logCtx.Error("LLM invocation failed", "error", err)
		return nil, apperrors.NewLLMFailure("Failed to analyze document.", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &result); err != nil {
		logCtx.Error("Failed to parse LLM response as JSON", "error", err)
		return nil, apperrors.NewLLMFailure("Failed to analyze document.", fmt.Errorf("malformed model output: %w", err))
	}

	result.FileName = req.FileName
	result.PageCount = pageCount
	logCtx.Info("Document analysis complete.", "category", result.Category, "riskCount", len(result.Risks))
	return &result, nil
}

// collectExtractedText reads every .json shard under prefix and concatenates
// the annotated text. Shards are fetched with bounded concurrency but always
// assembled in listing order; that order is not guaranteed to match page
// order for multi-page documents.
func (s *AnalyzerService) collectExtractedText(ctx context.Context, prefix string) (string, error) {
	names, err := s.blobs.ListPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	var shardNames []string
	for _, name := range names {
		if strings.HasSuffix(name, ".json") {
			shardNames = append(shardNames, name)
		}
	}

	texts := make([]string, len(shardNames))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentReads)
	for i, name := range shardNames {
		eg.Go(func() error {
			data, err := s.blobs.Read(gctx, name)
			if err != nil {
				return err
			}
			var shard ocrOutputFile
			if err := json.Unmarshal(data, &shard); err != nil {
				return fmt.Errorf("failed to parse OCR output %s: %w", name, err)
			}
			var sb strings.Builder
			for _, resp := range shard.Responses {
				if resp.FullTextAnnotation != nil && resp.FullTextAnnotation.Text != "" {
					sb.WriteString(resp.FullTextAnnotation.Text)
				} else if len(resp.TextAnnotations) > 0 {
					sb.WriteString(resp.TextAnnotations[0].Description)
				}
			}
			texts[i] = sb.String()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}
	return strings.Join(texts, ""), nil
}

// cleanup removes the temporary upload and every OCR output shard. It runs on
// every exit path with its own deadline so it still executes when the request
// context is already done.
func (s *AnalyzerService) cleanup(tempObject, outputPrefix string, logCtx *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	logCtx.Info("Cleaning up temporary storage objects.")
	if tempObject != "" {
		if err := s.blobs.Delete(ctx, tempObject); err != nil {
			logCtx.Error("Failed to delete temporary upload", "object", tempObject, "error", err)
		}
	}
	if outputPrefix != "" {
		if err := s.blobs.DeleteByPrefix(ctx, outputPrefix); err != nil {
			logCtx.Error("Failed to delete OCR output objects", "prefix", outputPrefix, "error", err)
		}
	}
}

// stripCodeFences removes markdown code-fence markers the model sometimes
// wraps its JSON in.
func stripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
