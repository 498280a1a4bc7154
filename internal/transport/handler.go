package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/the-steelix-flame/lexi-simplifai/internal/apperrors"
	"github.com/the-steelix-flame/lexi-simplifai/internal/models"
	"github.com/the-steelix-flame/lexi-simplifai/internal/services"
)

const serverVersion = "1.0.0"

// Handler wires the HTTP surface to the application services.
type Handler struct {
	analyzer *services.AnalyzerService
	qa       *services.QAService
	history  *services.HistoryService

	requestTimeout time.Duration
}

// Options configures the router.
type Options struct {
	Verifier       services.TokenVerifier
	RequestTimeout time.Duration
	MaxUploadSize  int64
}

// NewRouter builds the gin engine with all routes and middleware configured.
func NewRouter(analyzer *services.AnalyzerService, qa *services.QAService, history *services.HistoryService, opts Options) *gin.Engine {
	h := &Handler{
		analyzer:       analyzer,
		qa:             qa,
		history:        history,
		requestTimeout: opts.RequestTimeout,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(requestSizeLimiter(opts.MaxUploadSize))

	r.GET("/health", healthCheck)
	r.POST("/analyze", h.Analyze)
	r.POST("/ask", h.Ask)

	authed := r.Group("/history")
	authed.Use(RequireAuth(opts.Verifier))
	{
		authed.GET("", h.ListHistory)
		authed.POST("", h.SaveAnalysis)
		authed.DELETE("/clear", h.ClearHistory)
	}

	return r
}

// Analyze accepts a multipart document upload and runs the full pipeline.
func (h *Handler) Analyze(c *gin.Context) {
	started := time.Now()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if oversized(err) {
			respondError(c, apperrors.NewFileTooLarge(err))
			return
		}
		respondError(c, apperrors.NewMissingInput("No file uploaded."))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, apperrors.NewUploadFailure(err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		if oversized(err) {
			respondError(c, apperrors.NewFileTooLarge(err))
			return
		}
		respondError(c, apperrors.NewUploadFailure(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	result, err := h.analyzer.Process(ctx, &services.AnalyzeRequest{
		FileName:       fileHeader.Filename,
		ContentType:    fileHeader.Header.Get("Content-Type"),
		Content:        content,
		TargetLanguage: c.PostForm("language"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	slog.Info("Analysis request served.",
		"fileName", result.FileName,
		"durationMs", time.Since(started).Milliseconds())
	c.JSON(http.StatusOK, result)
}

// Ask answers a follow-up question against a previously produced summary.
func (h *Handler) Ask(c *gin.Context) {
	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewMissingInput("Summary and question are required."))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	answer, err := h.qa.Answer(ctx, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AskResponse{Answer: answer})
}

// ListHistory returns the caller's saved analyses, newest first.
func (h *Handler) ListHistory(c *gin.Context) {
	records, err := h.history.List(c.Request.Context(), c.GetString(uidContextKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// SaveAnalysis appends one analysis to the caller's history.
func (h *Handler) SaveAnalysis(c *gin.Context) {
	var result models.AnalysisResult
	if err := c.ShouldBindJSON(&result); err != nil {
		respondError(c, apperrors.NewMissingInput("Analysis payload is required."))
		return
	}

	rec, err := h.history.Save(c.Request.Context(), c.GetString(uidContextKey), &result)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.SaveResponse{ID: rec.ID})
}

// ClearHistory deletes every saved analysis for the caller.
func (h *Handler) ClearHistory(c *gin.Context) {
	message, err := h.history.Clear(c.Request.Context(), c.GetString(uidContextKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Message: message})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": serverVersion,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// oversized reports whether err stems from the request body exceeding the
// configured upload limit.
func oversized(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// respondError maps a typed error to its status code and static public
// message. Internal detail stays in the server log.
func respondError(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.Request.URL.Path, "status", status, "error", err)
	} else {
		slog.Warn("Request rejected", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: apperrors.PublicMessage(err)})
}
