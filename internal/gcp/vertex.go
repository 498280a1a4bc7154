package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// --- Analyzer Model Prompt ---
const analyzerPromptTemplate = `You are an expert legal document analyzer named "Lexi सिंपलीफाई".
Your task is to analyze the following document text and provide a structured JSON output.
All explanations must be in extremely simple, clear, and plain language.

Document Text:
"""
%s
"""

Based on the text, provide the following in a single JSON object:
1. "category": A one or two-word category for the document.
2. "summary": A comprehensive and highly detailed summary of the entire document.
3. "risks": An array of strings, where each string is a potential risk or obligation.
4. "jargon": An array of objects, each with a "term" and an "explanation".
5. "translations": An object containing the translation of the 'summary' and 'risks' fields into **%s**. The object must have two keys: "summary" (a string) and "risks" (an array of strings).`

// QARefusalSentence is the exact wording the Q&A model is instructed to
// return for questions unrelated to the summary. Downstream consumers match
// on it verbatim, so it must never be reworded.
const QARefusalSentence = `I'm sorry, but the answer to that question cannot be found in the document's summary.`

// --- Q&A Model Prompt ---
const qaPromptTemplate = `You are a helpful Q&A assistant for a legal document analysis tool.
Your task is to answer the user's question based ONLY on the provided summary of a legal document.
The question can be anything about the summary and related to it but if the question is not at all related to the summary, you MUST respond with: "%s"

Here is the document summary:
"""
%s
"""

Here is the user's question:
"""
%s
"""

Provide your answer:`

// BuildAnalyzerPrompt renders the single structured prompt for document
// analysis. The caller is responsible for truncating text beforehand.
func BuildAnalyzerPrompt(text, targetLanguage string) string {
	return fmt.Sprintf(analyzerPromptTemplate, text, targetLanguage)
}

// BuildQAPrompt renders the follow-up question prompt, grounding the model
// strictly in the supplied summary.
func BuildQAPrompt(summary, question string) string {
	return fmt.Sprintf(qaPromptTemplate, QARefusalSentence, summary, question)
}

// VertexClient holds the pre-configured generative models for our app.
type VertexClient struct {
	AnalyzerModel *genai.GenerativeModel
	QAModel       *genai.GenerativeModel
	baseClient    *genai.Client
}

// NewVertexClient creates a client holding both models. The analyzer model is
// forced into JSON output mode; the Q&A model returns plain text.
func NewVertexClient(ctx context.Context, projectID, region, modelName string, opts ...option.ClientOption) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region, opts...)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	analyzerModel := baseClient.GenerativeModel(modelName)
	analyzerModel.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	}
	analyzerModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	qaModel := baseClient.GenerativeModel(modelName)

	return &VertexClient{
		AnalyzerModel: analyzerModel,
		QAModel:       qaModel,
		baseClient:    baseClient,
	}, nil
}

// GenerateAnalysis runs the analyzer model once and returns its raw text
// output. JSON parsing is the caller's concern.
func (c *VertexClient) GenerateAnalysis(ctx context.Context, prompt string) (string, error) {
	resp, err := c.AnalyzerModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate analysis from gemini: %w", err)
	}
	return extractText(resp), nil
}

// GenerateAnswer runs the Q&A model once and returns its text output.
func (c *VertexClient) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	resp, err := c.QAModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate answer from gemini: %w", err)
	}
	return extractText(resp), nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// extractText concatenates all text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}
