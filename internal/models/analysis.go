package models

import "time"

// JargonEntry explains one piece of legal jargon found in the document.
type JargonEntry struct {
	Term        string `json:"term" firestore:"term"`
	Explanation string `json:"explanation" firestore:"explanation"`
}

// Translations carries the summary and risks rendered in the caller-chosen
// target language. Risk order mirrors the untranslated risks.
type Translations struct {
	Summary string   `json:"summary" firestore:"summary"`
	Risks   []string `json:"risks" firestore:"risks"`
}

// AnalysisResult is the structured output of one document analysis. It is
// immutable once saved: history supports create, read, and bulk delete only.
type AnalysisResult struct {
	Category     string        `json:"category" firestore:"category"`
	Summary      string        `json:"summary" firestore:"summary"`
	Risks        []string      `json:"risks" firestore:"risks"`
	Jargon       []JargonEntry `json:"jargon" firestore:"jargon"`
	Translations Translations  `json:"translations" firestore:"translations"`
	FileName     string        `json:"fileName" firestore:"fileName"`
	PageCount    int           `json:"pageCount,omitempty" firestore:"pageCount,omitempty"`
}

// AnalysisRecord is a saved AnalysisResult plus its server-assigned identity.
type AnalysisRecord struct {
	ID        string    `json:"id" firestore:"-"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	AnalysisResult
}
