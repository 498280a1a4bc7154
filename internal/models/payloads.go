package models

// These structs define the JSON payloads exchanged with the frontend.

// AskRequest is the input for the follow-up Q&A endpoint. The answer is
// grounded strictly in the supplied summary.
type AskRequest struct {
	Summary  string `json:"summary"`
	Question string `json:"question"`
}

// AskResponse is the output of the follow-up Q&A endpoint.
type AskResponse struct {
	Answer string `json:"answer"`
}

// SaveResponse acknowledges a saved analysis with its record id.
type SaveResponse struct {
	ID string `json:"id"`
}

// StatusResponse carries a human-readable status message.
type StatusResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
