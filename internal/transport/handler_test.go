package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/the-steelix-flame/lexi-simplifai/internal/gcp"
	"github.com/the-steelix-flame/lexi-simplifai/internal/models"
	"github.com/the-steelix-flame/lexi-simplifai/internal/services"
)

const testBucket = "test-bucket"

type fakeBlobStore struct {
	objects map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Upload(_ context.Context, object, _ string, data []byte) error {
	f.objects[object] = data
	return nil
}

func (f *fakeBlobStore) Read(_ context.Context, object string) ([]byte, error) {
	data, ok := f.objects[object]
	if !ok {
		return nil, fmt.Errorf("object %s not found", object)
	}
	return data, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, object string) error {
	delete(f.objects, object)
	return nil
}

func (f *fakeBlobStore) ListPrefix(_ context.Context, prefix string) ([]string, error) {
	var names []string
	for name := range f.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeBlobStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	names, _ := f.ListPrefix(ctx, prefix)
	for _, name := range names {
		delete(f.objects, name)
	}
	return nil
}

func (f *fakeBlobStore) URI(object string) string {
	return fmt.Sprintf("gs://%s/%s", testBucket, object)
}

type fakeOCR struct {
	store *fakeBlobStore
	text  string
}

func (f *fakeOCR) DetectDocumentText(ctx context.Context, _, _, destinationURI string, _ int32) error {
	prefix := strings.TrimPrefix(destinationURI, fmt.Sprintf("gs://%s/", testBucket))
	shard := fmt.Sprintf(`{"responses":[{"fullTextAnnotation":{"text":%q}}]}`, f.text)
	return f.store.Upload(ctx, prefix+"output-1-to-1.json", "application/json", []byte(shard))
}

type fakeLLM struct {
	analysisOutput string
	answerOutput   string
	analysisCalls  int
	answerCalls    int
}

func (f *fakeLLM) GenerateAnalysis(context.Context, string) (string, error) {
	f.analysisCalls++
	return f.analysisOutput, nil
}

func (f *fakeLLM) GenerateAnswer(context.Context, string) (string, error) {
	f.answerCalls++
	return f.answerOutput, nil
}

type fakeHistoryStore struct {
	records map[string][]models.AnalysisRecord
	nextID  int
	calls   int
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{records: map[string][]models.AnalysisRecord{}}
}

func (f *fakeHistoryStore) Append(_ context.Context, uid string, rec *models.AnalysisRecord) (string, error) {
	f.calls++
	f.nextID++
	id := fmt.Sprintf("rec-%d", f.nextID)
	stored := *rec
	stored.ID = id
	f.records[uid] = append(f.records[uid], stored)
	return id, nil
}

func (f *fakeHistoryStore) List(_ context.Context, uid string) ([]models.AnalysisRecord, error) {
	f.calls++
	out := append([]models.AnalysisRecord(nil), f.records[uid]...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeHistoryStore) DeleteAll(_ context.Context, uid string) (int, error) {
	f.calls++
	n := len(f.records[uid])
	delete(f.records, uid)
	return n, nil
}

type fakeVerifier struct {
	uids  map[string]string
	calls int
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (string, error) {
	f.calls++
	uid, ok := f.uids[idToken]
	if !ok {
		return "", fmt.Errorf("invalid token")
	}
	return uid, nil
}

type testEnv struct {
	router   *gin.Engine
	blobs    *fakeBlobStore
	llm      *fakeLLM
	store    *fakeHistoryStore
	verifier *fakeVerifier
}

const validAnalysisJSON = `{
	"category": "Contract",
	"summary": "An agreement between two parties.",
	"risks": ["Penalty clause."],
	"jargon": [{"term": "Party", "explanation": "A person in the agreement."}],
	"translations": {"summary": "Un accord.", "risks": ["Clause de penalite."]}
}`

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	blobs := newFakeBlobStore()
	llm := &fakeLLM{analysisOutput: validAnalysisJSON, answerOutput: "An answer."}
	store := newFakeHistoryStore()
	verifier := &fakeVerifier{uids: map[string]string{"good-token": "user-1"}}

	analyzer := services.NewAnalyzerService(blobs, &fakeOCR{store: blobs, text: "Extracted text."}, llm, services.AnalyzerConfig{
		OCRBatchSize:   20,
		MaxPromptChars: 25000,
	})
	qa := services.NewQAService(llm)
	history := services.NewHistoryService(store)

	router := NewRouter(analyzer, qa, history, Options{
		Verifier:       verifier,
		RequestTimeout: 30 * time.Second,
		MaxUploadSize:  10 * 1024 * 1024,
	})
	return &testEnv{router: router, blobs: blobs, llm: llm, store: store, verifier: verifier}
}

func multipartUpload(t *testing.T, fieldFile bool, language string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if fieldFile {
		part, err := writer.CreateFormFile("file", "contract.png")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write([]byte("fake image bytes")); err != nil {
			t.Fatalf("part.Write: %v", err)
		}
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestAnalyze_Success(t *testing.T) {
	env := newTestEnv()
	body, contentType := multipartUpload(t, true, "French")

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Category != "Contract" {
		t.Errorf("Expected category Contract, got %q", result.Category)
	}
	if result.FileName != "contract.png" {
		t.Errorf("Expected fileName contract.png, got %q", result.FileName)
	}
	if len(env.blobs.objects) != 0 {
		t.Errorf("Expected all temporary objects cleaned up, %d remain", len(env.blobs.objects))
	}
}

func TestAnalyze_MissingFile(t *testing.T) {
	env := newTestEnv()
	body, contentType := multipartUpload(t, false, "English")

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error != "No file uploaded." {
		t.Errorf("Unexpected error message: %q", resp.Error)
	}
	if env.llm.analysisCalls != 0 {
		t.Errorf("Expected zero LLM calls, got %d", env.llm.analysisCalls)
	}
}

func TestAnalyze_UploadTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)

	blobs := newFakeBlobStore()
	llm := &fakeLLM{analysisOutput: validAnalysisJSON}
	analyzer := services.NewAnalyzerService(blobs, &fakeOCR{store: blobs, text: "x"}, llm, services.AnalyzerConfig{
		OCRBatchSize:   20,
		MaxPromptChars: 25000,
	})
	router := NewRouter(analyzer, services.NewQAService(llm), services.NewHistoryService(newFakeHistoryStore()), Options{
		Verifier:       &fakeVerifier{uids: map[string]string{}},
		RequestTimeout: 30 * time.Second,
		MaxUploadSize:  512,
	})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "big.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(bytes.Repeat([]byte("a"), 4096)); err != nil {
		t.Fatalf("part.Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected 413, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error != "Uploaded file is too large." {
		t.Errorf("Unexpected error message: %q", resp.Error)
	}
	if llm.analysisCalls != 0 {
		t.Errorf("Expected zero LLM calls for an oversized upload, got %d", llm.analysisCalls)
	}
	if len(blobs.objects) != 0 {
		t.Errorf("Expected nothing uploaded to storage, %d objects present", len(blobs.objects))
	}
}

func TestAsk_MissingFields(t *testing.T) {
	env := newTestEnv()

	for _, payload := range []string{`{}`, `{"summary":"s"}`, `{"question":"q"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Payload %q: expected 400, got %d", payload, w.Code)
		}
	}
	if env.llm.answerCalls != 0 {
		t.Errorf("Expected zero LLM calls for invalid input, got %d", env.llm.answerCalls)
	}
}

func TestAsk_RefusalSentenceVerbatim(t *testing.T) {
	env := newTestEnv()
	env.llm.answerOutput = gcp.QARefusalSentence

	payload := `{"summary":"A lease agreement.","question":"Who won the world cup?"}`
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp models.AskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Answer != gcp.QARefusalSentence {
		t.Errorf("Expected the refusal sentence verbatim, got %q", resp.Answer)
	}
}

func TestHistory_Unauthorized(t *testing.T) {
	env := newTestEnv()

	cases := []struct {
		method string
		path   string
		header string
	}{
		{http.MethodGet, "/history", ""},
		{http.MethodDelete, "/history/clear", ""},
		{http.MethodPost, "/history", ""},
		{http.MethodGet, "/history", "Basic abc"},
		{http.MethodGet, "/history", "Bearer bad-token"},
		{http.MethodDelete, "/history/clear", "Bearer bad-token"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with header %q: expected 401, got %d", tc.method, tc.path, tc.header, w.Code)
		}
		var resp models.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Error != "Unauthorized" {
			t.Errorf("Unexpected error body: %q", resp.Error)
		}
	}
	if env.store.calls != 0 {
		t.Errorf("Expected the store never to be touched, got %d calls", env.store.calls)
	}
}

func TestHistory_SaveListClear(t *testing.T) {
	env := newTestEnv()

	save := func(fileName string) string {
		t.Helper()
		result := models.AnalysisResult{
			Category: "Contract",
			Summary:  "Summary of " + fileName,
			FileName: fileName,
		}
		payload, _ := json.Marshal(result)
		req := httptest.NewRequest(http.MethodPost, "/history", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var resp models.SaveResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode save response: %v", err)
		}
		return resp.ID
	}

	id1 := save("first.pdf")
	id2 := save("second.pdf")
	if id1 == id2 {
		t.Errorf("Expected distinct record ids, both were %q", id1)
	}

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var records []models.AnalysisRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("Failed to decode history: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].ID == "" || records[1].ID == "" {
		t.Error("Expected every record to include its id")
	}

	req = httptest.NewRequest(http.MethodDelete, "/history/clear", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var status models.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if status.Message != "History cleared successfully." {
		t.Errorf("Unexpected message: %q", status.Message)
	}

	req = httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("Expected empty JSON array after clear, got %q", body)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "available") {
		t.Errorf("Unexpected health body: %s", w.Body.String())
	}
}
