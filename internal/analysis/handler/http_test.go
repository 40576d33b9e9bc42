package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/youzhaozhao/ContractClarity/internal/analysis"
	"github.com/youzhaozhao/ContractClarity/internal/llm"
)

// cannedCompleter answers each prompt by keyword with minimal valid stage
// output.
type cannedCompleter struct{}

func (cannedCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	switch {
	case strings.Contains(req.Prompt, "CONTRACT UNDER REVIEW"):
		return `{"contractType":"lease","overallRisk":"medium","riskScore":55,"summary":"ok","issues":[]}`, nil
	case strings.Contains(req.Prompt, "negotiation email"):
		return `{"strategy":"s","email":"e"}`, nil
	case strings.Contains(req.Prompt, "negotiation scripts"):
		return `{"talkTrack":{"opening":"o","reasons":[]},"styles":{}}`, nil
	case strings.Contains(req.Prompt, "revised contract"):
		return `{"revisedContract":"rc","revisionNotes":[],"revisionSummary":"rs"}`, nil
	}
	// OCR refine and anything else: echo plain text.
	return "cleaned text", nil
}

type failingCompleter struct{}

func (failingCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	return "", errors.New("upstream unavailable")
}

type nopSearcher struct{}

func (nopSearcher) Search(ctx context.Context, category, query string, k int) ([]string, error) {
	return nil, nil
}

func newTestHandler(t *testing.T, workers, queueSize int) (http.Handler, *analysis.Registry, *analysis.Pool) {
	t.Helper()
	registry := analysis.NewRegistry()
	runner := analysis.NewRunner(cannedCompleter{}, nopSearcher{}, registry, time.Second, zerolog.Nop())
	pool := analysis.NewPool(workers, queueSize, func(task analysis.Task) {
		runner.Run(task.JobID, task.Text, task.Category, task.Language)
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.Shutdown(ctx)
	})
	r := chi.NewRouter()
	NewAnalysisHandler(registry, pool, runner).Mount(r)
	return r, registry, pool
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func waitTerminal(t *testing.T, registry *analysis.Registry, jobID string) analysis.Job {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("job did not reach a terminal state")
		default:
		}
		if job, ok := registry.Get(jobID); ok && job.Status != analysis.StatusProcessing {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAnalyzeAndPoll(t *testing.T) {
	h, registry, _ := newTestHandler(t, 1, 4)

	rec, body := doJSON(t, h, http.MethodPost, "/analyze",
		map[string]string{"text": "the contract", "category": "rental", "language": "en"})
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d body = %s", rec.Code, rec.Body.String())
	}
	jobID, _ := body["job_id"].(string)
	if jobID == "" {
		t.Fatal("expected job_id")
	}

	waitTerminal(t, registry, jobID)

	rec, body = doJSON(t, h, http.MethodGet, "/status/"+jobID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status status = %d", rec.Code)
	}
	if body["status"] != string(analysis.StatusCompleted) {
		t.Fatalf("status = %v error = %v", body["status"], body["error"])
	}
	if body["stage"] != float64(4) {
		t.Errorf("stage = %v, want 4", body["stage"])
	}
	result, _ := body["result"].(map[string]any)
	if result == nil {
		t.Fatal("expected result")
	}
	if result["contractType"] != "lease" || result["revisedContract"] != "rc" {
		t.Errorf("result = %v", result)
	}
	if _, ok := result["negotiation"]; !ok {
		t.Error("expected negotiation block")
	}
}

func TestAnalyze_EmptyText(t *testing.T) {
	h, _, _ := newTestHandler(t, 1, 4)
	for _, text := range []string{"", "   \n\t"} {
		rec, body := doJSON(t, h, http.MethodPost, "/analyze", map[string]string{"text": text})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("text %q: status = %d, want 400", text, rec.Code)
		}
		if body["error"] != "invalid_request" {
			t.Errorf("text %q: error = %v", text, body["error"])
		}
	}
}

func TestAnalyze_QueueFull(t *testing.T) {
	registry := analysis.NewRegistry()
	runner := analysis.NewRunner(cannedCompleter{}, nopSearcher{}, registry, time.Second, zerolog.Nop())
	block := make(chan struct{})
	pool := analysis.NewPool(1, 1, func(task analysis.Task) { <-block })
	t.Cleanup(func() {
		close(block)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.Shutdown(ctx)
	})
	r := chi.NewRouter()
	NewAnalysisHandler(registry, pool, runner).Mount(r)

	// Saturate the single worker and the single queue slot, then expect 503.
	var rejected *httptest.ResponseRecorder
	var rejectedBody map[string]any
	for i := 0; i < 10; i++ {
		rec, body := doJSON(t, r, http.MethodPost, "/analyze", map[string]string{"text": "contract"})
		if rec.Code == http.StatusServiceUnavailable {
			rejected = rec
			rejectedBody = body
			break
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d", rec.Code)
		}
	}
	if rejected == nil {
		t.Fatal("expected a 503 once the queue filled")
	}
	if rejectedBody["error"] != "busy" {
		t.Errorf("error = %v, want busy", rejectedBody["error"])
	}
}

func TestAnalyze_RejectedJobIsFailed(t *testing.T) {
	registry := analysis.NewRegistry()
	runner := analysis.NewRunner(cannedCompleter{}, nopSearcher{}, registry, time.Second, zerolog.Nop())
	pool := analysis.NewPool(1, 1, func(task analysis.Task) {})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pool.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	r := chi.NewRouter()
	NewAnalysisHandler(registry, pool, runner).Mount(r)

	rec, body := doJSON(t, r, http.MethodPost, "/analyze", map[string]string{"text": "contract"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body["error"] != "busy" {
		t.Errorf("error = %v, want busy", body["error"])
	}
}

func TestStatus_UnknownJob(t *testing.T) {
	h, _, _ := newTestHandler(t, 1, 4)
	rec, body := doJSON(t, h, http.MethodGet, "/status/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body["error"] != "not_found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestOCRRefine(t *testing.T) {
	h, _, _ := newTestHandler(t, 1, 4)

	rec, body := doJSON(t, h, http.MethodPost, "/ocr-refine", map[string]string{"text": "n0isy 0CR text"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["text"] != "cleaned text" {
		t.Errorf("text = %v", body["text"])
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/ocr-refine", map[string]string{"text": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty text status = %d, want 400", rec.Code)
	}
}

func TestOCRRefine_UpstreamError(t *testing.T) {
	registry := analysis.NewRegistry()
	runner := analysis.NewRunner(failingCompleter{}, nopSearcher{}, registry, time.Second, zerolog.Nop())
	pool := analysis.NewPool(1, 1, func(task analysis.Task) {})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.Shutdown(ctx)
	})
	r := chi.NewRouter()
	NewAnalysisHandler(registry, pool, runner).Mount(r)

	rec, body := doJSON(t, r, http.MethodPost, "/ocr-refine", map[string]string{"text": "x"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if body["error"] != "upstream_error" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestLanguages(t *testing.T) {
	h, _, _ := newTestHandler(t, 1, 4)
	rec, body := doJSON(t, h, http.MethodGet, "/languages", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	langs, _ := body["languages"].(map[string]any)
	if len(langs) != len(analysis.Languages) {
		t.Errorf("languages = %d entries, want %d", len(langs), len(analysis.Languages))
	}
	if langs["zh-CN"] == "" {
		t.Error("expected zh-CN entry")
	}
}
