package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/monngon/bep/internal/api"
	"github.com/monngon/bep/internal/cache"
	"github.com/monngon/bep/internal/store"
	"github.com/monngon/bep/internal/worker"
)

// generationScript is the canned backend answer used across the
// end-to-end tests. Its display names match the seeded dictionary so
// the derived cache key equals the request's key.
const generationScript = `{
  "compatibility": {
    "compatible": ["chicken", "scallion"],
    "incompatible": [],
    "explanation": ""
  },
  "recipes": [
    {
      "name": "Gà xào hành lá",
      "description": "Quick chicken and scallion stir-fry",
      "ingredients": [
        {"canonical_name": "chicken", "display_name": "thịt gà", "amount": 300, "unit": "g", "importance": "essential"},
        {"canonical_name": "scallion", "display_name": "hành lá", "amount": 50, "unit": "g", "importance": "important"}
      ],
      "steps": ["Slice the chicken.", "Stir-fry over high heat.", "Finish with scallion."],
      "cooking_time_minutes": 20,
      "difficulty": "easy",
      "servings": 2
    }
  ]
}`

func newTestProcessor(f *engineFixture) *worker.SuggestionProcessor {
	return worker.NewSuggestionProcessor(
		f.jobs, f.cacheStore, f.dictionary, f.learned, f.provider, f.estimator,
		30*time.Second, nil)
}

func authedRequest(t *testing.T, method, target string, body *bytes.Reader, userID string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer "+createTestToken(testSecret, testIssuer, userID))
	return req
}

// ============================================================================
// End-to-End Suggestion Flow
// ============================================================================

func TestSuggestionFlow_MissThenWorkerThenHit(t *testing.T) {
	r, f := newTestRouter(t)
	f.provider.suggestionResponse = generationScript

	// 1. First request misses the cache and queues a job.
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, "POST", "/api/suggest", suggestBody(t), "user-1"))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d: %s", http.StatusAccepted, rr.Code, rr.Body.String())
	}
	var queued api.SuggestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &queued); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	// 2. The worker consumes the captured task.
	processor := newTestProcessor(f)
	if err := processor.HandleGenerateSuggestion(context.Background(), f.queue.pop(t)); err != nil {
		t.Fatalf("worker failed: %v", err)
	}

	// 3. Polling reports the completed job with the generated recipe.
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, "GET", "/api/suggest-status?job_id="+queued.JobID, nil, "user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var status api.JobStatusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if status.Status != string(store.JobCompleted) {
		t.Fatalf("job status = %q, want completed (error: %q)", status.Status, status.Error)
	}
	if len(status.Suggestions) != 1 || status.Suggestions[0].Name != "Gà xào hành lá" {
		t.Errorf("unexpected suggestions: %+v", status.Suggestions)
	}
	if status.CacheKey != "hanh-la|thit-ga|s2|none|t30" {
		t.Errorf("cache key = %q", status.CacheKey)
	}

	// 4. The same request now answers synchronously from the cache.
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, "POST", "/api/suggest", suggestBody(t), "user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d on repeat, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var hit api.SuggestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &hit); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !hit.CacheHit || hit.PartialMatch {
		t.Errorf("expected an exact cache hit, got %+v", hit)
	}
	if len(hit.Suggestions) != 1 {
		t.Errorf("expected 1 cached suggestion, got %d", len(hit.Suggestions))
	}
}

func TestSuggestionFlow_PartialHitOnSubset(t *testing.T) {
	r, f := newTestRouter(t)
	f.provider.suggestionResponse = generationScript

	// Warm the cache through the full pipeline.
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, "POST", "/api/suggest", suggestBody(t), "user-1"))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("warm-up: expected status %d, got %d", http.StatusAccepted, rr.Code)
	}
	processor := newTestProcessor(f)
	if err := processor.HandleGenerateSuggestion(context.Background(), f.queue.pop(t)); err != nil {
		t.Fatalf("worker failed: %v", err)
	}

	// A request for just the chicken, with a tighter time ceiling the
	// cached entry's ceiling still covers, matches partially.
	body, err := json.Marshal(api.SuggestRequest{
		Ingredients: []string{"thịt gà"},
		Settings:    cache.RequestSettings{Servings: 2, MaxCookingTime: 15},
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, "POST", "/api/suggest", bytes.NewReader(body), "user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var hit api.SuggestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &hit); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !hit.CacheHit || !hit.PartialMatch {
		t.Errorf("expected a partial cache hit, got %+v", hit)
	}
}

func TestSuggestionFlow_AITranslationSeedsLearnedCache(t *testing.T) {
	r, f := newTestRouter(t)
	f.provider.suggestionResponse = generationScript
	f.provider.translations["rau răm"] = `{"valid": true, "canonical": "vietnamese coriander", "general_form": "herb", "category": "herb"}`

	body, err := json.Marshal(api.SuggestRequest{
		Ingredients: []string{"thịt gà", "rau răm"},
		Settings:    cache.RequestSettings{Servings: 2, MaxCookingTime: 30},
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, "POST", "/api/suggest", bytes.NewReader(body), "user-1"))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d: %s", http.StatusAccepted, rr.Code, rr.Body.String())
	}

	learned, err := f.learned.Get(context.Background(), "rau-ram")
	if err != nil {
		t.Fatalf("learned get: %v", err)
	}
	if learned == nil {
		t.Fatal("AI translation was not persisted in the learned cache")
	}
	if learned.CanonicalEnglish != "vietnamese coriander" {
		t.Errorf("canonical = %q", learned.CanonicalEnglish)
	}
	if learned.AddedBy != store.SourceAI {
		t.Errorf("added by = %q, want ai", learned.AddedBy)
	}
}

func TestSuggestionFlow_DailyLimitEnforced(t *testing.T) {
	r, f := newTestRouter(t)
	f.provider.suggestionResponse = generationScript
	f.limiter.limit = 2

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, authedRequest(t, "POST", "/api/suggest", suggestBody(t), "user-1"))
		if rr.Code != http.StatusAccepted {
			t.Fatalf("request %d: expected status %d, got %d", i+1, http.StatusAccepted, rr.Code)
		}
		f.queue.pop(t)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, "POST", "/api/suggest", suggestBody(t), "user-1"))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", rr.Header().Get("X-RateLimit-Remaining"))
	}

	// Another user is unaffected.
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, "POST", "/api/suggest", suggestBody(t), "user-2"))
	if rr.Code != http.StatusAccepted {
		t.Errorf("expected status %d for a different user, got %d", http.StatusAccepted, rr.Code)
	}
}

func TestSuggestionFlow_UnknownJobPollReturnsNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, "GET", "/api/suggest-status?job_id=no-such-job", nil, "user-1"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNotFound, rr.Code, rr.Body.String())
	}
}

func TestSuggestionFlow_GenerationFailureIsReported(t *testing.T) {
	r, f := newTestRouter(t)
	f.provider.suggestionResponse = "sorry, I had trouble with that"

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, "POST", "/api/suggest", suggestBody(t), "user-1"))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, rr.Code)
	}
	var queued api.SuggestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &queued); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	processor := newTestProcessor(f)
	if err := processor.HandleGenerateSuggestion(context.Background(), f.queue.pop(t)); err != nil {
		t.Fatalf("parse failures must be terminal, got: %v", err)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, "GET", "/api/suggest-status?job_id="+queued.JobID, nil, "user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var status api.JobStatusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if status.Status != string(store.JobFailed) {
		t.Errorf("job status = %q, want failed", status.Status)
	}
	if status.Error == "" {
		t.Error("expected the failure cause to be recorded")
	}
}
