package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/monngon/bep/internal/cache"
	"github.com/monngon/bep/internal/config"
	apperrors "github.com/monngon/bep/internal/errors"
	"github.com/monngon/bep/internal/ingredient"
	"github.com/monngon/bep/internal/metrics"
	"github.com/monngon/bep/internal/middleware"
	"github.com/monngon/bep/internal/ratelimit"
	"github.com/monngon/bep/internal/services/translate"
	"github.com/monngon/bep/internal/store"
	"github.com/monngon/bep/internal/validation"
	"github.com/monngon/bep/internal/worker"
)

// estimatedGenerationSeconds is what clients are told to wait before
// polling a freshly queued job.
const estimatedGenerationSeconds = 20

// Translator resolves one raw ingredient text to its canonical form.
type Translator interface {
	Translate(ctx context.Context, originalText string) (*translate.Resolution, error)
}

// RateLimiter charges one request against a user's daily quota.
type RateLimiter interface {
	CheckAndReserve(ctx context.Context, userID string) (ratelimit.Result, error)
}

// CacheMatcher looks up cached suggestions for an ingredient set.
type CacheMatcher interface {
	Match(ctx context.Context, ingredients []string, settings cache.RequestSettings) (*cache.MatchResult, error)
}

// JobStore is the job record surface the handlers need. Get reports an
// unknown or expired job as (nil, nil), matching the Redis store.
type JobStore interface {
	Create(ctx context.Context, jobID, userID string) (*store.Job, error)
	Get(ctx context.Context, jobID string) (*store.Job, error)
}

// TaskEnqueuer hands generation tasks to the queue. *asynq.Client
// satisfies it.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Server struct {
	cfg        *config.Config
	translator Translator
	limiter    RateLimiter
	matcher    CacheMatcher
	jobs       JobStore
	queue      TaskEnqueuer
}

func NewServer(cfg *config.Config, translator Translator, limiter RateLimiter, matcher CacheMatcher, jobs JobStore, queue TaskEnqueuer) *Server {
	return &Server{
		cfg:        cfg,
		translator: translator,
		limiter:    limiter,
		matcher:    matcher,
		jobs:       jobs,
		queue:      queue,
	}
}

type SuggestRequest struct {
	Ingredients []string              `json:"ingredients"`
	Settings    cache.RequestSettings `json:"settings"`
}

// ResolvedIngredient is the client-visible translation of one requested
// ingredient.
type ResolvedIngredient struct {
	Original  string `json:"original"`
	Canonical string `json:"canonical"`
	Source    string `json:"source"`
}

// SuggestResponse is the synchronous reply: either cached suggestions
// (cacheHit true) or a queued job to poll (status pending).
type SuggestResponse struct {
	CacheHit     bool                 `json:"cacheHit"`
	PartialMatch bool                 `json:"partialMatch,omitempty"`
	Suggestions  []cache.Suggestion   `json:"suggestions,omitempty"`
	Ingredients  []ResolvedIngredient `json:"ingredients,omitempty"`
	Unrecognized []string             `json:"unrecognized,omitempty"`

	Status           string `json:"status,omitempty"`
	JobID            string `json:"jobId,omitempty"`
	EstimatedSeconds int    `json:"estimatedSeconds,omitempty"`
}

type errorResponse struct {
	Error *apperrors.AppError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("internal error", err)
	}
	if !appErr.IsOperational {
		slog.Error("Request failed", "error", err)
	}
	writeJSON(w, appErr.StatusCode, errorResponse{Error: appErr})
}

// setRateLimitHeaders attaches the standard quota headers. They appear
// on every response that charged the quota, including 429s.
func setRateLimitHeaders(w http.ResponseWriter, res ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining()))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}

// HandleSuggest is the synchronous suggestion path: validate, translate,
// charge the quota, consult the cache, and either answer from cache or
// queue a generation job.
func (s *Server) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	ctx := r.Context()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("invalid request body", "INVALID_BODY", "Send a JSON object with an ingredients array."))
		return
	}

	// A single element may name several ingredients ("thịt gà và hành
	// lá"); split before validation so the item limit applies to what
	// is actually translated.
	req.Ingredients = splitIngredients(req.Ingredients)

	// Cheap structural checks happen before anything that costs a
	// store or API call, and before the quota is charged.
	check := validation.ValidateIngredients(req.Ingredients)
	if !check.IsValid {
		s.recordRequest(ctx, "rejected", startTime)
		writeError(w, apperrors.NewValidationError(check.Reason, "INVALID_INGREDIENTS", "Send between 1 and 20 ingredient names."))
		return
	}

	resolutions, unrecognized, err := s.translateAll(ctx, req.Ingredients)
	if err != nil {
		s.recordRequest(ctx, "error", startTime)
		writeError(w, err)
		return
	}
	if len(resolutions) == 0 {
		s.recordRequest(ctx, "rejected", startTime)
		writeError(w, apperrors.NewValidationError(
			fmt.Sprintf("none of the %d ingredients are recognized edible items", len(req.Ingredients)),
			"NO_VALID_INGREDIENTS", "Check the spelling of the ingredient names."))
		return
	}

	// The quota is charged exactly once per valid request, whatever
	// the cache says afterwards.
	quota, err := s.limiter.CheckAndReserve(ctx, userID)
	if err != nil {
		s.recordRequest(ctx, "error", startTime)
		writeError(w, err)
		return
	}
	setRateLimitHeaders(w, quota)
	if !quota.Allowed {
		metrics.RateLimitRejectionsTotal.Add(ctx, 1)
		s.recordRequest(ctx, "rate_limited", startTime)
		writeError(w, apperrors.NewRateLimitError(
			fmt.Sprintf("daily limit of %d suggestion requests reached", quota.Limit),
			"DAILY_LIMIT_REACHED",
			fmt.Sprintf("The quota resets at %s.", quota.ResetAt.Format(time.RFC3339))))
		return
	}

	slugs := make([]string, 0, len(resolutions))
	resolved := make([]ResolvedIngredient, 0, len(resolutions))
	for _, res := range resolutions {
		slugs = append(slugs, res.NormalizedSource)
		resolved = append(resolved, ResolvedIngredient{
			Original:  res.OriginalText,
			Canonical: res.Canonical,
			Source:    string(res.Source),
		})
	}

	match, err := s.matcher.Match(ctx, slugs, req.Settings)
	if err != nil {
		s.recordRequest(ctx, "error", startTime)
		writeError(w, err)
		return
	}

	// The matcher always returns a result; a nil Entry is the miss.
	if match.Entry != nil {
		outcome := "exact"
		if match.Partial {
			outcome = "partial"
		}
		metrics.CacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		s.recordRequest(ctx, "cache_hit", startTime)
		writeJSON(w, http.StatusOK, SuggestResponse{
			CacheHit:     true,
			PartialMatch: match.Partial,
			Suggestions:  match.Entry.Suggestions,
			Ingredients:  resolved,
			Unrecognized: unrecognized,
		})
		return
	}
	metrics.CacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "miss")))

	jobID, err := s.enqueueGeneration(ctx, userID, resolutions, req.Settings, slugs)
	if err != nil {
		s.recordRequest(ctx, "error", startTime)
		writeError(w, err)
		return
	}

	s.recordRequest(ctx, "queued", startTime)
	writeJSON(w, http.StatusAccepted, SuggestResponse{
		Status:           string(store.JobPending),
		JobID:            jobID,
		EstimatedSeconds: estimatedGenerationSeconds,
		Ingredients:      resolved,
		Unrecognized:     unrecognized,
	})
}

// splitIngredients expands every raw request element through the
// list splitter, so comma- or conjunction-joined names arrive at the
// translator one ingredient at a time.
func splitIngredients(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, ingredient.SplitList(item)...)
	}
	return out
}

// translateAll resolves every requested ingredient concurrently.
// Ingredients the backend rejects as non-edible are dropped and
// reported back; any other failure aborts the request.
func (s *Server) translateAll(ctx context.Context, ingredients []string) ([]*translate.Resolution, []string, error) {
	type outcome struct {
		res *translate.Resolution
		err error
	}

	funcs := make([]func(ctx context.Context) (outcome, error), 0, len(ingredients))
	for _, ing := range ingredients {
		ing := ing
		funcs = append(funcs, func(ctx context.Context) (outcome, error) {
			res, err := s.translator.Translate(ctx, ing)
			return outcome{res: res, err: err}, nil
		})
	}

	outcomes, _ := worker.RunParallelWithResults(ctx, funcs)

	var resolutions []*translate.Resolution
	var unrecognized []string
	seen := make(map[string]struct{}, len(outcomes))
	for i, out := range outcomes {
		if out.err != nil {
			var appErr *apperrors.AppError
			if errors.As(out.err, &appErr) {
				switch appErr.Type {
				case apperrors.ErrorTypeUnknownIngredient:
					unrecognized = append(unrecognized, ingredients[i])
					continue
				case apperrors.ErrorTypeValidation:
					// Blank after normalization; already covered by the
					// structural check for fully empty lists.
					continue
				}
			}
			return nil, nil, out.err
		}
		if _, dup := seen[out.res.NormalizedSource]; dup {
			continue
		}
		seen[out.res.NormalizedSource] = struct{}{}
		resolutions = append(resolutions, out.res)
	}
	return resolutions, unrecognized, nil
}

// enqueueGeneration creates the job record and hands the generation
// task to the queue.
func (s *Server) enqueueGeneration(ctx context.Context, userID string, resolutions []*translate.Resolution, settings cache.RequestSettings, slugs []string) (string, error) {
	jobID := uuid.New().String()

	if _, err := s.jobs.Create(ctx, jobID, userID); err != nil {
		return "", err
	}

	translated := make([]worker.TranslatedIngredient, 0, len(resolutions))
	for _, res := range resolutions {
		translated = append(translated, worker.TranslatedIngredient{
			OriginalText:     res.OriginalText,
			NormalizedSource: res.NormalizedSource,
			Canonical:        res.Canonical,
			GeneralForm:      res.GeneralForm,
			Category:         res.Category,
			Nutrition:        res.Nutrition,
		})
	}

	task, err := worker.NewGenerateSuggestionTask(worker.GenerateSuggestionPayload{
		JobID:       jobID,
		UserID:      userID,
		Ingredients: translated,
		Settings:    settings,
		CacheKey:    cache.GenerateKey(slugs, cache.Quantize(settings)),
	})
	if err != nil {
		return "", apperrors.NewInternalError("failed to create generation task", err)
	}

	if _, err := s.queue.Enqueue(task); err != nil {
		return "", apperrors.NewInternalError("failed to enqueue generation task", err)
	}

	slog.Info("Queued suggestion job", "job_id", jobID, "ingredients", len(translated))
	return jobID, nil
}

func (s *Server) recordRequest(ctx context.Context, outcome string, startTime time.Time) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	metrics.SuggestRequestsTotal.Add(ctx, 1, attrs)
	metrics.SuggestRequestDuration.Record(ctx, time.Since(startTime).Seconds(), attrs)
}

// JobStatusResponse mirrors the stored job record for polling clients.
type JobStatusResponse struct {
	JobID              string             `json:"jobId"`
	Status             string             `json:"status"`
	Suggestions        []cache.Suggestion `json:"suggestions,omitempty"`
	CacheKey           string             `json:"cacheKey,omitempty"`
	Warning            string             `json:"warning,omitempty"`
	CompatibilityNotes string             `json:"compatibilityNotes,omitempty"`
	Error              string             `json:"error,omitempty"`
	CreatedAt          string             `json:"createdAt"`
	CompletedAt        string             `json:"completedAt,omitempty"`
}

// HandleJobStatus reports the state of a queued generation job. Jobs
// are only visible to the user who created them.
func (s *Server) HandleJobStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		writeError(w, apperrors.NewValidationError("job_id is required", "MISSING_JOB_ID", ""))
		return
	}

	job, err := s.jobs.Get(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	if job == nil {
		// Unknown id, or a record past its TTL.
		writeError(w, apperrors.NewNotFoundError(fmt.Sprintf("job %s not found", jobID), "JOB_NOT_FOUND", ""))
		return
	}

	if job.UserID != userID {
		// Same answer as a genuinely unknown job.
		writeError(w, apperrors.NewNotFoundError(fmt.Sprintf("job %s not found", jobID), "JOB_NOT_FOUND", ""))
		return
	}

	resp := JobStatusResponse{
		JobID:              job.JobID,
		Status:             string(job.Status),
		Warning:            job.Warning,
		CompatibilityNotes: job.CompatibilityNotes,
		Error:              job.Error,
		CreatedAt:          job.CreatedAt.Format(time.RFC3339),
	}
	if job.Result != nil {
		resp.Suggestions = job.Result.Suggestions
		resp.CacheKey = job.Result.CacheKey
	}
	if job.CompletedAt != nil {
		resp.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, resp)
}
