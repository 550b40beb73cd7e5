// Package suggest orchestrates the LLM-backed operations: improvement
// suggestions and bullet tailoring. It fronts the LLM with the response cache
// and the rate limiter so repeated requests are cheap and quota only burns on
// real generations.
package suggest

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/prompts"
	"github.com/jonathan/resume-matcher/internal/ratelimit"
	"github.com/jonathan/resume-matcher/internal/types"
)

//go:embed fallbacks.json
var fallbacksJSON []byte

// fallbackSuggestions is returned when the LLM cannot be reached, so the
// client always gets usable advice. Loaded once at init from the embedded
// file; a broken embed is a build defect, hence the panic.
var fallbackSuggestions = loadFallbacks()

func loadFallbacks() []string {
	var parsed struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(fallbacksJSON, &parsed); err != nil {
		panic(fmt.Sprintf("failed to parse embedded fallbacks: %v", err))
	}
	return parsed.Suggestions
}

// GenerationError indicates the LLM produced no usable output for an
// operation that has no fallback.
type GenerationError struct {
	Operation string
	Cause     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate %s: %v", e.Operation, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// SuggestionsResult is the outcome of a suggestions request.
type SuggestionsResult struct {
	Suggestions []string `json:"suggestions"`
	// Fallback reports that the LLM was unavailable and the generic
	// suggestions were returned instead.
	Fallback bool `json:"fallback,omitempty"`
}

// TailorResult is the outcome of a tailoring request.
type TailorResult struct {
	TailoredBullets []types.TailoredBullet `json:"tailored_bullets"`
	Summary         string                 `json:"summary"`
}

// Service runs the LLM-backed operations.
type Service struct {
	client  llm.Client
	cache   *cache.Cache
	limiter *ratelimit.Limiter
	ttl     time.Duration
}

// NewService creates a Service. ttl bounds how long generated responses are
// served from cache.
func NewService(client llm.Client, responseCache *cache.Cache, limiter *ratelimit.Limiter, ttl time.Duration) *Service {
	return &Service{
		client:  client,
		cache:   responseCache,
		limiter: limiter,
		ttl:     ttl,
	}
}

// Suggestions generates improvement suggestions for a resume profile against
// a job description.
//
// The rate limit gate comes first: a limited client is denied with a
// *ratelimit.LimitError even when a cached response exists. Past the gate, a
// cache hit is returned without burning quota. When the LLM fails, the
// embedded fallback suggestions are returned with no quota burned and no
// error: a degraded answer beats a dead endpoint.
func (s *Service) Suggestions(ctx context.Context, clientID string, profile *types.ExtractedProfile, jobDescription string) (*SuggestionsResult, error) {
	if limitErr, err := s.limiter.IsLimited(ctx, clientID, ratelimit.OpSuggestions); err != nil {
		return nil, err
	} else if limitErr != nil {
		return nil, limitErr
	}

	key, err := cache.Key(map[string]any{
		"operation":       string(ratelimit.OpSuggestions),
		"resume_data":     profile,
		"job_description": jobDescription,
	})
	if err != nil {
		return nil, err
	}

	if cached := s.lookup(ctx, key); cached != nil {
		var result SuggestionsResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
		log.Printf("suggest: discarding unreadable cached suggestions %s", key)
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize resume profile: %w", err)
	}
	prompt := prompts.Format(prompts.MustGet("generation.json", "suggestions"), map[string]string{
		"ResumeData":     string(profileJSON),
		"JobDescription": jobDescription,
	})

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		log.Printf("suggest: falling back to generic suggestions: %v", err)
		return &SuggestionsResult{Suggestions: fallbackSuggestions, Fallback: true}, nil
	}

	var result SuggestionsResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil || len(result.Suggestions) == 0 {
		log.Printf("suggest: unparseable suggestions response, falling back: %v", err)
		return &SuggestionsResult{Suggestions: fallbackSuggestions, Fallback: true}, nil
	}

	s.finish(ctx, clientID, ratelimit.OpSuggestions, key, &result)
	return &result, nil
}

// TailorResume rewrites resume bullets against a job description. Unlike
// Suggestions there is no generic fallback: a fabricated rewrite of someone's
// resume would be worse than an error.
func (s *Service) TailorResume(ctx context.Context, clientID, resumeText, jobDescription string) (*TailorResult, error) {
	if limitErr, err := s.limiter.IsLimited(ctx, clientID, ratelimit.OpTailor); err != nil {
		return nil, err
	} else if limitErr != nil {
		return nil, limitErr
	}

	key, err := cache.Key(map[string]any{
		"operation":       string(ratelimit.OpTailor),
		"resume_text":     resumeText,
		"job_description": jobDescription,
	})
	if err != nil {
		return nil, err
	}

	if cached := s.lookup(ctx, key); cached != nil {
		var result TailorResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
		log.Printf("suggest: discarding unreadable cached tailoring %s", key)
	}

	prompt := prompts.Format(prompts.MustGet("generation.json", "tailor"), map[string]string{
		"ResumeText":     resumeText,
		"JobDescription": jobDescription,
	})

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &GenerationError{Operation: "tailored resume", Cause: err}
	}

	var result TailorResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &GenerationError{Operation: "tailored resume", Cause: err}
	}
	if len(result.TailoredBullets) == 0 {
		return nil, &GenerationError{Operation: "tailored resume", Cause: fmt.Errorf("no bullets in response")}
	}

	s.finish(ctx, clientID, ratelimit.OpTailor, key, &result)
	return &result, nil
}

// lookup returns the cached payload for key, or nil. Cache failures degrade
// to a miss.
func (s *Service) lookup(ctx context.Context, key string) json.RawMessage {
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("suggest: cache lookup failed for %s: %v", key, err)
		return nil
	}
	return cached
}

// finish records the successful generation: cache it and burn quota. Both are
// best-effort; the generated result is already in hand. A failed usage write
// still counts in memory, see ratelimit.Limiter.RecordUsage.
func (s *Service) finish(ctx context.Context, clientID string, op ratelimit.Operation, key string, payload any) {
	if err := s.cache.Put(ctx, key, payload, s.ttl); err != nil {
		log.Printf("suggest: failed to cache %s response: %v", op, err)
	}
	s.limiter.RecordUsage(ctx, clientID, op)
}
