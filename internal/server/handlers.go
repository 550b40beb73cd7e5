package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jonathan/resume-matcher/internal/extraction"
	"github.com/jonathan/resume-matcher/internal/pdftext"
	"github.com/jonathan/resume-matcher/internal/ratelimit"
	"github.com/jonathan/resume-matcher/internal/suggest"
	"github.com/jonathan/resume-matcher/internal/types"
)

// analyzeResponse is the body of a successful analysis: the match result,
// the extracted profile for reuse by later suggestion calls, and the
// client's current usage.
type analyzeResponse struct {
	*types.MatchResult
	ExtractedProfile *types.ExtractedProfile `json:"extracted_profile"`
	RateLimitStatus  types.RateLimitStatus   `json:"rate_limit_status"`
}

type analyzeRequest struct {
	ResumeText     string `json:"resume_text" validate:"required"`
	JobDescription string `json:"job_description" validate:"required"`
}

type suggestionsRequest struct {
	ResumeData     *types.ExtractedProfile `json:"resume_data" validate:"required"`
	JobDescription string                  `json:"job_description" validate:"required"`
}

type suggestionsResponse struct {
	*suggest.SuggestionsResult
	RateLimitStatus types.RateLimitStatus `json:"rate_limit_status"`
}

type tailorRequest struct {
	ResumeText     string `json:"resume_text" validate:"required"`
	JobDescription string `json:"job_description" validate:"required"`
}

type tailorResponse struct {
	*suggest.TailorResult
	RateLimitStatus types.RateLimitStatus `json:"rate_limit_status"`
}

// handleAnalyzeResume extracts keywords from a resume and scores them against
// the job description. The resume arrives either as an uploaded PDF with a
// jobDescription form field, or as a JSON body with the text inline. Usage is
// recorded once extraction succeeds; a rejected or unreadable upload costs no
// quota.
func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := s.extractClientID(r)

	limitErr, err := s.limiter.IsLimited(ctx, clientID, ratelimit.OpAnalyze)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if limitErr != nil {
		s.respondError(w, r, limitErr)
		return
	}

	text, jobDescription, err := s.analyzeInput(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	profile := extraction.ExtractResumeKeywords(text)
	s.limiter.RecordUsage(ctx, clientID, ratelimit.OpAnalyze)

	jobKeywords := extraction.ExtractJobKeywords(jobDescription)
	result, err := s.scorer.Score(profile, jobKeywords)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, analyzeResponse{
		MatchResult:      result,
		ExtractedProfile: profile,
		RateLimitStatus:  s.statusAll(ctx, clientID),
	})
}

// analyzeInput reads the resume text and job description from an analyze
// request, handling both the multipart-PDF and JSON forms. Uploaded files are
// removed before returning.
func (s *Server) analyzeInput(w http.ResponseWriter, r *http.Request) (string, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req analyzeRequest
		if err := s.decodeJSON(r, &req); err != nil {
			return "", "", err
		}
		return req.ResumeText, req.JobDescription, nil
	}

	path, err := s.saveUpload(w, r, "resume")
	if err != nil {
		return "", "", err
	}
	defer removeUpload(path)

	jobDescription := strings.TrimSpace(r.FormValue("jobDescription"))
	if jobDescription == "" {
		return "", "", &ErrValidation{Field: "jobDescription", Message: "job description is required"}
	}

	text, err := pdftext.Extract(path)
	if err != nil {
		return "", "", err
	}
	return text, jobDescription, nil
}

// handleGetSuggestions returns AI improvement suggestions for an extracted
// resume profile against a job description.
func (s *Server) handleGetSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := s.extractClientID(r)

	var req suggestionsRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.suggest.Suggestions(ctx, clientID, req.ResumeData, req.JobDescription)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, suggestionsResponse{
		SuggestionsResult: result,
		RateLimitStatus:   s.statusAll(ctx, clientID),
	})
}

// handleTailorResume rewrites resume bullets from raw resume text.
func (s *Server) handleTailorResume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := s.extractClientID(r)

	var req tailorRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.suggest.TailorResume(ctx, clientID, req.ResumeText, req.JobDescription)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, tailorResponse{
		TailorResult:    result,
		RateLimitStatus: s.statusAll(ctx, clientID),
	})
}

// handleTailorResumeWithFile rewrites resume bullets from an uploaded PDF.
func (s *Server) handleTailorResumeWithFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := s.extractClientID(r)

	path, err := s.saveUpload(w, r, "resume")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer removeUpload(path)

	jobDescription := strings.TrimSpace(r.FormValue("jobDescription"))
	if jobDescription == "" {
		s.respondError(w, r, &ErrValidation{Field: "jobDescription", Message: "job description is required"})
		return
	}

	text, err := pdftext.Extract(path)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.suggest.TailorResume(ctx, clientID, text, jobDescription)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, tailorResponse{
		TailorResult:    result,
		RateLimitStatus: s.statusAll(ctx, clientID),
	})
}

// operationDescriptions annotate the status endpoint for UI display.
var operationDescriptions = map[string]string{
	string(ratelimit.OpAnalyze):     "Resume analysis (PDF parsing & keyword extraction)",
	string(ratelimit.OpTailor):      "AI-powered resume tailoring (Gemini API)",
	string(ratelimit.OpSuggestions): "AI-powered improvement suggestions (Gemini API)",
}

type operationStatusDetail struct {
	types.OperationStatus
	Description string `json:"description"`
}

type statusSummary struct {
	TotalAnalyses      int `json:"total_analyses"`
	TotalAICalls       int `json:"total_ai_calls"`
	MaxAnalysesPerHour int `json:"max_analyses_per_hour"`
	MaxAICallsPerHour  int `json:"max_ai_calls_per_hour"`
}

// handleRateLimitStatus returns the client's current usage for every
// operation, plus a summary splitting cheap analyses from paid AI calls.
func (s *Server) handleRateLimitStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.limiter.StatusAll(r.Context(), s.extractClientID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	body := make(map[string]any, len(status)+1)
	summary := statusSummary{}
	for op, opStatus := range status {
		body[op] = operationStatusDetail{
			OperationStatus: opStatus,
			Description:     operationDescriptions[op],
		}
		if op == string(ratelimit.OpAnalyze) {
			summary.TotalAnalyses = opStatus.Used
			summary.MaxAnalysesPerHour = opStatus.Limit
		} else {
			summary.TotalAICalls += opStatus.Used
			summary.MaxAICallsPerHour += opStatus.Limit
		}
	}
	body["summary"] = summary

	s.jsonResponse(w, http.StatusOK, body)
}

// decodeJSON decodes and validates a JSON request body.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON body"}
	}
	if err := s.validate.Struct(dst); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// statusAll fetches current usage for response bodies; failures degrade to an
// absent status block rather than failing the request.
func (s *Server) statusAll(ctx context.Context, clientID string) types.RateLimitStatus {
	status, err := s.limiter.StatusAll(ctx, clientID)
	if err != nil {
		log.Printf("failed to load rate limit status for %s: %v", clientID, err)
		return nil
	}
	return status
}

// limitHeadlines names each operation in 429 responses.
var limitHeadlines = map[ratelimit.Operation]string{
	ratelimit.OpAnalyze:     "Resume analysis limit reached",
	ratelimit.OpTailor:      "Resume tailoring limit reached",
	ratelimit.OpSuggestions: "AI suggestions limit reached",
}

// respondError maps an error to its HTTP response. Rate limit denials get a
// structured 429 body; internal errors are logged and masked.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var limited *ratelimit.LimitError
	if errors.As(err, &limited) {
		headline := limitHeadlines[limited.Operation]
		if headline == "" {
			headline = "Rate limit reached"
		}
		s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
			"error": headline,
			"message": fmt.Sprintf("You've used %d/%d %s requests this hour. Next request available in %d minutes.",
				limited.Stats.Used, limited.Stats.Limit, limited.Operation, limited.CooldownMinutes),
			"cooldown_minutes": limited.CooldownMinutes,
			"operation":        string(limited.Operation),
			"usage_stats":      s.statusAll(r.Context(), s.extractClientID(r)),
		})
		return
	}

	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[%s] %s failed: %v", r.Method, r.URL.Path, err)
		s.errorResponse(w, status, "Internal Server Error")
		return
	}
	s.errorResponse(w, status, err.Error())
}
