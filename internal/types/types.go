// Package types defines the shared data model for resume/job-description matching.
package types

// NotFound is the sentinel value used when contact extraction finds no match.
const NotFound = "Not Found"

// ExtractedProfile is the structured result of keyword extraction over resume text.
// Skills are ordered by descending relevance; the other collections are unordered sets.
type ExtractedProfile struct {
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	Skills         []string           `json:"skills"`
	Certifications []string           `json:"certifications"`
	JobTitles      []string           `json:"job_titles"`
	Education      []string           `json:"education"`
	SkillRelevance map[string]float64 `json:"skill_relevance"`
}

// JobKeywords is the structured result of keyword extraction over job-description text.
// Job text is short, so no relevance ranking is kept.
type JobKeywords struct {
	Skills         []string `json:"skills"`
	Education      []string `json:"education"`
	JobTitles      []string `json:"job_titles"`
	Certifications []string `json:"certifications"`
}

// MatchResult describes how a resume profile covers a job's extracted keywords.
// Every matched entry appears in both the resume profile and the job keywords.
type MatchResult struct {
	MatchedSkills         []string `json:"matched_skills"`
	MatchedEducation      []string `json:"matched_education"`
	MatchedJobTitles      []string `json:"matched_job_titles"`
	MatchedCertifications []string `json:"matched_certifications"`
	ScorePercentage       float64  `json:"score_percentage"`
	AllJobSkills          []string `json:"all_job_skills"`
}

// TailoredBullet is a single rewritten resume bullet produced by the tailor flow.
type TailoredBullet struct {
	Original    string `json:"original"`
	Improved    string `json:"improved"`
	Explanation string `json:"explanation"`
}

// OperationStats reports usage of a rate-limited operation within the current window.
type OperationStats struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// OperationStatus extends OperationStats with gate state for status displays.
type OperationStatus struct {
	OperationStats
	IsLimited       bool `json:"is_limited"`
	CooldownMinutes int  `json:"cooldown_minutes"`
}

// RateLimitStatus maps operation names to their current status.
type RateLimitStatus map[string]OperationStatus
