// Package matching compares an extracted resume profile against a job's
// keyword set and produces a weighted coverage score.
//
// Each category has its own fuzziness to tolerate lexical variation: skills
// compare by Porter-stemmed equality, job titles by Jaro-Winkler similarity,
// education and certifications by substring containment.
package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/kljensen/snowball/english"
	"github.com/xrash/smetrics"

	"github.com/jonathan/resume-matcher/internal/types"
)

// Per-match weights. The denominator uses the job description's keyword
// counts: the score measures how much of the job's required profile is
// covered, not resume-to-job symmetry.
const (
	skillWeight         = 10
	titleWeight         = 15
	educationWeight     = 8
	certificationWeight = 5

	// DefaultTitleSimilarity is the Jaro-Winkler threshold above which two
	// job titles are considered the same.
	DefaultTitleSimilarity = 0.85
)

// InvalidInputError indicates a missing required input to scoring. Absent
// inputs fail fast rather than being coerced to empty sets, which would make
// an upstream bug look like a legitimate zero score.
type InvalidInputError struct {
	Field string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid match input: missing %s", e.Field)
}

// Scorer computes match results. The zero value is not usable; use NewScorer.
type Scorer struct {
	// TitleSimilarityThreshold is the minimum Jaro-Winkler similarity for two
	// titles to match.
	TitleSimilarityThreshold float64
}

// NewScorer returns a Scorer with the default title similarity threshold.
func NewScorer() *Scorer {
	return &Scorer{TitleSimilarityThreshold: DefaultTitleSimilarity}
}

// Score compares a resume profile against job keywords. The returned matched
// sets are subsets of the resume's corresponding fields, in resume order.
// ScorePercentage is in [0,100] and is 0 when the job contributes no weight.
//
// A nil input or a nil category slice is an InvalidInputError: a genuinely
// empty category is an empty slice, a nil one means the caller never
// populated it.
func (s *Scorer) Score(profile *types.ExtractedProfile, job *types.JobKeywords) (*types.MatchResult, error) {
	if profile == nil {
		return nil, &InvalidInputError{Field: "resume profile"}
	}
	if job == nil {
		return nil, &InvalidInputError{Field: "job keywords"}
	}
	for _, category := range []struct {
		field   string
		entries []string
	}{
		{"resume profile skills", profile.Skills},
		{"resume profile job titles", profile.JobTitles},
		{"resume profile education", profile.Education},
		{"resume profile certifications", profile.Certifications},
		{"job keywords skills", job.Skills},
		{"job keywords job titles", job.JobTitles},
		{"job keywords education", job.Education},
		{"job keywords certifications", job.Certifications},
	} {
		if category.entries == nil {
			return nil, &InvalidInputError{Field: category.field}
		}
	}

	matchedSkills := filterMatches(profile.Skills, job.Skills, stemEqual)
	matchedTitles := filterMatches(profile.JobTitles, job.JobTitles, s.titleSimilar)
	matchedEducation := filterMatches(profile.Education, job.Education, containsMatch)
	matchedCerts := filterMatches(profile.Certifications, job.Certifications, containsMatch)

	rawScore := len(matchedSkills)*skillWeight +
		len(matchedTitles)*titleWeight +
		len(matchedEducation)*educationWeight +
		len(matchedCerts)*certificationWeight

	maxScore := len(job.Skills)*skillWeight +
		len(job.JobTitles)*titleWeight +
		len(job.Education)*educationWeight +
		len(job.Certifications)*certificationWeight

	percentage := 0.0
	if maxScore > 0 {
		percentage = round2(float64(rawScore) / float64(maxScore) * 100)
	}

	return &types.MatchResult{
		MatchedSkills:         matchedSkills,
		MatchedEducation:      matchedEducation,
		MatchedJobTitles:      matchedTitles,
		MatchedCertifications: matchedCerts,
		ScorePercentage:       percentage,
		AllJobSkills:          job.Skills,
	}, nil
}

// filterMatches keeps the resume entries for which any job entry satisfies
// the category's match rule.
func filterMatches(resumeEntries, jobEntries []string, match func(resume, job string) bool) []string {
	matched := []string{}
	for _, resumeEntry := range resumeEntries {
		for _, jobEntry := range jobEntries {
			if match(resumeEntry, jobEntry) {
				matched = append(matched, resumeEntry)
				break
			}
		}
	}
	return matched
}

// stemEqual matches skills whose Porter-stemmed lowercase forms are equal,
// tolerating plural and verb-form differences.
func stemEqual(resumeSkill, jobSkill string) bool {
	return stem(resumeSkill) == stem(jobSkill)
}

func stem(skill string) string {
	return english.Stem(strings.ToLower(skill), false)
}

// titleSimilar matches titles whose Jaro-Winkler similarity exceeds the
// configured threshold, tolerating minor spelling and wording variation.
func (s *Scorer) titleSimilar(resumeTitle, jobTitle string) bool {
	similarity := smetrics.JaroWinkler(
		strings.ToLower(resumeTitle), strings.ToLower(jobTitle), 0.7, 4)
	return similarity > s.TitleSimilarityThreshold
}

// containsMatch matches when the resume entry contains the job entry,
// case-insensitively.
func containsMatch(resumeEntry, jobEntry string) bool {
	return strings.Contains(strings.ToLower(resumeEntry), strings.ToLower(jobEntry))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
