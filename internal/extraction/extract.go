// Package extraction turns free text into structured keyword sets using the
// static catalog. Extraction is a pure function over its input: the same text
// always produces the same result, and malformed text never fails.
package extraction

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-matcher/internal/catalog"
	"github.com/jonathan/resume-matcher/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{3,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{4}`)
)

const (
	// proximityWindow is the number of characters inspected on each side of a
	// skill's first occurrence when looking for action context.
	proximityWindow = 50
	// actionBoost multiplies a skill's occurrence count when an action term
	// appears near its first occurrence.
	actionBoost = 1.5
)

// actionTerms signal that a skill was actually used, not just listed.
var actionTerms = []string{
	"project", "experience", "develop", "implement", "create", "build", "design",
}

// keywordPatterns holds one compiled case-insensitive, word-boundary-anchored
// pattern per catalog keyword, built once at init.
var keywordPatterns = compileCatalogPatterns()

func compileCatalogPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, category := range catalog.Categories() {
		for _, keyword := range category.Keywords {
			if _, ok := patterns[keyword]; !ok {
				patterns[keyword] = keywordPattern(keyword)
			}
		}
	}
	return patterns
}

// keywordPattern builds the match pattern for a single catalog keyword.
// Keywords containing regex metacharacters ("C++", "Node.js") are escaped.
// \b only matches between a word and a non-word rune, so keywords ending in
// a non-word rune get an explicit right edge instead.
func keywordPattern(keyword string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(keyword)
	suffix := `\b`
	if !isWordByte(keyword[len(keyword)-1]) {
		suffix = `(?:[^+#\w]|$)`
	}
	return regexp.MustCompile(`(?i)\b` + quoted + suffix)
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// NormalizeWhitespace collapses runs of whitespace to single spaces and trims.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ExtractResumeKeywords extracts contact fields and catalog keywords from
// resume text, ranking skills by relevance. Empty text yields a profile with
// empty collections and "Not Found" contact fields.
func ExtractResumeKeywords(text string) *types.ExtractedProfile {
	text = NormalizeWhitespace(text)

	profile := &types.ExtractedProfile{
		Email:          types.NotFound,
		Phone:          types.NotFound,
		Skills:         []string{},
		Certifications: []string{},
		JobTitles:      []string{},
		Education:      []string{},
		SkillRelevance: map[string]float64{},
	}
	if text == "" {
		return profile
	}

	if email := emailPattern.FindString(text); email != "" {
		profile.Email = email
	}
	if phone := phonePattern.FindString(text); phone != "" {
		profile.Phone = phone
	}

	// Skills, in catalog order first, then ranked by relevance. The catalog
	// order is the stable tie-break for equal scores.
	for _, category := range catalog.SkillCategories() {
		for _, keyword := range category.Keywords {
			if containsKeyword(text, keyword) {
				profile.Skills = appendUnique(profile.Skills, keyword)
			}
		}
	}
	for _, skill := range profile.Skills {
		profile.SkillRelevance[skill] = relevanceScore(text, skill)
	}
	sort.SliceStable(profile.Skills, func(i, j int) bool {
		return profile.SkillRelevance[profile.Skills[i]] > profile.SkillRelevance[profile.Skills[j]]
	})

	profile.Education = matchKeywords(text, catalog.Education())
	profile.JobTitles = dedupeNested(matchKeywords(text, catalog.JobTitles()))
	profile.Certifications = matchKeywords(text, catalog.Certifications())

	return profile
}

// ExtractJobKeywords extracts catalog keywords from job-description text.
// No relevance ranking is kept; job text is short.
func ExtractJobKeywords(text string) *types.JobKeywords {
	text = NormalizeWhitespace(text)

	keywords := &types.JobKeywords{
		Skills:         []string{},
		Education:      []string{},
		JobTitles:      []string{},
		Certifications: []string{},
	}
	if text == "" {
		return keywords
	}

	for _, category := range catalog.SkillCategories() {
		for _, keyword := range category.Keywords {
			if containsKeyword(text, keyword) {
				keywords.Skills = appendUnique(keywords.Skills, keyword)
			}
		}
	}
	keywords.Education = matchKeywords(text, catalog.Education())
	keywords.JobTitles = dedupeNested(matchKeywords(text, catalog.JobTitles()))
	keywords.Certifications = matchKeywords(text, catalog.Certifications())

	return keywords
}

// relevanceScore combines a skill's occurrence count with action-context
// proximity: the count is multiplied by actionBoost when any action term
// appears within proximityWindow characters of the first occurrence.
func relevanceScore(text, keyword string) float64 {
	pattern := keywordPatterns[keyword]
	occurrences := pattern.FindAllStringIndex(text, -1)
	if len(occurrences) == 0 {
		return 0
	}

	multiplier := 1.0
	start := occurrences[0][0] - proximityWindow
	if start < 0 {
		start = 0
	}
	end := occurrences[0][1] + proximityWindow
	if end > len(text) {
		end = len(text)
	}
	window := strings.ToLower(text[start:end])
	for _, term := range actionTerms {
		if strings.Contains(window, term) {
			multiplier = actionBoost
			break
		}
	}

	return float64(len(occurrences)) * multiplier
}

func containsKeyword(text, keyword string) bool {
	return keywordPatterns[keyword].MatchString(text)
}

func matchKeywords(text string, keywords []string) []string {
	matched := []string{}
	for _, keyword := range keywords {
		if containsKeyword(text, keyword) {
			matched = appendUnique(matched, keyword)
		}
	}
	return matched
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

// dedupeNested drops matches that are contained in a longer match, so a text
// mentioning "Software Engineer" yields that title rather than both it and
// "Engineer".
func dedupeNested(matched []string) []string {
	kept := []string{}
	for _, candidate := range matched {
		nested := false
		candidateLower := strings.ToLower(candidate)
		for _, other := range matched {
			if other == candidate {
				continue
			}
			if len(other) > len(candidate) && strings.Contains(strings.ToLower(other), candidateLower) {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, candidate)
		}
	}
	return kept
}
