package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/extraction"
	"github.com/jonathan/resume-matcher/internal/types"
)

func TestScoreEndToEnd(t *testing.T) {
	// Full pipeline: extract both sides, then score. The job carries 3 skills,
	// 1 title, and 1 education marker (maxScore 53); the resume covers 2
	// skills, the title, and the degree (rawScore 43).
	profile := extraction.ExtractResumeKeywords(`
		John Doe - john@example.com - 555-123-4567
		Software Engineer who developed a project with Python and Docker.
		Bachelor of Science.`)
	job := extraction.ExtractJobKeywords(`
		Looking for a Software Engineer with Python, Docker, and AWS experience.
		Bachelor degree required.`)

	result, err := NewScorer().Score(profile, job)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Python", "Docker"}, result.MatchedSkills)
	assert.Equal(t, []string{"Software Engineer"}, result.MatchedJobTitles)
	assert.Equal(t, []string{"Bachelor"}, result.MatchedEducation)
	assert.Empty(t, result.MatchedCertifications)
	assert.InDelta(t, 81.13, result.ScorePercentage, 0.001)
	assert.ElementsMatch(t, []string{"Python", "AWS", "Docker"}, result.AllJobSkills)
}

// emptyProfile and emptyJob return inputs with every category present but
// empty; tests fill in the fields they exercise.
func emptyProfile() *types.ExtractedProfile {
	return &types.ExtractedProfile{
		Skills:         []string{},
		JobTitles:      []string{},
		Education:      []string{},
		Certifications: []string{},
	}
}

func emptyJob() *types.JobKeywords {
	return &types.JobKeywords{
		Skills:         []string{},
		JobTitles:      []string{},
		Education:      []string{},
		Certifications: []string{},
	}
}

func TestScorePercentageBounds(t *testing.T) {
	job := emptyJob()
	job.Skills = []string{"Python", "Go"}
	job.JobTitles = []string{"Engineer"}
	job.Education = []string{"Bachelor"}

	t.Run("full coverage is 100", func(t *testing.T) {
		profile := emptyProfile()
		profile.Skills = []string{"Python", "Go"}
		profile.JobTitles = []string{"Engineer"}
		profile.Education = []string{"Bachelor"}

		result, err := NewScorer().Score(profile, job)
		require.NoError(t, err)
		assert.Equal(t, 100.0, result.ScorePercentage)
	})

	t.Run("no coverage is 0", func(t *testing.T) {
		profile := emptyProfile()
		profile.Skills = []string{"Rust"}
		profile.JobTitles = []string{"Architect"}

		result, err := NewScorer().Score(profile, job)
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.ScorePercentage)
	})
}

func TestScoreEmptyJobYieldsZero(t *testing.T) {
	profile := emptyProfile()
	profile.Skills = []string{"Python"}

	result, err := NewScorer().Score(profile, emptyJob())
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.ScorePercentage)
	assert.Empty(t, result.MatchedSkills)
}

func TestScoreNilInputs(t *testing.T) {
	scorer := NewScorer()

	_, err := scorer.Score(nil, emptyJob())
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "resume profile", invalid.Field)

	_, err = scorer.Score(emptyProfile(), nil)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "job keywords", invalid.Field)
}

func TestScoreNilCategoryIsInvalid(t *testing.T) {
	scorer := NewScorer()

	t.Run("resume category absent", func(t *testing.T) {
		profile := emptyProfile()
		profile.Education = nil

		_, err := scorer.Score(profile, emptyJob())
		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "resume profile education", invalid.Field)
	})

	t.Run("job category absent", func(t *testing.T) {
		job := emptyJob()
		job.Skills = nil

		_, err := scorer.Score(emptyProfile(), job)
		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "job keywords skills", invalid.Field)
	})

	t.Run("empty categories are valid", func(t *testing.T) {
		_, err := scorer.Score(emptyProfile(), emptyJob())
		assert.NoError(t, err)
	})
}

func TestMatchedEntriesAreSubsetsInResumeOrder(t *testing.T) {
	profile := emptyProfile()
	profile.Skills = []string{"Docker", "Python", "Rust"}
	job := emptyJob()
	job.Skills = []string{"Python", "Docker"}

	result, err := NewScorer().Score(profile, job)
	require.NoError(t, err)

	assert.Equal(t, []string{"Docker", "Python"}, result.MatchedSkills,
		"matches keep resume order, not job order")
}

func TestStemEqualToleratesWordForms(t *testing.T) {
	tests := []struct {
		name    string
		resume  string
		job     string
		matched bool
	}{
		{"identical", "Python", "Python", true},
		{"case insensitive", "python", "PYTHON", true},
		{"plural", "Databases", "Database", true},
		{"verb form", "Testing", "Tested", true},
		{"different skills", "Python", "Java", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matched, stemEqual(tt.resume, tt.job))
		})
	}
}

func TestTitleSimilarity(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name    string
		resume  string
		job     string
		matched bool
	}{
		{"identical", "Software Engineer", "Software Engineer", true},
		{"case insensitive", "software engineer", "Software Engineer", true},
		{"minor typo", "Software Enginer", "Software Engineer", true},
		{"unrelated title", "Data Scientist", "Product Manager", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matched, scorer.titleSimilar(tt.resume, tt.job))
		})
	}
}

func TestContainsMatch(t *testing.T) {
	assert.True(t, containsMatch("Bachelor of Science", "Bachelor"))
	assert.True(t, containsMatch("bachelor of science", "BACHELOR"))
	assert.False(t, containsMatch("Bachelor", "Bachelor of Science"),
		"containment is resume-contains-job, not symmetric")
}

func TestScorePercentageRounding(t *testing.T) {
	// 1 of 3 skills: 10/30 = 33.333... rounds to 33.33.
	profile := emptyProfile()
	profile.Skills = []string{"Python"}
	job := emptyJob()
	job.Skills = []string{"Python", "Go", "Rust"}

	result, err := NewScorer().Score(profile, job)
	require.NoError(t, err)

	assert.Equal(t, 33.33, result.ScorePercentage)
}
