package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesAreNonEmpty(t *testing.T) {
	for _, category := range Categories() {
		assert.NotEmpty(t, category.Name)
		assert.NotEmpty(t, category.Keywords, "category %s has no keywords", category.Name)
	}
}

func TestNoDuplicateKeywordsWithinCategory(t *testing.T) {
	for _, category := range Categories() {
		seen := map[string]bool{}
		for _, keyword := range category.Keywords {
			assert.False(t, seen[keyword], "duplicate keyword %q in %s", keyword, category.Name)
			seen[keyword] = true
		}
	}
}

func TestCompoundTitlesPrecedeHeadWords(t *testing.T) {
	titles := JobTitles()
	index := func(title string) int {
		for i, candidate := range titles {
			if candidate == title {
				return i
			}
		}
		return -1
	}

	// Nested dedupe relies on compound titles being matched before the bare
	// head word they contain.
	for _, compound := range []string{"Software Engineer", "Data Scientist", "Frontend Developer"} {
		require.NotEqual(t, -1, index(compound))
		for _, title := range titles {
			if title != compound && strings.Contains(compound, title) {
				assert.Less(t, index(compound), index(title),
					"%q must precede its head word %q", compound, title)
			}
		}
	}
}

func TestSkillCategoriesExcludeNonSkills(t *testing.T) {
	for _, category := range SkillCategories() {
		assert.NotEqual(t, EducationName, category.Name)
		assert.NotEqual(t, JobTitlesName, category.Name)
		assert.NotEqual(t, CertsName, category.Name)
	}
}
