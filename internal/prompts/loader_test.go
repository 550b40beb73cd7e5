package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSuggestionsPrompt(t *testing.T) {
	prompt, err := Get("generation.json", "suggestions")
	require.NoError(t, err)

	assert.Contains(t, prompt, "{{.ResumeData}}")
	assert.Contains(t, prompt, "{{.JobDescription}}")
	assert.Contains(t, prompt, "JSON")
}

func TestGetTailorPrompt(t *testing.T) {
	prompt, err := Get("generation.json", "tailor")
	require.NoError(t, err)

	assert.Contains(t, prompt, "{{.ResumeText}}")
	assert.Contains(t, prompt, "{{.JobDescription}}")
	assert.Contains(t, prompt, "tailored_bullets")
}

func TestGetUnknownKey(t *testing.T) {
	_, err := Get("generation.json", "nonexistent")
	assert.Error(t, err)
}

func TestGetUnknownFile(t *testing.T) {
	_, err := Get("missing.json", "suggestions")
	assert.Error(t, err)
}

func TestMustGetPanicsOnMissingPrompt(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("generation.json", "nonexistent")
	})
}

func TestFormat(t *testing.T) {
	template := "Resume: {{.ResumeData}}\nJob: {{.JobDescription}}"

	result := Format(template, map[string]string{
		"ResumeData":     "profile JSON",
		"JobDescription": "engineer role",
	})

	assert.Equal(t, "Resume: profile JSON\nJob: engineer role", result)
	assert.False(t, strings.Contains(result, "{{"), "all placeholders replaced")
}

func TestFormatLeavesUnknownPlaceholders(t *testing.T) {
	result := Format("{{.Known}} and {{.Unknown}}", map[string]string{"Known": "x"})
	assert.Equal(t, "x and {{.Unknown}}", result)
}
