package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigModelFallback(t *testing.T) {
	tests := []struct {
		name     string
		models   map[ModelTier]string
		tier     ModelTier
		expected string
	}{
		{"configured tier", map[ModelTier]string{TierAdvanced: "gemini-2.5-pro"}, TierAdvanced, "gemini-2.5-pro"},
		{"falls back to standard", map[ModelTier]string{TierStandard: "gemini-2.5-flash"}, TierAdvanced, "gemini-2.5-flash"},
		{"falls back to lite", map[ModelTier]string{TierLite: "gemini-2.5-flash-lite"}, TierStandard, "gemini-2.5-flash-lite"},
		{"nothing configured", map[ModelTier]string{}, TierLite, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{Models: tt.models}
			assert.Equal(t, tt.expected, config.Model(tt.tier))
		})
	}
}

func TestDefaultConfigCoversAllTiers(t *testing.T) {
	config := DefaultConfig()

	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		assert.NotEmpty(t, config.Model(tier), "tier %s must map to a model", tier)
	}
}

func TestNewGeminiClientRequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultConfig(), "")
	assert.Error(t, err)
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain JSON", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fence with language", "```javascript\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
