package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get(AnalysisFile, "lp-analysis")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.URL}}")
	assert.Contains(t, prompt, "{{.TextExcerpt}}")
	assert.Contains(t, prompt, "{{.Schema}}")
	assert.Contains(t, prompt, "{{.Language}}")
}

func TestGet_InvalidFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get(AnalysisFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{
			name:     "replaces all keys",
			template: "Hello {{.Name}}, welcome to {{.Company}}!",
			data:     map[string]string{"Name": "Alice", "Company": "Acme Corp"},
			expected: "Hello Alice, welcome to Acme Corp!",
		},
		{
			name:     "no placeholders",
			template: "No placeholders here",
			data:     map[string]string{"Key": "Value"},
			expected: "No placeholders here",
		},
		{
			name:     "missing data leaves placeholder",
			template: "Hello {{.Name}}",
			data:     map[string]string{},
			expected: "Hello {{.Name}}",
		},
		{
			name:     "values are not re-expanded",
			template: "[{{.Text}}] {{.Secret}}",
			data:     map[string]string{"Text": "{{.Secret}}", "Secret": "s3"},
			expected: "[{{.Secret}}] s3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.template, tt.data))
		})
	}
}

func TestGet_CachesParsedFile(t *testing.T) {
	prompt1, err := Get(AnalysisFile, "lp-analysis")
	require.NoError(t, err)

	cacheMu.RLock()
	_, cached := cache[AnalysisFile]
	cacheMu.RUnlock()
	assert.True(t, cached)

	prompt2, err := Get(AnalysisFile, "lp-analysis")
	require.NoError(t, err)
	assert.Equal(t, prompt1, prompt2)
}
