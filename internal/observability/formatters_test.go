package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynumao/ai-creative-director2/internal/report"
)

func parseReport(t *testing.T, payload string) *report.Report {
	t.Helper()
	r, err := report.Parse(payload)
	require.NoError(t, err)
	return r
}

func sampleReport(t *testing.T) *report.Report {
	r := parseReport(t, `{
		"checklist": [
			{"item": "First view", "score": 4, "rationale": "clear hero"},
			{"item": "CTA design", "score": 2}
		],
		"framework": "PASONA",
		"framework_rationale": "problem-led copy",
		"sections": [{"title": "Hero", "description": "headline and CTA"}],
		"improvements": ["shorten the form"],
		"competitors": [{"name": "Rival", "url": "https://rival.example"}]
	}`)
	r.UsedModel = "gemini-flash-latest"
	r.IsFallback = true
	return r
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintReport(sampleReport(t))
	output := buf.String()

	for _, want := range []string{
		"ANALYSIS SUMMARY", "gemini-flash-latest (fallback)", "PASONA",
		"CHECKLIST", "First view", "Average: 3.0",
		"PROPOSED SECTIONS", "1. Hero",
		"IMPROVEMENTS", "shorten the form",
		"COMPETITORS", "https://rival.example",
	} {
		assert.Contains(t, output, want)
	}
}

func TestPrintReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintReport(nil)
	assert.Empty(t, buf.String())
}

func TestPrintReport_EmptyListsSkipped(t *testing.T) {
	var buf bytes.Buffer
	r := parseReport(t, `{"framework": "QUEST"}`)
	r.UsedModel = "m"
	NewPrinter(&buf).PrintReport(r)
	output := buf.String()

	assert.Contains(t, output, "ANALYSIS SUMMARY")
	assert.NotContains(t, output, "(fallback)")
	assert.NotContains(t, output, "CHECKLIST")
	assert.NotContains(t, output, "COMPETITORS")
}

func TestPrintChecklist_NonNumericScores(t *testing.T) {
	var buf bytes.Buffer
	r := parseReport(t, `{"checklist": [{"item": "CTA design", "score": "4/5"}, {"item": "First view", "score": 3}]}`)
	NewPrinter(&buf).PrintChecklist(r.Checklist())

	output := buf.String()
	assert.Contains(t, output, "4/5")
	assert.Contains(t, output, "Average: 3.0")
}

func TestPrintImprovements_Truncated(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintImprovements([]string{"a", "b", "c", "d", "e", "f", "g"})

	output := buf.String()
	assert.Contains(t, output, "e")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintBox_ClipsMultibyteLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("T", strings.Repeat("改善", 60))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	body := lines[3]
	assert.True(t, utf8.ValidString(body))
	assert.True(t, strings.HasSuffix(body, "... │"))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcd...", clip("abcdefghij", 7))
	assert.Equal(t, "日本...", clip("日本語テキスト", 5))
}
