package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ynumao/ai-creative-director2/internal/prompts"
	"github.com/ynumao/ai-creative-director2/internal/report"
)

// DefaultTextExcerptLimit is how many characters of page text go into a prompt.
const DefaultTextExcerptLimit = 2000

// DefaultLanguage is the language the report is written in.
const DefaultLanguage = "Japanese"

// Prompt is the fully assembled instruction for one run.
type Prompt struct {
	Instruction string
	TextExcerpt string
	Schema      string
}

// checklistHints describe what each checklist dimension covers, aligned with
// report.ChecklistDimensions.
var checklistHints = []string{
	"headline copy, authority, benefit and CTA all visible in the first view",
	"the message matches the ads that drive traffic to the page",
	"unique strengths and benefits are clear",
	"quality of track record, reviews and evidence",
	"button placement, microcopy and offer",
	"font size, whitespace, page speed and navigation",
	"usability on a phone screen, font sizes",
}

// frameworkSteps describe each framework, aligned with report.Frameworks.
var frameworkSteps = []string{
	"Problem -> Agitation -> Solution -> Narrow Down -> Action",
	"Benefit -> Evidence -> Advantage -> Feature",
	"Attention -> Interest -> Desire -> Conviction -> Action -> Satisfaction",
	"Qualify -> Understand -> Educate -> Simulate -> Transition",
}

// PromptBuilder assembles the analysis instruction from the embedded template.
type PromptBuilder struct {
	ExcerptLimit int
	Language     string
}

// NewPromptBuilder returns a builder with the given limits, using defaults for
// zero values.
func NewPromptBuilder(excerptLimit int, language string) *PromptBuilder {
	if excerptLimit <= 0 {
		excerptLimit = DefaultTextExcerptLimit
	}
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return &PromptBuilder{ExcerptLimit: excerptLimit, Language: language}
}

// Build returns the prompt for url and the page text. Output depends only on
// the inputs and the builder settings.
func (b *PromptBuilder) Build(url, text string) (Prompt, error) {
	template, err := prompts.Get(prompts.AnalysisFile, "lp-analysis")
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to load analysis prompt: %w", err)
	}
	checklist, err := checklistBlock()
	if err != nil {
		return Prompt{}, err
	}
	frameworks, err := frameworkBlock()
	if err != nil {
		return Prompt{}, err
	}

	excerpt := truncateRunes(text, b.ExcerptLimit)
	schema := SchemaDescription()

	instruction := prompts.Format(template, map[string]string{
		"URL":         url,
		"TextExcerpt": excerpt,
		"Language":    b.Language,
		"Checklist":   checklist,
		"Frameworks":  frameworks,
		"Schema":      schema,
	})

	return Prompt{Instruction: instruction, TextExcerpt: excerpt, Schema: schema}, nil
}

func checklistBlock() (string, error) {
	line, err := prompts.Get(prompts.AnalysisFile, "checklist-item")
	if err != nil {
		return "", fmt.Errorf("failed to load checklist prompt: %w", err)
	}
	lines := make([]string, len(report.ChecklistDimensions))
	for i, name := range report.ChecklistDimensions {
		lines[i] = prompts.Format(line, map[string]string{
			"Index": strconv.Itoa(i + 1),
			"Name":  name,
			"Hint":  checklistHints[i],
		})
	}
	return strings.Join(lines, "\n"), nil
}

func frameworkBlock() (string, error) {
	line, err := prompts.Get(prompts.AnalysisFile, "framework-item")
	if err != nil {
		return "", fmt.Errorf("failed to load framework prompt: %w", err)
	}
	lines := make([]string, len(report.Frameworks))
	for i, name := range report.Frameworks {
		lines[i] = prompts.Format(line, map[string]string{
			"Name":  name,
			"Steps": frameworkSteps[i],
		})
	}
	return strings.Join(lines, "\n"), nil
}

// SchemaDescription renders the required output structure as a JSON example.
func SchemaDescription() string {
	var sb strings.Builder
	sb.WriteString("{\n  \"checklist\": [\n")
	for i, name := range report.ChecklistDimensions {
		sb.WriteString(fmt.Sprintf("    {\"item\": %q, \"score\": 5, \"rationale\": \"...\"}", name))
		if i < len(report.ChecklistDimensions)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  ],\n")
	sb.WriteString(fmt.Sprintf("  \"framework\": \"the best fit among %s\",\n", strings.Join(report.Frameworks, ", ")))
	sb.WriteString("  \"framework_rationale\": \"how the framework is applied and how the story connects\",\n")
	sb.WriteString("  \"sections\": [\n    {\"title\": \"section name\", \"description\": \"content and intent of the section\"},\n    ...\n  ],\n")
	sb.WriteString("  \"improvements\": [\"concrete improvement 1\", \"concrete improvement 2\", \"...\"],\n")
	sb.WriteString("  \"competitors\": [\n    {\"name\": \"...\", \"url\": \"...\"},\n    ...\n  ]\n}")
	return sb.String()
}

// truncateRunes keeps the first n characters of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
