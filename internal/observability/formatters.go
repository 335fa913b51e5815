// Package observability provides formatted report output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/ynumao/ai-creative-director2/internal/report"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output of analysis reports
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintReport outputs every section of r.
func (p *Printer) PrintReport(r *report.Report) {
	if r == nil {
		return
	}
	p.PrintSummary(r)
	p.PrintChecklist(r.Checklist())
	p.PrintSections(r.Sections())
	p.PrintImprovements(r.Improvements())
	p.PrintCompetitors(r.Competitors())
}

// PrintSummary outputs the model used and the selected framework.
func (p *Printer) PrintSummary(r *report.Report) {
	var sb strings.Builder

	model := r.UsedModel
	if r.IsFallback {
		model += " (fallback)"
	}
	sb.WriteString(fmt.Sprintf("Model:      %s\n", model))
	sb.WriteString(fmt.Sprintf("Framework:  %s\n", r.Framework()))
	if rationale := r.FrameworkRationale(); rationale != "" {
		sb.WriteString("\n")
		sb.WriteString(rationale)
	}

	p.printBox("ANALYSIS SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintChecklist outputs the scored checklist.
func (p *Printer) PrintChecklist(items []report.ChecklistItem) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	var total float64
	scored := 0
	for i, item := range items {
		score := clip(item.Score.Text, 5)
		if item.Score.Valid {
			total += item.Score.Value
			scored++
			score = fmt.Sprintf("%.1f", item.Score.Value)
		}
		sb.WriteString(fmt.Sprintf("%-36s %5s\n", clip(item.Item, 36), score))
		if item.Rationale != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", item.Rationale))
		}
		if i < len(items)-1 {
			sb.WriteString("\n")
		}
	}
	if scored > 0 {
		sb.WriteString(fmt.Sprintf("\nAverage: %.1f", total/float64(scored)))
	}

	p.printBox("CHECKLIST", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSections outputs the proposed page structure.
func (p *Printer) PrintSections(sections []report.Section) {
	if len(sections) == 0 {
		return
	}

	var sb strings.Builder
	for i, s := range sections {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, s.Title))
		if s.Description != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", s.Description))
		}
	}

	p.printBox("PROPOSED SECTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintImprovements outputs the top improvement suggestions.
func (p *Printer) PrintImprovements(improvements []string) {
	if len(improvements) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(improvements), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("• %s\n", improvements[i]))
	}
	if len(improvements) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(improvements)-maxItemsToShow))
	}

	p.printBox("IMPROVEMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCompetitors outputs comparable pages.
func (p *Printer) PrintCompetitors(competitors []report.Competitor) {
	if len(competitors) == 0 {
		return
	}

	var sb strings.Builder
	for _, c := range competitors {
		sb.WriteString(fmt.Sprintf("• %s\n", c.Name))
		if c.URL != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", c.URL))
		}
	}

	p.printBox("COMPETITORS", strings.TrimSuffix(sb.String(), "\n"))
}
