package browser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// hiddenSelectors never contribute rendered text.
const hiddenSelectors = "head, script, style, noscript, template, svg, iframe"

// ExtractText returns the human-visible text of a rendered HTML document.
// Used when document.body.innerText comes back blank.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(hiddenSelectors).Remove()
	doc.Find(`[hidden], [aria-hidden="true"]`).Remove()

	return cleanWhitespace(doc.Find("body").Text()), nil
}

// cleanWhitespace trims every line and drops empty ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
