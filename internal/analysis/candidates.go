package analysis

import "strings"

// DefaultModel is used when neither the caller nor the configuration names a model.
const DefaultModel = "gemini-2.0-flash"

// DefaultCandidateModels is the fallback order appended after the selected model.
var DefaultCandidateModels = []string{"gemini-2.0-flash", "gemini-flash-latest", "gemini-pro-latest"}

// CandidateList returns selected followed by defaults, without duplicates or
// blank entries. A blank selection means the first configured default leads.
// The result is never empty.
func CandidateList(selected string, defaults []string) []string {
	selected = strings.TrimSpace(selected)
	for _, m := range defaults {
		if selected != "" {
			break
		}
		selected = strings.TrimSpace(m)
	}
	if selected == "" {
		selected = DefaultModel
	}

	out := make([]string, 0, len(defaults)+1)
	seen := make(map[string]struct{}, len(defaults)+1)
	add := func(model string) {
		model = strings.TrimSpace(model)
		if model == "" {
			return
		}
		if _, ok := seen[model]; ok {
			return
		}
		seen[model] = struct{}{}
		out = append(out, model)
	}

	add(selected)
	for _, m := range defaults {
		add(m)
	}
	return out
}
