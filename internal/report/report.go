// Package report defines the landing-page analysis report and recovers it from
// loosely formatted model output.
package report

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Metadata keys stamped onto the payload when a report is serialized.
const (
	KeyUsedModel  = "used_model"
	KeyIsFallback = "is_fallback"
)

// Report is the analysis returned to callers: the model's JSON object exactly
// as decoded, plus the cascade metadata. Keys the model omitted stay absent;
// keys it added are kept.
type Report struct {
	Payload map[string]json.RawMessage

	UsedModel  string
	IsFallback bool
}

// MarshalJSON writes the payload with used_model and is_fallback stamped on.
func (r Report) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Payload)+2)
	for k, v := range r.Payload {
		out[k] = v
	}
	delete(out, KeyUsedModel)
	if r.UsedModel != "" {
		model, err := json.Marshal(r.UsedModel)
		if err != nil {
			return nil, err
		}
		out[KeyUsedModel] = model
	}
	out[KeyIsFallback] = json.RawMessage(strconv.FormatBool(r.IsFallback))
	return json.Marshal(out)
}

// UnmarshalJSON reads a serialized report back, lifting the metadata keys out
// of the payload.
func (r *Report) UnmarshalJSON(data []byte) error {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	r.UsedModel = lenientString(payload[KeyUsedModel])
	r.IsFallback = bytes.Equal(bytes.TrimSpace(payload[KeyIsFallback]), []byte("true"))
	delete(payload, KeyUsedModel)
	delete(payload, KeyIsFallback)
	r.Payload = payload
	return nil
}

// Get returns the raw value of key as the model sent it.
func (r *Report) Get(key string) (json.RawMessage, bool) {
	v, ok := r.Payload[key]
	return v, ok
}

// The accessors below are read-only views for display. They never fail:
// values of an unexpected shape are rendered as text or skipped.

// Framework returns the selected copywriting framework.
func (r *Report) Framework() string {
	return lenientString(r.Payload["framework"])
}

// FrameworkRationale explains the framework choice.
func (r *Report) FrameworkRationale() string {
	return lenientString(r.Payload["framework_rationale"])
}

// ChecklistItem scores one evaluation dimension.
type ChecklistItem struct {
	Item      string
	Score     Score
	Rationale string
}

// Score is a checklist score as the model wrote it. Value is set only when
// the text is numeric.
type Score struct {
	Text  string
	Value float64
	Valid bool
}

// NumericScore builds a valid Score from v.
func NumericScore(v float64) Score {
	return Score{Text: strconv.FormatFloat(v, 'f', -1, 64), Value: v, Valid: true}
}

func parseScore(raw json.RawMessage) Score {
	text := strings.TrimSpace(lenientString(raw))
	if text == "" {
		return Score{}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Score{Text: text}
	}
	return Score{Text: text, Value: f, Valid: true}
}

// Checklist returns the scored checklist entries.
func (r *Report) Checklist() []ChecklistItem {
	var items []ChecklistItem
	for _, elem := range lenientArray(r.Payload["checklist"]) {
		obj, ok := lenientObject(elem)
		if !ok {
			items = append(items, ChecklistItem{Item: lenientString(elem)})
			continue
		}
		items = append(items, ChecklistItem{
			Item:      lenientString(obj["item"]),
			Score:     parseScore(obj["score"]),
			Rationale: lenientString(obj["rationale"]),
		})
	}
	return items
}

// Section describes one block of the page in reading order.
type Section struct {
	Title       string
	Description string
}

// Sections returns the proposed page structure.
func (r *Report) Sections() []Section {
	var sections []Section
	for _, elem := range lenientArray(r.Payload["sections"]) {
		obj, ok := lenientObject(elem)
		if !ok {
			sections = append(sections, Section{Title: lenientString(elem)})
			continue
		}
		sections = append(sections, Section{
			Title:       lenientString(obj["title"]),
			Description: lenientString(obj["description"]),
		})
	}
	return sections
}

// Improvements returns the improvement proposals as text.
func (r *Report) Improvements() []string {
	var out []string
	for _, elem := range lenientArray(r.Payload["improvements"]) {
		if s := lenientString(elem); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Competitor is a comparable product page.
type Competitor struct {
	Name string
	URL  string
}

// Competitors returns comparable pages.
func (r *Report) Competitors() []Competitor {
	var out []Competitor
	for _, elem := range lenientArray(r.Payload["competitors"]) {
		obj, ok := lenientObject(elem)
		if !ok {
			out = append(out, Competitor{Name: lenientString(elem)})
			continue
		}
		out = append(out, Competitor{
			Name: lenientString(obj["name"]),
			URL:  lenientString(obj["url"]),
		})
	}
	return out
}

// lenientString renders any JSON value as text: strings unquoted, null and
// missing values empty, everything else as compact JSON.
func lenientString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func lenientArray(raw json.RawMessage) []json.RawMessage {
	var arr []json.RawMessage
	if json.Unmarshal(raw, &arr) != nil {
		return nil
	}
	return arr
}

func lenientObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return nil, false
	}
	return obj, true
}

// ChecklistDimensions are the seven evaluation items, in the order the model
// is asked to report them.
var ChecklistDimensions = []string{
	"First view",
	"Ad consistency",
	"Value proposition",
	"Credibility and evidence",
	"CTA design",
	"Readability and usability",
	"Mobile optimization",
}

// Frameworks is the closed set of copywriting frameworks a report may select.
var Frameworks = []string{"PASONA", "BEAF", "AIDCAS", "QUEST"}

// IsKnownFramework reports whether name is one of Frameworks.
func IsKnownFramework(name string) bool {
	for _, f := range Frameworks {
		if f == name {
			return true
		}
	}
	return false
}
