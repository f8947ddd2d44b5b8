package model

import "strings"

// FallbackSource marks citations whose value was synthesized rather than read
// from a table. FallbackUnit is the reserved unit marker on such citations.
const (
	FallbackSource = "fallback_values"
	FallbackUnit   = "fallback"
)

// Citation records the provenance of one numeric input: either a table row or
// a synthesized fallback value.
type Citation struct {
	Source   string  `json:"source"`
	Property string  `json:"property"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Tech     string  `json:"tech,omitempty"`
	Facility string  `json:"facility,omitempty"`
	Year     string  `json:"year,omitempty"`
}

// IsFallback reports whether the citation records a synthesized value.
func (c Citation) IsFallback() bool {
	return strings.HasPrefix(c.Source, "fallback")
}

// dedupeKey builds the identity tuple for duplicate detection. Absent optional
// fields collapse to the empty string, so two citations differing only in a
// missing field remain distinct keys.
func (c Citation) dedupeKey() string {
	return strings.Join([]string{c.Source, c.Property, c.Tech, c.Facility, c.Year}, "\x1f")
}

// DedupeCitations removes duplicates by (source, property, tech, facility,
// year), preserving first-seen order.
func DedupeCitations(citations []Citation) []Citation {
	seen := make(map[string]struct{}, len(citations))
	out := make([]Citation, 0, len(citations))
	for _, c := range citations {
		key := c.dedupeKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Narrative is the human-readable portion of a response, built from static
// display tables plus the formatted result.
type Narrative struct {
	Summary         string `json:"summary"`
	DataSource      string `json:"data_source"`
	Methodology     string `json:"methodology"`
	Context         string `json:"context,omitempty"`
	TechInsights    string `json:"tech_insights,omitempty"`
	CountryInsights string `json:"country_insights,omitempty"`
}

// Response is the full answer to one query. Result is nil when any stage of
// the pipeline failed; Error then explains why.
type Response struct {
	QueryID         string             `json:"query_id,omitempty"`
	Metric          string             `json:"metric,omitempty"`
	Unit            string             `json:"unit,omitempty"`
	Scope           Intent             `json:"scope"`
	Result          *float64           `json:"result"`
	FormattedResult string             `json:"formatted_result,omitempty"`
	Method          string             `json:"method,omitempty"`
	Inputs          map[string]float64 `json:"inputs,omitempty"`
	Citations       []Citation         `json:"citations"`
	Narrative       *Narrative         `json:"narrative,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	Error           string             `json:"error,omitempty"`
}
