package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gridvolt/nfg-cli/internal/model"
)

var titleCaser = cases.Title(language.English)

// formatResult renders a numeric result per the metric's display convention:
// costs with two decimals, factor-style metrics as a percentage with one
// decimal, everything else with one decimal.
func formatResult(metric string, value float64) string {
	if info, ok := meta.Metrics[metric]; ok {
		switch info.Format {
		case "cost":
			return fmt.Sprintf("%.2f", value)
		case "percent":
			return fmt.Sprintf("%.1f%%", value)
		}
	}
	switch {
	case metric == "LCOE" || metric == "LCOS":
		return fmt.Sprintf("%.2f", value)
	case strings.Contains(metric, "FACTOR"):
		return fmt.Sprintf("%.1f%%", value)
	default:
		return fmt.Sprintf("%.1f", value)
	}
}

// buildNarrative assembles the human-readable explanation from the static
// display tables plus the formatted result.
func buildNarrative(intent model.Intent, formula, formatted, unit string, citations []model.Citation) *model.Narrative {
	techName := "Unknown"
	if intent.Tech != "" {
		techName = titleCaser.String(strings.ToLower(intent.Tech))
	}

	countryName := "Unknown"
	if intent.Country != "" {
		countryName = intent.Country
		if long, ok := meta.Countries[intent.Country]; ok {
			countryName = long
		}
	}

	yearName := "Unknown"
	if intent.Year != 0 {
		yearName = strconv.Itoa(intent.Year)
	}

	metricFull := intent.Metric
	description := ""
	if info, ok := meta.Metrics[intent.Metric]; ok {
		if info.FullName != "" {
			metricFull = info.FullName
		}
		description = info.Description
	}

	n := &model.Narrative{
		Summary: fmt.Sprintf("The %s for %s in %s for %s is %s %s.",
			metricFull, techName, countryName, yearName, formatted, unit),
		DataSource:      describeDataSources(citations),
		Methodology:     "Calculated using: " + formula,
		TechInsights:    meta.TechInsights[intent.Tech],
		CountryInsights: meta.CountryInsights[intent.Country],
	}
	if description != "" {
		n.Context = fmt.Sprintf("%s for %s.", description, techName)
	}
	return n
}

// describeDataSources distinguishes answers grounded in loaded tables from
// answers built entirely on synthesized values.
func describeDataSources(citations []model.Citation) string {
	seen := make(map[string]struct{})
	var sources []string
	for _, c := range citations {
		if c.IsFallback() {
			continue
		}
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		sources = append(sources, c.Source)
	}
	if len(sources) == 0 {
		return "This result is based on typical values as no specific data was found."
	}
	sort.Strings(sources)
	return "This result is calculated from data in: " + strings.Join(sources, ", ") + "."
}
