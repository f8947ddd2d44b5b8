package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gridvolt/nfg-cli/internal/model"
)

// Local keyword-based intent extraction, used when the knowledge source is
// unavailable or returns an unusable payload. Matching is deliberately crude:
// first keyword hit wins, in declaration order.

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

type keywordRule struct {
	name     string
	keywords []string
}

var metricRules = []keywordRule{
	{"LCOE", []string{"lcoe", "levelized cost", "cost of electricity", "cost of generation"}},
	{"GENERATION_GWh", []string{"generation", "output", "produced", "electricity production"}},
	{"CAPACITY_MW", []string{"capacity", "installed capacity", "power capacity"}},
	{"CAPACITY_FACTOR", []string{"capacity factor", "cf", "utilization", "utilisation"}},
	{"EMISSIONS_tCO2", []string{"emission", "carbon", "co2", "greenhouse"}},
	{"NPV", []string{"npv", "net present value", "present value", "discounted value"}},
}

var techRules = []keywordRule{
	{"NUCLEAR", []string{"nuclear", "npp", "atomic", "uranium"}},
	{"CCGT", []string{"ccgt", "gas turbine", "combined cycle", "gas-fired", "natural gas"}},
	{"WIND", []string{"wind", "onshore wind", "offshore wind", "turbine", "wind farm"}},
	{"SOLAR", []string{"solar", "pv", "photovoltaic", "solar panel"}},
	{"HYDRO", []string{"hydro", "hydroelectric", "hydropower", "water power", "dam"}},
}

var countryRules = []keywordRule{
	{"BE", []string{"belgium", "belgian", "be"}},
	{"FR", []string{"france", "french", "fr"}},
	{"DE", []string{"germany", "german", "de"}},
	{"UK", []string{"uk", "united kingdom", "britain", "british", "england"}},
	{"IT", []string{"italy", "italian", "it"}},
	{"ES", []string{"spain", "spanish", "es"}},
}

var operationRules = []keywordRule{
	{"avg", []string{"average", "avg", "mean"}},
	{"max", []string{"maximum", "max"}},
	{"min", []string{"minimum", "min"}},
	{"sum", []string{"total", "sum"}},
}

// parseIntentLocal extracts an intent from free text using the keyword rules.
// A non-match leaves the field empty with no confidence entry; matched fields
// carry fixed confidence scores (0.9 for years, 0.8 for keyword hits).
func parseIntentLocal(text string) model.Intent {
	intent := model.Intent{Confidence: make(map[string]float64)}
	lower := strings.ToLower(text)
	words := tokenize(lower)

	if m := yearPattern.FindString(text); m != "" {
		if year, err := strconv.Atoi(m); err == nil {
			intent.Year = year
			intent.Confidence["year"] = 0.9
		}
	}

	if name, ok := firstMatch(metricRules, lower, words); ok {
		intent.Metric = name
		intent.Confidence["metric"] = 0.8
	}
	if name, ok := firstMatch(techRules, lower, words); ok {
		intent.Tech = name
		intent.Confidence["tech"] = 0.8
	}
	if name, ok := firstMatch(countryRules, lower, words); ok {
		intent.Country = name
		intent.Confidence["country"] = 0.8
	}
	if name, ok := firstMatch(operationRules, lower, words); ok {
		intent.Operation = name
		intent.Confidence["operation"] = 0.8
	}
	return intent
}

// firstMatch returns the first rule with a keyword hit. Short keywords (three
// characters or fewer, e.g. country codes) must match a whole word; longer
// ones match as substrings because raw phrasings vary too much for exact
// tokens.
func firstMatch(rules []keywordRule, lower string, words map[string]struct{}) (string, bool) {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if len(kw) <= 3 {
				if _, ok := words[kw]; ok {
					return rule.name, true
				}
			} else if strings.Contains(lower, kw) {
				return rule.name, true
			}
		}
	}
	return "", false
}

func tokenize(lower string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		words[w] = struct{}{}
	}
	return words
}
