// Package catalog maps canonical variable names to data-source properties
// and synthesizes fallback values when no data matches. Both resolutions are
// cached for the process lifetime; entries are never invalidated.
package catalog

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/gridvolt/nfg-cli/internal/knowledge"
	"github.com/gridvolt/nfg-cli/internal/model"
	"github.com/gridvolt/nfg-cli/internal/monitoring"
)

// defaultMappings seeds candidate property names for well-known canonical
// variables when the knowledge source is unavailable or returns nothing.
var defaultMappings = map[string][]knowledge.Mapping{
	"TOTAL_GEN_COST_kUSD": {
		{Property: "Total Generation Cost", Unit: "kUSD"},
	},
	"GENERATION_GWh": {
		{Property: "Generation", Unit: "GWh"},
	},
	"CAPACITY_MW": {
		{Property: "Installed Capacity", Unit: "MW"},
		{Property: "Capacity", Unit: "MW"},
	},
	"CAPEX_USD_per_kW": {
		{Property: "CAPEX", Unit: "USD/kW"},
		{Property: "Capital Cost", Unit: "USD/kW"},
	},
	"OPEX_FIXED_USD_per_kWyr": {
		{Property: "FO&M Cost", Unit: "USD/kW-yr"},
		{Property: "Fixed O&M Cost", Unit: "USD/kW-yr"},
	},
	"OPEX_VAR_USD_per_MWh": {
		{Property: "VO&M Cost", Unit: "USD/MWh"},
		{Property: "Variable O&M Cost", Unit: "USD/MWh"},
	},
	"EMISSIONS_tCO2": {
		{Property: "Emissions", Unit: "tCO2"},
		{Property: "CO2 Emissions", Unit: "tCO2"},
	},
}

// Catalog resolves variable-to-property mappings and fallback values.
type Catalog struct {
	source  knowledge.Source
	metrics *monitoring.Collector

	mu       sync.Mutex
	mappings map[string][]knowledge.Mapping
	values   map[string]float64
}

// New builds a Catalog over the given knowledge source.
func New(source knowledge.Source, metrics *monitoring.Collector) *Catalog {
	return &Catalog{
		source:   source,
		metrics:  metrics,
		mappings: make(map[string][]knowledge.Mapping),
		values:   make(map[string]float64),
	}
}

// Mappings returns candidate property names for a canonical variable, in
// ranked order. Candidates are drawn from the knowledge source restricted to
// properties actually available in the store, falling back to the static
// defaults, and finally to the variable name itself.
func (c *Catalog) Mappings(ctx context.Context, canonicalVar string, availableProperties []string) []knowledge.Mapping {
	c.mu.Lock()
	cached, ok := c.mappings[canonicalVar]
	c.mu.Unlock()
	c.metrics.RecordCacheHit(ok)
	if ok {
		return cached
	}

	mappings, err := c.source.MapVariable(ctx, canonicalVar, availableProperties)
	if err != nil {
		zap.L().Warn("catalog: variable mapping failed, using defaults",
			zap.String("variable", canonicalVar),
			zap.Error(err),
		)
	}
	if len(mappings) == 0 {
		mappings = defaultMappings[canonicalVar]
	}
	if len(mappings) == 0 {
		// Last resort: try the canonical name as a literal property.
		mappings = []knowledge.Mapping{{Property: canonicalVar}}
	}

	c.mu.Lock()
	c.mappings[canonicalVar] = mappings
	c.mu.Unlock()
	return mappings
}

// FallbackValue returns a plausible value for a variable with no matching
// data. The result is cached by (variable, tech, country, year); the same key
// is never recomputed within a process lifetime.
func (c *Catalog) FallbackValue(ctx context.Context, canonicalVar string, filters model.Filters) float64 {
	key := valueKey(canonicalVar, filters)

	c.mu.Lock()
	cached, ok := c.values[key]
	c.mu.Unlock()
	c.metrics.RecordCacheHit(ok)
	if ok {
		return cached
	}

	value, err := c.source.FallbackValue(ctx, canonicalVar, filters)
	if err != nil {
		value = heuristicValue(canonicalVar)
		zap.L().Warn("catalog: knowledge source yielded no value, using heuristic",
			zap.String("variable", canonicalVar),
			zap.Float64("value", value),
			zap.Error(err),
		)
	}

	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
	return value
}

// Reset clears both caches. Intended for test isolation.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mappings = make(map[string][]knowledge.Mapping)
	c.values = make(map[string]float64)
}

func valueKey(canonicalVar string, filters model.Filters) string {
	return canonicalVar + "_" + filters.Tech + filters.Country + filters.Year
}

// heuristicValue is the documented last-resort floor keyed on substrings of
// the variable name. The exact values are preserved for compatibility.
func heuristicValue(canonicalVar string) float64 {
	switch {
	case strings.Contains(canonicalVar, "CAPACITY") && strings.Contains(canonicalVar, "MW"):
		return 100.0
	case strings.Contains(canonicalVar, "GENERATION") && strings.Contains(canonicalVar, "GWh"):
		return 500.0
	case strings.Contains(canonicalVar, "COST") && strings.Contains(canonicalVar, "kUSD"):
		return 1000.0
	case strings.Contains(canonicalVar, "RATE"):
		return 0.08
	default:
		return 100.0
	}
}
