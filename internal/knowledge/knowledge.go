// Package knowledge defines the external knowledge-source capability: intent
// parsing, equation discovery, variable mapping, fallback-value synthesis,
// and unit lookup. Implementations are selected at construction time — an
// Anthropic-backed source for production, a test double in tests.
package knowledge

import (
	"context"

	"github.com/gridvolt/nfg-cli/internal/model"
)

// Mapping is one candidate data-source property for a canonical variable.
type Mapping struct {
	Property  string `json:"property_name"`
	Unit      string `json:"unit_name"`
	Transform string `json:"transform,omitempty"`
}

// Source is the knowledge-source capability consumed by the pipeline. Every
// method is a pure (context) -> structured-or-scalar call; callers own the
// local/default fallback when a method errors.
type Source interface {
	// ParseIntent extracts a structured intent from free text.
	ParseIntent(ctx context.Context, text string) (model.Intent, error)

	// DetermineEquation returns the formula, required variables, and unit for
	// a canonical metric.
	DetermineEquation(ctx context.Context, metric string) (model.Equation, error)

	// MapVariable ranks candidate property names for a canonical variable,
	// restricted to properties actually present in the store.
	MapVariable(ctx context.Context, canonicalVar string, availableProperties []string) ([]Mapping, error)

	// FallbackValue synthesizes a plausible scalar for a variable with no
	// matching data.
	FallbackValue(ctx context.Context, canonicalVar string, filters model.Filters) (float64, error)

	// MetricUnit answers a targeted unit question for a metric.
	MetricUnit(ctx context.Context, metric string) (string, error)
}
