// Package equation resolves canonical metrics to formulas and evaluates
// those formulas against variable bindings. Formulas come from an external
// knowledge source and may be only loosely well-formed; evaluation therefore
// applies a sequence of targeted simplifications before and after general
// parsing.
package equation

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridvolt/nfg-cli/internal/knowledge"
	"github.com/gridvolt/nfg-cli/internal/model"
	"github.com/gridvolt/nfg-cli/internal/monitoring"
)

// ErrMissingVariables reports that neither the primary nor the fallback
// requirement set is satisfied by the bindings.
var ErrMissingVariables = eris.New("equation: missing required variables")

// Reserved binding-name prefixes denoting a single physical unit's or
// generator's value. Several recovery heuristics key on them.
const (
	unitVarPrefix      = "UNIT_"
	generatorVarPrefix = "GENERATOR_"
)

// staticUnits maps well-known metrics to display units when the resolved
// equation does not carry one.
var staticUnits = map[string]string{
	"LCOE":            "USD/MWh",
	"GENERATION_GWh":  "GWh",
	"CAPACITY_MW":     "MW",
	"CAPACITY_FACTOR": "%",
	"EMISSIONS_tCO2":  "tCO2",
}

// Registry caches metric equations for the process lifetime. A metric that
// resolves to nothing is cached as an empty equation so repeated misses do
// not re-query the knowledge source.
type Registry struct {
	source     knowledge.Source
	metrics    *monitoring.Collector
	unitMaxLen int

	mu        sync.Mutex
	equations map[string]model.Equation
}

// New builds a Registry. unitMaxLen bounds the length of a unit string
// accepted from the knowledge source; longer answers are treated as noise.
func New(source knowledge.Source, metrics *monitoring.Collector, unitMaxLen int) *Registry {
	return &Registry{
		source:     source,
		metrics:    metrics,
		unitMaxLen: unitMaxLen,
		equations:  make(map[string]model.Equation),
	}
}

// Equation resolves a metric to its equation, consulting the cache first.
func (r *Registry) Equation(ctx context.Context, metric string) model.Equation {
	r.mu.Lock()
	cached, ok := r.equations[metric]
	r.mu.Unlock()
	r.metrics.RecordCacheHit(ok)
	if ok {
		return cached
	}

	eq, err := r.source.DetermineEquation(ctx, metric)
	if err != nil {
		zap.L().Error("equation: resolution failed",
			zap.String("metric", metric),
			zap.Error(err),
		)
		eq = model.Equation{}
	}

	r.mu.Lock()
	r.equations[metric] = eq
	r.mu.Unlock()
	return eq
}

// Unit reports the display unit for a metric. Priority: unit embedded in the
// resolved equation, then the static table, then a targeted knowledge-source
// question (answer accepted only under the sanity length), then "unknown".
func (r *Registry) Unit(ctx context.Context, metric string) string {
	if eq := r.Equation(ctx, metric); eq.Unit != "" {
		return eq.Unit
	}
	if unit, ok := staticUnits[metric]; ok {
		return unit
	}
	unit, err := r.source.MetricUnit(ctx, metric)
	if err != nil {
		zap.L().Warn("equation: unit lookup failed", zap.String("metric", metric), zap.Error(err))
	} else if unit = strings.TrimSpace(unit); unit != "" && len(unit) < r.unitMaxLen {
		return unit
	}
	return "unknown"
}

// Reset clears the equation cache. Intended for test isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.equations = make(map[string]model.Equation)
}

// Evaluate resolves the metric's equation and evaluates it against the
// bindings. See evaluateWith for the evaluation order.
func (r *Registry) Evaluate(ctx context.Context, metric string, bindings map[string]float64) (float64, error) {
	eq := r.Equation(ctx, metric)
	if eq.IsZero() {
		return 0, eris.Errorf("equation: no formula for metric %s", metric)
	}
	result, err := evaluateWith(eq, bindings)
	if err != nil {
		return 0, err
	}
	return postProcess(metric, result), nil
}

// evaluateWith runs the full evaluation sequence for one equation:
//
//  1. Fallback-formula substitution when the primary requirements are not
//     all bound but the fallback's are.
//  2. Targeted simplifications, strictly in order: aggregate call over a
//     single UNIT_-prefixed binding; formula that is itself a binding name;
//     the "for i=" summation idiom with a binding named inside the formula.
//  3. General parse and evaluation.
//  4. Last recovery on parse/eval failure: a single UNIT_- or
//     GENERATOR_-prefixed binding is returned directly.
func evaluateWith(eq model.Equation, bindings map[string]float64) (float64, error) {
	formula, err := selectFormula(eq, bindings)
	if err != nil {
		return 0, err
	}

	if strings.Contains(formula, "sum(") || strings.Contains(formula, "SUM(") {
		if v, ok := soleBinding(bindings, unitVarPrefix); ok {
			zap.L().Debug("equation: aggregate over single unit variable", zap.String("formula", formula))
			return v, nil
		}
	}

	if v, ok := bindings[strings.TrimSpace(formula)]; ok {
		return v, nil
	}

	if strings.Contains(formula, "for i=") {
		for _, name := range sortedNames(bindings) {
			if strings.Contains(formula, name) {
				zap.L().Debug("equation: summation idiom reduced to single variable",
					zap.String("formula", formula),
					zap.String("variable", name),
				)
				return bindings[name], nil
			}
		}
	}

	result, err := Eval(formula, bindings)
	if err != nil {
		if v, ok := soleBinding(bindings, unitVarPrefix, generatorVarPrefix); ok {
			zap.L().Warn("equation: parse failed, recovered via single unit variable",
				zap.String("formula", formula),
				zap.Error(err),
			)
			return v, nil
		}
		zap.L().Error("equation: evaluation failed", zap.String("formula", formula), zap.Error(err))
		return 0, err
	}
	return result, nil
}

// selectFormula picks the primary or fallback formula based on which
// requirement set the bindings satisfy.
func selectFormula(eq model.Equation, bindings map[string]float64) (string, error) {
	missing := missingVars(eq.Required, bindings)
	if len(missing) == 0 {
		return eq.Formula, nil
	}
	if eq.Fallback != nil && eq.Fallback.Formula != "" {
		fbMissing := missingVars(eq.Fallback.Required, bindings)
		if len(fbMissing) == 0 {
			zap.L().Info("equation: using fallback formula",
				zap.Strings("missing", missing),
			)
			return eq.Fallback.Formula, nil
		}
		missing = append(missing, fbMissing...)
	}
	return "", eris.Wrapf(ErrMissingVariables, "missing %s", strings.Join(missing, ", "))
}

func missingVars(required []string, bindings map[string]float64) []string {
	var missing []string
	for _, name := range required {
		if _, ok := bindings[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// soleBinding returns the value of the unique binding whose name starts with
// one of the prefixes, if exactly one exists.
func soleBinding(bindings map[string]float64, prefixes ...string) (float64, bool) {
	var (
		found float64
		count int
	)
	for name, v := range bindings {
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				found = v
				count++
				break
			}
		}
	}
	return found, count == 1
}

func sortedNames(bindings map[string]float64) []string {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// postProcess normalizes capacity-factor results: a fractional ratio is
// scaled to percentage, a value already at or above 1.0 is left alone.
func postProcess(metric string, result float64) float64 {
	if metric == "CAPACITY_FACTOR" && result < 1.0 {
		return result * 100
	}
	return result
}
