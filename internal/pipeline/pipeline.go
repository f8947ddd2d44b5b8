// Package pipeline drives a query end to end: intent extraction, equation
// resolution, per-variable data resolution with citations, formula
// evaluation, and response assembly. Every stage degrades to a structured
// null result rather than failing the query.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridvolt/nfg-cli/internal/catalog"
	"github.com/gridvolt/nfg-cli/internal/equation"
	"github.com/gridvolt/nfg-cli/internal/knowledge"
	"github.com/gridvolt/nfg-cli/internal/model"
	"github.com/gridvolt/nfg-cli/internal/monitoring"
	"github.com/gridvolt/nfg-cli/internal/store"
)

// Orchestrator owns the per-query state machine. It is safe for concurrent
// use; all mutable state lives behind the caches it composes.
type Orchestrator struct {
	source    knowledge.Source
	store     store.Store
	catalog   *catalog.Catalog
	equations *equation.Registry
	metrics   *monitoring.Collector
}

// New wires an Orchestrator from its collaborators.
func New(source knowledge.Source, st store.Store, cat *catalog.Catalog, reg *equation.Registry, metrics *monitoring.Collector) *Orchestrator {
	return &Orchestrator{
		source:    source,
		store:     st,
		catalog:   cat,
		equations: reg,
		metrics:   metrics,
	}
}

// AnswerQuery runs the full state machine for one natural-language query:
// ParseIntent -> ResolveEquation -> resolve each required variable ->
// Evaluate -> AssembleResponse. It never panics past its own boundary.
func (o *Orchestrator) AnswerQuery(ctx context.Context, text string) (resp model.Response) {
	o.metrics.RecordQuery()
	queryID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("pipeline: unexpected failure",
				zap.String("query_id", queryID),
				zap.Any("panic", r),
			)
			resp = model.Response{
				QueryID:   queryID,
				Result:    nil,
				Citations: []model.Citation{},
				Error:     "internal error answering query",
			}
		}
	}()

	intent := o.parseIntent(ctx, text)
	if intent.Metric == "" {
		return model.Response{
			QueryID:   queryID,
			Scope:     intent,
			Result:    nil,
			Citations: []model.Citation{},
			Error:     "Could not determine metric from query",
		}
	}
	zap.L().Info("pipeline: parsed intent",
		zap.String("query_id", queryID),
		zap.String("metric", intent.Metric),
		zap.String("tech", intent.Tech),
		zap.String("country", intent.Country),
		zap.Int("year", intent.Year),
	)

	eq := o.equations.Equation(ctx, intent.Metric)
	if len(eq.Required) == 0 {
		return model.Response{
			QueryID:   queryID,
			Metric:    intent.Metric,
			Scope:     intent,
			Result:    nil,
			Citations: []model.Citation{},
			Error:     "Could not determine equation for metric: " + intent.Metric,
		}
	}

	filters := intent.Filters()
	filters.TechPatterns = meta.TechPatterns[intent.Tech]
	bindings, citations := o.resolveVariables(ctx, eq.Required, filters)
	citations = model.DedupeCitations(citations)

	var result *float64
	value, err := o.equations.Evaluate(ctx, intent.Metric, bindings)
	if err != nil {
		zap.L().Error("pipeline: evaluation failed",
			zap.String("query_id", queryID),
			zap.String("metric", intent.Metric),
			zap.Error(err),
		)
	} else {
		result = &value
	}

	unit := o.equations.Unit(ctx, intent.Metric)

	resp = model.Response{
		QueryID:   queryID,
		Metric:    intent.Metric,
		Unit:      unit,
		Scope:     intent,
		Result:    result,
		Method:    eq.Formula,
		Inputs:    bindings,
		Citations: citations,
		Notes:     describeFilters(filters),
	}
	if result != nil {
		resp.FormattedResult = formatResult(intent.Metric, *result)
		resp.Narrative = buildNarrative(intent, eq.Formula, resp.FormattedResult, unit, citations)
	} else {
		resp.Error = "could not evaluate formula for metric: " + intent.Metric
	}
	return resp
}

// parseIntent delegates to the knowledge source, falling back to the local
// keyword parser when the source is unavailable.
func (o *Orchestrator) parseIntent(ctx context.Context, text string) model.Intent {
	intent, err := o.source.ParseIntent(ctx, text)
	if err != nil {
		zap.L().Warn("pipeline: intent extraction failed, using local parser", zap.Error(err))
		return parseIntentLocal(text)
	}
	return intent
}

// resolveVariables binds every required variable, in declared order. Each
// variable resolved from data contributes one citation per matched row; each
// that is not contributes one fallback-tagged citation. No variable is ever
// left unbound.
func (o *Orchestrator) resolveVariables(ctx context.Context, required []string, filters model.Filters) (map[string]float64, []model.Citation) {
	available, err := o.store.ListAvailableProperties(ctx)
	if err != nil {
		zap.L().Warn("pipeline: listing properties failed", zap.Error(err))
	}

	bindings := make(map[string]float64, len(required))
	var citations []model.Citation
	for _, name := range required {
		value, cites, ok := o.resolveFromData(ctx, name, filters, available)
		if !ok {
			value = o.catalog.FallbackValue(ctx, name, filters)
			cites = []model.Citation{fallbackCitation(name, value, filters)}
			zap.L().Warn("pipeline: no data for variable, using fallback value",
				zap.String("variable", name),
				zap.Float64("value", value),
			)
		}
		bindings[name] = value
		citations = append(citations, cites...)
	}
	return bindings, citations
}

// resolveFromData tries each candidate property in ranked order and commits
// to the first one with matching rows, summing their values. Later candidates
// are not merged in.
func (o *Orchestrator) resolveFromData(ctx context.Context, name string, filters model.Filters, available []string) (float64, []model.Citation, bool) {
	for _, mapping := range o.catalog.Mappings(ctx, name, available) {
		rows, err := o.store.Query(ctx, filters, []string{mapping.Property})
		if err != nil {
			zap.L().Warn("pipeline: store query failed",
				zap.String("property", mapping.Property),
				zap.Error(err),
			)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		total := 0.0
		cites := make([]model.Citation, 0, len(rows))
		for _, row := range rows {
			total += row.Value
			cites = append(cites, model.Citation{
				Source:   row.SourceTable,
				Property: row.Property,
				Value:    row.Value,
				Unit:     row.Unit,
				Tech:     row.Category,
				Facility: row.Child,
				Year:     row.Date,
			})
		}
		zap.L().Info("pipeline: variable resolved from data",
			zap.String("variable", name),
			zap.String("property", mapping.Property),
			zap.Float64("value", total),
			zap.Int("rows", len(rows)),
		)
		return total, cites, true
	}
	return 0, nil, false
}

func fallbackCitation(name string, value float64, filters model.Filters) model.Citation {
	return model.Citation{
		Source:   model.FallbackSource,
		Property: name,
		Value:    value,
		Unit:     model.FallbackUnit,
		Tech:     orUnknown(filters.Tech),
		Year:     orUnknown(filters.Year),
	}
}

func describeFilters(filters model.Filters) string {
	return fmt.Sprintf("Using loaded table data with filters: tech=%s country=%s year=%s",
		orUnknown(filters.Tech), orUnknown(filters.Country), orUnknown(filters.Year))
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
