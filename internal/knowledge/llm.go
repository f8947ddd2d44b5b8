package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/gridvolt/nfg-cli/internal/config"
	"github.com/gridvolt/nfg-cli/internal/model"
	"github.com/gridvolt/nfg-cli/internal/monitoring"
	"github.com/gridvolt/nfg-cli/internal/resilience"
	"github.com/gridvolt/nfg-cli/pkg/anthropic"
)

const intentSystemPrompt = `You are an energy analytics assistant specialized in Networks-Fuels-Generation (NFG) queries.

Your task is to extract structured information from user queries about energy metrics.

IMPORTANT: You must return ONLY a valid JSON object with these fields:
- metric: The canonical metric name (e.g., LCOE, GENERATION_GWh, CAPACITY_MW, CAPACITY_FACTOR, EMISSIONS_tCO2)
- tech: The technology type (e.g., NUCLEAR, CCGT, WIND, SOLAR, PV, HYDRO)
- country: The country code (e.g., BE, FR, ES, DE, IT, UK)
- year: The year as integer (e.g., 2030, 2040, 2050)
- fuel: Optional fuel type (e.g., GAS, COAL, URANIUM)
- network: Optional network type (e.g., TRANSMISSION, DISTRIBUTION)
- operation: Optional operation (avg, sum, min, max)

Include confidence scores (0.0-1.0) for each field in a nested "confidence" object.

Example of valid response format:
{
  "metric": "LCOE",
  "tech": "NUCLEAR",
  "country": "BE",
  "year": 2050,
  "fuel": null,
  "network": null,
  "operation": null,
  "confidence": {
    "metric": 0.95,
    "tech": 0.9,
    "country": 0.8,
    "year": 0.99
  }
}

MAKE SURE your response contains only the JSON object, nothing else.`

const equationSystemPrompt = `You are an energy analytics expert specialized in NFG (Networks-Fuels-Generation) mathematics.
Provide the equation for calculating the given metric.
Return ONLY a valid JSON object with:
- formula: mathematical formula as string using only basic math operators (+, -, *, /, sum)
- required: array of required variable names
- unit: unit of measure for result

IMPORTANT: The formula must be simple enough for an algebraic parser.
For sum operations, use "sum([VAR])" instead of complex notations like "SUM(VAR_i for i=1..N)".
For CAPACITY_MW, use "UNIT_CAPACITY_MW" as the variable name.

Example:
{
  "formula": "TOTAL_GEN_COST_kUSD / GENERATION_GWh",
  "required": ["TOTAL_GEN_COST_kUSD", "GENERATION_GWh"],
  "unit": "USD/MWh"
}`

const mappingSystemPrompt = `You are an energy analytics expert specialized in NFG (Networks-Fuels-Generation) data.
Map the canonical variable to possible properties from the available list.
Return ONLY a valid JSON array with objects containing:
- property_name: exact name from the available properties that could match
- unit_name: expected unit of measure
- transform: description of any transform needed

Return empty array if no matches found.`

const fallbackSystemPrompt = `You are an energy systems expert. Provide a single numeric value for the requested energy system parameter.
Respond ONLY with the numeric value, no text explanation or unit.`

// LLM implements Source against the Anthropic API. Calls are rate-limited and
// retried a bounded number of times when the payload fails to parse; after
// that the error is returned and the caller falls through to its local
// fallback.
type LLM struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	limiter     *rate.Limiter
	retry       resilience.RetryConfig
	metrics     *monitoring.Collector
}

// NewLLM builds an Anthropic-backed knowledge source.
func NewLLM(client anthropic.Client, aiCfg config.AnthropicConfig, plCfg config.PipelineConfig, metrics *monitoring.Collector) *LLM {
	rps := aiCfg.RPS
	if rps <= 0 {
		rps = 2.0
	}
	return &LLM{
		client:      client,
		model:       aiCfg.Model,
		maxTokens:   aiCfg.MaxTokens,
		temperature: 0.2,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		retry: resilience.FixedRetryConfig(
			plCfg.MaxRetries,
			time.Duration(plCfg.RetryBackoffMS)*time.Millisecond,
		),
		metrics: metrics,
	}
}

func (l *LLM) ParseIntent(ctx context.Context, text string) (model.Intent, error) {
	user := fmt.Sprintf("User Query: %q\n\nJSON:", text)

	intent, err := resilience.DoVal(ctx, l.withLogger("parse_intent"), func(ctx context.Context) (model.Intent, error) {
		raw, err := l.complete(ctx, "intent", intentSystemPrompt, user)
		if err != nil {
			return model.Intent{}, err
		}

		var parsed model.Intent
		if err := json.Unmarshal([]byte(cleanJSON(raw)), &parsed); err != nil {
			return model.Intent{}, eris.Wrapf(resilience.ErrMalformedPayload, "knowledge: intent JSON: %v", err)
		}
		if parsed.Confidence == nil {
			parsed.Confidence = map[string]float64{}
		}
		return parsed, nil
	})
	if err != nil {
		return model.Intent{}, eris.Wrap(err, "knowledge: parse intent")
	}
	return intent, nil
}

func (l *LLM) DetermineEquation(ctx context.Context, metric string) (model.Equation, error) {
	user := fmt.Sprintf("Metric: %s\n\nJSON:", metric)

	eq, err := resilience.DoVal(ctx, l.withLogger("determine_equation"), func(ctx context.Context) (model.Equation, error) {
		raw, err := l.complete(ctx, "equation", equationSystemPrompt, user)
		if err != nil {
			return model.Equation{}, err
		}

		var parsed model.Equation
		if err := json.Unmarshal([]byte(cleanJSON(raw)), &parsed); err != nil {
			return model.Equation{}, eris.Wrapf(resilience.ErrMalformedPayload, "knowledge: equation JSON: %v", err)
		}
		if parsed.Formula == "" {
			return model.Equation{}, eris.Wrap(resilience.ErrMalformedPayload, "knowledge: equation without formula")
		}
		return parsed, nil
	})
	if err != nil {
		return model.Equation{}, eris.Wrapf(err, "knowledge: determine equation for %s", metric)
	}
	return eq, nil
}

func (l *LLM) MapVariable(ctx context.Context, canonicalVar string, availableProperties []string) ([]Mapping, error) {
	user := fmt.Sprintf("Canonical Variable: %s\nAvailable Properties: %s\n\nJSON:",
		canonicalVar, strings.Join(availableProperties, ", "))

	mappings, err := resilience.DoVal(ctx, l.withLogger("map_variable"), func(ctx context.Context) ([]Mapping, error) {
		raw, err := l.complete(ctx, "mapping", mappingSystemPrompt, user)
		if err != nil {
			return nil, err
		}

		var parsed []Mapping
		if err := json.Unmarshal([]byte(cleanJSONArray(raw)), &parsed); err != nil {
			return nil, eris.Wrapf(resilience.ErrMalformedPayload, "knowledge: mapping JSON: %v", err)
		}
		return parsed, nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "knowledge: map variable %s", canonicalVar)
	}

	// Guard against hallucinated property names: only candidates present in
	// the store survive.
	available := make(map[string]struct{}, len(availableProperties))
	for _, p := range availableProperties {
		available[p] = struct{}{}
	}
	out := mappings[:0]
	for _, m := range mappings {
		if _, ok := available[m.Property]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (l *LLM) FallbackValue(ctx context.Context, canonicalVar string, filters model.Filters) (float64, error) {
	var qualifiers strings.Builder
	if filters.Tech != "" {
		fmt.Fprintf(&qualifiers, " for %s", filters.Tech)
	}
	if filters.Country != "" {
		fmt.Fprintf(&qualifiers, " in %s", filters.Country)
	}
	if filters.Year != "" {
		fmt.Fprintf(&qualifiers, " for %s", filters.Year)
	}
	user := fmt.Sprintf("What is a typical value for %s%s?\nRemember to respond ONLY with the numeric value.",
		canonicalVar, qualifiers.String())

	value, err := resilience.DoVal(ctx, l.withLogger("fallback_value"), func(ctx context.Context) (float64, error) {
		raw, err := l.complete(ctx, "fallback_value", fallbackSystemPrompt, user)
		if err != nil {
			return 0, err
		}
		v, ok := firstNumber(raw)
		if !ok {
			return 0, eris.Wrapf(resilience.ErrMalformedPayload, "knowledge: no numeric token in %q", raw)
		}
		return v, nil
	})
	if err != nil {
		return 0, eris.Wrapf(err, "knowledge: fallback value for %s", canonicalVar)
	}
	return value, nil
}

func (l *LLM) MetricUnit(ctx context.Context, metric string) (string, error) {
	user := fmt.Sprintf("What is the standard unit for %s in energy analytics? Respond with the unit only.", metric)

	raw, err := l.complete(ctx, "unit", "You are an energy analytics expert.", user)
	if err != nil {
		return "", eris.Wrapf(err, "knowledge: unit for %s", metric)
	}
	return strings.TrimSpace(raw), nil
}

// complete issues one rate-limited message call and returns the text content.
func (l *LLM) complete(ctx context.Context, kind, system, user string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "knowledge: rate limit wait")
	}

	temp := l.temperature
	resp, err := l.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       l.model,
		MaxTokens:   l.maxTokens,
		System:      system,
		Messages:    []anthropic.Message{{Role: "user", Content: user}},
		Temperature: &temp,
	})
	l.metrics.RecordKnowledgeCall(kind, err != nil)
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(l.model, kind)
	return resp.Text(), nil
}

func (l *LLM) withLogger(operation string) resilience.RetryConfig {
	cfg := l.retry
	cfg.OnRetry = resilience.RetryLogger("knowledge", operation)
	return cfg
}

var _ Source = (*LLM)(nil)
