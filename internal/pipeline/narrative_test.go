package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridvolt/nfg-cli/internal/model"
)

func TestFormatResult(t *testing.T) {
	cases := []struct {
		metric string
		value  float64
		want   string
	}{
		{"LCOE", 45.678, "45.68"},
		{"LCOS", 120.0, "120.00"},
		{"CAPACITY_FACTOR", 22.83, "22.8%"},
		{"LOAD_FACTOR", 91.25, "91.2%"},
		{"GENERATION_GWh", 1234.56, "1234.6"},
		{"NPV", 1000.5, "1000.50"},
		{"UNLISTED_METRIC", 7.77, "7.8"},
	}
	for _, tc := range cases {
		t.Run(tc.metric, func(t *testing.T) {
			assert.Equal(t, tc.want, formatResult(tc.metric, tc.value))
		})
	}
}

func TestBuildNarrative(t *testing.T) {
	intent := model.Intent{Metric: "CAPACITY_FACTOR", Tech: "WIND", Country: "FR", Year: 2050}
	citations := []model.Citation{
		{Source: "systemgenerators.csv", Property: "Generation", Value: 100, Unit: "GWh"},
		{Source: model.FallbackSource, Property: "CAPACITY_MW", Value: 100, Unit: model.FallbackUnit},
	}

	n := buildNarrative(intent, "GENERATION_GWh * 1000 / (CAPACITY_MW * 8760)", "22.8%", "%", citations)
	require.NotNil(t, n)
	assert.Equal(t, "The Capacity Factor for Wind in France for 2050 is 22.8% %.", n.Summary)
	assert.Equal(t, "This result is calculated from data in: systemgenerators.csv.", n.DataSource)
	assert.Equal(t, "Calculated using: GENERATION_GWh * 1000 / (CAPACITY_MW * 8760)", n.Methodology)
	assert.Contains(t, n.Context, "ratio of actual electrical energy output")
	assert.Contains(t, n.TechInsights, "Wind power costs")
	assert.Contains(t, n.CountryInsights, "France")
}

func TestBuildNarrativeUnknownScope(t *testing.T) {
	n := buildNarrative(model.Intent{Metric: "OBSCURE"}, "X", "7.8", "unknown", nil)
	require.NotNil(t, n)
	assert.Equal(t, "The OBSCURE for Unknown in Unknown for Unknown is 7.8 unknown.", n.Summary)
	assert.Equal(t, "This result is based on typical values as no specific data was found.", n.DataSource)
	assert.Empty(t, n.Context)
	assert.Empty(t, n.TechInsights)
	assert.Empty(t, n.CountryInsights)
}

func TestDescribeDataSourcesSortedUnique(t *testing.T) {
	got := describeDataSources([]model.Citation{
		{Source: "b.csv"},
		{Source: "a.csv"},
		{Source: "b.csv"},
	})
	assert.Equal(t, "This result is calculated from data in: a.csv, b.csv.", got)
}
