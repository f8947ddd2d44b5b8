package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridvolt/nfg-cli/internal/model"
)

func testTables() []Table {
	return []Table{
		{
			Name: "systemgenerators.csv",
			Rows: []Row{
				{Property: "Generation", Category: "Wind Onshore", Child: "FR01_Wind", Date: "2050", Value: "100", Unit: "GWh"},
				{Property: "Generation", Category: "Wind Onshore", Child: "BE12_Plant", Date: "2050", Value: "40", Unit: "GWh"},
				{Property: "Installed Capacity", Category: "Wind Onshore", Child: "FR01_Wind", Date: "2050", Value: "50", Unit: "MW"},
				{Property: "Generation", Category: "Nuclear", Child: "FR02_NPP", Date: "2049", Value: "900", Unit: "GWh"},
				{Property: "Generation", Category: "Wind Offshore", Child: "ABE12", Date: "2050", Value: "77", Unit: "GWh"},
				{Property: "Emissions", Category: "CCGT", Child: "FR03_Gas", Date: "2050", Value: "not reported", Unit: "tCO2"},
			},
		},
		{
			Name: "networks.csv",
			Rows: []Row{
				{Property: "Flow", Category: "Transmission", Child: "FR-BE", Date: "2050", Value: "12.5", Unit: "GWh"},
			},
		},
	}
}

func TestQueryCountryPrefixNotEquality(t *testing.T) {
	s := NewMemory(testTables())

	rows, err := s.Query(context.Background(), model.Filters{Country: "BE"}, []string{"Generation"})
	require.NoError(t, err)

	// BE12_Plant matches the BE prefix; ABE12 must not.
	require.Len(t, rows, 1)
	assert.Equal(t, "BE12_Plant", rows[0].Child)
}

func TestQueryTechSubstringCaseInsensitive(t *testing.T) {
	s := NewMemory(testTables())

	rows, err := s.Query(context.Background(), model.Filters{Tech: "WIND"}, nil)
	require.NoError(t, err)

	for _, r := range rows {
		assert.Contains(t, r.Category, "Wind")
	}
	assert.Len(t, rows, 4)
}

func TestQueryTechPatternAlternatives(t *testing.T) {
	tables := []Table{
		{
			Name: "systemgenerators.csv",
			Rows: []Row{
				{Property: "Generation", Category: "PV", Child: "ES01_Plant", Date: "2050", Value: "30", Unit: "GWh"},
				{Property: "Generation", Category: "Photovoltaic Rooftop", Child: "ES02_Roof", Date: "2050", Value: "12", Unit: "GWh"},
				{Property: "Generation", Category: "Wind Onshore", Child: "ES03_Wind", Date: "2050", Value: "50", Unit: "GWh"},
			},
		},
	}
	s := NewMemory(tables)

	// The canonical name alone never reaches rows labeled with a variant.
	rows, err := s.Query(context.Background(), model.Filters{Tech: "SOLAR"}, []string{"Generation"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = s.Query(context.Background(), model.Filters{
		Tech:         "SOLAR",
		TechPatterns: []string{"Solar", "PV", "photovoltaic"},
	}, []string{"Generation"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PV", rows[0].Category)
	assert.Equal(t, "Photovoltaic Rooftop", rows[1].Category)
}

func TestQueryYearTolerantAndScoped(t *testing.T) {
	s := NewMemory(testTables())

	rows, err := s.Query(context.Background(), model.Filters{Tech: "Nuclear", Year: "2049"}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 900.0, rows[0].Value)
}

func TestQueryPropertiesRestrictBeforeOtherFilters(t *testing.T) {
	s := NewMemory(testTables())

	rows, err := s.Query(context.Background(),
		model.Filters{Country: "FR", Year: "2050"},
		[]string{"Installed Capacity"},
	)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Installed Capacity", rows[0].Property)
	assert.Equal(t, 50.0, rows[0].Value)
	assert.Equal(t, "systemgenerators.csv", rows[0].SourceTable)
}

func TestQuerySearchesAllTables(t *testing.T) {
	s := NewMemory(testTables())

	rows, err := s.Query(context.Background(), model.Filters{}, []string{"Flow"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "networks.csv", rows[0].SourceTable)
}

func TestQueryDropsNonNumericValues(t *testing.T) {
	s := NewMemory(testTables())

	rows, err := s.Query(context.Background(), model.Filters{}, []string{"Emissions"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestQueryNoMatchesIsEmptyNotError(t *testing.T) {
	s := NewMemory(testTables())

	rows, err := s.Query(context.Background(), model.Filters{Country: "ZZ"}, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListAvailableProperties(t *testing.T) {
	s := NewMemory(testTables())

	props, err := s.ListAvailableProperties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Emissions", "Flow", "Generation", "Installed Capacity"}, props)
}

func TestGetUniqueValues(t *testing.T) {
	s := NewMemory(testTables())

	dates, err := s.GetUniqueValues(context.Background(), ColDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"2049", "2050"}, dates)
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.14 ", 3.14, true},
		{"-0.5", -0.5, true},
		{"1,234.5", 1234.5, true},
		{"", 0, false},
		{"null", 0, false},
		{"NaN", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := coerceValue(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "raw=%q", tt.raw)
		}
	}
}
