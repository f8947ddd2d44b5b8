package catalog

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gridvolt/nfg-cli/internal/knowledge"
	"github.com/gridvolt/nfg-cli/internal/model"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ParseIntent(ctx context.Context, text string) (model.Intent, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(model.Intent), args.Error(1)
}

func (m *mockSource) DetermineEquation(ctx context.Context, metric string) (model.Equation, error) {
	args := m.Called(ctx, metric)
	return args.Get(0).(model.Equation), args.Error(1)
}

func (m *mockSource) MapVariable(ctx context.Context, canonicalVar string, availableProperties []string) ([]knowledge.Mapping, error) {
	args := m.Called(ctx, canonicalVar, availableProperties)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]knowledge.Mapping), args.Error(1)
}

func (m *mockSource) FallbackValue(ctx context.Context, canonicalVar string, filters model.Filters) (float64, error) {
	args := m.Called(ctx, canonicalVar, filters)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockSource) MetricUnit(ctx context.Context, metric string) (string, error) {
	args := m.Called(ctx, metric)
	return args.String(0), args.Error(1)
}

func TestMappingsCached(t *testing.T) {
	src := new(mockSource)
	available := []string{"Generation", "Installed Capacity"}
	src.On("MapVariable", mock.Anything, "GENERATION_GWh", available).
		Return([]knowledge.Mapping{{Property: "Generation", Unit: "GWh"}}, nil).
		Once()

	c := New(src, nil)
	first := c.Mappings(context.Background(), "GENERATION_GWh", available)
	second := c.Mappings(context.Background(), "GENERATION_GWh", available)

	require.Len(t, first, 1)
	assert.Equal(t, "Generation", first[0].Property)
	assert.Equal(t, first, second)
	src.AssertExpectations(t)
}

func TestMappingsDefaultsWhenSourceFails(t *testing.T) {
	src := new(mockSource)
	src.On("MapVariable", mock.Anything, "CAPACITY_MW", mock.Anything).
		Return(nil, eris.New("knowledge: unavailable")).
		Once()

	c := New(src, nil)
	got := c.Mappings(context.Background(), "CAPACITY_MW", nil)

	require.NotEmpty(t, got)
	assert.Equal(t, "Installed Capacity", got[0].Property)

	// The failure result is cached too; the source is not retried.
	again := c.Mappings(context.Background(), "CAPACITY_MW", nil)
	assert.Equal(t, got, again)
	src.AssertExpectations(t)
}

func TestMappingsLiteralFallback(t *testing.T) {
	src := new(mockSource)
	src.On("MapVariable", mock.Anything, "OBSCURE_VAR", mock.Anything).
		Return([]knowledge.Mapping{}, nil).
		Once()

	c := New(src, nil)
	got := c.Mappings(context.Background(), "OBSCURE_VAR", nil)

	require.Len(t, got, 1)
	assert.Equal(t, "OBSCURE_VAR", got[0].Property)
}

func TestFallbackValueCachedPerScope(t *testing.T) {
	src := new(mockSource)
	fr := model.Filters{Tech: "WIND", Country: "FR", Year: "2050"}
	de := model.Filters{Tech: "WIND", Country: "DE", Year: "2050"}
	src.On("FallbackValue", mock.Anything, "CAPACITY_MW", fr).Return(120.0, nil).Once()
	src.On("FallbackValue", mock.Anything, "CAPACITY_MW", de).Return(340.0, nil).Once()

	c := New(src, nil)
	assert.Equal(t, 120.0, c.FallbackValue(context.Background(), "CAPACITY_MW", fr))
	assert.Equal(t, 120.0, c.FallbackValue(context.Background(), "CAPACITY_MW", fr))
	assert.Equal(t, 340.0, c.FallbackValue(context.Background(), "CAPACITY_MW", de))
	src.AssertExpectations(t)
}

func TestFallbackValueHeuristic(t *testing.T) {
	cases := []struct {
		name string
		want float64
	}{
		{"CAPACITY_MW", 100.0},
		{"GENERATION_GWh", 500.0},
		{"TOTAL_GEN_COST_kUSD", 1000.0},
		{"DISCOUNT_RATE", 0.08},
		{"SOMETHING_ELSE", 100.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := new(mockSource)
			src.On("FallbackValue", mock.Anything, tc.name, mock.Anything).
				Return(0.0, eris.New("knowledge: no numeric value in response")).
				Once()

			c := New(src, nil)
			got := c.FallbackValue(context.Background(), tc.name, model.Filters{})
			assert.Equal(t, tc.want, got)

			// Heuristic results are cached like any other.
			assert.Equal(t, tc.want, c.FallbackValue(context.Background(), tc.name, model.Filters{}))
			src.AssertExpectations(t)
		})
	}
}

func TestReset(t *testing.T) {
	src := new(mockSource)
	src.On("FallbackValue", mock.Anything, "CAPACITY_MW", mock.Anything).
		Return(77.0, nil).
		Twice()

	c := New(src, nil)
	assert.Equal(t, 77.0, c.FallbackValue(context.Background(), "CAPACITY_MW", model.Filters{}))
	c.Reset()
	assert.Equal(t, 77.0, c.FallbackValue(context.Background(), "CAPACITY_MW", model.Filters{}))
	src.AssertExpectations(t)
}
