package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

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
