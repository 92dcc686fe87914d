package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/charterquote/quoteengine/internal/flighttime"
)

// MockRemote is a mock implementation of flighttime.Remote
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) FlightTimes(ctx context.Context, legs []flighttime.LegInput, modelIDs []string) (map[string][]float64, error) {
	args := m.Called(ctx, legs, modelIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]float64), args.Error(1)
}

var _ flighttime.Remote = (*MockRemote)(nil)
