package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"point-canvas/internal/domain"
)

// StateRepository 是 repository.StateRepository 的 testify mock
type StateRepository struct {
	mock.Mock
}

func (m *StateRepository) SetLatestPoint(ctx context.Context, point domain.RecordedPoint, ttl time.Duration) error {
	args := m.Called(ctx, point, ttl)
	return args.Error(0)
}

func (m *StateRepository) GetLatestPoint(ctx context.Context) (*domain.RecordedPoint, error) {
	args := m.Called(ctx)
	if p, ok := args.Get(0).(*domain.RecordedPoint); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StateRepository) IncrementRecordedCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StateRepository) PublishRecorded(ctx context.Context, point domain.RecordedPoint) error {
	args := m.Called(ctx, point)
	return args.Error(0)
}
