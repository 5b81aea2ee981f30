package processor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"vidasmart/inventory-worker/internal/app/worker/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSnapshotService мок для SnapshotServiceInterface
type MockSnapshotService struct {
	mock.Mock
}

func (m *MockSnapshotService) TakeSnapshot(ctx context.Context) (*entity.StockSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StockSnapshot), args.Error(1)
}

func (m *MockSnapshotService) LatestSnapshot(ctx context.Context) (*entity.StockSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StockSnapshot), args.Error(1)
}

// ===================== NewCronScheduler Tests =====================

func TestNewCronScheduler(t *testing.T) {
	mockSvc := new(MockSnapshotService)

	scheduler := NewCronScheduler(mockSvc, nil)

	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, mockSvc, scheduler.snapshotSvc)
	assert.Equal(t, time.UTC, scheduler.cron.Location())
}

func TestNewCronScheduler_Location(t *testing.T) {
	mexico := time.FixedZone("CST", -6*3600)

	scheduler := NewCronScheduler(new(MockSnapshotService), mexico)

	assert.Equal(t, mexico, scheduler.cron.Location())
}

// ===================== Start Tests =====================

func TestCronScheduler_Start_RunOnStart(t *testing.T) {
	// Arrange
	mockSvc := new(MockSnapshotService)
	scheduler := NewCronScheduler(mockSvc, time.UTC)

	mockSvc.On("TakeSnapshot", mock.Anything).Return(&entity.StockSnapshot{Date: "2026-03-01"}, nil).Once()

	// Act
	err := scheduler.Start(context.Background(), "0 2 * * *", true)

	// Assert
	require.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	scheduler.Stop()
	mockSvc.AssertExpectations(t)
}

func TestCronScheduler_Start_WithoutInitialRun(t *testing.T) {
	mockSvc := new(MockSnapshotService)
	scheduler := NewCronScheduler(mockSvc, time.UTC)

	err := scheduler.Start(context.Background(), "0 2 * * *", false)

	require.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	scheduler.Stop()
	mockSvc.AssertNotCalled(t, "TakeSnapshot", mock.Anything)
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	tests := []string{
		"invalid cron expression",
		// секунды не включены в парсер
		"0 0 2 * * *",
	}

	for _, schedule := range tests {
		mockSvc := new(MockSnapshotService)
		scheduler := NewCronScheduler(mockSvc, time.UTC)

		err := scheduler.Start(context.Background(), schedule, true)

		assert.Error(t, err, schedule)
		assert.Empty(t, scheduler.GetEntries())
		mockSvc.AssertNotCalled(t, "TakeSnapshot", mock.Anything)
	}
}

func TestCronScheduler_Start_InitialSnapshotError_ContinuesWork(t *testing.T) {
	mockSvc := new(MockSnapshotService)
	scheduler := NewCronScheduler(mockSvc, time.UTC)

	mockSvc.On("TakeSnapshot", mock.Anything).Return(nil, errors.New("mongo down"))

	err := scheduler.Start(context.Background(), "0 2 * * *", true)

	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	scheduler.Stop()
}

// ===================== Job Execution Tests =====================

func TestCronScheduler_JobExecution(t *testing.T) {
	// @every для быстрого теста
	mockSvc := new(MockSnapshotService)
	scheduler := NewCronScheduler(mockSvc, time.UTC)

	var calls atomic.Int32
	mockSvc.On("TakeSnapshot", mock.Anything).Run(func(mock.Arguments) { calls.Add(1) }).
		Return(&entity.StockSnapshot{}, nil)

	err := scheduler.Start(context.Background(), "@every 1s", false)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)

	scheduler.Stop()
}

func TestCronScheduler_JobExecution_WithError(t *testing.T) {
	// Ошибка снимка не останавливает расписание
	mockSvc := new(MockSnapshotService)
	scheduler := NewCronScheduler(mockSvc, time.UTC)

	var calls atomic.Int32
	mockSvc.On("TakeSnapshot", mock.Anything).Run(func(mock.Arguments) { calls.Add(1) }).
		Return(nil, errors.New("db error"))

	err := scheduler.Start(context.Background(), "@every 1s", true)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, 3*time.Second, 50*time.Millisecond)

	scheduler.Stop()
}

func TestCronScheduler_GetEntries_Empty(t *testing.T) {
	scheduler := NewCronScheduler(new(MockSnapshotService), nil)

	assert.Empty(t, scheduler.GetEntries())
}
