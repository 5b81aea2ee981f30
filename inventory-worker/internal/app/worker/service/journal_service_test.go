package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vidasmart/inventory-worker/internal/app/worker/entity"
	"vidasmart/inventory-worker/internal/app/worker/repository"
	"vidasmart/inventory-worker/internal/app/worker/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSaleEvent() *entity.InventoryEvent {
	saleID := uuid.New()
	actorID := uuid.New()
	return &entity.InventoryEvent{
		EventID:     uuid.New(),
		EventType:   entity.EventSaleRecorded,
		ProductID:   uuid.New(),
		Version:     2,
		StockDelta:  -3,
		StockAfter:  7,
		ReferenceID: &saleID,
		ActorID:     &actorID,
		OccurredAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("CST", -6*3600)),
	}
}

// ===================== RecordEvent Tests =====================

func TestRecordEvent_Success(t *testing.T) {
	// Arrange
	movements := new(mocks.MockMovementRepository)
	service := NewJournalService(movements)

	ctx := context.Background()
	event := newSaleEvent()

	var captured *entity.Movement
	movements.On("Append", ctx, mock.AnythingOfType("*entity.Movement")).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*entity.Movement)
	}).Return(nil)

	// Act
	err := service.RecordEvent(ctx, event)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, event.EventID.String(), captured.EventID)
	assert.Equal(t, entity.EventSaleRecorded, captured.EventType)
	assert.Equal(t, event.ProductID.String(), captured.ProductID)
	assert.Equal(t, 2, captured.Version)
	assert.Equal(t, -3, captured.StockDelta)
	assert.Equal(t, 7, captured.StockAfter)
	assert.Equal(t, event.ReferenceID.String(), captured.ReferenceID)
	assert.Equal(t, event.ActorID.String(), captured.ActorID)
	// время события хранится в UTC
	assert.Equal(t, time.UTC, captured.OccurredAt.Location())
	assert.True(t, captured.OccurredAt.Equal(event.OccurredAt))
	movements.AssertExpectations(t)
}

func TestRecordEvent_WithoutOptionalIDs(t *testing.T) {
	// Arrange
	movements := new(mocks.MockMovementRepository)
	service := NewJournalService(movements)

	ctx := context.Background()
	event := newSaleEvent()
	event.EventType = entity.EventSharedAllocated
	event.StockDelta = 0
	event.AllocationDelta = 4
	event.ReferenceID = nil
	event.ActorID = nil

	movements.On("Append", ctx, mock.MatchedBy(func(m *entity.Movement) bool {
		return m.ReferenceID == "" && m.ActorID == "" && m.AllocationDelta == 4
	})).Return(nil)

	// Act
	err := service.RecordEvent(ctx, event)

	// Assert
	assert.NoError(t, err)
	movements.AssertExpectations(t)
}

func TestRecordEvent_DuplicateIsNotAnError(t *testing.T) {
	// Повторная доставка из Kafka
	movements := new(mocks.MockMovementRepository)
	service := NewJournalService(movements)

	ctx := context.Background()
	movements.On("Append", ctx, mock.Anything).Return(repository.ErrDuplicateEvent)

	err := service.RecordEvent(ctx, newSaleEvent())

	assert.NoError(t, err)
}

func TestRecordEvent_RepositoryError(t *testing.T) {
	movements := new(mocks.MockMovementRepository)
	service := NewJournalService(movements)

	ctx := context.Background()
	movements.On("Append", ctx, mock.Anything).Return(errors.New("mongo unavailable"))

	err := service.RecordEvent(ctx, newSaleEvent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to journal SALE_RECORDED")
	assert.NotErrorIs(t, err, ErrInvalidEvent)
}

func TestRecordEvent_InvalidEvent(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *entity.InventoryEvent)
		reason string
	}{
		{"missing event id", func(e *entity.InventoryEvent) { e.EventID = uuid.Nil }, "event_id"},
		{"missing type", func(e *entity.InventoryEvent) { e.EventType = "" }, "event_type"},
		{"missing product", func(e *entity.InventoryEvent) { e.ProductID = uuid.Nil }, "product_id"},
		{"missing time", func(e *entity.InventoryEvent) { e.OccurredAt = time.Time{} }, "occurred_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movements := new(mocks.MockMovementRepository)
			service := NewJournalService(movements)

			event := newSaleEvent()
			tt.mutate(event)

			err := service.RecordEvent(context.Background(), event)

			assert.ErrorIs(t, err, ErrInvalidEvent)
			assert.Contains(t, err.Error(), tt.reason)
			movements.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		})
	}
}

// ===================== ProductMovements Tests =====================

func TestProductMovements_LimitBounds(t *testing.T) {
	tests := []struct {
		name     string
		limit    int64
		expected int64
	}{
		{"default", 0, defaultMovementsLimit},
		{"negative", -5, defaultMovementsLimit},
		{"custom", 10, 10},
		{"capped", 10000, maxMovementsLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movements := new(mocks.MockMovementRepository)
			service := NewJournalService(movements)

			ctx := context.Background()
			productID := uuid.New()
			movements.On("ListByProduct", ctx, productID.String(), tt.expected).
				Return([]entity.Movement{{EventID: "e-1"}}, nil)

			result, err := service.ProductMovements(ctx, productID, tt.limit)

			require.NoError(t, err)
			assert.Len(t, result, 1)
			movements.AssertExpectations(t)
		})
	}
}

func TestProductMovements_Error(t *testing.T) {
	movements := new(mocks.MockMovementRepository)
	service := NewJournalService(movements)

	ctx := context.Background()
	movements.On("ListByProduct", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	result, err := service.ProductMovements(ctx, uuid.New(), 20)

	assert.Error(t, err)
	assert.Nil(t, result)
}
