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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func mustDecimal128(t *testing.T, s string) primitive.Decimal128 {
	t.Helper()
	d, err := primitive.ParseDecimal128(s)
	require.NoError(t, err)
	return d
}

func newSnapshotServiceWithClock(products *mocks.MockProductRepository, snapshots *mocks.MockSnapshotRepository, now time.Time) *SnapshotService {
	mexico := time.FixedZone("CST", -6*3600)
	service := NewSnapshotService(products, snapshots, mexico)
	service.now = func() time.Time { return now }
	return service
}

// ===================== TakeSnapshot Tests =====================

func TestTakeSnapshot_Success(t *testing.T) {
	// Arrange
	products := new(mocks.MockProductRepository)
	snapshots := new(mocks.MockSnapshotRepository)
	// 03:30 UTC 2 марта - ещё 1 марта в Мехико
	now := time.Date(2026, 3, 2, 3, 30, 0, 0, time.UTC)
	service := newSnapshotServiceWithClock(products, snapshots, now)

	ctx := context.Background()
	first := entity.Product{
		ID:            uuid.New(),
		Name:          "Aretes",
		Color:         "oro",
		Stock:         4,
		Version:       2,
		PurchasePrice: decimal.RequireFromString("120.50"),
	}
	second := entity.Product{
		ID:            uuid.New(),
		Name:          "Pulsera",
		Stock:         0,
		Version:       1,
		PurchasePrice: decimal.RequireFromString("80"),
	}
	products.On("ListActive", ctx).Return([]entity.Product{first, second}, nil)

	var saved *entity.StockSnapshot
	snapshots.On("Save", ctx, mock.AnythingOfType("*entity.StockSnapshot")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*entity.StockSnapshot)
	}).Return(nil)

	// Act
	snapshot, err := service.TakeSnapshot(ctx)

	// Assert
	require.NoError(t, err)
	assert.Same(t, snapshot, saved)
	assert.Equal(t, "2026-03-01", snapshot.Date)
	assert.True(t, snapshot.TakenAt.Equal(now))
	assert.Equal(t, 4, snapshot.TotalUnits)
	assert.Equal(t, mustDecimal128(t, "482.00"), snapshot.StockValue)

	require.Len(t, snapshot.Products, 2)
	assert.Equal(t, first.ID.String(), snapshot.Products[0].ProductID)
	assert.Equal(t, 2, snapshot.Products[0].Version)
	assert.Equal(t, mustDecimal128(t, "120.50"), snapshot.Products[0].PurchasePrice)
	assert.Equal(t, mustDecimal128(t, "482.00"), snapshot.Products[0].StockValue)
	assert.Equal(t, mustDecimal128(t, "0.00"), snapshot.Products[1].StockValue)
	products.AssertExpectations(t)
	snapshots.AssertExpectations(t)
}

func TestTakeSnapshot_NoProducts(t *testing.T) {
	products := new(mocks.MockProductRepository)
	snapshots := new(mocks.MockSnapshotRepository)
	service := newSnapshotServiceWithClock(products, snapshots, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))

	ctx := context.Background()
	products.On("ListActive", ctx).Return([]entity.Product{}, nil)
	snapshots.On("Save", ctx, mock.Anything).Return(nil)

	snapshot, err := service.TakeSnapshot(ctx)

	require.NoError(t, err)
	assert.NotNil(t, snapshot.Products)
	assert.Empty(t, snapshot.Products)
	assert.Zero(t, snapshot.TotalUnits)
	assert.Equal(t, mustDecimal128(t, "0.00"), snapshot.StockValue)
}

func TestTakeSnapshot_ProductsError(t *testing.T) {
	products := new(mocks.MockProductRepository)
	snapshots := new(mocks.MockSnapshotRepository)
	service := NewSnapshotService(products, snapshots, nil)

	ctx := context.Background()
	products.On("ListActive", ctx).Return(nil, errors.New("db down"))

	snapshot, err := service.TakeSnapshot(ctx)

	assert.Error(t, err)
	assert.Nil(t, snapshot)
	snapshots.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTakeSnapshot_SaveError(t *testing.T) {
	products := new(mocks.MockProductRepository)
	snapshots := new(mocks.MockSnapshotRepository)
	service := NewSnapshotService(products, snapshots, time.UTC)

	ctx := context.Background()
	products.On("ListActive", ctx).Return([]entity.Product{}, nil)
	snapshots.On("Save", ctx, mock.Anything).Return(errors.New("mongo down"))

	snapshot, err := service.TakeSnapshot(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to take stock snapshot")
	assert.Nil(t, snapshot)
}

// ===================== LatestSnapshot Tests =====================

func TestLatestSnapshot(t *testing.T) {
	products := new(mocks.MockProductRepository)
	snapshots := new(mocks.MockSnapshotRepository)
	service := NewSnapshotService(products, snapshots, time.UTC)

	ctx := context.Background()
	expected := &entity.StockSnapshot{Date: "2026-03-01"}
	snapshots.On("Latest", ctx).Return(expected, nil)

	snapshot, err := service.LatestSnapshot(ctx)

	require.NoError(t, err)
	assert.Same(t, expected, snapshot)
}

func TestLatestSnapshot_NotFound(t *testing.T) {
	products := new(mocks.MockProductRepository)
	snapshots := new(mocks.MockSnapshotRepository)
	service := NewSnapshotService(products, snapshots, time.UTC)

	ctx := context.Background()
	snapshots.On("Latest", ctx).Return(nil, repository.ErrSnapshotNotFound)

	snapshot, err := service.LatestSnapshot(ctx)

	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.Nil(t, snapshot)
}
