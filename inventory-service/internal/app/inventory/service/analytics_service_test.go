package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/repository/mocks"
	"vidasmart/inventory-service/internal/app/inventory/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *util.RedisClient {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return util.NewRedisClientFrom(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func expectAggregates(repo *mocks.MockAnalyticsRepository, period repository.DateRange, times int) {
	repo.On("SalesTotals", mock.Anything, period).Return(&repository.SalesTotals{
		SalesCount: 3,
		Quantity:   7,
		Revenue:    dec("1400"),
		Commission: dec("70"),
		Expenses:   dec("30"),
		LiveProfit: dec("500"),
		Historical: dec("560"),
	}, nil).Times(times)
	repo.On("InvestmentCosts", mock.Anything, period).Return(dec("600"), nil).Times(times)
	repo.On("TopProducts", mock.Anything, period, topProductsLimit).Return([]repository.Rollup{
		{Key: "p1", Label: "Colágeno", Quantity: 5, Revenue: dec("1000"), Commission: dec("50")},
	}, nil).Times(times)
	repo.On("BySeller", mock.Anything, period).Return([]repository.Rollup{}, nil).Times(times)
	repo.On("ByColor", mock.Anything, period).Return([]repository.Rollup{}, nil).Times(times)
}

// ===================== Dashboard Tests =====================

func TestDashboard_NetProfit(t *testing.T) {
	// Arrange
	repo := new(mocks.MockAnalyticsRepository)
	service := NewAnalyticsService(repo, newTestCache(t), time.Minute)

	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	expectAggregates(repo, repository.DateRange{From: from, To: to}, 1)

	// Act
	dashboard, err := service.Dashboard(ctx, from, to)

	// Assert
	require.NoError(t, err)
	// 1400 - 600 - 70
	assert.True(t, dashboard.Totals.NetProfit.Amount.Equal(dec("730")))
	assert.True(t, dashboard.Totals.Revenue.Amount.Equal(dec("1400")))
	assert.True(t, dashboard.Totals.HistoricalProfit.Amount.Equal(dec("560")))
	assert.Contains(t, dashboard.Totals.Revenue.Formatted, "400")
	assert.Equal(t, 7, dashboard.Totals.UnitsSold)
	require.Len(t, dashboard.TopProducts, 1)
	assert.Equal(t, "Colágeno", dashboard.TopProducts[0].Label)
	assert.NotNil(t, dashboard.BySeller)
	repo.AssertExpectations(t)
}

func TestDashboard_CachedUntilInvalidated(t *testing.T) {
	// Arrange
	repo := new(mocks.MockAnalyticsRepository)
	cache := newTestCache(t)
	service := NewAnalyticsService(repo, cache, time.Minute)

	ctx := context.Background()
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	expectAggregates(repo, repository.DateRange{From: from, To: to}, 2)

	// Act
	first, err := service.Dashboard(ctx, from, to)
	require.NoError(t, err)
	second, err := service.Dashboard(ctx, from, to)
	require.NoError(t, err)

	// Assert: второй ответ из кеша
	repo.AssertNumberOfCalls(t, "SalesTotals", 1)
	assert.True(t, first.Totals.NetProfit.Amount.Equal(second.Totals.NetProfit.Amount))

	// запись продажи сбрасывает кеш отчётов
	invalidateAnalytics(ctx, cache)
	_, err = service.Dashboard(ctx, from, to)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "SalesTotals", 2)
}

func TestDashboard_InvalidRange(t *testing.T) {
	repo := new(mocks.MockAnalyticsRepository)
	service := NewAnalyticsService(repo, new(mocks.MockCache), time.Minute)

	now := time.Now()
	_, err := service.Dashboard(context.Background(), now, now)

	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertNotCalled(t, "SalesTotals", mock.Anything, mock.Anything)
}

func TestDashboard_RepositoryError(t *testing.T) {
	// Arrange
	repo := new(mocks.MockAnalyticsRepository)
	cache := new(mocks.MockCache)
	service := NewAnalyticsService(repo, cache, time.Minute)

	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	cache.On("GetJSON", ctx, mock.AnythingOfType("string"), mock.Anything).Return(false, nil)
	repo.On("SalesTotals", ctx, repository.DateRange{From: from, To: to}).Return(nil, errors.New("connection reset"))

	// Act
	_, err := service.Dashboard(ctx, from, to)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to aggregate sales")
	cache.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
