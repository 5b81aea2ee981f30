package service

import (
	"context"
	"fmt"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/util"
	"vidasmart/pkg/logger"

	"github.com/shopspring/decimal"
)

const topProductsLimit = 10

// AnalyticsService - отчёты только на чтение по сохранённым продажам и инвестициям
type AnalyticsService struct {
	repo     repository.AnalyticsRepository
	cache    util.Cache
	cacheTTL time.Duration
	currency string
}

func NewAnalyticsService(repo repository.AnalyticsRepository, cache util.Cache, cacheTTL time.Duration) *AnalyticsService {
	return &AnalyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		currency: util.DefaultCurrency,
	}
}

// Dashboard собирает сводку за [from, to).
// net_profit = выручка - затраты на инвестиции - комиссии.
func (s *AnalyticsService) Dashboard(ctx context.Context, from, to time.Time) (*entity.Dashboard, error) {
	if !to.After(from) {
		return nil, newValidationError("to", "must be after from")
	}
	from, to = from.UTC(), to.UTC()

	key := fmt.Sprintf("%sdashboard:%d:%d", analyticsCachePrefix, from.Unix(), to.Unix())
	var cached entity.Dashboard
	found, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read analytics cache")
	}
	if found {
		return &cached, nil
	}

	period := repository.DateRange{From: from, To: to}

	totals, err := s.repo.SalesTotals(ctx, period)
	if err != nil {
		return nil, translate("aggregate sales", err)
	}
	costs, err := s.repo.InvestmentCosts(ctx, period)
	if err != nil {
		return nil, translate("aggregate investments", err)
	}
	top, err := s.repo.TopProducts(ctx, period, topProductsLimit)
	if err != nil {
		return nil, translate("aggregate top products", err)
	}
	bySeller, err := s.repo.BySeller(ctx, period)
	if err != nil {
		return nil, translate("aggregate sellers", err)
	}
	byColor, err := s.repo.ByColor(ctx, period)
	if err != nil {
		return nil, translate("aggregate colors", err)
	}

	dashboard := &entity.Dashboard{
		From: from,
		To:   to,
		Totals: entity.DashboardTotals{
			SalesCount:       totals.SalesCount,
			UnitsSold:        totals.Quantity,
			Revenue:          s.money(totals.Revenue),
			Costs:            s.money(costs),
			Commissions:      s.money(totals.Commission),
			Expenses:         s.money(totals.Expenses),
			NetProfit:        s.money(totals.Revenue.Sub(costs).Sub(totals.Commission)),
			LiveProfit:       s.money(totals.LiveProfit),
			HistoricalProfit: s.money(totals.Historical),
		},
		TopProducts: s.lines(top),
		BySeller:    s.lines(bySeller),
		ByColor:     s.lines(byColor),
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.cache.SetJSON(ctx, key, dashboard, s.cacheTTL); err != nil {
		logger.Warn().Err(err).Msg("failed to cache analytics dashboard")
	}

	return dashboard, nil
}

func (s *AnalyticsService) money(amount decimal.Decimal) entity.Money {
	return entity.Money{Amount: amount, Formatted: util.FormatMoney(amount, s.currency)}
}

func (s *AnalyticsService) lines(rollups []repository.Rollup) []entity.RollupLine {
	lines := make([]entity.RollupLine, 0, len(rollups))
	for _, r := range rollups {
		lines = append(lines, entity.RollupLine{
			Key:        r.Key,
			Label:      r.Label,
			Quantity:   r.Quantity,
			Revenue:    s.money(r.Revenue),
			Commission: s.money(r.Commission),
		})
	}
	return lines
}
