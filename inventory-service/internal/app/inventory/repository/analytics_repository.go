package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type analyticsRepository struct {
	db *pgxpool.Pool
}

// NewAnalyticsRepository создает репозиторий агрегатов.
// Только чтение: отчёты строятся по сохранённым продажам и инвестициям.
func NewAnalyticsRepository(db *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// Суммы приводятся к text, чтобы разбирать numeric без потери точности
func (r *analyticsRepository) SalesTotals(ctx context.Context, period DateRange) (*SalesTotals, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(s.quantity_sold), 0),
			COALESCE(SUM(s.sale_price * s.quantity_sold), 0)::text,
			COALESCE(SUM(s.commission), 0)::text,
			COALESCE(SUM(s.additional_expenses), 0)::text,
			COALESCE(SUM((s.sale_price - p.purchase_price) * s.quantity_sold - s.additional_expenses), 0)::text,
			COALESCE(SUM((s.sale_price - s.purchase_price) * s.quantity_sold - s.additional_expenses), 0)::text
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.sale_date >= $1 AND s.sale_date < $2
	`

	var (
		totals                                          SalesTotals
		revenue, commission, expenses, live, historical string
	)
	err := r.db.QueryRow(ctx, query, period.From, period.To).Scan(
		&totals.SalesCount,
		&totals.Quantity,
		&revenue,
		&commission,
		&expenses,
		&live,
		&historical,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{revenue, &totals.Revenue},
		{commission, &totals.Commission},
		{expenses, &totals.Expenses},
		{live, &totals.LiveProfit},
		{historical, &totals.Historical},
	} {
		if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
			return nil, fmt.Errorf("failed to parse sales aggregate: %w", err)
		}
	}

	return &totals, nil
}

func (r *analyticsRepository) InvestmentCosts(ctx context.Context, period DateRange) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(total_cost), 0)::text
		FROM investments
		WHERE investment_date >= $1 AND investment_date < $2
	`

	var raw string
	if err := r.db.QueryRow(ctx, query, period.From, period.To).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("failed to aggregate investments: %w", err)
	}

	costs, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse investment costs: %w", err)
	}
	return costs, nil
}

// TopProducts - самые продаваемые товары по количеству
func (r *analyticsRepository) TopProducts(ctx context.Context, period DateRange, limit int) ([]Rollup, error) {
	query := `
		SELECT p.id::text, p.name,
			SUM(s.quantity_sold),
			SUM(s.sale_price * s.quantity_sold)::text,
			SUM(s.commission)::text
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.sale_date >= $1 AND s.sale_date < $2
		GROUP BY p.id, p.name
		ORDER BY SUM(s.quantity_sold) DESC, p.name ASC
		LIMIT $3
	`
	return r.rollups(ctx, query, period.From, period.To, limit)
}

func (r *analyticsRepository) BySeller(ctx context.Context, period DateRange) ([]Rollup, error) {
	query := `
		SELECT COALESCE(s.seller_id::text, ''), COALESCE(u.name, 'unassigned'),
			SUM(s.quantity_sold),
			SUM(s.sale_price * s.quantity_sold)::text,
			SUM(s.commission)::text
		FROM sales s
		LEFT JOIN users u ON u.id = s.seller_id
		WHERE s.sale_date >= $1 AND s.sale_date < $2
		GROUP BY s.seller_id, u.name
		ORDER BY SUM(s.sale_price * s.quantity_sold) DESC
	`
	return r.rollups(ctx, query, period.From, period.To)
}

func (r *analyticsRepository) ByColor(ctx context.Context, period DateRange) ([]Rollup, error) {
	query := `
		SELECT COALESCE(NULLIF(s.color, ''), 'unspecified') AS color, COALESCE(NULLIF(s.color, ''), 'unspecified'),
			SUM(s.quantity_sold),
			SUM(s.sale_price * s.quantity_sold)::text,
			SUM(s.commission)::text
		FROM sales s
		WHERE s.sale_date >= $1 AND s.sale_date < $2
		GROUP BY COALESCE(NULLIF(s.color, ''), 'unspecified')
		ORDER BY SUM(s.quantity_sold) DESC
	`
	return r.rollups(ctx, query, period.From, period.To)
}

func (r *analyticsRepository) rollups(ctx context.Context, query string, args ...interface{}) ([]Rollup, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rollup: %w", err)
	}
	defer rows.Close()

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Rollup, error) {
		var (
			item                Rollup
			revenue, commission string
		)
		if err := row.Scan(&item.Key, &item.Label, &item.Quantity, &revenue, &commission); err != nil {
			return item, err
		}
		var err error
		if item.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return item, err
		}
		if item.Commission, err = decimal.NewFromString(commission); err != nil {
			return item, err
		}
		return item, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rollup: %w", err)
	}

	return result, nil
}
