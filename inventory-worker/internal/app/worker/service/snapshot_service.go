package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidasmart/inventory-worker/internal/app/worker/entity"
	"vidasmart/inventory-worker/internal/app/worker/repository"
	"vidasmart/pkg/logger"
	"vidasmart/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrSnapshotNotFound = errors.New("no stock snapshot taken yet")

// SnapshotService снимает остатки всех активных товаров
type SnapshotService struct {
	products  repository.ProductRepository
	snapshots repository.SnapshotRepository
	location  *time.Location
	now       func() time.Time
}

// NewSnapshotService создаёт сервис; location задаёт календарную дату снимка
func NewSnapshotService(
	products repository.ProductRepository,
	snapshots repository.SnapshotRepository,
	location *time.Location,
) *SnapshotService {
	if location == nil {
		location = time.UTC
	}
	return &SnapshotService{
		products:  products,
		snapshots: snapshots,
		location:  location,
		now:       time.Now,
	}
}

func (s *SnapshotService) TakeSnapshot(ctx context.Context) (*entity.StockSnapshot, error) {
	start := time.Now()

	snapshot, err := s.buildSnapshot(ctx)
	if err == nil {
		err = s.snapshots.Save(ctx, snapshot)
	}
	metrics.RecordSnapshot(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to take stock snapshot: %w", err)
	}

	logger.Info().
		Str("date", snapshot.Date).
		Int("products", len(snapshot.Products)).
		Int("total_units", snapshot.TotalUnits).
		Str("stock_value", snapshot.StockValue.String()).
		Msg("stock snapshot saved")

	return snapshot, nil
}

func (s *SnapshotService) LatestSnapshot(ctx context.Context) (*entity.StockSnapshot, error) {
	snapshot, err := s.snapshots.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return snapshot, nil
}

// buildSnapshot считает стоимость остатка по себестоимости текущей версии
func (s *SnapshotService) buildSnapshot(ctx context.Context) (*entity.StockSnapshot, error) {
	products, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	takenAt := s.now().In(s.location)
	snapshot := &entity.StockSnapshot{
		Date:     takenAt.Format(entity.SnapshotDateLayout),
		TakenAt:  takenAt.UTC(),
		Products: make([]entity.SnapshotLine, 0, len(products)),
	}

	total := decimal.Zero
	for _, p := range products {
		value := p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Stock)))
		total = total.Add(value)
		snapshot.TotalUnits += p.Stock

		line := entity.SnapshotLine{
			ProductID: p.ID.String(),
			Name:      p.Name,
			Color:     p.Color,
			Version:   p.Version,
			Stock:     p.Stock,
		}
		if line.PurchasePrice, err = toDecimal128(p.PurchasePrice); err != nil {
			return nil, err
		}
		if line.StockValue, err = toDecimal128(value); err != nil {
			return nil, err
		}
		snapshot.Products = append(snapshot.Products, line)
	}

	if snapshot.StockValue, err = toDecimal128(total); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	value, err := primitive.ParseDecimal128(d.StringFixed(2))
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert %s to decimal128: %w", d, err)
	}
	return value, nil
}
