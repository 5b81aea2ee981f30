package repository

import (
	"context"
	"fmt"

	"vidasmart/inventory-worker/internal/app/worker/entity"
	"vidasmart/pkg/metrics"

	"gorm.io/gorm"
)

const serviceName = "inventory-worker"

// productRepository реализует ProductRepository через GORM
type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// ListActive читает товары без deleted_at; сортировка по имени для стабильного снимка
func (r *productRepository) ListActive(ctx context.Context) ([]entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	var products []entity.Product
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}
