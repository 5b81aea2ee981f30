package repository

import (
	"context"

	"vidasmart/inventory-service/internal/app/inventory/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type investmentRepository struct {
	db *gorm.DB
}

// NewInvestmentRepository создает журнал инвестиций.
// Журнал только дополняется: методов изменения и удаления нет.
func NewInvestmentRepository(db *gorm.DB) InvestmentRepository {
	return &investmentRepository{db: db}
}

func (r *investmentRepository) Create(ctx context.Context, investment *entity.Investment) error {
	return translateError(r.db.WithContext(ctx).Create(investment).Error)
}

// List возвращает инвестиции, новые первыми
func (r *investmentRepository) List(ctx context.Context, filter InvestmentFilter) ([]entity.Investment, error) {
	query := r.db.WithContext(ctx)
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.ProviderID != nil {
		query = query.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.From != nil {
		query = query.Where("investment_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("investment_date < ?", *filter.To)
	}

	var investments []entity.Investment
	if err := query.Order("investment_date DESC").Find(&investments).Error; err != nil {
		return nil, translateError(err)
	}
	return investments, nil
}

func (r *investmentRepository) CountByProvider(ctx context.Context, providerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Investment{}).
		Where("provider_id = ?", providerID).
		Count(&count).Error
	return count, translateError(err)
}
