package repository

import (
	"context"
	"errors"

	"vidasmart/inventory-service/internal/app/inventory/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository создает репозиторий продаж
func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return translateError(r.db.WithContext(ctx).Create(sale).Error)
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *saleRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *saleRepository) get(db *gorm.DB, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	result := db.First(&sale, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, translateError(result.Error)
	}

	return &sale, nil
}

// List возвращает продажи, новые первыми
func (r *saleRepository) List(ctx context.Context, filter SaleFilter) ([]entity.Sale, error) {
	query := r.db.WithContext(ctx)
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.From != nil {
		query = query.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sale_date < ?", *filter.To)
	}

	var sales []entity.Sale
	if err := query.Order("sale_date DESC").Find(&sales).Error; err != nil {
		return nil, translateError(err)
	}
	return sales, nil
}

// Update перезаписывает все поля продажи, включая снимок версии.
// Пустые указатели (seller_id, shared_item_id) записываются как NULL.
func (r *saleRepository) Update(ctx context.Context, sale *entity.Sale) error {
	result := r.db.WithContext(ctx).Model(sale).
		Select("*").
		Omit("id", "created_at").
		Updates(sale)

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrSaleNotFound
	}

	return nil
}

func (r *saleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Sale{}, "id = ?", id)

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrSaleNotFound
	}

	return nil
}
