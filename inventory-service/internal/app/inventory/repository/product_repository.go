package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB // GORM DB для работы с PostgreSQL
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return translateError(r.db.WithContext(ctx).Create(product).Error)
}

// GetByID получает активный (не архивный) товар
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, translateError(result.Error)
	}

	return &product, nil
}

func (r *productRepository) GetIncludingArchived(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).Unscoped().First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, translateError(result.Error)
	}

	return &product, nil
}

// LockForUpdate читает строку товара с блокировкой до конца транзакции.
// Архивные товары тоже блокируются: по ним ещё можно править и удалять продажи.
func (r *productRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).
		Unscoped().
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, translateError(result.Error)
	}

	return &product, nil
}

// List возвращает товары по фильтру, отсортированные по имени
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]entity.Product, error) {
	query := r.db.WithContext(ctx)
	if filter.IncludeArchived {
		query = query.Unscoped()
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var products []entity.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return nil, translateError(err)
	}

	return products, nil
}

// Update меняет только карточку товара; остаток, версия и себестоимость не трогаются
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"color":       product.Color,
			"category_id": product.CategoryID,
			"currency_id": product.CurrencyID,
			"price":       product.Price,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// UpdateLedger сохраняет складские поля: остаток, версию и себестоимость
func (r *productRepository) UpdateLedger(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Unscoped().Model(&entity.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"stock":          product.Stock,
			"version":        product.Version,
			"purchase_price": product.PurchasePrice,
			"updated_at":     product.UpdatedAt,
		})

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Archive выполняет мягкое удаление: история продаж и инвестиций остаётся
func (r *productRepository) Archive(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// CountByCurrency считает товары (включая архивные) с данной валютой
func (r *productRepository) CountByCurrency(ctx context.Context, currencyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&entity.Product{}).
		Where("currency_id = ?", currencyID).
		Count(&count).Error
	return count, translateError(err)
}

type productVersionRepository struct {
	db *gorm.DB
}

// NewProductVersionRepository создает репозиторий версий товара
func NewProductVersionRepository(db *gorm.DB) ProductVersionRepository {
	return &productVersionRepository{db: db}
}

// Create добавляет неизменяемую запись версии
func (r *productVersionRepository) Create(ctx context.Context, version *entity.ProductVersion) error {
	return translateError(r.db.WithContext(ctx).Create(version).Error)
}

// Get получает версию по номеру
func (r *productVersionRepository) Get(ctx context.Context, productID uuid.UUID, version int) (*entity.ProductVersion, error) {
	var v entity.ProductVersion
	result := r.db.WithContext(ctx).
		Where("product_id = ? AND version = ?", productID, version).
		First(&v)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, translateError(result.Error)
	}

	return &v, nil
}

// ListByProduct возвращает историю версий от первой к последней
func (r *productVersionRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.ProductVersion, error) {
	var versions []entity.ProductVersion
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("version ASC").
		Find(&versions).Error
	if err != nil {
		return nil, translateError(err)
	}
	return versions, nil
}
