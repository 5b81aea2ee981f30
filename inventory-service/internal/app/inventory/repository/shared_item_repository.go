package repository

import (
	"context"
	"errors"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sharedItemRepository struct {
	db *gorm.DB
}

// NewSharedItemRepository создает репозиторий долей общего инвентаря
func NewSharedItemRepository(db *gorm.DB) SharedItemRepository {
	return &sharedItemRepository{db: db}
}

func (r *sharedItemRepository) Create(ctx context.Context, item *entity.SharedInventoryItem) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error)
}

func (r *sharedItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.SharedInventoryItem, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// LockForUpdate блокирует долю до конца транзакции (списание при продаже)
func (r *sharedItemRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.SharedInventoryItem, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *sharedItemRepository) get(db *gorm.DB, id uuid.UUID) (*entity.SharedInventoryItem, error) {
	var item entity.SharedInventoryItem
	result := db.First(&item, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSharedItemNotFound
		}
		return nil, translateError(result.Error)
	}

	return &item, nil
}

func (r *sharedItemRepository) List(ctx context.Context, filter SharedItemFilter) ([]entity.SharedInventoryItem, error) {
	query := r.db.WithContext(ctx)
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var items []entity.SharedInventoryItem
	if err := query.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

// SumQuantity считает уже распределённые единицы одной версии товара
func (r *sharedItemRepository) SumQuantity(ctx context.Context, productID uuid.UUID, version int, excludeID *uuid.UUID) (int, error) {
	query := r.db.WithContext(ctx).Model(&entity.SharedInventoryItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("product_id = ? AND product_version = ?", productID, version)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var total int64
	if err := query.Scan(&total).Error; err != nil {
		return 0, translateError(err)
	}
	return int(total), nil
}

// Update меняет количество и заметку; снимок версии не меняется
func (r *sharedItemRepository) Update(ctx context.Context, item *entity.SharedInventoryItem) error {
	item.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&entity.SharedInventoryItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity":   item.Quantity,
			"notes":      item.Notes,
			"updated_at": item.UpdatedAt,
		})

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrSharedItemNotFound
	}

	return nil
}

func (r *sharedItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.SharedInventoryItem{}, "id = ?", id)

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrSharedItemNotFound
	}

	return nil
}
