package repository

import (
	"context"
	"errors"

	"vidasmart/inventory-service/internal/app/inventory/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type providerRepository struct {
	db *gorm.DB
}

// NewProviderRepository создает репозиторий поставщиков
func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) Create(ctx context.Context, provider *entity.Provider) error {
	return translateError(r.db.WithContext(ctx).Create(provider).Error)
}

func (r *providerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Provider, error) {
	var provider entity.Provider
	result := r.db.WithContext(ctx).First(&provider, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, translateError(result.Error)
	}

	return &provider, nil
}

func (r *providerRepository) GetAll(ctx context.Context) ([]entity.Provider, error) {
	var providers []entity.Provider
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&providers).Error; err != nil {
		return nil, translateError(err)
	}
	return providers, nil
}

func (r *providerRepository) Update(ctx context.Context, provider *entity.Provider) error {
	result := r.db.WithContext(ctx).Model(&entity.Provider{}).
		Where("id = ?", provider.ID).
		Updates(map[string]interface{}{
			"name":         provider.Name,
			"contact_name": provider.ContactName,
			"phone":        provider.Phone,
			"email":        provider.Email,
			"notes":        provider.Notes,
		})

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrProviderNotFound
	}

	return nil
}

func (r *providerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Provider{}, "id = ?", id)

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrProviderNotFound
	}

	return nil
}

type currencyRepository struct {
	db *gorm.DB
}

// NewCurrencyRepository создает справочник валют
func NewCurrencyRepository(db *gorm.DB) CurrencyRepository {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) Create(ctx context.Context, currency *entity.Currency) error {
	return translateError(r.db.WithContext(ctx).Create(currency).Error)
}

func (r *currencyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Currency, error) {
	var currency entity.Currency
	result := r.db.WithContext(ctx).First(&currency, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCurrencyNotFound
		}
		return nil, translateError(result.Error)
	}

	return &currency, nil
}

func (r *currencyRepository) GetAll(ctx context.Context) ([]entity.Currency, error) {
	var currencies []entity.Currency
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&currencies).Error; err != nil {
		return nil, translateError(err)
	}
	return currencies, nil
}

func (r *currencyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Currency{}, "id = ?", id)

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrCurrencyNotFound
	}

	return nil
}
