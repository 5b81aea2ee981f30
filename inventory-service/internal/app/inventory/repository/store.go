package repository

import (
	"context"

	"vidasmart/inventory-service/internal/app/inventory/entity"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore создает единицу работы поверх GORM
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Products() ProductRepository { return NewProductRepository(s.db) }
func (s *gormStore) Versions() ProductVersionRepository { return NewProductVersionRepository(s.db) }
func (s *gormStore) Investments() InvestmentRepository { return NewInvestmentRepository(s.db) }
func (s *gormStore) SharedItems() SharedItemRepository { return NewSharedItemRepository(s.db) }
func (s *gormStore) Sales() SaleRepository { return NewSaleRepository(s.db) }
func (s *gormStore) Providers() ProviderRepository { return NewProviderRepository(s.db) }
func (s *gormStore) Currencies() CurrencyRepository { return NewCurrencyRepository(s.db) }
func (s *gormStore) Users() UserRepository { return NewUserRepository(s.db) }

// WithinTransaction выполняет fn в одной транзакции.
// Любая ошибка из fn откатывает все изменения.
func (s *gormStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
	return translateError(err)
}

// Migrate создает или обновляет схему всех таблиц
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(entity.AllModels()...)
}
