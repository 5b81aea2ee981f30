package repository

import (
	"context"
	"errors"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrProductNotFound    = errors.New("product not found")
	ErrVersionNotFound    = errors.New("product version not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrProviderNotFound   = errors.New("provider not found")
	ErrCurrencyNotFound   = errors.New("currency not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrSaleNotFound       = errors.New("sale not found")
	ErrSharedItemNotFound = errors.New("shared inventory item not found")

	ErrDuplicateKey     = errors.New("duplicate key")
	ErrForeignKey       = errors.New("foreign key violation")
	ErrCategoryHasLinks = errors.New("category has products or subcategories")
	ErrCategoryCycle    = errors.New("category cannot be its own ancestor")
	ErrParentNotFound   = errors.New("parent category not found")
	ErrSerialization    = errors.New("concurrent update detected")
)

// ProductFilter - фильтры списка товаров
type ProductFilter struct {
	CategoryID      *uuid.UUID
	Search          string
	IncludeArchived bool
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetIncludingArchived нужен для отчётов по продажам архивных товаров
	GetIncludingArchived(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// LockForUpdate берёт строку товара под SELECT ... FOR UPDATE, включая архивные
	LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateLedger(ctx context.Context, product *entity.Product) error
	Archive(ctx context.Context, id uuid.UUID) error
	CountByCurrency(ctx context.Context, currencyID uuid.UUID) (int64, error)
}

type ProductVersionRepository interface {
	Create(ctx context.Context, version *entity.ProductVersion) error
	Get(ctx context.Context, productID uuid.UUID, version int) (*entity.ProductVersion, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.ProductVersion, error)
}

// InvestmentFilter - фильтры журнала инвестиций
type InvestmentFilter struct {
	ProductID  *uuid.UUID
	ProviderID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

type InvestmentRepository interface {
	Create(ctx context.Context, investment *entity.Investment) error
	List(ctx context.Context, filter InvestmentFilter) ([]entity.Investment, error)
	CountByProvider(ctx context.Context, providerID uuid.UUID) (int64, error)
}

// SharedItemFilter - фильтры долей общего инвентаря
type SharedItemFilter struct {
	ProductID *uuid.UUID
	UserID    *uuid.UUID
}

type SharedItemRepository interface {
	Create(ctx context.Context, item *entity.SharedInventoryItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.SharedInventoryItem, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.SharedInventoryItem, error)
	List(ctx context.Context, filter SharedItemFilter) ([]entity.SharedInventoryItem, error)
	// SumQuantity - сумма долей по (товар, версия), excludeID исключает редактируемую долю
	SumQuantity(ctx context.Context, productID uuid.UUID, version int, excludeID *uuid.UUID) (int, error)
	Update(ctx context.Context, item *entity.SharedInventoryItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SaleFilter - фильтры списка продаж
type SaleFilter struct {
	ProductID *uuid.UUID
	SellerID  *uuid.UUID
	From      *time.Time
	To        *time.Time
}

type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	// LockForUpdate перечитывает продажу под SELECT ... FOR UPDATE после блокировки товара
	LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]entity.Sale, error)
	Update(ctx context.Context, sale *entity.Sale) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProviderRepository interface {
	Create(ctx context.Context, provider *entity.Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Provider, error)
	GetAll(ctx context.Context) ([]entity.Provider, error)
	Update(ctx context.Context, provider *entity.Provider) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CurrencyRepository interface {
	Create(ctx context.Context, currency *entity.Currency) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Currency, error)
	GetAll(ctx context.Context) ([]entity.Currency, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetAll(ctx context.Context) ([]entity.User, error)
	// ExistingIDs возвращает те id из списка, которые есть в БД
	ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

// Store - единица работы поверх одной БД.
// Репозитории, полученные внутри WithinTransaction, работают в одной транзакции.
type Store interface {
	Products() ProductRepository
	Versions() ProductVersionRepository
	Investments() InvestmentRepository
	SharedItems() SharedItemRepository
	Sales() SaleRepository
	Providers() ProviderRepository
	Currencies() CurrencyRepository
	Users() UserRepository
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

// CategoryRepository работает через pgx напрямую
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	// Update проверяет цепочку нового родителя и пишет строку в одной транзакции
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	// AncestorIDs - цепочка родителей от id к корню (рекурсивный CTE)
	AncestorIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

// DateRange - полуоткрытый интервал [From, To)
type DateRange struct {
	From time.Time
	To   time.Time
}

// SalesTotals - агрегаты по продажам за период
type SalesTotals struct {
	SalesCount int
	Quantity   int
	Revenue    decimal.Decimal
	Commission decimal.Decimal
	Expenses   decimal.Decimal
	LiveProfit decimal.Decimal // от текущей себестоимости товара
	Historical decimal.Decimal // от себестоимости версии на момент продажи
}

// Rollup - строка группировки (товар, продавец или цвет)
type Rollup struct {
	Key        string
	Label      string
	Quantity   int
	Revenue    decimal.Decimal
	Commission decimal.Decimal
}

// AnalyticsRepository - только чтение, сырые GROUP BY через pgx
type AnalyticsRepository interface {
	SalesTotals(ctx context.Context, period DateRange) (*SalesTotals, error)
	InvestmentCosts(ctx context.Context, period DateRange) (decimal.Decimal, error)
	TopProducts(ctx context.Context, period DateRange, limit int) ([]Rollup, error)
	BySeller(ctx context.Context, period DateRange) ([]Rollup, error)
	ByColor(ctx context.Context, period DateRange) ([]Rollup, error)
}
