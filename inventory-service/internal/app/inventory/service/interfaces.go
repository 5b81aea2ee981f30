package service

import (
	"context"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/util"

	"github.com/google/uuid"
)

// Интерфейсы, от которых зависят handlers; реализации - структуры этого пакета

type InventoryServiceInterface interface {
	CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]entity.Product, error)
	ListVersions(ctx context.Context, productID uuid.UUID) ([]entity.ProductVersion, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.Product, error)
	ArchiveProduct(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, req *entity.AdjustStockRequest) (*entity.AdjustStockResponse, error)
	Availability(ctx context.Context, productID uuid.UUID) (*entity.Availability, error)
}

type AllocationServiceInterface interface {
	Allocate(ctx context.Context, req *entity.AllocateRequest) ([]entity.SharedInventoryItem, error)
	UpdateAllocation(ctx context.Context, id uuid.UUID, req *entity.UpdateAllocationRequest) (*entity.SharedInventoryItem, error)
	DeleteAllocation(ctx context.Context, id uuid.UUID) error
	GetAllocation(ctx context.Context, id uuid.UUID) (*entity.SharedInventoryItem, error)
	ListAllocations(ctx context.Context, filter repository.SharedItemFilter) ([]entity.SharedInventoryItem, error)
}

type SaleServiceInterface interface {
	RecordSale(ctx context.Context, req *entity.SaleRequest) (*entity.Sale, error)
	UpdateSale(ctx context.Context, id uuid.UUID, req *entity.SaleRequest) (*entity.Sale, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
	GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	ListSales(ctx context.Context, filter repository.SaleFilter) ([]entity.Sale, error)
	SaleProfit(ctx context.Context, id uuid.UUID) (*entity.SaleProfit, error)
}

type InvestmentServiceInterface interface {
	RecordInvestment(ctx context.Context, req *entity.InvestmentRequest) (*entity.InvestmentResponse, error)
	ListInvestments(ctx context.Context, filter repository.InvestmentFilter) ([]entity.Investment, error)
}

type CatalogServiceInterface interface {
	CreateCategory(ctx context.Context, req *entity.CategoryRequest) (*entity.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAllCategories(ctx context.Context) ([]entity.Category, error)
	GetCategoryTree(ctx context.Context) ([]*entity.CategoryNode, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.CategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProvider(ctx context.Context, req *entity.ProviderRequest) (*entity.Provider, error)
	GetProvider(ctx context.Context, id uuid.UUID) (*entity.Provider, error)
	ListProviders(ctx context.Context) ([]entity.Provider, error)
	UpdateProvider(ctx context.Context, id uuid.UUID, req *entity.ProviderRequest) (*entity.Provider, error)
	DeleteProvider(ctx context.Context, id uuid.UUID) error

	CreateCurrency(ctx context.Context, req *entity.CurrencyRequest) (*entity.Currency, error)
	ListCurrencies(ctx context.Context) ([]entity.Currency, error)
	DeleteCurrency(ctx context.Context, id uuid.UUID) error
}

type AnalyticsServiceInterface interface {
	Dashboard(ctx context.Context, from, to time.Time) (*entity.Dashboard, error)
}

type AuthServiceInterface interface {
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error)
	ValidateToken(token string) (*util.JWTClaims, error)
	CreateUser(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
}

var (
	_ InventoryServiceInterface  = (*InventoryService)(nil)
	_ AllocationServiceInterface = (*AllocationService)(nil)
	_ SaleServiceInterface       = (*SaleService)(nil)
	_ InvestmentServiceInterface = (*InvestmentService)(nil)
	_ CatalogServiceInterface    = (*CatalogService)(nil)
	_ AnalyticsServiceInterface  = (*AnalyticsService)(nil)
	_ AuthServiceInterface       = (*AuthService)(nil)
)
