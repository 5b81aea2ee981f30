package service

import (
	"context"
	"testing"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/repository/mocks"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fixture - склад на SQLite в памяти; блокировки строк диалект SQLite пропускает,
// а единственное соединение сериализует транзакции
type fixture struct {
	t          *testing.T
	ctx        context.Context
	db         *gorm.DB
	store      repository.Store
	categories *mocks.MockCategoryRepository
	cache      *mocks.MockCache

	categoryID uuid.UUID
	currencyID uuid.UUID
	admin      *entity.User
	partnerA   *entity.User
	partnerB   *entity.User

	inventory   *InventoryService
	allocations *AllocationService
	sales       *SaleService
	investments *InvestmentService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repository.Migrate(db))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	f := &fixture{
		t:          t,
		ctx:        context.Background(),
		db:         db,
		store:      repository.NewStore(db),
		categories: new(mocks.MockCategoryRepository),
		cache:      new(mocks.MockCache),
		categoryID: uuid.New(),
		currencyID: uuid.New(),
	}

	f.categories.On("GetByID", mock.Anything, f.categoryID).
		Return(&entity.Category{ID: f.categoryID, Name: "Suplementos"}, nil).Maybe()
	f.cache.On("DeleteByPrefix", mock.Anything, analyticsCachePrefix).Return(nil).Maybe()

	require.NoError(t, f.store.Currencies().Create(f.ctx, &entity.Currency{
		ID: f.currencyID, Code: "MXN", Name: "Peso mexicano", Symbol: "$",
	}))

	f.admin = f.createUser("admin@vidasmart.mx", entity.RoleAdmin)
	f.partnerA = f.createUser("ana@vidasmart.mx", entity.RoleSeller)
	f.partnerB = f.createUser("luis@vidasmart.mx", entity.RoleSeller)

	f.inventory = NewInventoryService(f.store, f.categories, f.cache, nil)
	f.allocations = NewAllocationService(f.store, nil)
	f.sales = NewSaleService(f.store, f.cache, nil)
	f.investments = NewInvestmentService(f.store, f.categories, f.cache, nil)

	return f
}

func (f *fixture) createUser(email, role string) *entity.User {
	f.t.Helper()

	user := &entity.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         email,
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    time.Now(),
	}
	require.NoError(f.t, f.store.Users().Create(f.ctx, user))
	return user
}

// createProduct заводит товар версии 1 с указанным остатком и себестоимостью
func (f *fixture) createProduct(stock int, purchasePrice string) *entity.Product {
	f.t.Helper()

	product, err := f.inventory.CreateProduct(f.ctx, &entity.CreateProductRequest{
		Name:          "Colágeno hidrolizado",
		Color:         "natural",
		CategoryID:    f.categoryID,
		CurrencyID:    f.currencyID,
		Price:         dec("20"),
		PurchasePrice: dec(purchasePrice),
		Stock:         stock,
	})
	require.NoError(f.t, err)
	return product
}

func (f *fixture) product(id uuid.UUID) *entity.Product {
	f.t.Helper()

	product, err := f.store.Products().GetIncludingArchived(f.ctx, id)
	require.NoError(f.t, err)
	return product
}

func (f *fixture) item(id uuid.UUID) *entity.SharedInventoryItem {
	f.t.Helper()

	item, err := f.store.SharedItems().GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return item
}

func (f *fixture) allocate(productID uuid.UUID, quantities map[*entity.User]int) map[uuid.UUID]entity.SharedInventoryItem {
	f.t.Helper()

	req := &entity.AllocateRequest{ProductID: productID}
	for user, quantity := range quantities {
		req.Partners = append(req.Partners, entity.PartnerAllocation{UserID: user.ID, Quantity: quantity})
	}
	items, err := f.allocations.Allocate(f.ctx, req)
	require.NoError(f.t, err)

	byUser := make(map[uuid.UUID]entity.SharedInventoryItem, len(items))
	for _, item := range items {
		byUser[item.UserID] = item
	}
	return byUser
}

func (f *fixture) saleRequest(productID uuid.UUID, quantity int, price string) *entity.SaleRequest {
	return &entity.SaleRequest{
		ProductID:          productID,
		SellerID:           &f.partnerA.ID,
		ClientName:         "María",
		Color:              "natural",
		QuantitySold:       quantity,
		SalePrice:          dec(price),
		Commission:         decimal.Zero,
		AdditionalExpenses: decimal.Zero,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
