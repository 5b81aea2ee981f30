package service

import (
	"context"
	"strings"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/infrastructure"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/util"

	"github.com/google/uuid"
)

// InventoryService - карточки товаров, корректировка остатка и доступность для долей
type InventoryService struct {
	store        repository.Store
	categoryRepo repository.CategoryRepository // категории живут в pgx репозитории
	cache        util.Cache
	events       eventPublisher
}

// NewInventoryService создает сервис склада с внедрением зависимостей
func NewInventoryService(
	store repository.Store,
	categoryRepo repository.CategoryRepository,
	cache util.Cache,
	publisher infrastructure.EventPublisher,
) *InventoryService {
	return &InventoryService{
		store:        store,
		categoryRepo: categoryRepo,
		cache:        cache,
		events:       eventPublisher{publisher: publisher},
	}
}

// CreateProduct регистрирует товар с версией 1
func (s *InventoryService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	errs := fieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs.add("name", "required")
	}
	if !req.Price.IsPositive() {
		errs.add("price", "must be greater than 0")
	}
	if !req.PurchasePrice.IsPositive() {
		errs.add("purchase_price", "must be greater than 0")
	}
	if req.Stock < 0 {
		errs.add("stock", "must be greater than or equal to 0")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		return nil, translate("verify category", err)
	}

	var product *entity.Product
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		product, _, err = createProduct(ctx, tx, newProductFields{
			Name:          strings.TrimSpace(req.Name),
			Description:   req.Description,
			Color:         req.Color,
			CategoryID:    req.CategoryID,
			CurrencyID:    req.CurrencyID,
			Price:         req.Price,
			PurchasePrice: req.PurchasePrice,
			Stock:         req.Stock,
		})
		return err
	})
	if err != nil {
		return nil, translate("create product", err)
	}

	s.events.publish(ctx, entity.InventoryEvent{
		EventType:  entity.EventProductCreated,
		ProductID:  product.ID,
		Version:    product.Version,
		StockDelta: product.Stock,
		StockAfter: product.Stock,
	})

	return product, nil
}

// GetProduct получает активный товар
func (s *InventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, translate("get product", err)
	}
	return product, nil
}

func (s *InventoryService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]entity.Product, error) {
	products, err := s.store.Products().List(ctx, filter)
	if err != nil {
		return nil, translate("list products", err)
	}
	return products, nil
}

// ListVersions - история партий товара
func (s *InventoryService) ListVersions(ctx context.Context, productID uuid.UUID) ([]entity.ProductVersion, error) {
	if _, err := s.store.Products().GetIncludingArchived(ctx, productID); err != nil {
		return nil, translate("get product", err)
	}
	versions, err := s.store.Versions().ListByProduct(ctx, productID)
	if err != nil {
		return nil, translate("list versions", err)
	}
	return versions, nil
}

// UpdateProduct меняет карточку; складские поля остаются как есть
func (s *InventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.Product, error) {
	errs := fieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs.add("name", "required")
	}
	if !req.Price.IsPositive() {
		errs.add("price", "must be greater than 0")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		return nil, translate("verify category", err)
	}

	var product *entity.Product
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Currencies().GetByID(ctx, req.CurrencyID); err != nil {
			return err
		}

		current, err := tx.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}

		current.Name = strings.TrimSpace(req.Name)
		current.Description = req.Description
		current.Color = req.Color
		current.CategoryID = req.CategoryID
		current.CurrencyID = req.CurrencyID
		current.Price = req.Price
		if err := tx.Products().Update(ctx, current); err != nil {
			return err
		}

		product = current
		return nil
	})
	if err != nil {
		return nil, translate("update product", err)
	}

	return product, nil
}

// ArchiveProduct - мягкое удаление, продажи и инвестиции продолжают на него ссылаться
func (s *InventoryService) ArchiveProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Products().Archive(ctx, id); err != nil {
		return translate("archive product", err)
	}
	return nil
}

// AdjustStock - add увеличивает остаток; new_version дополнительно заводит новую партию
// с новой себестоимостью. Строка товара заблокирована до конца транзакции.
func (s *InventoryService) AdjustStock(ctx context.Context, req *entity.AdjustStockRequest) (*entity.AdjustStockResponse, error) {
	if err := validateAdjustment(req.Action, req.Quantity, req.PurchasePrice); err != nil {
		return nil, err
	}

	var (
		product *entity.Product
		version *entity.ProductVersion
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		if product, err = lockActiveProduct(ctx, tx, req.ProductID); err != nil {
			return err
		}
		version, err = applyAdjustment(ctx, tx, product, req.Action, req.Quantity, req.PurchasePrice)
		return err
	})
	if err != nil {
		return nil, translate("adjust stock", err)
	}

	eventType := entity.EventStockAdded
	if req.Action == entity.ActionNewVersion {
		eventType = entity.EventProductVersionCreated
		// живая прибыль считается от себестоимости товара, а она сменилась
		invalidateAnalytics(ctx, s.cache)
	}
	s.events.publish(ctx, entity.InventoryEvent{
		EventType:  eventType,
		ProductID:  product.ID,
		Version:    product.Version,
		StockDelta: req.Quantity,
		StockAfter: product.Stock,
	})

	return &entity.AdjustStockResponse{Product: product, Version: version}, nil
}

// Availability - сколько единиц текущей версии ещё не распределено между партнёрами.
// Продажи без доли могут опустить остаток ниже распределённого, тогда доступно 0.
func (s *InventoryService) Availability(ctx context.Context, productID uuid.UUID) (*entity.Availability, error) {
	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, translate("get product", err)
	}

	allocated, err := s.store.SharedItems().SumQuantity(ctx, product.ID, product.Version, nil)
	if err != nil {
		return nil, translate("sum allocations", err)
	}

	available := product.Stock - allocated
	if available < 0 {
		available = 0
	}

	return &entity.Availability{
		ProductID:          product.ID,
		Version:            product.Version,
		Stock:              product.Stock,
		Allocated:          allocated,
		AvailableForShared: available,
	}, nil
}
