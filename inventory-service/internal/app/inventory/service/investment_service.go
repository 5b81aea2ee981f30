package service

import (
	"context"
	"strings"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/infrastructure"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestmentService - пополнение склада с записью в журнал инвестиций.
// Существующий товар: add или new_version; новый товар: карточка, версия 1 и запись журнала.
type InvestmentService struct {
	store        repository.Store
	categoryRepo repository.CategoryRepository
	cache        util.Cache
	events       eventPublisher
}

func NewInvestmentService(
	store repository.Store,
	categoryRepo repository.CategoryRepository,
	cache util.Cache,
	publisher infrastructure.EventPublisher,
) *InvestmentService {
	return &InvestmentService{
		store:        store,
		categoryRepo: categoryRepo,
		cache:        cache,
		events:       eventPublisher{publisher: publisher},
	}
}

// validateInvestment проверяет, что заполнена ровно одна ветка и она совпадает с kind
func validateInvestment(req *entity.InvestmentRequest) error {
	errs := fieldErrors{}
	switch req.Kind {
	case entity.InvestmentExistingProduct:
		if req.ExistingProduct == nil {
			errs.add("existing_product", "required when kind is existing_product")
		}
		if req.NewProduct != nil {
			errs.add("new_product", "must be empty when kind is existing_product")
		}
		if b := req.ExistingProduct; b != nil {
			if b.ProductID == uuid.Nil {
				errs.add("existing_product.product_id", "required")
			}
			validateRestock(errs, "existing_product", b.Quantity, b.UnitCost)
		}
	case entity.InvestmentNewProduct:
		if req.NewProduct == nil {
			errs.add("new_product", "required when kind is new_product")
		}
		if req.ExistingProduct != nil {
			errs.add("existing_product", "must be empty when kind is new_product")
		}
		if b := req.NewProduct; b != nil {
			if strings.TrimSpace(b.Name) == "" {
				errs.add("new_product.name", "required")
			}
			if !b.Price.IsPositive() {
				errs.add("new_product.price", "must be greater than 0")
			}
			validateRestock(errs, "new_product", b.Quantity, b.UnitCost)
		}
	default:
		errs.add("kind", "must be one of: existing_product new_product")
	}
	return errs.err()
}

func validateRestock(errs fieldErrors, prefix string, quantity int, unitCost decimal.Decimal) {
	if quantity <= 0 {
		errs.add(prefix+".quantity", "must be greater than 0")
	}
	if !unitCost.IsPositive() {
		errs.add(prefix+".unit_cost", "must be greater than 0")
	}
}

func checkProvider(ctx context.Context, tx repository.Store, providerID *uuid.UUID) error {
	if providerID == nil {
		return nil
	}
	_, err := tx.Providers().GetByID(ctx, *providerID)
	return err
}

func investmentDate(date *time.Time) time.Time {
	if date != nil {
		return date.UTC()
	}
	return time.Now().UTC()
}

// RecordInvestment применяет пополнение и пишет запись журнала в одной транзакции
func (s *InvestmentService) RecordInvestment(ctx context.Context, req *entity.InvestmentRequest) (*entity.InvestmentResponse, error) {
	if err := validateInvestment(req); err != nil {
		return nil, err
	}

	var (
		resp *entity.InvestmentResponse
		err  error
	)
	if req.Kind == entity.InvestmentExistingProduct {
		resp, err = s.restockExisting(ctx, req.ExistingProduct)
	} else {
		resp, err = s.stockNewProduct(ctx, req.NewProduct)
	}
	if err != nil {
		return nil, translate("record investment", err)
	}

	invalidateAnalytics(ctx, s.cache)
	s.events.publish(ctx, entity.InventoryEvent{
		EventType:   entity.EventInvestmentRecorded,
		ProductID:   resp.Product.ID,
		Version:     resp.Product.Version,
		StockDelta:  resp.Investment.QuantityAdded,
		StockAfter:  resp.Product.Stock,
		ReferenceID: &resp.Investment.ID,
	})

	return resp, nil
}

func (s *InvestmentService) restockExisting(ctx context.Context, req *entity.ExistingProductInvestment) (*entity.InvestmentResponse, error) {
	action := entity.ActionAdd
	var price *decimal.Decimal
	if req.NewVersion {
		action = entity.ActionNewVersion
		price = &req.UnitCost
	}

	resp := &entity.InvestmentResponse{}
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		product, err := lockActiveProduct(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		if err := checkProvider(ctx, tx, req.ProviderID); err != nil {
			return err
		}

		version, err := applyAdjustment(ctx, tx, product, action, req.Quantity, price)
		if err != nil {
			return err
		}

		investment := newInvestment(ctx, product, req.ProviderID, req.Quantity, req.UnitCost, req.InvestmentDate)
		if err := tx.Investments().Create(ctx, investment); err != nil {
			return err
		}

		resp.Investment, resp.Product, resp.Version = investment, product, version
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *InvestmentService) stockNewProduct(ctx context.Context, req *entity.NewProductInvestment) (*entity.InvestmentResponse, error) {
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	resp := &entity.InvestmentResponse{}
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if err := checkProvider(ctx, tx, req.ProviderID); err != nil {
			return err
		}

		product, version, err := createProduct(ctx, tx, newProductFields{
			Name:          strings.TrimSpace(req.Name),
			Description:   req.Description,
			Color:         req.Color,
			CategoryID:    req.CategoryID,
			CurrencyID:    req.CurrencyID,
			Price:         req.Price,
			PurchasePrice: req.UnitCost,
			Stock:         req.Quantity,
		})
		if err != nil {
			return err
		}

		investment := newInvestment(ctx, product, req.ProviderID, req.Quantity, req.UnitCost, req.InvestmentDate)
		if err := tx.Investments().Create(ctx, investment); err != nil {
			return err
		}

		resp.Investment, resp.Product, resp.Version = investment, product, version
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func newInvestment(ctx context.Context, product *entity.Product, providerID *uuid.UUID, quantity int, unitCost decimal.Decimal, date *time.Time) *entity.Investment {
	return &entity.Investment{
		ID:             uuid.New(),
		ProductID:      product.ID,
		ProviderID:     providerID,
		ProductVersion: product.Version,
		QuantityAdded:  quantity,
		UnitCost:       unitCost,
		TotalCost:      unitCost.Mul(decimal.NewFromInt(int64(quantity))),
		InvestmentDate: investmentDate(date),
		CreatedBy:      ActorFrom(ctx),
		CreatedAt:      time.Now(),
	}
}

func (s *InvestmentService) ListInvestments(ctx context.Context, filter repository.InvestmentFilter) ([]entity.Investment, error) {
	investments, err := s.store.Investments().List(ctx, filter)
	if err != nil {
		return nil, translate("list investments", err)
	}
	return investments, nil
}
