package service

import (
	"context"
	"strings"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/infrastructure"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/util"
	"vidasmart/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleService записывает продажи: списывает остаток (и долю, если продажа из доли)
// и фиксирует снимок версии товара на момент продажи
type SaleService struct {
	store  repository.Store
	cache  util.Cache
	events eventPublisher
}

func NewSaleService(store repository.Store, cache util.Cache, publisher infrastructure.EventPublisher) *SaleService {
	return &SaleService{
		store:  store,
		cache:  cache,
		events: eventPublisher{publisher: publisher},
	}
}

func validateSale(req *entity.SaleRequest) error {
	errs := fieldErrors{}
	if req.ProductID == uuid.Nil {
		errs.add("product_id", "required")
	}
	if req.QuantitySold <= 0 {
		errs.add("quantity_sold", "must be greater than 0")
	}
	if !req.SalePrice.IsPositive() {
		errs.add("sale_price", "must be greater than 0")
	}
	if req.Commission.IsNegative() {
		errs.add("commission", "must be greater than or equal to 0")
	}
	if req.AdditionalExpenses.IsNegative() {
		errs.add("additional_expenses", "must be greater than or equal to 0")
	}
	return errs.err()
}

// applySaleFields копирует поля запроса в продажу; снимок версии выставляется отдельно
func applySaleFields(sale *entity.Sale, req *entity.SaleRequest) {
	sale.ProductID = req.ProductID
	sale.SharedItemID = req.SharedItemID
	sale.SellerID = req.SellerID
	sale.ClientName = strings.TrimSpace(req.ClientName)
	sale.Color = strings.TrimSpace(req.Color)
	sale.QuantitySold = req.QuantitySold
	sale.SalePrice = req.SalePrice
	sale.Commission = req.Commission
	sale.AdditionalExpenses = req.AdditionalExpenses
	if req.SaleDate != nil {
		sale.SaleDate = req.SaleDate.UTC()
	}
}

func checkSeller(ctx context.Context, tx repository.Store, sellerID *uuid.UUID) error {
	if sellerID == nil {
		return nil
	}
	_, err := tx.Users().GetByID(ctx, *sellerID)
	return err
}

// RecordSale создает продажу в одной транзакции с блокировкой товара
func (s *SaleService) RecordSale(ctx context.Context, req *entity.SaleRequest) (*entity.Sale, error) {
	if err := validateSale(req); err != nil {
		return nil, err
	}

	var (
		sale    *entity.Sale
		product *entity.Product
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		if product, err = lockActiveProduct(ctx, tx, req.ProductID); err != nil {
			return err
		}
		if err := checkSeller(ctx, tx, req.SellerID); err != nil {
			return err
		}

		version, err := currentVersion(ctx, tx, product)
		if err != nil {
			return err
		}

		if err := deductSale(ctx, tx, product, req.SharedItemID, req.QuantitySold); err != nil {
			return err
		}

		now := time.Now()
		sale = &entity.Sale{
			ID:         uuid.New(),
			VersionRef: version.Ref(),
			SaleDate:   now.UTC(),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		applySaleFields(sale, req)
		return tx.Sales().Create(ctx, sale)
	})
	if err != nil {
		return nil, translate("record sale", err)
	}

	metrics.RecordSale("create", sale.QuantitySold)
	invalidateAnalytics(ctx, s.cache)
	s.events.publish(ctx, entity.InventoryEvent{
		EventType:       entity.EventSaleRecorded,
		ProductID:       product.ID,
		Version:         sale.ProductVersion,
		StockDelta:      -sale.QuantitySold,
		StockAfter:      product.Stock,
		AllocationDelta: allocationDelta(sale.SharedItemID, -sale.QuantitySold),
		ReferenceID:     &sale.ID,
	})

	return sale, nil
}

// UpdateSale откатывает прежнее списание и применяет новое в той же транзакции.
// Правка с теми же значениями не меняет ни остаток, ни долю.
func (s *SaleService) UpdateSale(ctx context.Context, id uuid.UUID, req *entity.SaleRequest) (*entity.Sale, error) {
	if err := validateSale(req); err != nil {
		return nil, err
	}

	var (
		sale        *entity.Sale
		oldQuantity int
		oldProduct  uuid.UUID
		products    map[uuid.UUID]*entity.Product
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		// первое чтение без блокировки нужно только чтобы узнать, какие товары блокировать
		unlocked, err := tx.Sales().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if products, err = lockProducts(ctx, tx, unlocked.ProductID, req.ProductID); err != nil {
			return err
		}
		if sale, err = lockSale(ctx, tx, id, unlocked.ProductID); err != nil {
			return err
		}
		oldQuantity = sale.QuantitySold
		oldProduct = sale.ProductID
		target := products[req.ProductID]
		if target.DeletedAt.Valid && req.ProductID != sale.ProductID {
			return ErrProductNotFound
		}
		if err := checkSeller(ctx, tx, req.SellerID); err != nil {
			return err
		}

		if err := restoreSale(ctx, tx, products[sale.ProductID], sale); err != nil {
			return err
		}
		if err := deductSale(ctx, tx, target, req.SharedItemID, req.QuantitySold); err != nil {
			return err
		}

		// при смене товара продажа получает снимок текущей версии нового товара
		if req.ProductID != sale.ProductID {
			version, err := currentVersion(ctx, tx, target)
			if err != nil {
				return err
			}
			sale.VersionRef = version.Ref()
		}

		applySaleFields(sale, req)
		sale.UpdatedAt = time.Now()
		return tx.Sales().Update(ctx, sale)
	})
	if err != nil {
		return nil, translate("update sale", err)
	}

	metrics.RecordSale("update", 0)
	invalidateAnalytics(ctx, s.cache)

	events := []entity.InventoryEvent{{
		EventType:   entity.EventSaleUpdated,
		ProductID:   sale.ProductID,
		Version:     sale.ProductVersion,
		StockDelta:  -sale.QuantitySold,
		StockAfter:  products[sale.ProductID].Stock,
		ReferenceID: &sale.ID,
	}}
	if oldProduct == sale.ProductID {
		events[0].StockDelta = oldQuantity - sale.QuantitySold
	} else {
		events = append(events, entity.InventoryEvent{
			EventType:   entity.EventSaleUpdated,
			ProductID:   oldProduct,
			Version:     products[oldProduct].Version,
			StockDelta:  oldQuantity,
			StockAfter:  products[oldProduct].Stock,
			ReferenceID: &sale.ID,
		})
	}
	s.events.publish(ctx, events...)

	return sale, nil
}

// DeleteSale возвращает проданные единицы на остаток и в долю, если доля ещё существует
func (s *SaleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	var (
		sale    *entity.Sale
		product *entity.Product
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		unlocked, err := tx.Sales().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product, err = tx.Products().LockForUpdate(ctx, unlocked.ProductID); err != nil {
			return err
		}
		if sale, err = lockSale(ctx, tx, id, unlocked.ProductID); err != nil {
			return err
		}
		if err := restoreSale(ctx, tx, product, sale); err != nil {
			return err
		}
		return tx.Sales().Delete(ctx, id)
	})
	if err != nil {
		return translate("delete sale", err)
	}

	metrics.RecordSale("delete", 0)
	invalidateAnalytics(ctx, s.cache)
	s.events.publish(ctx, entity.InventoryEvent{
		EventType:       entity.EventSaleDeleted,
		ProductID:       product.ID,
		Version:         sale.ProductVersion,
		StockDelta:      sale.QuantitySold,
		StockAfter:      product.Stock,
		AllocationDelta: allocationDelta(sale.SharedItemID, sale.QuantitySold),
		ReferenceID:     &sale.ID,
	})

	return nil
}

func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.store.Sales().GetByID(ctx, id)
	if err != nil {
		return nil, translate("get sale", err)
	}
	return sale, nil
}

func (s *SaleService) ListSales(ctx context.Context, filter repository.SaleFilter) ([]entity.Sale, error) {
	sales, err := s.store.Sales().List(ctx, filter)
	if err != nil {
		return nil, translate("list sales", err)
	}
	return sales, nil
}

// SaleProfit считает оба варианта прибыли: от себестоимости версии на момент продажи
// и от текущей себестоимости товара. Ни один из них не хранится.
func (s *SaleService) SaleProfit(ctx context.Context, id uuid.UUID) (*entity.SaleProfit, error) {
	sale, err := s.store.Sales().GetByID(ctx, id)
	if err != nil {
		return nil, translate("get sale", err)
	}

	product, err := s.store.Products().GetIncludingArchived(ctx, sale.ProductID)
	if err != nil {
		return nil, translate("get product", err)
	}

	return &entity.SaleProfit{
		SaleID:                sale.ID,
		ProductVersion:        sale.ProductVersion,
		Revenue:               sale.Revenue(),
		SnapshotPurchasePrice: sale.PurchasePrice,
		CurrentPurchasePrice:  product.PurchasePrice,
		HistoricalProfit:      profit(sale, sale.PurchasePrice),
		LiveProfit:            profit(sale, product.PurchasePrice),
	}, nil
}

// profit = (цена продажи - себестоимость) × количество - доп. расходы
func profit(sale *entity.Sale, purchasePrice decimal.Decimal) decimal.Decimal {
	return sale.SalePrice.Sub(purchasePrice).
		Mul(decimal.NewFromInt(int64(sale.QuantitySold))).
		Sub(sale.AdditionalExpenses)
}

func allocationDelta(sharedItemID *uuid.UUID, delta int) int {
	if sharedItemID == nil {
		return 0
	}
	return delta
}
