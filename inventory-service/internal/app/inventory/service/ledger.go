package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Операции над строкой товара. Все функции вызываются внутри транзакции
// после LockForUpdate на соответствующих товарах.

// lockActiveProduct блокирует товар; архивный товар для новых операций не существует
func lockActiveProduct(ctx context.Context, tx repository.Store, id uuid.UUID) (*entity.Product, error) {
	product, err := tx.Products().LockForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.DeletedAt.Valid {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// lockProducts блокирует товары в порядке id, чтобы две правки продаж не взаимоблокировались
func lockProducts(ctx context.Context, tx repository.Store, ids ...uuid.UUID) (map[uuid.UUID]*entity.Product, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].String() < unique[j].String() })

	locked := make(map[uuid.UUID]*entity.Product, len(unique))
	for _, id := range unique {
		product, err := tx.Products().LockForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = product
	}
	return locked, nil
}

// lockSale перечитывает продажу под блокировкой, когда её товар уже заблокирован.
// Количество для возврата на остаток берётся только из этой копии.
// Если параллельная правка перенесла продажу на другой товар, заблокированы не те строки.
func lockSale(ctx context.Context, tx repository.Store, id, productID uuid.UUID) (*entity.Sale, error) {
	sale, err := tx.Sales().LockForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.ProductID != productID {
		return nil, ErrConcurrencyConflict
	}
	return sale, nil
}

// currentVersion возвращает запись текущей версии товара.
// Для строк, созданных до появления product_versions, запись создаётся на лету.
func currentVersion(ctx context.Context, tx repository.Store, product *entity.Product) (*entity.ProductVersion, error) {
	version, err := tx.Versions().Get(ctx, product.ID, product.Version)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, repository.ErrVersionNotFound) {
		return nil, err
	}

	version = &entity.ProductVersion{
		ID:            uuid.New(),
		ProductID:     product.ID,
		Version:       product.Version,
		PurchasePrice: product.PurchasePrice,
		CreatedAt:     time.Now(),
	}
	if err := tx.Versions().Create(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}

// validateAdjustment проверяет аргументы до открытия транзакции
func validateAdjustment(action string, quantity int, price *decimal.Decimal) error {
	errs := fieldErrors{}
	if quantity <= 0 {
		errs.add("quantity", "must be greater than 0")
	}
	switch action {
	case entity.ActionAdd:
	case entity.ActionNewVersion:
		if price == nil || !price.IsPositive() {
			errs.add("purchase_price", "required and greater than 0 for new_version")
		}
	default:
		errs.add("action", "must be one of: add new_version")
	}
	return errs.err()
}

// applyAdjustment - движок корректировки остатка.
// add: только остаток. new_version: новая версия, новая себестоимость и остаток.
// Доли и продажи не меняются: они хранят свой снимок версии.
func applyAdjustment(ctx context.Context, tx repository.Store, product *entity.Product, action string, quantity int, price *decimal.Decimal) (*entity.ProductVersion, error) {
	if err := validateAdjustment(action, quantity, price); err != nil {
		return nil, err
	}

	var version *entity.ProductVersion
	switch action {
	case entity.ActionAdd:
		product.Stock += quantity
		if err := tx.Products().UpdateLedger(ctx, product); err != nil {
			return nil, err
		}
		v, err := currentVersion(ctx, tx, product)
		if err != nil {
			return nil, err
		}
		version = v

	case entity.ActionNewVersion:
		product.Version++
		product.PurchasePrice = *price
		product.Stock += quantity
		if err := tx.Products().UpdateLedger(ctx, product); err != nil {
			return nil, err
		}
		version = &entity.ProductVersion{
			ID:            uuid.New(),
			ProductID:     product.ID,
			Version:       product.Version,
			PurchasePrice: *price,
			CreatedAt:     time.Now(),
		}
		if err := tx.Versions().Create(ctx, version); err != nil {
			return nil, err
		}
	}

	metrics.RecordStockAdjustment(action, quantity)
	return version, nil
}

// newProductFields - общие поля при создании товара из каталога и из инвестиции
type newProductFields struct {
	Name          string
	Description   string
	Color         string
	CategoryID    uuid.UUID
	CurrencyID    uuid.UUID
	Price         decimal.Decimal
	PurchasePrice decimal.Decimal
	Stock         int
}

// createProduct создает товар версии 1 вместе с записью версии
func createProduct(ctx context.Context, tx repository.Store, fields newProductFields) (*entity.Product, *entity.ProductVersion, error) {
	if _, err := tx.Currencies().GetByID(ctx, fields.CurrencyID); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New(),
		Name:          fields.Name,
		Description:   fields.Description,
		Color:         fields.Color,
		CategoryID:    fields.CategoryID,
		CurrencyID:    fields.CurrencyID,
		Stock:         fields.Stock,
		Price:         fields.Price,
		PurchasePrice: fields.PurchasePrice,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.Products().Create(ctx, product); err != nil {
		return nil, nil, err
	}

	version := &entity.ProductVersion{
		ID:            uuid.New(),
		ProductID:     product.ID,
		Version:       1,
		PurchasePrice: fields.PurchasePrice,
		CreatedAt:     now,
	}
	if err := tx.Versions().Create(ctx, version); err != nil {
		return nil, nil, err
	}

	return product, version, nil
}

// deductSale списывает проданные единицы с остатка и, если указана, с доли
func deductSale(ctx context.Context, tx repository.Store, product *entity.Product, sharedItemID *uuid.UUID, quantity int) error {
	if quantity > product.Stock {
		metrics.RecordRejected("insufficient_stock")
		return ErrInsufficientStock
	}

	if sharedItemID != nil {
		item, err := tx.SharedItems().LockForUpdate(ctx, *sharedItemID)
		if err != nil {
			return err
		}
		if item.ProductID != product.ID {
			return newValidationError("shared_item_id", "belongs to another product")
		}
		if item.Quantity < quantity {
			metrics.RecordRejected("insufficient_allocation")
			return ErrInsufficientAllocation
		}
		item.Quantity -= quantity
		if err := tx.SharedItems().Update(ctx, item); err != nil {
			return err
		}
	}

	product.Stock -= quantity
	return tx.Products().UpdateLedger(ctx, product)
}

// restoreSale возвращает единицы продажи на остаток и в долю, если доля ещё существует
func restoreSale(ctx context.Context, tx repository.Store, product *entity.Product, sale *entity.Sale) error {
	if sale.SharedItemID != nil {
		item, err := tx.SharedItems().LockForUpdate(ctx, *sale.SharedItemID)
		switch {
		case errors.Is(err, repository.ErrSharedItemNotFound):
			// доля удалена после продажи: возвращаем только остаток
		case err != nil:
			return err
		default:
			item.Quantity += sale.QuantitySold
			if err := tx.SharedItems().Update(ctx, item); err != nil {
				return err
			}
		}
	}

	product.Stock += sale.QuantitySold
	return tx.Products().UpdateLedger(ctx, product)
}
