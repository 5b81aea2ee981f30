package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/infrastructure"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/pkg/metrics"

	"github.com/google/uuid"
)

// AllocationService распределяет текущую версию товара между личными долями партнёров.
// Доля не меняет остаток: Σ долей по (товар, версия) не превышает остатка на момент записи.
type AllocationService struct {
	store  repository.Store
	events eventPublisher
}

func NewAllocationService(store repository.Store, publisher infrastructure.EventPublisher) *AllocationService {
	return &AllocationService{
		store:  store,
		events: eventPublisher{publisher: publisher},
	}
}

// Allocate создает доли пакетом: либо все, либо ни одной
func (s *AllocationService) Allocate(ctx context.Context, req *entity.AllocateRequest) ([]entity.SharedInventoryItem, error) {
	if err := validatePartners(req.Partners); err != nil {
		return nil, err
	}

	requested := 0
	userIDs := make([]uuid.UUID, 0, len(req.Partners))
	for _, p := range req.Partners {
		requested += p.Quantity
		userIDs = append(userIDs, p.UserID)
	}

	var (
		product *entity.Product
		items   []entity.SharedInventoryItem
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		if product, err = lockActiveProduct(ctx, tx, req.ProductID); err != nil {
			return err
		}

		found, err := tx.Users().ExistingIDs(ctx, userIDs)
		if err != nil {
			return err
		}
		if len(found) != len(userIDs) {
			return ErrUserNotFound
		}

		version, err := currentVersion(ctx, tx, product)
		if err != nil {
			return err
		}

		allocated, err := tx.SharedItems().SumQuantity(ctx, product.ID, product.Version, nil)
		if err != nil {
			return err
		}
		if requested > product.Stock-allocated {
			metrics.RecordRejected("allocation_exceeds_available")
			return ErrAllocationExceedsAvailable
		}

		now := time.Now()
		items = make([]entity.SharedInventoryItem, 0, len(req.Partners))
		for _, p := range req.Partners {
			item := entity.SharedInventoryItem{
				ID:         uuid.New(),
				ProductID:  product.ID,
				VersionRef: version.Ref(),
				UserID:     p.UserID,
				Quantity:   p.Quantity,
				Notes:      strings.TrimSpace(p.Notes),
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.SharedItems().Create(ctx, &item); err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, translate("allocate shared inventory", err)
	}

	metrics.RecordAllocation("create", len(items))
	for i := range items {
		s.events.publish(ctx, entity.InventoryEvent{
			EventType:       entity.EventSharedAllocated,
			ProductID:       product.ID,
			Version:         items[i].ProductVersion,
			StockAfter:      product.Stock,
			AllocationDelta: items[i].Quantity,
			ReferenceID:     &items[i].ID,
		})
	}

	return items, nil
}

func validatePartners(partners []entity.PartnerAllocation) error {
	errs := fieldErrors{}
	if len(partners) == 0 {
		errs.add("partners", "at least one partner is required")
	}

	seen := make(map[uuid.UUID]bool, len(partners))
	for i, p := range partners {
		if p.UserID == uuid.Nil {
			errs.add(fmt.Sprintf("partners[%d].user_id", i), "required")
		} else if seen[p.UserID] {
			errs.add(fmt.Sprintf("partners[%d].user_id", i), "duplicate user in batch")
		}
		seen[p.UserID] = true

		if p.Quantity <= 0 {
			errs.add(fmt.Sprintf("partners[%d].quantity", i), "must be greater than 0")
		}
	}
	return errs.err()
}

// UpdateAllocation меняет количество и заметку доли.
// Увеличение проверяется против остатка без учёта самой доли; уменьшение разрешено всегда.
func (s *AllocationService) UpdateAllocation(ctx context.Context, id uuid.UUID, req *entity.UpdateAllocationRequest) (*entity.SharedInventoryItem, error) {
	if req.Quantity <= 0 {
		return nil, newValidationError("quantity", "must be greater than 0")
	}

	var (
		item    *entity.SharedInventoryItem
		product *entity.Product
		delta   int
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		existing, err := tx.SharedItems().GetByID(ctx, id)
		if err != nil {
			return err
		}

		// порядок блокировок как у продаж: сначала товар, потом доля
		if product, err = tx.Products().LockForUpdate(ctx, existing.ProductID); err != nil {
			return err
		}
		if item, err = tx.SharedItems().LockForUpdate(ctx, id); err != nil {
			return err
		}

		delta = req.Quantity - item.Quantity
		if delta > 0 {
			others, err := tx.SharedItems().SumQuantity(ctx, product.ID, item.ProductVersion, &item.ID)
			if err != nil {
				return err
			}
			if others+req.Quantity > product.Stock {
				metrics.RecordRejected("allocation_exceeds_available")
				return ErrAllocationExceedsAvailable
			}
		}

		item.Quantity = req.Quantity
		if req.Notes != nil {
			item.Notes = strings.TrimSpace(*req.Notes)
		}
		return tx.SharedItems().Update(ctx, item)
	})
	if err != nil {
		return nil, translate("update shared inventory item", err)
	}

	metrics.RecordAllocation("update", 1)
	s.events.publish(ctx, entity.InventoryEvent{
		EventType:       entity.EventSharedUpdated,
		ProductID:       product.ID,
		Version:         item.ProductVersion,
		StockAfter:      product.Stock,
		AllocationDelta: delta,
		ReferenceID:     &item.ID,
	})

	return item, nil
}

// DeleteAllocation удаляет долю; остаток товара не меняется
func (s *AllocationService) DeleteAllocation(ctx context.Context, id uuid.UUID) error {
	var item *entity.SharedInventoryItem
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		if item, err = tx.SharedItems().GetByID(ctx, id); err != nil {
			return err
		}
		return tx.SharedItems().Delete(ctx, id)
	})
	if err != nil {
		return translate("delete shared inventory item", err)
	}

	metrics.RecordAllocation("delete", 1)
	s.events.publish(ctx, entity.InventoryEvent{
		EventType:       entity.EventSharedDeleted,
		ProductID:       item.ProductID,
		Version:         item.ProductVersion,
		AllocationDelta: -item.Quantity,
		ReferenceID:     &item.ID,
	})

	return nil
}

func (s *AllocationService) GetAllocation(ctx context.Context, id uuid.UUID) (*entity.SharedInventoryItem, error) {
	item, err := s.store.SharedItems().GetByID(ctx, id)
	if err != nil {
		return nil, translate("get shared inventory item", err)
	}
	return item, nil
}

// ListAllocations - фильтр по товару и/или владельцу доли
func (s *AllocationService) ListAllocations(ctx context.Context, filter repository.SharedItemFilter) ([]entity.SharedInventoryItem, error) {
	items, err := s.store.SharedItems().List(ctx, filter)
	if err != nil {
		return nil, translate("list shared inventory", err)
	}
	return items, nil
}
