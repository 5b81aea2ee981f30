package entity

import (
	"time"

	"github.com/google/uuid"
)

// Типы событий движения склада (топик inventory_events)
const (
	EventProductCreated        = "PRODUCT_CREATED"
	EventStockAdded            = "STOCK_ADDED"
	EventProductVersionCreated = "PRODUCT_VERSION_CREATED"
	EventSharedAllocated       = "SHARED_ALLOCATED"
	EventSharedUpdated         = "SHARED_UPDATED"
	EventSharedDeleted         = "SHARED_DELETED"
	EventSaleRecorded          = "SALE_RECORDED"
	EventSaleUpdated           = "SALE_UPDATED"
	EventSaleDeleted           = "SALE_DELETED"
	EventInvestmentRecorded    = "INVESTMENT_RECORDED"
)

// InventoryEvent публикуется после коммита транзакции.
// StockDelta - изменение остатка товара, AllocationDelta - изменение доли.
type InventoryEvent struct {
	EventID         uuid.UUID  `json:"event_id"`
	EventType       string     `json:"event_type"`
	ProductID       uuid.UUID  `json:"product_id"`
	Version         int        `json:"version"`
	StockDelta      int        `json:"stock_delta"`
	StockAfter      int        `json:"stock_after"`
	AllocationDelta int        `json:"allocation_delta,omitempty"`
	ReferenceID     *uuid.UUID `json:"reference_id,omitempty"`
	ActorID         *uuid.UUID `json:"actor_id,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
}
