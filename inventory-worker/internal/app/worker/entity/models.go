package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// Типы событий из топика inventory_events
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

// Коллекции MongoDB
const (
	CollectionMovements = "inventory_movements"
	CollectionSnapshots = "stock_snapshots"
)

// SnapshotDateLayout - ключ дневного снимка
const SnapshotDateLayout = "2006-01-02"

// InventoryEvent - сообщение, которое inventory-service публикует после коммита
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

// Movement - запись журнала движений; event_id уникален, повтор доставки не дублирует запись
type Movement struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	EventID         string             `json:"event_id" bson:"event_id"`
	EventType       string             `json:"event_type" bson:"event_type"`
	ProductID       string             `json:"product_id" bson:"product_id"`
	Version         int                `json:"version" bson:"version"`
	StockDelta      int                `json:"stock_delta" bson:"stock_delta"`
	StockAfter      int                `json:"stock_after" bson:"stock_after"`
	AllocationDelta int                `json:"allocation_delta" bson:"allocation_delta"`
	ReferenceID     string             `json:"reference_id,omitempty" bson:"reference_id,omitempty"`
	ActorID         string             `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	OccurredAt      time.Time          `json:"occurred_at" bson:"occurred_at"`
	RecordedAt      time.Time          `json:"recorded_at" bson:"recorded_at"`
}

// Product - строка таблицы products inventory-service, только нужные снимку поля
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name          string          `gorm:"type:varchar(200)"`
	Color         string          `gorm:"type:varchar(50)"`
	CategoryID    uuid.UUID       `gorm:"type:uuid"`
	Stock         int             `gorm:"not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2)"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2)"`
	Version       int             `gorm:"not null"`
	DeletedAt     gorm.DeletedAt
}

func (Product) TableName() string {
	return "products"
}

// StockSnapshot - остатки на дату; один документ на день, повторный запуск перезаписывает его
type StockSnapshot struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Date       string               `json:"date" bson:"date"`
	TakenAt    time.Time            `json:"taken_at" bson:"taken_at"`
	Products   []SnapshotLine       `json:"products" bson:"products"`
	TotalUnits int                  `json:"total_units" bson:"total_units"`
	StockValue primitive.Decimal128 `json:"stock_value" bson:"stock_value"`
}

// SnapshotLine - остаток одного товара; стоимость по себестоимости текущей версии
type SnapshotLine struct {
	ProductID     string               `json:"product_id" bson:"product_id"`
	Name          string               `json:"name" bson:"name"`
	Color         string               `json:"color,omitempty" bson:"color,omitempty"`
	Version       int                  `json:"version" bson:"version"`
	Stock         int                  `json:"stock" bson:"stock"`
	PurchasePrice primitive.Decimal128 `json:"purchase_price" bson:"purchase_price"`
	StockValue    primitive.Decimal128 `json:"stock_value" bson:"stock_value"`
}
