package service

import (
	"context"

	"vidasmart/inventory-worker/internal/app/worker/entity"

	"github.com/google/uuid"
)

// JournalServiceInterface ведёт журнал движений склада
type JournalServiceInterface interface {
	// RecordEvent записывает событие из Kafka; повторная доставка не ошибка
	RecordEvent(ctx context.Context, event *entity.InventoryEvent) error
	// ProductMovements возвращает последние движения товара
	ProductMovements(ctx context.Context, productID uuid.UUID, limit int64) ([]entity.Movement, error)
}

// SnapshotServiceInterface снимает дневные остатки
type SnapshotServiceInterface interface {
	// TakeSnapshot читает товары из PostgreSQL и сохраняет снимок за текущую дату
	TakeSnapshot(ctx context.Context) (*entity.StockSnapshot, error)
	// LatestSnapshot возвращает последний сохранённый снимок
	LatestSnapshot(ctx context.Context) (*entity.StockSnapshot, error)
}
