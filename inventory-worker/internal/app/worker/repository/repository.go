package repository

import (
	"context"
	"errors"

	"vidasmart/inventory-worker/internal/app/worker/entity"
)

var (
	// ErrDuplicateEvent - событие с таким event_id уже в журнале
	ErrDuplicateEvent   = errors.New("event already journaled")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// MovementRepository - журнал движений склада в MongoDB
type MovementRepository interface {
	// Append добавляет запись; повтор event_id возвращает ErrDuplicateEvent
	Append(ctx context.Context, movement *entity.Movement) error

	// ListByProduct возвращает последние движения товара, новые первыми
	ListByProduct(ctx context.Context, productID string, limit int64) ([]entity.Movement, error)
}

// SnapshotRepository - дневные снимки остатков в MongoDB
type SnapshotRepository interface {
	// Save заменяет снимок за ту же дату или создаёт новый
	Save(ctx context.Context, snapshot *entity.StockSnapshot) error

	// Latest возвращает самый свежий снимок
	Latest(ctx context.Context) (*entity.StockSnapshot, error)
}

// ProductRepository читает товары inventory-service из PostgreSQL
type ProductRepository interface {
	// ListActive возвращает неархивированные товары
	ListActive(ctx context.Context) ([]entity.Product, error)
}
