package util

import (
	"context"
	"time"
)

// Cache интерфейс для работы с Redis кешем
// Используется для dependency injection и упрощения тестирования
type Cache interface {
	// GetJSON возвращает false без ошибки, если ключа нет
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
