package infrastructure

import (
	"context"
)

// EventPublisher отправляет события склада в Kafka.
// productID - ключ партиционирования, eventType дублируется в заголовок сообщения.
type EventPublisher interface {
	PublishEvent(ctx context.Context, productID, eventType string, payload []byte) error
	Close() error
}
