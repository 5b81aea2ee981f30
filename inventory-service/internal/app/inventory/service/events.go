package service

import (
	"context"
	"encoding/json"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/infrastructure"
	"vidasmart/inventory-service/internal/app/inventory/util"
	"vidasmart/pkg/logger"

	"github.com/google/uuid"
)

const analyticsCachePrefix = "analytics:"

// eventPublisher отправляет события после коммита.
// Ошибка Kafka не откатывает бизнес-операцию, только пишется в лог.
type eventPublisher struct {
	publisher infrastructure.EventPublisher
}

func (p eventPublisher) publish(ctx context.Context, events ...entity.InventoryEvent) {
	if p.publisher == nil {
		return
	}

	actor := ActorFrom(ctx)
	for _, event := range events {
		if event.EventID == uuid.Nil {
			event.EventID = uuid.New()
		}
		if event.OccurredAt.IsZero() {
			event.OccurredAt = time.Now().UTC()
		}
		if event.ActorID == nil {
			event.ActorID = actor
		}

		data, err := json.Marshal(event)
		if err != nil {
			logger.Error().Err(err).Str("event_type", event.EventType).Msg("failed to marshal inventory event")
			continue
		}

		if err := p.publisher.PublishEvent(ctx, event.ProductID.String(), event.EventType, data); err != nil {
			logger.Warn().Err(err).
				Str("event_type", event.EventType).
				Str("product_id", event.ProductID.String()).
				Msg("failed to publish inventory event")
		}
	}
}

// invalidateAnalytics сбрасывает кеш отчётов после изменения продаж или инвестиций
func invalidateAnalytics(ctx context.Context, cache util.Cache) {
	if cache == nil {
		return
	}
	if err := cache.DeleteByPrefix(ctx, analyticsCachePrefix); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}
}
