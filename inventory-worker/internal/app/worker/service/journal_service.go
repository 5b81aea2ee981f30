package service

import (
	"context"
	"errors"
	"fmt"

	"vidasmart/inventory-worker/internal/app/worker/entity"
	"vidasmart/inventory-worker/internal/app/worker/repository"
	"vidasmart/pkg/logger"
	"vidasmart/pkg/metrics"

	"github.com/google/uuid"
)

// ErrInvalidEvent - событие без обязательных полей; повторная обработка его не исправит
var ErrInvalidEvent = errors.New("invalid inventory event")

const (
	defaultMovementsLimit = 50
	maxMovementsLimit     = 500
)

// JournalService переносит события inventory_events в журнал MongoDB
type JournalService struct {
	movements repository.MovementRepository
}

func NewJournalService(movements repository.MovementRepository) *JournalService {
	return &JournalService{movements: movements}
}

// RecordEvent добавляет событие в журнал.
// Kafka доставляет at-least-once, поэтому дубликат event_id считается успешной записью.
func (s *JournalService) RecordEvent(ctx context.Context, event *entity.InventoryEvent) error {
	if err := ValidateEvent(event); err != nil {
		metrics.RecordJournalEvent(event.EventType, "invalid")
		return err
	}

	movement := &entity.Movement{
		EventID:         event.EventID.String(),
		EventType:       event.EventType,
		ProductID:       event.ProductID.String(),
		Version:         event.Version,
		StockDelta:      event.StockDelta,
		StockAfter:      event.StockAfter,
		AllocationDelta: event.AllocationDelta,
		ReferenceID:     optionalID(event.ReferenceID),
		ActorID:         optionalID(event.ActorID),
		OccurredAt:      event.OccurredAt.UTC(),
	}

	if err := s.movements.Append(ctx, movement); err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			logger.Debug().Str("event_id", movement.EventID).Msg("event already journaled, skipping")
			metrics.RecordJournalEvent(event.EventType, "duplicate")
			return nil
		}
		metrics.RecordJournalEvent(event.EventType, "failed")
		return fmt.Errorf("failed to journal %s: %w", event.EventType, err)
	}

	metrics.RecordJournalEvent(event.EventType, "success")
	logger.Info().
		Str("event_type", event.EventType).
		Str("product_id", movement.ProductID).
		Int("stock_delta", movement.StockDelta).
		Int("stock_after", movement.StockAfter).
		Msg("movement journaled")

	return nil
}

func (s *JournalService) ProductMovements(ctx context.Context, productID uuid.UUID, limit int64) ([]entity.Movement, error) {
	if limit <= 0 {
		limit = defaultMovementsLimit
	}
	if limit > maxMovementsLimit {
		limit = maxMovementsLimit
	}

	movements, err := s.movements.ListByProduct(ctx, productID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}

// ValidateEvent проверяет поля, без которых запись журнала бессмысленна
func ValidateEvent(event *entity.InventoryEvent) error {
	switch {
	case event.EventID == uuid.Nil:
		return fmt.Errorf("%w: missing event_id", ErrInvalidEvent)
	case event.EventType == "":
		return fmt.Errorf("%w: missing event_type", ErrInvalidEvent)
	case event.ProductID == uuid.Nil:
		return fmt.Errorf("%w: missing product_id", ErrInvalidEvent)
	case event.OccurredAt.IsZero():
		return fmt.Errorf("%w: missing occurred_at", ErrInvalidEvent)
	}
	return nil
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
