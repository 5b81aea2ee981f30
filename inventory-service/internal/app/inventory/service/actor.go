package service

import (
	"context"

	"github.com/google/uuid"
)

type actorKey struct{}

// WithActor кладёт id аутентифицированного пользователя в контекст запроса
func WithActor(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom возвращает id пользователя или nil для внутренних вызовов
func ActorFrom(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(actorKey{}).(uuid.UUID); ok && id != uuid.Nil {
		return &id
	}
	return nil
}
