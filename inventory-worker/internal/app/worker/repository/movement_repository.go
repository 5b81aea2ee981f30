package repository

import (
	"context"
	"fmt"
	"time"

	"vidasmart/inventory-worker/internal/app/worker/entity"
	"vidasmart/pkg/logger"
	"vidasmart/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type movementRepository struct {
	collection *mongo.Collection
}

// NewMovementRepository открывает коллекцию inventory_movements и создаёт индексы:
// уникальный по event_id и составной по товару и времени события
func NewMovementRepository(db *mongo.Database) MovementRepository {
	collection := db.Collection(entity.CollectionMovements)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetName("event_id_uniq").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("product_occurred_idx"),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// индекс может уже существовать, журнал работает и без него
		logger.Warn().Err(err).Str("collection", entity.CollectionMovements).Msg("failed to create indexes")
	}

	return newMovementRepository(collection)
}

func newMovementRepository(collection *mongo.Collection) *movementRepository {
	return &movementRepository{collection: collection}
}

func (r *movementRepository) Append(ctx context.Context, movement *entity.Movement) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, entity.CollectionMovements)
	defer timer.ObserveDuration()

	if movement.RecordedAt.IsZero() {
		movement.RecordedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, movement)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEvent
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to append movement: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		movement.ID = oid
	}
	return nil
}

func (r *movementRepository) ListByProduct(ctx context.Context, productID string, limit int64) ([]entity.Movement, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, entity.CollectionMovements)
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to find movements: %w", err)
	}
	defer cursor.Close(ctx)

	movements := []entity.Movement{}
	if err := cursor.All(ctx, &movements); err != nil {
		return nil, fmt.Errorf("failed to decode movements: %w", err)
	}

	return movements, nil
}
