package repository

import (
	"context"
	"errors"
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

type snapshotRepository struct {
	collection *mongo.Collection
}

// NewSnapshotRepository открывает коллекцию stock_snapshots; дата снимка уникальна
func NewSnapshotRepository(db *mongo.Database) SnapshotRepository {
	collection := db.Collection(entity.CollectionSnapshots)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetName("date_uniq").SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn().Err(err).Str("collection", entity.CollectionSnapshots).Msg("failed to create index on date")
	}

	return newSnapshotRepository(collection)
}

func newSnapshotRepository(collection *mongo.Collection) *snapshotRepository {
	return &snapshotRepository{collection: collection}
}

// Save делает upsert по дате: повторный запуск cron в тот же день заменяет снимок
func (r *snapshotRepository) Save(ctx context.Context, snapshot *entity.StockSnapshot) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpsert, entity.CollectionSnapshots)
	defer timer.ObserveDuration()

	// _id не передаём в замену, иначе upsert существующей даты упадёт на immutable _id
	doc := *snapshot
	doc.ID = primitive.NilObjectID

	filter := bson.M{"date": snapshot.Date}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection.ReplaceOne(ctx, filter, &doc, opts); err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpsert)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) Latest(ctx context.Context) (*entity.StockSnapshot, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, entity.CollectionSnapshots)
	defer timer.ObserveDuration()

	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var snapshot entity.StockSnapshot
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&snapshot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return &snapshot, nil
}
