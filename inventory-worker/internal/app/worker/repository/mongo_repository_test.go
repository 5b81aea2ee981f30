package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"vidasmart/inventory-worker/internal/app/worker/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func namespace(mt *mtest.T) string {
	return fmt.Sprintf("%s.%s", mt.DB.Name(), mt.Coll.Name())
}

func TestMovementRepository_Append(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success sets id and recorded_at", func(mt *mtest.T) {
		repo := newMovementRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		movement := &entity.Movement{EventID: "e-1", EventType: entity.EventSaleRecorded, ProductID: "p-1", StockDelta: -2}
		err := repo.Append(context.Background(), movement)

		require.NoError(mt, err)
		assert.False(mt, movement.ID.IsZero())
		assert.False(mt, movement.RecordedAt.IsZero())
	})

	mt.Run("duplicate event id", func(mt *mtest.T) {
		repo := newMovementRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: inventory_movements index: event_id_uniq",
		}))

		err := repo.Append(context.Background(), &entity.Movement{EventID: "e-1"})

		assert.ErrorIs(mt, err, ErrDuplicateEvent)
	})

	mt.Run("other write error", func(mt *mtest.T) {
		repo := newMovementRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
		}))

		err := repo.Append(context.Background(), &entity.Movement{EventID: "e-2"})

		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrDuplicateEvent)
		assert.Contains(mt, err.Error(), "failed to append movement")
	})
}

func TestMovementRepository_ListByProduct(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes movements", func(mt *mtest.T) {
		repo := newMovementRepository(mt.Coll)
		occurred := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "event_id", Value: "e-2"},
				{Key: "event_type", Value: entity.EventSaleRecorded},
				{Key: "product_id", Value: "p-1"},
				{Key: "stock_delta", Value: -3},
				{Key: "stock_after", Value: 7},
				{Key: "occurred_at", Value: occurred},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "event_id", Value: "e-1"},
				{Key: "event_type", Value: entity.EventProductCreated},
				{Key: "product_id", Value: "p-1"},
				{Key: "stock_delta", Value: 10},
				{Key: "stock_after", Value: 10},
				{Key: "occurred_at", Value: occurred.Add(-time.Hour)},
			},
		))

		movements, err := repo.ListByProduct(context.Background(), "p-1", 50)

		require.NoError(mt, err)
		require.Len(mt, movements, 2)
		assert.Equal(mt, "e-2", movements[0].EventID)
		assert.Equal(mt, -3, movements[0].StockDelta)
		assert.Equal(mt, 7, movements[0].StockAfter)
		assert.True(mt, movements[0].OccurredAt.Equal(occurred))
		assert.Equal(mt, entity.EventProductCreated, movements[1].EventType)
	})

	mt.Run("empty journal returns empty slice", func(mt *mtest.T) {
		repo := newMovementRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		movements, err := repo.ListByProduct(context.Background(), "p-unknown", 0)

		require.NoError(mt, err)
		assert.NotNil(mt, movements)
		assert.Empty(mt, movements)
	})
}

func TestSnapshotRepository_Save(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upsert", func(mt *mtest.T) {
		repo := newSnapshotRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		snapshot := &entity.StockSnapshot{
			ID:         primitive.NewObjectID(),
			Date:       "2026-03-01",
			TakenAt:    time.Now().UTC(),
			TotalUnits: 3,
		}
		err := repo.Save(context.Background(), snapshot)

		require.NoError(mt, err)
		// исходный снимок не меняется
		assert.False(mt, snapshot.ID.IsZero())
	})

	mt.Run("error", func(mt *mtest.T) {
		repo := newSnapshotRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 91, Message: "shutdown in progress"}))

		err := repo.Save(context.Background(), &entity.StockSnapshot{Date: "2026-03-01"})

		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to save snapshot")
	})
}

func TestSnapshotRepository_Latest(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := newSnapshotRepository(mt.Coll)
		value, err := primitive.ParseDecimal128("482.00")
		require.NoError(mt, err)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "date", Value: "2026-03-02"},
			{Key: "total_units", Value: 4},
			{Key: "stock_value", Value: value},
		}))

		snapshot, err := repo.Latest(context.Background())

		require.NoError(mt, err)
		assert.Equal(mt, "2026-03-02", snapshot.Date)
		assert.Equal(mt, 4, snapshot.TotalUnits)
		assert.Equal(mt, value, snapshot.StockValue)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := newSnapshotRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		snapshot, err := repo.Latest(context.Background())

		assert.ErrorIs(mt, err, ErrSnapshotNotFound)
		assert.Nil(mt, snapshot)
	})
}
