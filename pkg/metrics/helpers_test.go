package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCacheLookup(t *testing.T) {
	hits := RedisCacheHits.WithLabelValues("helpers-test", "categories:")
	misses := RedisCacheMisses.WithLabelValues("helpers-test", "categories:")

	RecordCacheLookup("helpers-test", "categories:", true)
	RecordCacheLookup("helpers-test", "categories:", false)
	RecordCacheLookup("helpers-test", "categories:", false)

	assert.Equal(t, float64(1), testutil.ToFloat64(hits))
	assert.Equal(t, float64(2), testutil.ToFloat64(misses))
}

func TestRecordSale_UnitsOnlyWhenPositive(t *testing.T) {
	before := testutil.ToFloat64(SalesUnits)

	RecordSale("create", 3)
	RecordSale("delete", 0)

	assert.Equal(t, before+3, testutil.ToFloat64(SalesUnits))
}

func TestRecordSnapshot(t *testing.T) {
	success := testutil.ToFloat64(WorkerSnapshots.WithLabelValues("success"))
	failed := testutil.ToFloat64(WorkerSnapshots.WithLabelValues("failed"))

	RecordSnapshot(150*time.Millisecond, nil)
	RecordSnapshot(time.Second, errors.New("mongo down"))

	assert.Equal(t, success+1, testutil.ToFloat64(WorkerSnapshots.WithLabelValues("success")))
	assert.Equal(t, failed+1, testutil.ToFloat64(WorkerSnapshots.WithLabelValues("failed")))
}

func TestDbTimer_Observes(t *testing.T) {
	timer := NewDbTimer("helpers-test", DbOpUpsert, "stock_snapshots")
	timer.ObserveDuration()

	assert.Equal(t, 1, testutil.CollectAndCount(DbQueryDuration, "db_query_duration_seconds"))
}
