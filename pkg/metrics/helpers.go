package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// opTimer меряет одну операцию хранилища и пишет её в гистограмму с заданными метками
type opTimer struct {
	observer prometheus.Observer
	start    time.Time
}

func (t *opTimer) ObserveDuration() {
	t.observer.Observe(time.Since(t.start).Seconds())
}

// ----- Redis (кэш каталога, аналитика, idempotency) -----

type RedisOperation string

const (
	RedisOpGet  RedisOperation = "get"
	RedisOpSet  RedisOperation = "set"
	RedisOpDel  RedisOperation = "del"
	RedisOpScan RedisOperation = "scan"
	RedisOpLock RedisOperation = "lock"
)

type RedisTimer = opTimer

func NewRedisTimer(service string, op RedisOperation) *RedisTimer {
	return &opTimer{
		observer: RedisOperationDuration.WithLabelValues(service, string(op)),
		start:    time.Now(),
	}
}

// RecordCacheLookup: keyPrefix без хвоста (categories:, analytics:)
func RecordCacheLookup(service, keyPrefix string, hit bool) {
	if hit {
		RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
		return
	}
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

// ----- Kafka (inventory_events) -----

func RecordKafkaMessageProduced(service, topic string, duration time.Duration) {
	KafkaMessagesProduced.WithLabelValues(service, topic).Inc()
	KafkaProduceDuration.WithLabelValues(service, topic).Observe(duration.Seconds())
}

func RecordKafkaMessageConsumed(service, topic, group string, processingDuration time.Duration) {
	KafkaMessagesConsumed.WithLabelValues(service, topic, group).Inc()
	KafkaConsumeDuration.WithLabelValues(service, topic).Observe(processingDuration.Seconds())
}

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}

// ----- PostgreSQL / MongoDB -----

type DbOperation string

const (
	DbOpSelect DbOperation = "select"
	DbOpInsert DbOperation = "insert"
	DbOpUpdate DbOperation = "update"
	DbOpUpsert DbOperation = "upsert"
	DbOpDelete DbOperation = "delete"
)

type DbTimer = opTimer

// NewDbTimer: table - таблица PostgreSQL или коллекция MongoDB
func NewDbTimer(service string, op DbOperation, table string) *DbTimer {
	return &opTimer{
		observer: DbQueryDuration.WithLabelValues(service, string(op), table),
		start:    time.Now(),
	}
}

func RecordDbError(service string, op DbOperation) {
	DbErrors.WithLabelValues(service, string(op)).Inc()
}

// ----- Бизнес-операции -----

// RecordRejected учитывает бизнес-отказ (нехватка остатка, превышение доли и т.п.)
func RecordRejected(reason string) {
	OperationsRejected.WithLabelValues(reason).Inc()
}

// RecordStockAdjustment: action = add | new_version
func RecordStockAdjustment(action string, units int) {
	StockAdjustments.WithLabelValues(action).Inc()
	StockUnitsAdded.Add(float64(units))
}

// RecordSale: units учитываются только при создании продажи
func RecordSale(operation string, units int) {
	SalesRecorded.WithLabelValues(operation).Inc()
	if units > 0 {
		SalesUnits.Add(float64(units))
	}
}

func RecordAllocation(operation string, items int) {
	SharedAllocations.WithLabelValues(operation).Add(float64(items))
}

// RecordJournalEvent: status = success | duplicate | invalid | failed
func RecordJournalEvent(eventType, status string) {
	WorkerEventsJournaled.WithLabelValues(eventType, status).Inc()
}

func RecordSnapshot(duration time.Duration, err error) {
	WorkerSnapshotDuration.Observe(duration.Seconds())
	if err != nil {
		WorkerSnapshots.WithLabelValues("failed").Inc()
		return
	}
	WorkerSnapshots.WithLabelValues("success").Inc()
}
