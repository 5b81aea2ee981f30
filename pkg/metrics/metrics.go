package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики (общие для всех сервисов)
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Пример запроса PromQL: rate(http_requests_total{service="inventory-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики
// =============================================================================

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaConsumeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_consume_duration_seconds",
		Help:    "Duration of Kafka message processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"}, // operation: produce, consume
)

// =============================================================================
// Business Метрики (инвентарь Vida Smart)
// =============================================================================

// --- Inventory Service ---

// StockAdjustments - корректировки остатков
var StockAdjustments = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inventory_stock_adjustments_total",
		Help: "Total number of stock adjustments",
	},
	[]string{"action"}, // add, new_version, investment
)

// StockUnitsAdded - сколько единиц пришло на склад
var StockUnitsAdded = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "inventory_stock_units_added_total",
		Help: "Total number of units added to stock",
	},
)

// SharedAllocations - распределения общего инвентаря между партнёрами
var SharedAllocations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inventory_shared_allocations_total",
		Help: "Total number of shared inventory allocation operations",
	},
	[]string{"operation"}, // create, update, delete
)

// SalesRecorded - продажи
var SalesRecorded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inventory_sales_total",
		Help: "Total number of sale operations",
	},
	[]string{"operation"}, // create, update, delete
)

// SalesUnits - проданные единицы
var SalesUnits = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "inventory_sales_units_total",
		Help: "Total number of units sold",
	},
)

// OperationsRejected - отклонённые операции по причине
var OperationsRejected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inventory_operations_rejected_total",
		Help: "Total number of rejected stock-affecting operations",
	},
	[]string{"reason"}, // insufficient_stock, insufficient_allocation, allocation_exceeds_available, conflict
)

// IdempotentReplays - повторы запросов с тем же Idempotency-Key
var IdempotentReplays = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "inventory_idempotent_replays_total",
		Help: "Total number of requests answered from the idempotency store",
	},
)

// --- Inventory Worker ---

// WorkerEventsJournaled - события, записанные в журнал движений
var WorkerEventsJournaled = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "worker_events_journaled_total",
		Help: "Total number of inventory events written to the movement journal",
	},
	[]string{"event_type", "status"}, // status: success, failed
)

// WorkerSnapshots - снимки остатков по cron
var WorkerSnapshots = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "worker_stock_snapshots_total",
		Help: "Total number of stock snapshot runs",
	},
	[]string{"status"},
)

var WorkerSnapshotDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "worker_stock_snapshot_duration_seconds",
		Help:    "Duration of a stock snapshot run",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	},
)
