package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vidasmart/inventory-worker/internal/app/worker/service"
	"vidasmart/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"
)

// snapshotMaxAge - снимок старше считается пропущенным запуском cron
const snapshotMaxAge = 36 * time.Hour

type pingFunc func(ctx context.Context) error

type HealthCheckHandler struct {
	pingDatabase pingFunc
	pingMongo    pingFunc
	snapshotSvc  service.SnapshotServiceInterface
	now          func() time.Time
}

func NewHealthCheckHandler(
	db *gorm.DB,
	mongoClient *mongo.Client,
	snapshotSvc service.SnapshotServiceInterface,
) *HealthCheckHandler {
	return &HealthCheckHandler{
		pingDatabase: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		pingMongo: func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		},
		snapshotSvc: snapshotSvc,
		now:         time.Now,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

// HealthCheck проверяет PostgreSQL и MongoDB; устаревший снимок только предупреждение
func (h *HealthCheckHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.pingDatabase(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	if err := h.pingMongo(ctx); err != nil {
		checks["mongodb"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["mongodb"] = "healthy"
	}

	if err := h.checkSnapshot(ctx); err != nil {
		checks["stock_snapshot"] = "warning: " + err.Error()
	} else {
		checks["stock_snapshot"] = "healthy"
	}

	status := http.StatusOK
	if overallStatus != "healthy" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Timestamp: h.now().UTC(),
	})
}

func (h *HealthCheckHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.pingDatabase(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}

	if err := h.pingMongo(ctx); err != nil {
		http.Error(w, "mongodb not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (h *HealthCheckHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

func (h *HealthCheckHandler) checkSnapshot(ctx context.Context) error {
	snapshot, err := h.snapshotSvc.LatestSnapshot(ctx)
	if err != nil {
		return err
	}

	age := h.now().Sub(snapshot.TakenAt)
	if age > snapshotMaxAge {
		logger.Warn().Dur("age", age).Str("date", snapshot.Date).Msg("Stock snapshot is outdated")
		return errors.New("last snapshot " + snapshot.Date + " is outdated")
	}
	return nil
}

func (h *HealthCheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /health/readiness", h.Readiness)
	mux.HandleFunc("GET /health/liveness", h.Liveness)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
