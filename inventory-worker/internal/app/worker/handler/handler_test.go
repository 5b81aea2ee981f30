package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidasmart/inventory-worker/internal/app/worker/entity"
	"vidasmart/inventory-worker/internal/app/worker/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) RecordEvent(ctx context.Context, event *entity.InventoryEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockJournalService) ProductMovements(ctx context.Context, productID uuid.UUID, limit int64) ([]entity.Movement, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Movement), args.Error(1)
}

type MockSnapshotService struct {
	mock.Mock
}

func (m *MockSnapshotService) TakeSnapshot(ctx context.Context) (*entity.StockSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StockSnapshot), args.Error(1)
}

func (m *MockSnapshotService) LatestSnapshot(ctx context.Context) (*entity.StockSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StockSnapshot), args.Error(1)
}

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func okPing(context.Context) error { return nil }

func newHealthHandler(db, mongo pingFunc, snapshots *MockSnapshotService) *HealthCheckHandler {
	return &HealthCheckHandler{
		pingDatabase: db,
		pingMongo:    mongo,
		snapshotSvc:  snapshots,
		now:          func() time.Time { return fixedNow },
	}
}

func serve(t *testing.T, register func(mux *http.ServeMux), target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	register(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

// ===================== Health Tests =====================

func TestHealthCheck_Healthy(t *testing.T) {
	snapshots := new(MockSnapshotService)
	snapshots.On("LatestSnapshot", mock.Anything).
		Return(&entity.StockSnapshot{Date: "2026-03-02", TakenAt: fixedNow.Add(-3 * time.Hour)}, nil)
	h := newHealthHandler(okPing, okPing, snapshots)

	w := serve(t, h.RegisterRoutes, "/health")

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Checks["database"])
	assert.Equal(t, "healthy", resp.Checks["mongodb"])
	assert.Equal(t, "healthy", resp.Checks["stock_snapshot"])
}

func TestHealthCheck_StaleSnapshotIsWarning(t *testing.T) {
	snapshots := new(MockSnapshotService)
	snapshots.On("LatestSnapshot", mock.Anything).
		Return(&entity.StockSnapshot{Date: "2026-02-27", TakenAt: fixedNow.Add(-72 * time.Hour)}, nil)
	h := newHealthHandler(okPing, okPing, snapshots)

	w := serve(t, h.RegisterRoutes, "/health")

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Contains(t, resp.Checks["stock_snapshot"], "warning: last snapshot 2026-02-27")
}

func TestHealthCheck_MissingSnapshotIsWarning(t *testing.T) {
	snapshots := new(MockSnapshotService)
	snapshots.On("LatestSnapshot", mock.Anything).Return(nil, service.ErrSnapshotNotFound)
	h := newHealthHandler(okPing, okPing, snapshots)

	w := serve(t, h.RegisterRoutes, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "warning: no stock snapshot taken yet")
}

func TestHealthCheck_Unhealthy(t *testing.T) {
	tests := []struct {
		name  string
		db    pingFunc
		mongo pingFunc
		check string
	}{
		{"database down", func(context.Context) error { return errors.New("connection refused") }, okPing, "database"},
		{"mongodb down", okPing, func(context.Context) error { return errors.New("server selection timeout") }, "mongodb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots := new(MockSnapshotService)
			snapshots.On("LatestSnapshot", mock.Anything).Return(&entity.StockSnapshot{TakenAt: fixedNow}, nil)
			h := newHealthHandler(tt.db, tt.mongo, snapshots)

			w := serve(t, h.RegisterRoutes, "/health")

			require.Equal(t, http.StatusServiceUnavailable, w.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "unhealthy", resp.Status)
			assert.Contains(t, resp.Checks[tt.check], "unhealthy: ")
		})
	}
}

func TestReadiness(t *testing.T) {
	down := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name   string
		db     pingFunc
		mongo  pingFunc
		status int
		body   string
	}{
		{"ready", okPing, okPing, http.StatusOK, "ready"},
		{"database", down, okPing, http.StatusServiceUnavailable, "database not ready"},
		{"mongodb", okPing, down, http.StatusServiceUnavailable, "mongodb not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHealthHandler(tt.db, tt.mongo, new(MockSnapshotService))

			w := serve(t, h.RegisterRoutes, "/health/readiness")

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestLiveness(t *testing.T) {
	h := newHealthHandler(okPing, okPing, new(MockSnapshotService))

	w := serve(t, h.RegisterRoutes, "/health/liveness")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", w.Body.String())
}

// ===================== Journal Tests =====================

func TestProductMovements_Success(t *testing.T) {
	journal := new(MockJournalService)
	h := NewJournalHandler(journal, new(MockSnapshotService))

	productID := uuid.New()
	journal.On("ProductMovements", mock.Anything, productID, int64(20)).Return([]entity.Movement{
		{EventID: "e-2", EventType: entity.EventSaleRecorded, ProductID: productID.String(), StockDelta: -1, StockAfter: 4},
		{EventID: "e-1", EventType: entity.EventProductCreated, ProductID: productID.String(), StockDelta: 5, StockAfter: 5},
	}, nil)

	w := serve(t, h.RegisterRoutes, "/movements/"+productID.String()+"?limit=20")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []entity.Movement `json:"items"`
		Total int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "e-2", resp.Items[0].EventID)
	assert.Equal(t, 4, resp.Items[0].StockAfter)
	journal.AssertExpectations(t)
}

func TestProductMovements_DefaultLimit(t *testing.T) {
	journal := new(MockJournalService)
	h := NewJournalHandler(journal, new(MockSnapshotService))

	productID := uuid.New()
	journal.On("ProductMovements", mock.Anything, productID, int64(0)).Return([]entity.Movement{}, nil)

	w := serve(t, h.RegisterRoutes, "/movements/"+productID.String())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, w.Body.String())
}

func TestProductMovements_BadRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		code   string
	}{
		{"invalid id", "/movements/not-a-uuid", "invalid_id"},
		{"invalid limit", "/movements/" + uuid.NewString() + "?limit=abc", "invalid_limit"},
		{"zero limit", "/movements/" + uuid.NewString() + "?limit=0", "invalid_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			journal := new(MockJournalService)
			h := NewJournalHandler(journal, new(MockSnapshotService))

			w := serve(t, h.RegisterRoutes, tt.target)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
			journal.AssertNotCalled(t, "ProductMovements", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestProductMovements_InternalError(t *testing.T) {
	journal := new(MockJournalService)
	h := NewJournalHandler(journal, new(MockSnapshotService))
	journal.On("ProductMovements", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("mongo: secret details"))

	w := serve(t, h.RegisterRoutes, "/movements/"+uuid.NewString())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret details")
}

func TestLatestSnapshot_Handler(t *testing.T) {
	snapshots := new(MockSnapshotService)
	h := NewJournalHandler(new(MockJournalService), snapshots)
	snapshots.On("LatestSnapshot", mock.Anything).Return(&entity.StockSnapshot{
		Date:       "2026-03-01",
		TotalUnits: 12,
		Products:   []entity.SnapshotLine{{ProductID: "p-1", Name: "Aretes", Stock: 12}},
	}, nil)

	w := serve(t, h.RegisterRoutes, "/snapshots/latest")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-03-01", resp["date"])
	assert.EqualValues(t, 12, resp["total_units"])
}

func TestLatestSnapshot_NotFound(t *testing.T) {
	snapshots := new(MockSnapshotService)
	h := NewJournalHandler(new(MockJournalService), snapshots)
	snapshots.On("LatestSnapshot", mock.Anything).Return(nil, service.ErrSnapshotNotFound)

	w := serve(t, h.RegisterRoutes, "/snapshots/latest")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
