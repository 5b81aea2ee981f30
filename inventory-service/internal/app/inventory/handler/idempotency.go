package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/util"
	"vidasmart/pkg/logger"
	"vidasmart/pkg/metrics"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
)

const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	IdempotentReplayHeader  = "Idempotent-Replay"
	idempotencyKeyPrefix    = "idempotency:"
	idempotencyLockSuffix   = ":lock"
	maxIdempotencyKeyLength = 200
)

// storedResponse - ответ первого запроса, который отдаётся при повторе
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Idempotency защищает мутации от повторной отправки.
// Первый запрос с ключом берёт redislock, выполняется и сохраняет ответ;
// повтор получает сохранённый ответ, параллельный дубль получает 409.
type Idempotency struct {
	cache       util.Cache
	locker      *redislock.Client
	responseTTL time.Duration
	lockTTL     time.Duration
}

func NewIdempotency(cache util.Cache, locker *redislock.Client, responseTTL, lockTTL time.Duration) *Idempotency {
	return &Idempotency{
		cache:       cache,
		locker:      locker,
		responseTTL: responseTTL,
		lockTTL:     lockTTL,
	}
}

// Middleware должен стоять после Authenticate: ключ действует в пределах пользователя
func (i *Idempotency) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			respondBadRequest(c, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		userID, _ := currentUserID(c)
		// путь запроса, а не шаблон маршрута: PUT /sales/A и PUT /sales/B - разные операции
		storeKey := idempotencyKeyPrefix + userID.String() + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key
		ctx := c.Request.Context()

		if i.replay(ctx, c, storeKey) {
			return
		}

		timer := metrics.NewRedisTimer("inventory-service", metrics.RedisOpLock)
		lock, err := i.locker.Obtain(ctx, storeKey+idempotencyLockSuffix, i.lockTTL, nil)
		timer.ObserveDuration()
		if errors.Is(err, redislock.ErrNotObtained) {
			metrics.RecordRejected("idempotency_in_flight")
			c.AbortWithStatusJSON(http.StatusConflict, entity.ErrorResponse{
				Error:   "concurrency_conflict",
				Message: "request with this Idempotency-Key is already in progress",
			})
			return
		}
		if err != nil {
			metrics.RecordRedisError("inventory-service", metrics.RedisOpLock)
			// Redis недоступен: выполняем запрос без защиты от повтора
			logger.Warn().Err(err).Msg("failed to obtain idempotency lock")
			c.Next()
			return
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				logger.Warn().Err(err).Msg("failed to release idempotency lock")
			}
		}()

		// первый запрос мог завершиться между проверкой и захватом блокировки
		if i.replay(ctx, c, storeKey) {
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		// 5xx не сохраняем, чтобы клиент мог повторить запрос
		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			return
		}

		stored := storedResponse{
			Status:      status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}
		if err := i.cache.SetJSON(context.WithoutCancel(ctx), storeKey, stored, i.responseTTL); err != nil {
			logger.Warn().Err(err).Msg("failed to store idempotent response")
		}
	}
}

// replay отдаёт сохранённый ответ, если он есть
func (i *Idempotency) replay(ctx context.Context, c *gin.Context, storeKey string) bool {
	var stored storedResponse
	found, err := i.cache.GetJSON(ctx, storeKey, &stored)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read idempotent response")
		return false
	}
	if !found {
		return false
	}

	metrics.IdempotentReplays.Inc()
	c.Header(IdempotentReplayHeader, "true")
	c.Data(stored.Status, stored.ContentType, stored.Body)
	c.Abort()
	return true
}

// bodyRecorder дублирует тело ответа в буфер
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
