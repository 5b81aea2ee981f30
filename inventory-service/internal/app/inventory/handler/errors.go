package handler

import (
	"errors"
	"net/http"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/service"
	"vidasmart/pkg/logger"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// порядок важен только для читаемости: ошибки сервиса не пересекаются
var errorMappings = []errorMapping{
	{service.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
	{service.ErrInsufficientAllocation, http.StatusConflict, "insufficient_allocation"},
	{service.ErrAllocationExceedsAvailable, http.StatusConflict, "allocation_exceeds_available"},
	{service.ErrConcurrencyConflict, http.StatusConflict, "concurrency_conflict"},

	{service.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{service.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{service.ErrProviderNotFound, http.StatusNotFound, "provider_not_found"},
	{service.ErrCategoryNotFound, http.StatusNotFound, "category_not_found"},
	{service.ErrCurrencyNotFound, http.StatusNotFound, "currency_not_found"},
	{service.ErrSaleNotFound, http.StatusNotFound, "sale_not_found"},
	{service.ErrAllocationNotFound, http.StatusNotFound, "shared_item_not_found"},

	{service.ErrCategoryCycle, http.StatusBadRequest, "category_cycle"},
	{service.ErrCategoryInUse, http.StatusConflict, "category_in_use"},
	{service.ErrProviderInUse, http.StatusConflict, "provider_in_use"},
	{service.ErrCurrencyInUse, http.StatusConflict, "currency_in_use"},
	{service.ErrDuplicate, http.StatusConflict, "duplicate"},
	{service.ErrInvalidLogin, http.StatusUnauthorized, "invalid_credentials"},
}

// respondError переводит ошибку сервиса в HTTP ответ.
// Неизвестные ошибки логируются и отдаются как 500 без подробностей.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{
			Error:  "validation_failed",
			Fields: validationErr.Fields,
		})
		return
	}

	if errors.Is(err, errInvalidBody) {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid_body", Message: "Invalid request body"})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, entity.ErrorResponse{Error: m.code, Message: m.err.Error()})
			return
		}
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "internal_error", Message: "Internal server error"})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "bad_request", Message: message})
}
