package handler

import (
	"net/http"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SaleHandler обрабатывает HTTP запросы продаж
type SaleHandler struct {
	sales     service.SaleServiceInterface
	validator *validator.Validate
}

func NewSaleHandler(sales service.SaleServiceInterface, v *validator.Validate) *SaleHandler {
	return &SaleHandler{sales: sales, validator: v}
}

// RecordSale обрабатывает POST /sales
func (h *SaleHandler) RecordSale(c *gin.Context) {
	var req entity.SaleRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	sale, err := h.sales.RecordSale(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

// ListSales обрабатывает GET /sales?product_id=&seller_id=&from=&to=
func (h *SaleHandler) ListSales(c *gin.Context) {
	var filter repository.SaleFilter
	var ok bool
	if filter.ProductID, ok = queryUUID(c, "product_id"); !ok {
		return
	}
	if filter.SellerID, ok = queryUUID(c, "seller_id"); !ok {
		return
	}
	if filter.From, ok = queryTime(c, "from"); !ok {
		return
	}
	if filter.To, ok = queryTime(c, "to"); !ok {
		return
	}

	sales, err := h.sales.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.NewListResponse(sales))
}

// GetSale обрабатывает GET /sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}

// UpdateSale обрабатывает PUT /sales/:id (полная замена полей продажи)
func (h *SaleHandler) UpdateSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req entity.SaleRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	sale, err := h.sales.UpdateSale(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}

// DeleteSale обрабатывает DELETE /sales/:id
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.sales.DeleteSale(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Sale deleted"})
}

// SaleProfit обрабатывает GET /sales/:id/profit
func (h *SaleHandler) SaleProfit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	profit, err := h.sales.SaleProfit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profit)
}

// queryUUID - необязательный UUID из query; false, если ответ уже отправлен
func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondBadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

// queryTime принимает RFC3339 или дату YYYY-MM-DD (полночь UTC)
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := parseTime(raw)
	if err != nil {
		respondBadRequest(c, "Invalid "+name+": expected RFC3339 or YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, raw)
}
