package handler

import (
	"net/http"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ProductHandler обрабатывает HTTP запросы карточек товаров и корректировки остатка
type ProductHandler struct {
	inventory service.InventoryServiceInterface
	validator *validator.Validate
}

// NewProductHandler создает новый обработчик товаров
func NewProductHandler(inventory service.InventoryServiceInterface, v *validator.Validate) *ProductHandler {
	return &ProductHandler{inventory: inventory, validator: v}
}

// CreateProduct обрабатывает POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	product, err := h.inventory.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct обрабатывает GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.inventory.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListProducts обрабатывает GET /products?category_id=&search=&include_archived=true
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Search:          c.Query("search"),
		IncludeArchived: c.Query("include_archived") == "true",
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondBadRequest(c, "Invalid category_id")
			return
		}
		filter.CategoryID = &id
	}

	products, err := h.inventory.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.NewListResponse(products))
}

// ListVersions обрабатывает GET /products/:id/versions
func (h *ProductHandler) ListVersions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	versions, err := h.inventory.ListVersions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.NewListResponse(versions))
}

// UpdateProduct обрабатывает PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req entity.UpdateProductRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	product, err := h.inventory.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// ArchiveProduct обрабатывает DELETE /products/:id (мягкое удаление)
func (h *ProductHandler) ArchiveProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.inventory.ArchiveProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Product archived"})
}

// AdjustStock обрабатывает POST /products/adjust-stock
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	var req entity.AdjustStockRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.inventory.AdjustStock(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Availability обрабатывает GET /products/:id/availability
func (h *ProductHandler) Availability(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	availability, err := h.inventory.Availability(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, availability)
}

// parseID разбирает UUID из параметра пути; при ошибке сразу отвечает 400
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondBadRequest(c, "Invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}
