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

// AllocationHandler - личные доли общего инвентаря
type AllocationHandler struct {
	allocations service.AllocationServiceInterface
	validator   *validator.Validate
}

func NewAllocationHandler(allocations service.AllocationServiceInterface, v *validator.Validate) *AllocationHandler {
	return &AllocationHandler{allocations: allocations, validator: v}
}

// Allocate обрабатывает POST /shared-inventory; пакет создается целиком или не создается
func (h *AllocationHandler) Allocate(c *gin.Context) {
	var req entity.AllocateRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	items, err := h.allocations.Allocate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.NewListResponse(items))
}

// ListAllocations обрабатывает GET /shared-inventory?product_id=&mine=true
func (h *AllocationHandler) ListAllocations(c *gin.Context) {
	var filter repository.SharedItemFilter
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondBadRequest(c, "Invalid product_id")
			return
		}
		filter.ProductID = &id
	}
	if c.Query("mine") == "true" {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		filter.UserID = &userID
	}

	items, err := h.allocations.ListAllocations(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.NewListResponse(items))
}

// GetAllocation обрабатывает GET /shared-inventory/:id
func (h *AllocationHandler) GetAllocation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.allocations.GetAllocation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateAllocation обрабатывает PUT /shared-inventory/:id
func (h *AllocationHandler) UpdateAllocation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req entity.UpdateAllocationRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	item, err := h.allocations.UpdateAllocation(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteAllocation обрабатывает DELETE /shared-inventory/:id
func (h *AllocationHandler) DeleteAllocation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.allocations.DeleteAllocation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Shared inventory item deleted"})
}
