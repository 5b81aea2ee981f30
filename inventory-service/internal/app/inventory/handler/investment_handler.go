package handler

import (
	"net/http"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// InvestmentHandler - журнал пополнений склада
type InvestmentHandler struct {
	investments service.InvestmentServiceInterface
	validator   *validator.Validate
}

func NewInvestmentHandler(investments service.InvestmentServiceInterface, v *validator.Validate) *InvestmentHandler {
	return &InvestmentHandler{investments: investments, validator: v}
}

// RecordInvestment обрабатывает POST /investments
func (h *InvestmentHandler) RecordInvestment(c *gin.Context) {
	var req entity.InvestmentRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.investments.RecordInvestment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListInvestments обрабатывает GET /investments?product_id=&provider_id=&from=&to=
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	var filter repository.InvestmentFilter
	var ok bool
	if filter.ProductID, ok = queryUUID(c, "product_id"); !ok {
		return
	}
	if filter.ProviderID, ok = queryUUID(c, "provider_id"); !ok {
		return
	}
	if filter.From, ok = queryTime(c, "from"); !ok {
		return
	}
	if filter.To, ok = queryTime(c, "to"); !ok {
		return
	}

	investments, err := h.investments.ListInvestments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.NewListResponse(investments))
}
