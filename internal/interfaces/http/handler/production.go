package handler

import (
	inventoryapp "github.com/stockbook/backend/internal/application/inventory"
	"github.com/stockbook/backend/internal/domain/shared"
	"github.com/stockbook/backend/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductionHandler handles manual production log API endpoints
type ProductionHandler struct {
	BaseHandler
	productionService    *inventoryapp.ProductionService
	recalculationService *inventoryapp.RecalculationService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(productionService *inventoryapp.ProductionService, recalculationService *inventoryapp.RecalculationService) *ProductionHandler {
	return &ProductionHandler{
		productionService:    productionService,
		recalculationService: recalculationService,
	}
}

// Record handles POST /inventory/production-logs
func (h *ProductionHandler) Record(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var cmd inventoryapp.RecordProductionCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BindError(c, err)
		return
	}

	log, err := h.productionService.RecordManualProduction(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, log)
}

// List handles GET /inventory/products/:product_id/production-logs
func (h *ProductionHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Normalize()

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}

	logs, err := h.productionService.GetProductionLogs(c.Request.Context(), tenantID, productID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, logs)
}

// Delete handles DELETE /inventory/production-logs/:id
func (h *ProductionHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	logID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid production log ID format")
		return
	}

	if err := h.productionService.DeleteManualProduction(c.Request.Context(), tenantID, logID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Recalculate handles POST /inventory/products/:product_id/recalculate
func (h *ProductionHandler) Recalculate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	count, err := h.recalculationService.Recalculate(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"logs_rewritten": count})
}
