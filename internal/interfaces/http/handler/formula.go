package handler

import (
	inventoryapp "github.com/stockbook/backend/internal/application/inventory"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FormulaHandler handles formula registry API endpoints
type FormulaHandler struct {
	BaseHandler
	formulaService *inventoryapp.FormulaService
}

// NewFormulaHandler creates a new FormulaHandler
func NewFormulaHandler(formulaService *inventoryapp.FormulaService) *FormulaHandler {
	return &FormulaHandler{formulaService: formulaService}
}

// SetBatchSizeRequest sets the minimum production batch size for a product
type SetBatchSizeRequest struct {
	BatchSize decimal.Decimal `json:"batch_size" binding:"required"`
}

// List handles GET /inventory/formulas/:product_id
func (h *FormulaHandler) List(c *gin.Context) {
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

	lines, err := h.formulaService.ListIngredients(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lines)
}

// Upsert handles PUT /inventory/formulas
func (h *FormulaHandler) Upsert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var cmd inventoryapp.UpsertFormulaLineCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BindError(c, err)
		return
	}

	line, err := h.formulaService.UpsertLine(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, line)
}

// Delete handles DELETE /inventory/formulas/:product_id/:ingredient_id
func (h *FormulaHandler) Delete(c *gin.Context) {
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

	ingredientID, err := uuid.Parse(c.Param("ingredient_id"))
	if err != nil {
		h.BadRequest(c, "Invalid ingredient ID format")
		return
	}

	if err := h.formulaService.DeleteLine(c.Request.Context(), tenantID, productID, ingredientID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// SetBatchSize handles PUT /inventory/formulas/:product_id/batch-size
func (h *FormulaHandler) SetBatchSize(c *gin.Context) {
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

	var req SetBatchSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.formulaService.SetBatchSize(c.Request.Context(), tenantID, productID, req.BatchSize); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
