package handler

import (
	inventoryapp "github.com/stockbook/backend/internal/application/inventory"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TradeHandler handles the stock side of sales and purchases
type TradeHandler struct {
	BaseHandler
	ledgerService     *inventoryapp.LedgerService
	productionService *inventoryapp.ProductionService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(ledgerService *inventoryapp.LedgerService, productionService *inventoryapp.ProductionService) *TradeHandler {
	return &TradeHandler{
		ledgerService:     ledgerService,
		productionService: productionService,
	}
}

// RecordOpening handles POST /inventory/opening-balances
func (h *TradeHandler) RecordOpening(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var cmd inventoryapp.RecordOpeningCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.ledgerService.RecordOpening(c.Request.Context(), tenantID, cmd); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, gin.H{"product_id": cmd.ProductID})
}

// RecordPurchase handles POST /inventory/purchases
func (h *TradeHandler) RecordPurchase(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var cmd inventoryapp.RecordPurchaseCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.ledgerService.RecordPurchase(c.Request.Context(), tenantID, cmd); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, gin.H{"purchase_id": cmd.PurchaseID})
}

// DeletePurchase handles DELETE /inventory/purchases/:id
func (h *TradeHandler) DeletePurchase(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID format")
		return
	}

	if err := h.ledgerService.DeletePurchase(c.Request.Context(), tenantID, purchaseID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RecordSale handles POST /inventory/sales
func (h *TradeHandler) RecordSale(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var cmd inventoryapp.RecordSaleCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.productionService.RecordSale(c.Request.Context(), tenantID, cmd); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, gin.H{"sale_id": cmd.SaleID})
}

// RepairSale handles POST /inventory/sales/repair
func (h *TradeHandler) RepairSale(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var cmd inventoryapp.RepairSaleCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.productionService.RepairSale(c.Request.Context(), tenantID, cmd); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"sale_id": cmd.SaleID})
}

// DeleteSale handles DELETE /inventory/sales/:id
func (h *TradeHandler) DeleteSale(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	if err := h.productionService.DeleteSale(c.Request.Context(), tenantID, saleID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
