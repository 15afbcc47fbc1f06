package handler

import (
	"time"

	inventoryapp "github.com/stockbook/backend/internal/application/inventory"
	"github.com/stockbook/backend/internal/domain/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockHandler handles stock query, adjustment and transfer API endpoints
type StockHandler struct {
	BaseHandler
	ledgerService     *inventoryapp.LedgerService
	adjustmentService *inventoryapp.AdjustmentService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledgerService *inventoryapp.LedgerService, adjustmentService *inventoryapp.AdjustmentService) *StockHandler {
	return &StockHandler{
		ledgerService:     ledgerService,
		adjustmentService: adjustmentService,
	}
}

// Balance handles GET /inventory/stock/:product_id/balance
func (h *StockHandler) Balance(c *gin.Context) {
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

	var asOf *time.Time
	if raw := c.Query("as_of"); raw != "" {
		t, err := parseDateTime(raw)
		if err != nil {
			h.BadRequest(c, "Invalid as_of date format")
			return
		}
		asOf = &t
	}

	balance, err := h.ledgerService.Balance(c.Request.Context(), tenantID, productID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// Ledger handles GET /inventory/stock/:product_id/ledger and, without a
// product in the path, GET /inventory/stock/ledger for the whole tenant
func (h *StockHandler) Ledger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var productID *uuid.UUID
	if raw := c.Param("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		productID = &id
	}

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		from, err = parseDateTime(raw)
		if err != nil {
			h.BadRequest(c, "Invalid from date format")
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = parseDateTime(raw)
		if err != nil {
			h.BadRequest(c, "Invalid to date format")
			return
		}
	}

	statement, err := h.ledgerService.Ledger(c.Request.Context(), tenantID, productID, from, to, shared.DefaultFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// Summary handles GET /inventory/stock/summary
func (h *StockHandler) Summary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	summary, err := h.ledgerService.Summary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// Adjust handles POST /inventory/adjustments
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var cmd inventoryapp.AdjustStockCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.adjustmentService.Adjust(c.Request.Context(), tenantID, cmd); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, gin.H{"product_id": cmd.ProductID})
}

// Transfer handles POST /inventory/transfers
func (h *StockHandler) Transfer(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var cmd inventoryapp.TransferStockCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.adjustmentService.Transfer(c.Request.Context(), tenantID, cmd); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, gin.H{
		"from_product_id": cmd.FromProductID,
		"to_product_id":   cmd.ToProductID,
	})
}
