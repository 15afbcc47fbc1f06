package handler

import (
	inventoryapp "github.com/stockbook/backend/internal/application/inventory"

	"github.com/gin-gonic/gin"
)

// AuditHandler handles ledger audit and repair API endpoints
type AuditHandler struct {
	BaseHandler
	auditService *inventoryapp.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *inventoryapp.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListOrphans handles GET /inventory/audit/orphans
func (h *AuditHandler) ListOrphans(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orphans, err := h.auditService.ListOrphans(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, orphans)
}

// Repair handles POST /inventory/audit/repair
func (h *AuditHandler) Repair(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	removed, err := h.auditService.Repair(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"entries_removed": removed})
}
