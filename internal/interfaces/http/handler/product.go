package handler

import (
	catalogapp "github.com/stockbook/backend/internal/application/catalog"
	"github.com/stockbook/backend/internal/domain/shared"
	"github.com/stockbook/backend/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductHandler handles product API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create handles POST /catalog/products
func (h *ProductHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var cmd catalogapp.CreateProductCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID handles GET /catalog/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// List handles GET /catalog/products
func (h *ProductHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
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
		Search:   req.Search,
	}

	page, err := h.productService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /catalog/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var cmd catalogapp.UpdateProductCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), tenantID, productID, cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// ConfigureUnits handles PUT /catalog/products/:id/units
func (h *ProductHandler) ConfigureUnits(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var cmd catalogapp.ConfigureUnitsCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.ConfigureUnits(c.Request.Context(), tenantID, productID, cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}
