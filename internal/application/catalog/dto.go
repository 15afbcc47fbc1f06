package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/catalog"
)

// CreateProductCommand creates a product
type CreateProductCommand struct {
	Code          string `json:"code" binding:"required,max=50"`
	Name          string `json:"name" binding:"required,max=200"`
	Unit          string `json:"unit" binding:"required,max=20"`
	MaintainStock *bool  `json:"maintain_stock"`
}

// UpdateProductCommand updates a product's basic info
type UpdateProductCommand struct {
	Name          string `json:"name" binding:"required,max=200"`
	MaintainStock *bool  `json:"maintain_stock"`
}

// ConfigureUnitsCommand sets or clears a product's dual-unit configuration.
// With HasDualUnits true, SecondaryUnit and ConversionRate are required and
// the rate must be positive; violations are rejected at save time.
type ConfigureUnitsCommand struct {
	HasDualUnits   bool            `json:"has_dual_units"`
	SecondaryUnit  string          `json:"secondary_unit" binding:"omitempty,max=20"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	MaintainStock  bool            `json:"maintain_stock"`
	HasDualUnits   bool            `json:"has_dual_units"`
	SecondaryUnit  string          `json:"secondary_unit,omitempty"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	FormulaBaseQty decimal.Decimal `json:"formula_base_qty"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toProductResponse(p *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name,
		Unit:           p.Unit,
		MaintainStock:  p.MaintainStock,
		HasDualUnits:   p.HasDualUnits,
		SecondaryUnit:  p.SecondaryUnit,
		ConversionRate: p.ConversionRate,
		FormulaBaseQty: p.FormulaBaseQty,
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
