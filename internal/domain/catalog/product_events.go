package catalog

import (
	"github.com/stockbook/backend/internal/domain/shared"
)

// Event type constants for the catalog domain
const (
	EventTypeProductCreated         = "catalog.product.created"
	EventTypeProductUpdated         = "catalog.product.updated"
	EventTypeProductUnitsConfigured = "catalog.product.units_configured"
)

// ProductCreatedEvent is emitted when a product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, "Product", product.ID, product.TenantID),
		Code:            product.Code,
		Name:            product.Name,
		Unit:            product.Unit,
	}
}

// ProductUpdatedEvent is emitted when a product's basic info changes
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, "Product", product.ID, product.TenantID),
		Name:            product.Name,
	}
}

// ProductUnitsConfiguredEvent is emitted when the unit configuration changes.
// Ledger rows written before the change keep their own conversion snapshot,
// so consumers only need to care about rows written after this event.
type ProductUnitsConfiguredEvent struct {
	shared.BaseDomainEvent
	HasDualUnits   bool   `json:"has_dual_units"`
	SecondaryUnit  string `json:"secondary_unit"`
	ConversionRate string `json:"conversion_rate"`
}

// NewProductUnitsConfiguredEvent creates a new ProductUnitsConfiguredEvent
func NewProductUnitsConfiguredEvent(product *Product) *ProductUnitsConfiguredEvent {
	return &ProductUnitsConfiguredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUnitsConfigured, "Product", product.ID, product.TenantID),
		HasDualUnits:    product.HasDualUnits,
		SecondaryUnit:   product.SecondaryUnit,
		ConversionRate:  product.ConversionRate.String(),
	}
}
