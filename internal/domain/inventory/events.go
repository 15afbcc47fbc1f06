package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/shared"
)

// Event type constants for the inventory domain
const (
	EventTypeProductionRecorded      = "inventory.production.recorded"
	EventTypeAutoProductionTriggered = "inventory.production.auto_triggered"
	EventTypeFormulaRecalculated     = "inventory.formula.recalculated"
	EventTypeStockAdjusted           = "inventory.stock.adjusted"
	EventTypeStockTransferred        = "inventory.stock.transferred"
)

// ProductionRecordedEvent is emitted when a production log is created
type ProductionRecordedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  string           `json:"quantity"`
	Source    ProductionSource `json:"source"`
}

// NewProductionRecordedEvent creates a new ProductionRecordedEvent
func NewProductionRecordedEvent(logID, tenantID, productID uuid.UUID, qty decimal.Decimal, source ProductionSource) *ProductionRecordedEvent {
	return &ProductionRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductionRecorded, "ProductionLog", logID, tenantID),
		ProductID:       productID,
		Quantity:        qty.String(),
		Source:          source,
	}
}

// AutoProductionTriggeredEvent is emitted when a sale deficit causes a
// production run to be generated
type AutoProductionTriggeredEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	SaleID      uuid.UUID `json:"sale_id"`
	Deficit     string    `json:"deficit"`
	ProducedQty string    `json:"produced_qty"`
}

// NewAutoProductionTriggeredEvent creates a new AutoProductionTriggeredEvent
func NewAutoProductionTriggeredEvent(logID, tenantID, productID, saleID uuid.UUID, deficit, producedQty decimal.Decimal) *AutoProductionTriggeredEvent {
	return &AutoProductionTriggeredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAutoProductionTriggered, "ProductionLog", logID, tenantID),
		ProductID:       productID,
		SaleID:          saleID,
		Deficit:         deficit.String(),
		ProducedQty:     producedQty.String(),
	}
}

// FormulaRecalculatedEvent is emitted after a recipe edit rewrites the
// ingredient draws of the product's manual production history
type FormulaRecalculatedEvent struct {
	shared.BaseDomainEvent
	LogsRewritten int `json:"logs_rewritten"`
}

// NewFormulaRecalculatedEvent creates a new FormulaRecalculatedEvent
func NewFormulaRecalculatedEvent(tenantID, productID uuid.UUID, logsRewritten int) *FormulaRecalculatedEvent {
	return &FormulaRecalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFormulaRecalculated, "Product", productID, tenantID),
		LogsRewritten:   logsRewritten,
	}
}

// StockAdjustedEvent is emitted when a manual adjustment entry is written
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	EntryType EntryType `json:"entry_type"`
	Quantity  string    `json:"quantity"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(tenantID, productID uuid.UUID, entryType EntryType, qty decimal.Decimal) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, "Product", productID, tenantID),
		EntryType:       entryType,
		Quantity:        qty.String(),
	}
}

// StockTransferredEvent is emitted when stock moves between two products
type StockTransferredEvent struct {
	shared.BaseDomainEvent
	FromProductID uuid.UUID `json:"from_product_id"`
	ToProductID   uuid.UUID `json:"to_product_id"`
	Quantity      string    `json:"quantity"`
}

// NewStockTransferredEvent creates a new StockTransferredEvent
func NewStockTransferredEvent(tenantID, fromProductID, toProductID uuid.UUID, qty decimal.Decimal) *StockTransferredEvent {
	return &StockTransferredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTransferred, "Product", fromProductID, tenantID),
		FromProductID:   fromProductID,
		ToProductID:     toProductID,
		Quantity:        qty.String(),
	}
}
