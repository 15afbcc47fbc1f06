package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/inventory"
)

// AdjustDirection selects the sign of a manual stock adjustment
type AdjustDirection string

const (
	// AdjustDirectionIn adds stock
	AdjustDirectionIn AdjustDirection = "IN"
	// AdjustDirectionOut removes stock
	AdjustDirectionOut AdjustDirection = "OUT"
)

// RecordOpeningCommand records an opening balance row
type RecordOpeningCommand struct {
	ProductID uuid.UUID          `json:"product_id" binding:"required"`
	Date      time.Time          `json:"date" binding:"required"`
	Quantity  decimal.Decimal    `json:"quantity" binding:"required"`
	UnitMode  inventory.UnitMode `json:"unit_mode" binding:"omitempty,oneof=PRIMARY SECONDARY"`
	Remarks   string             `json:"remarks"`
}

// RecordPurchaseCommand records stock received against a purchase
type RecordPurchaseCommand struct {
	PurchaseID uuid.UUID          `json:"purchase_id" binding:"required"`
	ProductID  uuid.UUID          `json:"product_id" binding:"required"`
	Date       time.Time          `json:"date" binding:"required"`
	Quantity   decimal.Decimal    `json:"quantity" binding:"required"`
	UnitMode   inventory.UnitMode `json:"unit_mode" binding:"omitempty,oneof=PRIMARY SECONDARY"`
	Remarks    string             `json:"remarks"`
}

// RecordSaleCommand records stock issued against a sale and runs the
// auto-production engine
type RecordSaleCommand struct {
	SaleID    uuid.UUID          `json:"sale_id" binding:"required"`
	ProductID uuid.UUID          `json:"product_id" binding:"required"`
	Date      time.Time          `json:"date" binding:"required"`
	Quantity  decimal.Decimal    `json:"quantity" binding:"required"`
	UnitMode  inventory.UnitMode `json:"unit_mode" binding:"omitempty,oneof=PRIMARY SECONDARY"`
	Remarks   string             `json:"remarks"`
}

// RepairSaleCommand re-runs the auto-production engine for a sale whose
// production footprint is missing
type RepairSaleCommand struct {
	SaleID    uuid.UUID          `json:"sale_id" binding:"required"`
	ProductID uuid.UUID          `json:"product_id" binding:"required"`
	Date      time.Time          `json:"date" binding:"required"`
	UnitMode  inventory.UnitMode `json:"unit_mode" binding:"omitempty,oneof=PRIMARY SECONDARY"`
}

// RecordProductionCommand records an operator-entered production run.
// Quantity is the output quantity in the product's primary unit.
type RecordProductionCommand struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Date      time.Time       `json:"date" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Remarks   string          `json:"remarks"`
}

// UpsertFormulaLineCommand creates or replaces one recipe line
type UpsertFormulaLineCommand struct {
	ProductID    uuid.UUID          `json:"product_id" binding:"required"`
	IngredientID uuid.UUID          `json:"ingredient_id" binding:"required"`
	Quantity     decimal.Decimal    `json:"quantity" binding:"required"`
	UnitMode     inventory.UnitMode `json:"unit_mode" binding:"omitempty,oneof=PRIMARY SECONDARY"`
}

// AdjustStockCommand writes one manual adjustment row
type AdjustStockCommand struct {
	ProductID uuid.UUID          `json:"product_id" binding:"required"`
	Direction AdjustDirection    `json:"direction" binding:"required,oneof=IN OUT"`
	Date      time.Time          `json:"date" binding:"required"`
	Quantity  decimal.Decimal    `json:"quantity" binding:"required"`
	UnitMode  inventory.UnitMode `json:"unit_mode" binding:"omitempty,oneof=PRIMARY SECONDARY"`
	Remarks   string             `json:"remarks"`
}

// TransferStockCommand moves stock between two products. The quantity is
// entered against the source product's units; the same base quantity is
// written to both sides.
type TransferStockCommand struct {
	FromProductID uuid.UUID          `json:"from_product_id" binding:"required"`
	ToProductID   uuid.UUID          `json:"to_product_id" binding:"required"`
	Date          time.Time          `json:"date" binding:"required"`
	Quantity      decimal.Decimal    `json:"quantity" binding:"required"`
	UnitMode      inventory.UnitMode `json:"unit_mode" binding:"omitempty,oneof=PRIMARY SECONDARY"`
	Remarks       string             `json:"remarks"`
}

// BalanceResponse is a product's net position at a cutoff
type BalanceResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	AsOf      *time.Time      `json:"as_of,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	Unit      string          `json:"unit"`
}

// LedgerRowResponse is one ledger entry annotated with the running balance
// after applying it
type LedgerRowResponse struct {
	ID             uuid.UUID           `json:"id"`
	ProductID      uuid.UUID           `json:"product_id"`
	EntryDate      time.Time           `json:"entry_date"`
	EntryType      inventory.EntryType `json:"entry_type"`
	QuantityIn     decimal.Decimal     `json:"quantity_in"`
	QuantityOut    decimal.Decimal     `json:"quantity_out"`
	RunningBalance decimal.Decimal     `json:"running_balance"`
	RelatedID      *uuid.UUID          `json:"related_id,omitempty"`
	TransUnit      string              `json:"trans_unit,omitempty"`
	ConversionRate decimal.Decimal     `json:"conversion_rate"`
	Remarks        string              `json:"remarks,omitempty"`
}

// LedgerResponse is a statement for a date range, scoped to one product or
// to the whole tenant when ProductID is nil
type LedgerResponse struct {
	ProductID      *uuid.UUID          `json:"product_id,omitempty"`
	OpeningBalance decimal.Decimal     `json:"opening_balance"`
	ClosingBalance decimal.Decimal     `json:"closing_balance"`
	Rows           []LedgerRowResponse `json:"rows"`
}

// StockSummaryResponse is one product's aggregated position
type StockSummaryResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	TotalIn     decimal.Decimal `json:"total_in"`
	TotalOut    decimal.Decimal `json:"total_out"`
	Balance     decimal.Decimal `json:"balance"`
}

// FormulaLineResponse is one recipe line in API responses
type FormulaLineResponse struct {
	ID           uuid.UUID          `json:"id"`
	ProductID    uuid.UUID          `json:"product_id"`
	IngredientID uuid.UUID          `json:"ingredient_id"`
	Quantity     decimal.Decimal    `json:"quantity"`
	UnitMode     inventory.UnitMode `json:"unit_mode"`
}

// ProductionItemResponse is one ingredient draw in API responses
type ProductionItemResponse struct {
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	EnteredQty   decimal.Decimal `json:"entered_qty"`
	EnteredUnit  string          `json:"entered_unit,omitempty"`
}

// ProductionLogResponse is a production run in API responses
type ProductionLogResponse struct {
	ID        uuid.UUID                  `json:"id"`
	ProductID uuid.UUID                  `json:"product_id"`
	Quantity  decimal.Decimal            `json:"quantity"`
	LogDate   time.Time                  `json:"log_date"`
	Source    inventory.ProductionSource `json:"source"`
	SaleID    *uuid.UUID                 `json:"sale_id,omitempty"`
	Remarks   string                     `json:"remarks,omitempty"`
	Items     []ProductionItemResponse   `json:"items"`
}

// OrphanEntryResponse is a ledger row whose production log no longer exists
type OrphanEntryResponse struct {
	ID        uuid.UUID           `json:"id"`
	ProductID uuid.UUID           `json:"product_id"`
	EntryDate time.Time           `json:"entry_date"`
	EntryType inventory.EntryType `json:"entry_type"`
	RelatedID *uuid.UUID          `json:"related_id,omitempty"`
}

func toLedgerRowResponse(e inventory.LedgerEntry, running decimal.Decimal) LedgerRowResponse {
	return LedgerRowResponse{
		ID:             e.ID,
		ProductID:      e.ProductID,
		EntryDate:      e.EntryDate,
		EntryType:      e.EntryType,
		QuantityIn:     e.QuantityIn,
		QuantityOut:    e.QuantityOut,
		RunningBalance: running,
		RelatedID:      e.RelatedID,
		TransUnit:      e.TransUnit,
		ConversionRate: e.TransConversionRate,
		Remarks:        e.Remarks,
	}
}

func toFormulaLineResponse(l inventory.FormulaLine) FormulaLineResponse {
	return FormulaLineResponse{
		ID:           l.ID,
		ProductID:    l.ProductID,
		IngredientID: l.IngredientID,
		Quantity:     l.Quantity,
		UnitMode:     l.UnitMode,
	}
}

func toProductionLogResponse(log inventory.ProductionLog) ProductionLogResponse {
	items := make([]ProductionItemResponse, 0, len(log.Items))
	for _, item := range log.Items {
		items = append(items, ProductionItemResponse{
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
			EnteredQty:   item.EnteredQty,
			EnteredUnit:  item.EnteredUnit,
		})
	}
	return ProductionLogResponse{
		ID:        log.ID,
		ProductID: log.ProductID,
		Quantity:  log.Quantity,
		LogDate:   log.LogDate,
		Source:    log.Source,
		SaleID:    log.SaleID,
		Remarks:   log.Remarks,
		Items:     items,
	}
}
