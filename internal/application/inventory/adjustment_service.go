package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockbook/backend/internal/domain/inventory"
	"github.com/stockbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AdjustmentService writes manual stock corrections and product-to-product
// transfers. No sufficiency check is made on either side; the ledger is
// allowed to go negative.
type AdjustmentService struct {
	scope          TransactionScope
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(scope TransactionScope, logger *zap.Logger) *AdjustmentService {
	return &AdjustmentService{
		scope:  scope,
		logger: logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AdjustmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Adjust writes one ADJUSTMENT_IN or ADJUSTMENT_OUT row
func (s *AdjustmentService) Adjust(ctx context.Context, tenantID uuid.UUID, cmd AdjustStockCommand) error {
	var entryType inventory.EntryType
	switch cmd.Direction {
	case AdjustDirectionIn:
		entryType = inventory.EntryTypeAdjustmentIn
	case AdjustDirectionOut:
		entryType = inventory.EntryTypeAdjustmentOut
	default:
		return shared.NewDomainError("INVALID_DIRECTION", "Adjustment direction must be IN or OUT")
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.Products().FindByIDForTenant(ctx, tenantID, cmd.ProductID)
		if err != nil {
			return err
		}
		if !product.MaintainStock {
			return shared.ErrStockNotTracked
		}

		converted, err := resolveEnteredQuantity(product, cmd.Quantity, cmd.UnitMode, s.logger)
		if err != nil {
			return err
		}

		var entry *inventory.LedgerEntry
		if entryType.IsInflow() {
			entry, err = inventory.NewInflowEntry(tenantID, product.ID, entryType, cmd.Date, converted.BaseQty)
		} else {
			entry, err = inventory.NewOutflowEntry(tenantID, product.ID, entryType, cmd.Date, converted.BaseQty)
		}
		if err != nil {
			return err
		}
		entry.WithConversion(converted.EnteredUnit, converted.Rate).WithRemarks(cmd.Remarks)

		return repos.Ledger().Append(ctx, entry)
	})
	if err != nil {
		return err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, inventory.NewStockAdjustedEvent(tenantID, cmd.ProductID, entryType, cmd.Quantity))
	}
	return nil
}

// Transfer moves stock between two products: a TRANSFER_OUT on the source
// and a TRANSFER_IN on the target for the same base quantity, atomically.
// The quantity is entered against the source product's units.
func (s *AdjustmentService) Transfer(ctx context.Context, tenantID uuid.UUID, cmd TransferStockCommand) error {
	if cmd.FromProductID == cmd.ToProductID {
		return shared.NewDomainError("SELF_TRANSFER", "Source and target products must differ")
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		source, err := repos.Products().FindByIDForTenant(ctx, tenantID, cmd.FromProductID)
		if err != nil {
			return err
		}
		target, err := repos.Products().FindByIDForTenant(ctx, tenantID, cmd.ToProductID)
		if err != nil {
			return err
		}
		if !source.MaintainStock || !target.MaintainStock {
			return shared.ErrStockNotTracked
		}

		converted, err := resolveEnteredQuantity(source, cmd.Quantity, cmd.UnitMode, s.logger)
		if err != nil {
			return err
		}

		outEntry, err := inventory.NewOutflowEntry(tenantID, source.ID, inventory.EntryTypeTransferOut, cmd.Date, converted.BaseQty)
		if err != nil {
			return err
		}
		outEntry.WithConversion(converted.EnteredUnit, converted.Rate).WithRemarks(cmd.Remarks)

		inEntry, err := inventory.NewInflowEntry(tenantID, target.ID, inventory.EntryTypeTransferIn, cmd.Date, converted.BaseQty)
		if err != nil {
			return err
		}
		inEntry.WithConversion(converted.EnteredUnit, converted.Rate).WithRemarks(cmd.Remarks)

		return repos.Ledger().Append(ctx, outEntry, inEntry)
	})
	if err != nil {
		return err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, inventory.NewStockTransferredEvent(tenantID, cmd.FromProductID, cmd.ToProductID, cmd.Quantity))
	}
	return nil
}
