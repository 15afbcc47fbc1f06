package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockbook/backend/internal/domain/inventory"
	"go.uber.org/zap"
)

// AuditService finds and removes ledger rows whose production log no longer
// exists. Orphans can appear when a log was deleted outside the engine or by
// a historical bug; they are never cleaned up implicitly and must be
// repaired through this service.
type AuditService struct {
	scope      TransactionScope
	ledgerRepo inventory.LedgerRepository
	logger     *zap.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(scope TransactionScope, ledgerRepo inventory.LedgerRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		scope:      scope,
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// ListOrphans returns production ledger rows with no surviving log
func (s *AuditService) ListOrphans(ctx context.Context, tenantID uuid.UUID) ([]OrphanEntryResponse, error) {
	entries, err := s.ledgerRepo.FindOrphanedEntries(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	out := make([]OrphanEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, OrphanEntryResponse{
			ID:        e.ID,
			ProductID: e.ProductID,
			EntryDate: e.EntryDate,
			EntryType: e.EntryType,
			RelatedID: e.RelatedID,
		})
	}
	return out, nil
}

// Repair deletes all orphaned production rows and returns how many were removed
func (s *AuditService) Repair(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var removed int
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entries, err := repos.Ledger().FindOrphanedEntries(ctx, tenantID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		if err := repos.Ledger().DeleteByIDs(ctx, tenantID, ids); err != nil {
			return err
		}
		removed = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Info("orphaned production entries removed",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("removed", removed),
		)
	}
	return removed, nil
}
