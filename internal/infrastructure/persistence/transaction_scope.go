package persistence

import (
	"context"

	appinv "github.com/stockbook/backend/internal/application/inventory"
	"github.com/stockbook/backend/internal/domain/catalog"
	"github.com/stockbook/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Ledger returns the stock ledger repository scoped to the current transaction
func (r *gormTransactionalRepositories) Ledger() inventory.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

// Formulas returns the recipe repository scoped to the current transaction
func (r *gormTransactionalRepositories) Formulas() inventory.FormulaRepository {
	return NewGormFormulaRepository(r.tx)
}

// ProductionLogs returns the production log repository scoped to the current transaction
func (r *gormTransactionalRepositories) ProductionLogs() inventory.ProductionLogRepository {
	return NewGormProductionLogRepository(r.tx)
}

// Products returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
