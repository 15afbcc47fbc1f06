package inventory

import (
	"context"

	"github.com/stockbook/backend/internal/domain/catalog"
	"github.com/stockbook/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the stock repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Every multi-row ledger mutation in this package runs
// through a scope, so a partially written sale or production run cannot be
// observed.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the stock repositories within
// a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// Ledger returns the stock ledger repository scoped to the current transaction
	Ledger() inventory.LedgerRepository
	// Formulas returns the recipe repository scoped to the current transaction
	Formulas() inventory.FormulaRepository
	// ProductionLogs returns the production log repository scoped to the current transaction
	ProductionLogs() inventory.ProductionLogRepository
	// Products returns the product repository scoped to the current transaction
	Products() catalog.ProductRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing against repositories that manage their
// own connection.
type NoOpTransactionScope struct {
	ledgerRepo     inventory.LedgerRepository
	formulaRepo    inventory.FormulaRepository
	productionRepo inventory.ProductionLogRepository
	productRepo    catalog.ProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	ledgerRepo inventory.LedgerRepository,
	formulaRepo inventory.FormulaRepository,
	productionRepo inventory.ProductionLogRepository,
	productRepo catalog.ProductRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ledgerRepo:     ledgerRepo,
		formulaRepo:    formulaRepo,
		productionRepo: productionRepo,
		productRepo:    productRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Ledger returns the stock ledger repository.
func (s *NoOpTransactionScope) Ledger() inventory.LedgerRepository {
	return s.ledgerRepo
}

// Formulas returns the recipe repository.
func (s *NoOpTransactionScope) Formulas() inventory.FormulaRepository {
	return s.formulaRepo
}

// ProductionLogs returns the production log repository.
func (s *NoOpTransactionScope) ProductionLogs() inventory.ProductionLogRepository {
	return s.productionRepo
}

// Products returns the product repository.
func (s *NoOpTransactionScope) Products() catalog.ProductRepository {
	return s.productRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
