package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockbook/backend/internal/domain/shared"
)

// ProductRepository defines the persistence contract for products
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByIDForTenant finds a product by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	// FindByCode finds a product by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)
	// FindByIDs finds multiple products by their IDs within a tenant
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	// FindAllForTenant finds all products for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)
	// FindStockTracked finds all products with stock tracking enabled
	FindStockTracked(ctx context.Context, tenantID uuid.UUID) ([]Product, error)
	// Save persists a product (insert or update)
	Save(ctx context.Context, product *Product) error
	// Delete removes a product for a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// CountForTenant counts products for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
