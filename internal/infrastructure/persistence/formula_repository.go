package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockbook/backend/internal/domain/inventory"
	"github.com/stockbook/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormFormulaRepository implements FormulaRepository using GORM
type GormFormulaRepository struct {
	db *gorm.DB
}

// NewGormFormulaRepository creates a new GormFormulaRepository
func NewGormFormulaRepository(db *gorm.DB) *GormFormulaRepository {
	return &GormFormulaRepository{db: db}
}

// FindByProduct returns a product's recipe lines
func (r *GormFormulaRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.FormulaLine, error) {
	var lines []inventory.FormulaLine
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// FindLine returns one recipe line by output and ingredient, or nil when
// the pair has no line
func (r *GormFormulaRepository) FindLine(ctx context.Context, tenantID, productID, ingredientID uuid.UUID) (*inventory.FormulaLine, error) {
	var line inventory.FormulaLine
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND ingredient_id = ?", tenantID, productID, ingredientID).
		First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

// FindProductsUsing returns IDs of products whose recipe includes the ingredient
func (r *GormFormulaRepository) FindProductsUsing(ctx context.Context, tenantID, ingredientID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&inventory.FormulaLine{}).
		Where("tenant_id = ? AND ingredient_id = ?", tenantID, ingredientID).
		Distinct().
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// HasFormula reports whether the product has at least one recipe line
func (r *GormFormulaRepository) HasFormula(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.FormulaLine{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a recipe line
func (r *GormFormulaRepository) Save(ctx context.Context, line *inventory.FormulaLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// Delete removes a recipe line
func (r *GormFormulaRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&inventory.FormulaLine{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByProduct removes all recipe lines of an output product
func (r *GormFormulaRepository) DeleteByProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Delete(&inventory.FormulaLine{}).Error
}

var _ inventory.FormulaRepository = (*GormFormulaRepository)(nil)
