package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stockbook/backend/internal/domain/inventory"
	"github.com/stockbook/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductionLogRepository implements ProductionLogRepository using GORM
type GormProductionLogRepository struct {
	db *gorm.DB
}

// NewGormProductionLogRepository creates a new GormProductionLogRepository
func NewGormProductionLogRepository(db *gorm.DB) *GormProductionLogRepository {
	return &GormProductionLogRepository{db: db}
}

// FindByID finds a production log with its items
func (r *GormProductionLogRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.ProductionLog, error) {
	var log inventory.ProductionLog
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindByProduct returns a product's production logs with items
func (r *GormProductionLogRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]inventory.ProductionLog, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		orderDir = "DESC"
	}
	query = query.Order("log_date " + orderDir).Order("created_at " + orderDir)

	var logs []inventory.ProductionLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindManualByProduct returns only operator-entered logs for a product
func (r *GormProductionLogRepository) FindManualByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.ProductionLog, error) {
	var logs []inventory.ProductionLog
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND product_id = ? AND source = ?", tenantID, productID, inventory.ProductionSourceManual).
		Order("log_date ASC").Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindBySale returns auto-production logs tied to a sale
func (r *GormProductionLogRepository) FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]inventory.ProductionLog, error) {
	var logs []inventory.ProductionLog
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND sale_id = ?", tenantID, saleID).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Save creates or updates a log together with its items
func (r *GormProductionLogRepository) Save(ctx context.Context, log *inventory.ProductionLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

// ReplaceItems swaps a log's ingredient draws for a fresh set
func (r *GormProductionLogRepository) ReplaceItems(ctx context.Context, log *inventory.ProductionLog, items []inventory.ProductionItem) error {
	if err := r.db.WithContext(ctx).
		Where("production_log_id = ?", log.ID).
		Delete(&inventory.ProductionItem{}).Error; err != nil {
		return err
	}
	if len(items) > 0 {
		if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
			return err
		}
	}
	log.Items = items
	return nil
}

// Delete removes a log and its items
func (r *GormProductionLogRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("production_log_id = ?", id).
		Delete(&inventory.ProductionItem{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&inventory.ProductionLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ inventory.ProductionLogRepository = (*GormProductionLogRepository)(nil)
