package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockbook/backend/internal/domain/catalog"
	"github.com/stockbook/backend/internal/domain/shared"
)

// ProductService handles product master operations. Unit configuration is
// validated eagerly: a dual-unit product with a missing secondary unit or a
// non-positive rate is rejected here rather than defaulted at conversion
// time.
type ProductService struct {
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, cmd CreateProductCommand) (*ProductResponse, error) {
	existing, err := s.productRepo.FindByCode(ctx, tenantID, cmd.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "A product with this code already exists")
	}

	product, err := catalog.NewProduct(tenantID, cmd.Code, cmd.Name, cmd.Unit)
	if err != nil {
		return nil, err
	}
	if cmd.MaintainStock != nil {
		product.SetMaintainStock(*cmd.MaintainStock)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, product)
	return toProductResponse(product), nil
}

// Update updates a product's basic info
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, cmd UpdateProductCommand) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Update(cmd.Name); err != nil {
		return nil, err
	}
	if cmd.MaintainStock != nil {
		product.SetMaintainStock(*cmd.MaintainStock)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, product)
	return toProductResponse(product), nil
}

// ConfigureUnits sets or clears the dual-unit configuration
func (s *ProductService) ConfigureUnits(ctx context.Context, tenantID, productID uuid.UUID, cmd ConfigureUnitsCommand) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if cmd.HasDualUnits {
		if err := product.ConfigureDualUnits(cmd.SecondaryUnit, cmd.ConversionRate); err != nil {
			return nil, err
		}
	} else {
		product.ClearDualUnits()
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, product)
	return toProductResponse(product), nil
}

// GetByID retrieves one product
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *toProductResponse(&products[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *ProductService) publishDomainEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	product.ClearDomainEvents()
}
