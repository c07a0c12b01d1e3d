package product

import (
	"log/slog"

	productDatamodel "github.com/designxcel/storefront/internal/core/datamodel/product"
)

type RepositoryAPI interface {
	GetAll() ([]*productDatamodel.Product, error)
	GetActive() ([]*productDatamodel.Product, error)
	GetByID(id int64) (*productDatamodel.Product, error)
	GetBySlug(slug string) (*productDatamodel.Product, error)
	Create(product *productDatamodel.Product) error
	Update(product *productDatamodel.Product) error
	Delete(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetCatalog returns the storefront catalog: active products only.
func (s *Service) GetCatalog() ([]ProductResponse, error) {
	dataProducts, err := s.repo.GetActive()
	if err != nil {
		s.logger.Error("failed to get products from repository", "error", err)
		return nil, err
	}

	responses := make([]ProductResponse, 0, len(dataProducts))
	for _, dataProduct := range dataProducts {
		responses = append(responses, FromDataModel(dataProduct).ToResponse())
	}

	return responses, nil
}

// GetAllProducts returns every product including inactive ones. Only reachable
// through the permission-gated admin routes.
func (s *Service) GetAllProducts() ([]*Product, error) {
	dataProducts, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get products from repository", "error", err)
		return nil, err
	}

	products := make([]*Product, 0, len(dataProducts))
	for _, dataProduct := range dataProducts {
		products = append(products, FromDataModel(dataProduct))
	}
	return products, nil
}

func (s *Service) GetBySlug(slug string) (*ProductResponse, error) {
	dataProduct, err := s.repo.GetBySlug(slug)
	if err != nil {
		s.logger.Error("failed to get product by slug", "slug", slug, "error", err)
		return nil, err
	}
	if dataProduct == nil {
		return nil, nil
	}

	domainProduct := FromDataModel(dataProduct)
	if !domainProduct.IsPublished() {
		return nil, nil
	}
	response := domainProduct.ToResponse()
	return &response, nil
}

func (s *Service) GetByID(id int64) (*Product, error) {
	dataProduct, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get product by id", "product_id", id, "error", err)
		return nil, err
	}
	if dataProduct == nil {
		return nil, nil
	}
	return FromDataModel(dataProduct), nil
}

func (s *Service) Create(dto CreateProductDTO) (*Product, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	domainProduct := NewProduct(dto.Name, dto.Slug, dto.Description, dto.PriceCents, dto.Currency, dto.StockCount)
	dataProduct := ToDataModel(domainProduct)
	if err := s.repo.Create(dataProduct); err != nil {
		s.logger.Error("failed to create product", "slug", dto.Slug, "error", err)
		return nil, err
	}

	s.logger.Info("product created", "product_id", dataProduct.ID, "slug", dataProduct.Slug)
	return FromDataModel(dataProduct), nil
}

func (s *Service) Update(id int64, dto UpdateProductDTO) (*Product, error) {
	dataProduct, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get product for update", "product_id", id, "error", err)
		return nil, err
	}
	if dataProduct == nil {
		return nil, nil
	}

	domainProduct := FromDataModel(dataProduct)
	if dto.Name != nil {
		domainProduct.Name = *dto.Name
	}
	if dto.Description != nil {
		domainProduct.Description = *dto.Description
	}
	if dto.PriceCents != nil {
		if *dto.PriceCents <= 0 {
			return nil, ValidationError{Msg: "priceCents must be positive"}
		}
		domainProduct.PriceCents = *dto.PriceCents
	}
	if dto.StockCount != nil {
		if *dto.StockCount < 0 {
			return nil, ValidationError{Msg: "stockCount cannot be negative"}
		}
		domainProduct.StockCount = *dto.StockCount
	}
	if dto.IsActive != nil {
		if *dto.IsActive {
			domainProduct.Activate()
		} else {
			domainProduct.Deactivate()
		}
	}

	if err := s.repo.Update(ToDataModel(domainProduct)); err != nil {
		s.logger.Error("failed to update product", "product_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("product updated", "product_id", id)
	return domainProduct, nil
}

// Delete deactivates the product so it disappears from the catalog. Rows are
// never removed; order history still references them.
func (s *Service) Delete(id int64) error {
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete product", "product_id", id, "error", err)
		return err
	}
	s.logger.Info("product deactivated", "product_id", id)
	return nil
}
