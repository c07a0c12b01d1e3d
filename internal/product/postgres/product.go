package postgres

import (
	productDatamodel "github.com/designxcel/storefront/internal/core/datamodel/product"
	"github.com/designxcel/storefront/internal/product"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) product.RepositoryAPI {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetAll() ([]*productDatamodel.Product, error) {
	var products []*productDatamodel.Product
	err := r.db.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *ProductRepository) GetActive() ([]*productDatamodel.Product, error) {
	var products []*productDatamodel.Product
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *ProductRepository) GetByID(id int64) (*productDatamodel.Product, error) {
	var p productDatamodel.Product
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetBySlug(slug string) (*productDatamodel.Product, error) {
	var p productDatamodel.Product
	err := r.db.Where("slug = ?", slug).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(p *productDatamodel.Product) error {
	return r.db.Create(p).Error
}

func (r *ProductRepository) Update(p *productDatamodel.Product) error {
	return r.db.Save(p).Error
}

func (r *ProductRepository) Delete(id int64) error {
	return r.db.Model(&productDatamodel.Product{}).Where("id = ?", id).Update("is_active", false).Error
}
