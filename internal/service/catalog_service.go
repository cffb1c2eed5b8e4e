package service

import (
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/repository/interfaces"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"go.uber.org/zap"
)

// CatalogService 处理商品目录业务逻辑
type CatalogService struct {
	productRepo interfaces.ProductRepository
}

// NewCatalogService 创建一个新的 CatalogService 实例
func NewCatalogService(productRepo interfaces.ProductRepository) *CatalogService {
	return &CatalogService{productRepo: productRepo}
}

// CreateProduct 创建商品
func (s *CatalogService) CreateProduct(product *model.Product) error {
	if product.Title == "" {
		return errors.New(errors.ErrValidation, "title is required")
	}
	if product.PriceCents <= 0 {
		return errors.New(errors.ErrValidation, "price must be positive")
	}
	return s.productRepo.Create(product)
}

// GetProduct 返回单个商品（含图集）
func (s *CatalogService) GetProduct(id int) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New(errors.ErrProductNotFound, "product not found")
	}
	return product, nil
}

// ListProducts 返回分页商品列表
func (s *CatalogService) ListProducts(page, pageSize int, category string) ([]*model.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.productRepo.FindAll(page, pageSize, category)
}

// UpdateProduct 更新商品
func (s *CatalogService) UpdateProduct(product *model.Product) error {
	if _, err := s.GetProduct(product.ID); err != nil {
		return err
	}
	if product.PriceCents <= 0 {
		return errors.New(errors.ErrValidation, "price must be positive")
	}
	return s.productRepo.Update(product)
}

// DeleteProduct 删除商品
func (s *CatalogService) DeleteProduct(id int) error {
	if _, err := s.GetProduct(id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(id); err != nil {
		return err
	}
	util.Logger.Info("商品已删除", zap.Int("product_id", id))
	return nil
}

// AddProductImage 向商品图集追加图片
func (s *CatalogService) AddProductImage(productID int, imageURL string) (*model.ProductImage, error) {
	if _, err := s.GetProduct(productID); err != nil {
		return nil, err
	}
	image := &model.ProductImage{ProductID: productID, ImageURL: imageURL}
	if err := s.productRepo.AddImage(image); err != nil {
		return nil, err
	}
	return image, nil
}

// DeleteProductImage 从图集删除图片
func (s *CatalogService) DeleteProductImage(imageID int) error {
	return s.productRepo.DeleteImage(imageID)
}
