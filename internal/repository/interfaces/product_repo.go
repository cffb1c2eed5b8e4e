package interfaces

import "github.com/Delerious28/Andrew-webshop2-sub000/internal/model"

// ProductRepository 接口定义了商品仓库应该实现的方法
type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id int) (*model.Product, error)
	FindAll(page, pageSize int, category string) ([]*model.Product, error)
	Update(product *model.Product) error
	Delete(id int) error
	Count() (int, error)

	AddImage(image *model.ProductImage) error
	ListImages(productID int) ([]*model.ProductImage, error)
	DeleteImage(id int) error
}
