package service

import (
	"testing"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository 是 ProductRepository 接口的模拟实现
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(product *model.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(id int) (*model.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(page, pageSize int, category string) ([]*model.Product, error) {
	args := m.Called(page, pageSize, category)
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockProductRepository) Update(product *model.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) Count() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) AddImage(image *model.ProductImage) error {
	args := m.Called(image)
	return args.Error(0)
}

func (m *MockProductRepository) ListImages(productID int) ([]*model.ProductImage, error) {
	args := m.Called(productID)
	return args.Get(0).([]*model.ProductImage), args.Error(1)
}

func (m *MockProductRepository) DeleteImage(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockCartRepository 是 CartRepository 接口的模拟实现
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) AddItem(userID, productID, quantity int) error {
	args := m.Called(userID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateQuantity(userID, productID, quantity int) error {
	args := m.Called(userID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) RemoveItem(userID, productID int) error {
	args := m.Called(userID, productID)
	return args.Error(0)
}

func (m *MockCartRepository) ListItems(userID int) ([]*model.CartItem, error) {
	args := m.Called(userID)
	return args.Get(0).([]*model.CartItem), args.Error(1)
}

func (m *MockCartRepository) Clear(userID int) error {
	args := m.Called(userID)
	return args.Error(0)
}

// TestCartAddItem 测试加购校验
func TestCartAddItem(t *testing.T) {
	mockCart := new(MockCartRepository)
	mockProduct := new(MockProductRepository)
	service := NewCartService(mockCart, mockProduct)

	mockProduct.On("FindByID", 1).Return(&model.Product{ID: 1, PriceCents: 4999}, nil)
	mockProduct.On("FindByID", 99).Return(nil, nil)
	mockCart.On("AddItem", 10, 1, 2).Return(nil)

	// 成功加购
	err := service.AddItem(10, 1, 2)
	assert.NoError(t, err)
	mockCart.AssertExpectations(t)

	// 数量必须至少为1
	err = service.AddItem(10, 1, 0)
	assert.Error(t, err)
	assert.Equal(t, errors.ErrValidation, err.(*errors.AppError).Code)

	// 商品不存在
	err = service.AddItem(10, 99, 1)
	assert.Error(t, err)
	assert.Equal(t, errors.ErrProductNotFound, err.(*errors.AppError).Code)
}

// TestCartUpdateQuantity 测试数量小于1按移除处理
func TestCartUpdateQuantity(t *testing.T) {
	mockCart := new(MockCartRepository)
	mockProduct := new(MockProductRepository)
	service := NewCartService(mockCart, mockProduct)

	mockCart.On("UpdateQuantity", 10, 1, 3).Return(nil)
	mockCart.On("RemoveItem", 10, 1).Return(nil)

	err := service.UpdateQuantity(10, 1, 3)
	assert.NoError(t, err)

	// 数量0触发移除
	err = service.UpdateQuantity(10, 1, 0)
	assert.NoError(t, err)
	mockCart.AssertCalled(t, "RemoveItem", 10, 1)
}

// TestGetCart 测试小计按现价计算
func TestGetCart(t *testing.T) {
	mockCart := new(MockCartRepository)
	mockProduct := new(MockProductRepository)
	service := NewCartService(mockCart, mockProduct)

	items := []*model.CartItem{
		{UserID: 10, ProductID: 1, Quantity: 2, Product: &model.Product{ID: 1, PriceCents: 4999}},
		{UserID: 10, ProductID: 2, Quantity: 1, Product: &model.Product{ID: 2, PriceCents: 12500}},
	}
	mockCart.On("ListItems", 10).Return(items, nil)

	got, subtotal, err := service.GetCart(10)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(2*4999+12500), subtotal)
}

// TestCartMerge 测试游客购物车合并：数量相加，无效条目跳过
func TestCartMerge(t *testing.T) {
	mockCart := new(MockCartRepository)
	mockProduct := new(MockProductRepository)
	service := NewCartService(mockCart, mockProduct)

	mockProduct.On("FindByID", 1).Return(&model.Product{ID: 1}, nil)
	mockProduct.On("FindByID", 2).Return(&model.Product{ID: 2}, nil)
	mockProduct.On("FindByID", 99).Return(nil, nil)
	mockCart.On("AddItem", 10, 1, 2).Return(nil)
	mockCart.On("AddItem", 10, 2, 1).Return(nil)

	err := service.Merge(10, []model.GuestCartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
		{ProductID: 99, Quantity: 5}, // 已下架，跳过
		{ProductID: 1, Quantity: 0},  // 无效数量，跳过
	})
	assert.NoError(t, err)
	mockCart.AssertNumberOfCalls(t, "AddItem", 2)
}
