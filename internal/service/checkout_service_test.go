package service

import (
	"encoding/json"
	"testing"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v76"
)

// MockOrderRepository 是 OrderRepository 接口的模拟实现
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateIfAbsent(order *model.Order) (bool, error) {
	args := m.Called(order)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) FindByID(id int) (*model.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindBySessionID(sessionID string) (*model.Order, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(userID int) ([]*model.Order, error) {
	args := m.Called(userID)
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(page, pageSize int, status string) ([]*model.Order, error) {
	args := m.Called(page, pageSize, status)
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(orderID int, status string) error {
	args := m.Called(orderID, status)
	return args.Error(0)
}

func (m *MockOrderRepository) Count() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(status string) (int, error) {
	args := m.Called(status)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) SumTotalCents() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func newTestCheckoutService(
	orderRepo *MockOrderRepository,
	cartRepo *MockCartRepository,
	productRepo *MockProductRepository,
	userRepo *MockUserRepository,
) *CheckoutService {
	return NewCheckoutService(orderRepo, cartRepo, productRepo, userRepo, NewEmailService())
}

// TestCreateSession 测试支付会话创建：行项目按现价冻结进元数据
func TestCreateSession(t *testing.T) {
	mockOrder := new(MockOrderRepository)
	mockCart := new(MockCartRepository)
	mockProduct := new(MockProductRepository)
	mockUser := new(MockUserRepository)
	service := newTestCheckoutService(mockOrder, mockCart, mockProduct, mockUser)

	var captured *stripe.CheckoutSessionParams
	original := createCheckoutSession
	createCheckoutSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		captured = params
		return &stripe.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.example/cs_test_123"}, nil
	}
	defer func() { createCheckoutSession = original }()

	mockUser.On("GetAddressByID", 5).Return(&model.UserAddress{ID: 5, UserID: 10}, nil)
	mockProduct.On("FindByID", 1).Return(&model.Product{ID: 1, Title: "Carbon Handlebar", PriceCents: 12999}, nil)

	url, err := service.CreateSession(10, 5, []CheckoutItem{{ProductID: 1, Quantity: 2}})
	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.example/cs_test_123", url)

	// 元数据携带用户、地址和价格快照
	assert.Equal(t, "10", captured.Metadata["user_id"])
	assert.Equal(t, "5", captured.Metadata["address_id"])

	var lines []sessionLine
	assert.NoError(t, json.Unmarshal([]byte(captured.Metadata["cart"]), &lines))
	assert.Len(t, lines, 1)
	assert.Equal(t, int64(12999), lines[0].UnitPriceCents)
	assert.Equal(t, 2, lines[0].Quantity)
}

// TestCreateSessionValidation 测试结账前置校验
func TestCreateSessionValidation(t *testing.T) {
	mockOrder := new(MockOrderRepository)
	mockCart := new(MockCartRepository)
	mockProduct := new(MockProductRepository)
	mockUser := new(MockUserRepository)
	service := newTestCheckoutService(mockOrder, mockCart, mockProduct, mockUser)

	// 空购物车
	_, err := service.CreateSession(10, 5, nil)
	assert.Error(t, err)
	assert.Equal(t, errors.ErrCartEmpty, err.(*errors.AppError).Code)

	// 地址属于其他用户
	mockUser.On("GetAddressByID", 7).Return(&model.UserAddress{ID: 7, UserID: 99}, nil)
	_, err = service.CreateSession(10, 7, []CheckoutItem{{ProductID: 1, Quantity: 1}})
	assert.Error(t, err)
	assert.Equal(t, errors.ErrAddressNotFound, err.(*errors.AppError).Code)

	// 商品不存在
	mockUser.On("GetAddressByID", 5).Return(&model.UserAddress{ID: 5, UserID: 10}, nil)
	mockProduct.On("FindByID", 99).Return(nil, nil)
	_, err = service.CreateSession(10, 5, []CheckoutItem{{ProductID: 99, Quantity: 1}})
	assert.Error(t, err)
	assert.Equal(t, errors.ErrProductNotFound, err.(*errors.AppError).Code)
}

func completedSession(id string) *stripe.CheckoutSession {
	snapshot, _ := json.Marshal([]sessionLine{
		{ProductID: 1, Title: "Carbon Handlebar", UnitPriceCents: 12999, Quantity: 2},
		{ProductID: 2, Title: "Ceramic Bottom Bracket", UnitPriceCents: 8950, Quantity: 1},
	})
	return &stripe.CheckoutSession{
		ID: id,
		Metadata: map[string]string{
			"user_id":    "10",
			"address_id": "5",
			"cart":       string(snapshot),
		},
	}
}

// TestHandleCheckoutCompleted 测试会话确认落单：金额按快照计算
func TestHandleCheckoutCompleted(t *testing.T) {
	mockOrder := new(MockOrderRepository)
	mockCart := new(MockCartRepository)
	mockProduct := new(MockProductRepository)
	mockUser := new(MockUserRepository)
	service := newTestCheckoutService(mockOrder, mockCart, mockProduct, mockUser)

	var createdOrder *model.Order
	mockOrder.On("CreateIfAbsent", mock.AnythingOfType("*model.Order")).Run(func(args mock.Arguments) {
		createdOrder = args.Get(0).(*model.Order)
	}).Return(true, nil)
	mockCart.On("Clear", 10).Return(nil)
	mockUser.On("FindByID", 10).Return(&model.User{ID: 10, Email: "test@example.com"}, nil)

	err := service.HandleCheckoutCompleted(completedSession("cs_test_123"))
	assert.NoError(t, err)

	assert.Equal(t, 10, createdOrder.UserID)
	assert.Equal(t, "cs_test_123", createdOrder.CheckoutSessionID)
	assert.Equal(t, model.OrderStatusPaid, createdOrder.Status)
	assert.Equal(t, int64(2*12999+8950), createdOrder.TotalCents)
	assert.Len(t, createdOrder.Items, 2)

	// 成功建单后清空购物车
	mockCart.AssertCalled(t, "Clear", 10)
}

// TestHandleCheckoutCompletedIdempotent 测试重复投递不重复建单
func TestHandleCheckoutCompletedIdempotent(t *testing.T) {
	mockOrder := new(MockOrderRepository)
	mockCart := new(MockCartRepository)
	mockProduct := new(MockProductRepository)
	mockUser := new(MockUserRepository)
	service := newTestCheckoutService(mockOrder, mockCart, mockProduct, mockUser)

	// 订单已存在
	mockOrder.On("CreateIfAbsent", mock.AnythingOfType("*model.Order")).Return(false, nil)

	err := service.HandleCheckoutCompleted(completedSession("cs_test_123"))
	assert.NoError(t, err)

	// 重复投递不清空购物车也不发邮件
	mockCart.AssertNotCalled(t, "Clear", mock.Anything)
	mockUser.AssertNotCalled(t, "FindByID", mock.Anything)
}

// TestHandleCheckoutCompletedMissingMetadata 测试元数据缺失时确认收到但不建单
func TestHandleCheckoutCompletedMissingMetadata(t *testing.T) {
	mockOrder := new(MockOrderRepository)
	mockCart := new(MockCartRepository)
	mockProduct := new(MockProductRepository)
	mockUser := new(MockUserRepository)
	service := newTestCheckoutService(mockOrder, mockCart, mockProduct, mockUser)

	err := service.HandleCheckoutCompleted(&stripe.CheckoutSession{
		ID:       "cs_broken",
		Metadata: map[string]string{},
	})
	assert.NoError(t, err)
	mockOrder.AssertNotCalled(t, "CreateIfAbsent", mock.Anything)
}

// TestGetOrderOwnership 测试订单归属校验
func TestGetOrderOwnership(t *testing.T) {
	mockOrder := new(MockOrderRepository)
	mockCart := new(MockCartRepository)
	mockProduct := new(MockProductRepository)
	mockUser := new(MockUserRepository)
	service := newTestCheckoutService(mockOrder, mockCart, mockProduct, mockUser)

	mockOrder.On("FindByID", 1).Return(&model.Order{ID: 1, UserID: 10}, nil)
	mockOrder.On("FindByID", 2).Return(&model.Order{ID: 2, UserID: 99}, nil)

	order, err := service.GetOrder(10, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, order.ID)

	// 他人订单表现为不存在
	_, err = service.GetOrder(10, 2)
	assert.Error(t, err)
	assert.Equal(t, errors.ErrOrderNotFound, err.(*errors.AppError).Code)
}
