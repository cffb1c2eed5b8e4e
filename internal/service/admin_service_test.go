package service

import (
	"testing"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TestAdminDeleteUser 测试管理员不能删除自己的账号
func TestAdminDeleteUser(t *testing.T) {
	mockUser := new(MockUserRepository)
	mockOrder := new(MockOrderRepository)
	mockProduct := new(MockProductRepository)
	service := NewAdminService(mockUser, mockOrder, mockProduct)

	mockUser.On("FindByID", 2).Return(&model.User{ID: 2}, nil)
	mockUser.On("Delete", 2).Return(nil)

	// 删除其他用户
	err := service.DeleteUser(2, 1)
	assert.NoError(t, err)
	mockUser.AssertCalled(t, "Delete", 2)

	// 删除自己被拒绝
	err = service.DeleteUser(1, 1)
	assert.Error(t, err)
	assert.Equal(t, errors.ErrSelfDelete, err.(*errors.AppError).Code)
	mockUser.AssertNotCalled(t, "Delete", 1)
}

// TestAdminUpdateUserRole 测试角色校验
func TestAdminUpdateUserRole(t *testing.T) {
	mockUser := new(MockUserRepository)
	mockOrder := new(MockOrderRepository)
	mockProduct := new(MockProductRepository)
	service := NewAdminService(mockUser, mockOrder, mockProduct)

	mockUser.On("FindByID", 2).Return(&model.User{ID: 2, Role: "user"}, nil)
	mockUser.On("Update", mock.AnythingOfType("*model.User")).Return(nil)

	err := service.UpdateUserRole(2, "admin")
	assert.NoError(t, err)

	// 未知角色
	err = service.UpdateUserRole(2, "superuser")
	assert.Error(t, err)
	assert.Equal(t, errors.ErrValidation, err.(*errors.AppError).Code)
}

// TestAdminUpdateOrderStatus 测试订单状态集合校验
func TestAdminUpdateOrderStatus(t *testing.T) {
	mockUser := new(MockUserRepository)
	mockOrder := new(MockOrderRepository)
	mockProduct := new(MockProductRepository)
	service := NewAdminService(mockUser, mockOrder, mockProduct)

	pending := &model.Order{ID: 1, Status: model.OrderStatusPending}
	mockOrder.On("FindByID", 1).Return(pending, nil)
	mockOrder.On("FindByID", 99).Return(nil, nil)
	mockOrder.On("UpdateStatus", 1, model.OrderStatusShipped).Return(nil)

	// 集合内任意状态都可以设置
	_, err := service.UpdateOrderStatus(1, model.OrderStatusShipped)
	assert.NoError(t, err)

	// 非法状态
	_, err = service.UpdateOrderStatus(1, "refunded")
	assert.Error(t, err)
	assert.Equal(t, errors.ErrValidation, err.(*errors.AppError).Code)

	// 订单不存在
	_, err = service.UpdateOrderStatus(99, model.OrderStatusPaid)
	assert.Error(t, err)
	assert.Equal(t, errors.ErrOrderNotFound, err.(*errors.AppError).Code)
}

// TestGetSystemStats 测试统计数据汇总
func TestGetSystemStats(t *testing.T) {
	mockUser := new(MockUserRepository)
	mockOrder := new(MockOrderRepository)
	mockProduct := new(MockProductRepository)
	service := NewAdminService(mockUser, mockOrder, mockProduct)

	mockUser.On("Count").Return(42, nil)
	mockProduct.On("Count").Return(17, nil)
	mockOrder.On("Count").Return(8, nil)
	mockOrder.On("SumTotalCents").Return(int64(123450), nil)
	mockOrder.On("CountByStatus", model.OrderStatusPending).Return(2, nil)
	mockOrder.On("CountByStatus", model.OrderStatusPaid).Return(5, nil)

	stats, err := service.GetSystemStats()
	assert.NoError(t, err)
	assert.Equal(t, 42, stats.TotalUsers)
	assert.Equal(t, 17, stats.TotalProducts)
	assert.Equal(t, 8, stats.TotalOrders)
	assert.Equal(t, int64(123450), stats.TotalCents)
	assert.Equal(t, 2, stats.PendingOrders)
	assert.Equal(t, 5, stats.PaidOrders)
}
