package service

import (
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/repository/interfaces"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"go.uber.org/zap"
)

// AdminService 按功能模块组织后台业务逻辑：
// 用户管理、订单管理、系统统计。
type AdminService struct {
	userRepo  interfaces.UserRepository
	orderRepo interfaces.OrderRepository
	prodRepo  interfaces.ProductRepository
}

// NewAdminService 创建一个新的 AdminService 实例
func NewAdminService(userRepo interfaces.UserRepository, orderRepo interfaces.OrderRepository, prodRepo interfaces.ProductRepository) *AdminService {
	return &AdminService{
		userRepo:  userRepo,
		orderRepo: orderRepo,
		prodRepo:  prodRepo,
	}
}

// 用户管理

// GetUsers 返回分页用户列表（密码哈希由模型序列化规则屏蔽）
func (s *AdminService) GetUsers(page, pageSize int) ([]*model.User, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.userRepo.FindAll(page, pageSize)
}

// GetUser 返回单个用户
func (s *AdminService) GetUser(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return user, nil
}

// UpdateUserRole 更新用户角色
func (s *AdminService) UpdateUserRole(userID int, role string) error {
	if role != "user" && role != "admin" {
		return errors.New(errors.ErrValidation, "invalid role")
	}
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	util.Logger.Info("用户角色已更新",
		zap.Int("user_id", userID),
		zap.String("role", role))
	return nil
}

// DeleteUser 删除用户。管理员不能删除自己的账号。
func (s *AdminService) DeleteUser(targetID, callerID int) error {
	if targetID == callerID {
		return errors.New(errors.ErrSelfDelete, "cannot delete your own account")
	}
	if _, err := s.GetUser(targetID); err != nil {
		return err
	}
	return s.userRepo.Delete(targetID)
}

// 订单管理

// GetOrders 返回分页订单列表
func (s *AdminService) GetOrders(page, pageSize int, status string) ([]*model.Order, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	if status != "" && !model.ValidOrderStatus(status) {
		return nil, errors.New(errors.ErrValidation, "invalid order status")
	}
	return s.orderRepo.FindAll(page, pageSize, status)
}

// GetOrder 返回单个订单
func (s *AdminService) GetOrder(id int) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New(errors.ErrOrderNotFound, "order not found")
	}
	return order, nil
}

// UpdateOrderStatus 设置订单状态。状态必须在允许的集合内，
// 集合内任意切换，不强制状态转移图。
func (s *AdminService) UpdateOrderStatus(orderID int, status string) (*model.Order, error) {
	if !model.ValidOrderStatus(status) {
		return nil, errors.New(errors.ErrValidation, "invalid order status")
	}
	if _, err := s.GetOrder(orderID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return nil, err
	}
	return s.GetOrder(orderID)
}

// 系统管理

// GetSystemStats 返回系统统计数据
func (s *AdminService) GetSystemStats() (*model.SystemStats, error) {
	stats := &model.SystemStats{}

	userCount, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = userCount

	productCount, err := s.prodRepo.Count()
	if err != nil {
		return nil, err
	}
	stats.TotalProducts = productCount

	orderCount, err := s.orderRepo.Count()
	if err != nil {
		return nil, err
	}
	stats.TotalOrders = orderCount

	total, err := s.orderRepo.SumTotalCents()
	if err != nil {
		return nil, err
	}
	stats.TotalCents = total

	pending, err := s.orderRepo.CountByStatus(model.OrderStatusPending)
	if err != nil {
		return nil, err
	}
	stats.PendingOrders = pending

	paid, err := s.orderRepo.CountByStatus(model.OrderStatusPaid)
	if err != nil {
		return nil, err
	}
	stats.PaidOrders = paid

	return stats, nil
}
