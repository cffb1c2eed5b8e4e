package admin

import (
	"strconv"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/middleware"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/service"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler 处理后台管理相关的HTTP请求
type AdminHandler struct {
	adminService *service.AdminService
	errorMonitor *middleware.ErrorMonitor
}

func NewAdminHandler(adminService *service.AdminService, errorMonitor *middleware.ErrorMonitor) *AdminHandler {
	return &AdminHandler{adminService, errorMonitor}
}

// GetUsers 返回分页用户列表
func (h *AdminHandler) GetUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, err := h.adminService.GetUsers(page, pageSize)
	if err != nil {
		util.Logger.Error("获取用户列表失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取用户列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"users": users,
		"page":  page,
	}, "")
}

// GetUser 返回单个用户
func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	user, err := h.adminService.GetUser(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "")
}

// UpdateUserRole 更新用户角色
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if err := h.adminService.UpdateUserRole(userID, req.Role); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "用户角色更新成功")
}

// DeleteUser 删除用户，禁止删除自己
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	callerID := c.GetInt("user_id")

	if err := h.adminService.DeleteUser(targetID, callerID); err != nil {
		errors.HandleError(c, err)
		return
	}

	util.Logger.Info("用户已删除",
		zap.Int("target_id", targetID),
		zap.Int("caller_id", callerID))
	errors.HandleSuccess(c, nil, "用户删除成功")
}

// GetOrders 返回分页订单列表，支持按状态筛选
func (h *AdminHandler) GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := c.Query("status")

	orders, err := h.adminService.GetOrders(page, pageSize, status)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"orders": orders,
		"page":   page,
	}, "")
}

// GetOrder 返回任意用户的单个订单
func (h *AdminHandler) GetOrder(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的订单ID", err))
		return
	}

	order, err := h.adminService.GetOrder(orderID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"order": order,
	}, "")
}

// UpdateOrderStatus 更新订单状态
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的订单ID", err))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	order, err := h.adminService.UpdateOrderStatus(orderID, req.Status)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	util.Logger.Info("订单状态已更新",
		zap.Int("order_id", orderID),
		zap.String("status", req.Status))
	errors.HandleSuccess(c, gin.H{
		"order": order,
	}, "订单状态更新成功")
}

// GetSystemStats 返回系统统计数据
func (h *AdminHandler) GetSystemStats(c *gin.Context) {
	stats, err := h.adminService.GetSystemStats()
	if err != nil {
		util.Logger.Error("获取系统统计失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取系统统计失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"stats": stats,
	}, "")
}

// GetErrorStats 返回错误监控统计
func (h *AdminHandler) GetErrorStats(c *gin.Context) {
	errors.HandleSuccess(c, gin.H{
		"error_stats": h.errorMonitor.GetStats(),
	}, "")
}
