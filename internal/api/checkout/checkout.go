package checkout

import (
	"io"
	"net/http"
	"strconv"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/service"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckoutHandler 处理结算和支付回调相关的HTTP请求
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService}
}

// CreateSession 以当前购物车内容创建支付会话，返回跳转URL
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req struct {
		AddressID int                    `json:"address_id" binding:"required"`
		Items     []service.CheckoutItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	util.Logger.Info("开始创建支付会话",
		zap.Int("user_id", userID),
		zap.Int("address_id", req.AddressID),
		zap.Int("item_count", len(req.Items)))

	checkoutURL, err := h.checkoutService.CreateSession(userID, req.AddressID, req.Items)
	if err != nil {
		util.Logger.Error("创建支付会话失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"checkout_url": checkoutURL,
	}, "")
}

// Webhook 处理支付平台回调。签名校验失败返回400触发重试，
// 其余情况一律返回200确认收到。
func (h *CheckoutHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		util.Logger.Error("读取回调请求体失败", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	signature := c.GetHeader("Stripe-Signature")

	if err := h.checkoutService.HandleWebhook(payload, signature); err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrBadRequest {
			util.Logger.Warn("回调签名校验失败", zap.Error(err))
			c.Status(http.StatusBadRequest)
			return
		}
		util.Logger.Error("处理支付回调失败", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}

// GetOrder 返回当前用户的单个订单
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	userID := c.GetInt("user_id")

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的订单ID", err))
		return
	}

	order, err := h.checkoutService.GetOrder(userID, orderID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"order": order,
	}, "")
}

// ListOrders 返回当前用户的全部订单
func (h *CheckoutHandler) ListOrders(c *gin.Context) {
	userID := c.GetInt("user_id")

	orders, err := h.checkoutService.ListOrders(userID)
	if err != nil {
		util.Logger.Error("获取订单列表失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取订单列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"orders": orders,
	}, "")
}
