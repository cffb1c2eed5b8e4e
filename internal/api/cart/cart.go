package cart

import (
	"strconv"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/service"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartHandler 处理购物车相关的HTTP请求
type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService}
}

// GetCart 返回当前用户的购物车内容和小计
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := c.GetInt("user_id")

	items, subtotal, err := h.cartService.GetCart(userID)
	if err != nil {
		util.Logger.Error("获取购物车失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取购物车失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"items":          items,
		"subtotal_cents": subtotal,
	}, "")
}

// AddItem 向购物车添加商品，已存在时数量累加
func (h *CartHandler) AddItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req struct {
		ProductID int `json:"product_id" binding:"required"`
		Quantity  int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if err := h.cartService.AddItem(userID, req.ProductID, req.Quantity); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "已加入购物车")
}

// UpdateQuantity 设置购物车条目数量，数量小于1视为移除
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	userID := c.GetInt("user_id")

	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的商品ID", err))
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if err := h.cartService.UpdateQuantity(userID, productID, req.Quantity); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "购物车已更新")
}

// RemoveItem 移除购物车条目，条目不存在也视为成功
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的商品ID", err))
		return
	}

	if err := h.cartService.RemoveItem(userID, productID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "已从购物车移除")
}

// Merge 登录后把游客购物车合并进用户购物车
func (h *CartHandler) Merge(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req struct {
		Items []model.GuestCartItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if err := h.cartService.Merge(userID, req.Items); err != nil {
		util.Logger.Error("合并购物车失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "合并购物车失败", err))
		return
	}

	items, subtotal, err := h.cartService.GetCart(userID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取购物车失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"items":          items,
		"subtotal_cents": subtotal,
	}, "购物车已合并")
}
