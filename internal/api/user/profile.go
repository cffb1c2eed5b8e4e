package user

import (
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/service"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	userService service.UserServiceInterface
}

func NewProfileHandler(userService service.UserServiceInterface) *ProfileHandler {
	return &ProfileHandler{userService}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetInt("user_id")
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		util.Logger.Error("获取用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "")
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	currentUser, err := h.userService.GetUserByID(userID)
	if err != nil {
		util.Logger.Error("获取用户信息失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrUserNotFound, "获取用户信息失败", err))
		return
	}

	var updateData struct {
		Username string `json:"username"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		util.Logger.Warn("更新用户资料失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	// 只更新允许用户修改的字段
	if updateData.Username != "" {
		currentUser.Username = updateData.Username
	}

	if err := h.userService.UpdateUser(currentUser); err != nil {
		util.Logger.Error("更新用户资料失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "更新用户资料失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": currentUser,
	}, "资料更新成功")
}

// SaveAddress 保存当前用户的收货地址，存在则覆盖
func (h *ProfileHandler) SaveAddress(c *gin.Context) {
	userID := c.GetInt("user_id")

	var address model.UserAddress
	if err := c.ShouldBindJSON(&address); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的地址数据", err))
		return
	}
	address.UserID = userID

	if err := h.userService.SaveAddress(&address); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"address": address,
	}, "地址保存成功")
}

// GetCurrentAddress 获取当前用户的收货地址
func (h *ProfileHandler) GetCurrentAddress(c *gin.Context) {
	userID := c.GetInt("user_id")

	address, err := h.userService.GetCurrentAddress(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"address": address,
	}, "")
}
