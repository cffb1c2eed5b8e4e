package user

import (
	"unicode"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/service"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler 处理与认证相关的HTTP请求
type AuthHandler struct {
	userService service.UserServiceInterface
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService service.UserServiceInterface) *AuthHandler {
	return &AuthHandler{userService}
}

// Register 处理用户注册请求
func (h *AuthHandler) Register(c *gin.Context) {
	var registerData struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&registerData); err != nil {
		util.Logger.Warn("注册失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if !isPasswordStrong(registerData.Password) {
		errors.HandleError(c, errors.New(errors.ErrWeakPassword, "密码强度不足"))
		return
	}

	user := &model.User{
		Username:     registerData.Username,
		Email:        registerData.Email,
		PasswordHash: registerData.Password,
	}

	if err := h.userService.Register(user); err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrUserExists {
			util.Logger.Warn("注册失败，邮箱已被注册",
				zap.String("email", user.Email))
			errors.HandleError(c, err)
			return
		}
		util.Logger.Error("注册失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "注册失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user_id": user.ID,
	}, "注册成功，请查收验证邮件")
}

// Login 处理用户登录请求
func (h *AuthHandler) Login(c *gin.Context) {
	var loginData struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, err := h.userService.Login(loginData.Email, loginData.Password)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	token, err := util.GenerateToken(user.ID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "生成令牌失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"token": token,
		"user":  user,
	}, "登录成功")
}

// VerifyEmail 处理邮箱验证。验证令牌只能兑换一次，
// 成功时额外返回一次性的自动登录令牌。
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var verifyData struct {
		Token string `json:"token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&verifyData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "缺少验证令牌", err))
		return
	}

	user, autoLoginToken, err := h.userService.VerifyEmail(verifyData.Token)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user":             user,
		"auto_login_token": autoLoginToken,
	}, "邮箱验证成功")
}

// AutoLogin 用邮箱验证后下发的一次性令牌直接建立会话
func (h *AuthHandler) AutoLogin(c *gin.Context) {
	var loginData struct {
		Token string `json:"token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "缺少登录令牌", err))
		return
	}

	user, err := h.userService.AutoLogin(loginData.Token)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	token, err := util.GenerateToken(user.ID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "生成令牌失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"token": token,
		"user":  user,
	}, "登录成功")
}

// RequestPasswordReset 处理密码重置请求。
// 无论邮箱是否存在都返回同一响应，避免泄露注册状态。
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var requestData struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&requestData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的邮箱格式", err))
		return
	}

	if err := h.userService.RequestPasswordReset(requestData.Email); err != nil {
		util.Logger.Error("请求密码重置失败", zap.Error(err))
	}

	errors.HandleSuccess(c, nil, "如果该邮箱已注册，密码重置邮件已发送")
}

// ResetPassword 处理密码重置
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var resetData struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&resetData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if !isPasswordStrong(resetData.NewPassword) {
		errors.HandleError(c, errors.New(errors.ErrWeakPassword, "新密码强度不足"))
		return
	}

	if err := h.userService.ResetPassword(resetData.Token, resetData.NewPassword); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "密码重置成功")
}

// Logout 处理用户登出
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetInt("user_id")
	token := c.GetString("token")
	if err := h.userService.Logout(userID, token); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "登出失败", err))
		return
	}
	errors.HandleSuccess(c, nil, "已成功登出")
}

// RefreshToken 处理令牌刷新
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	tokenString := c.GetHeader("Authorization")
	if tokenString == "" {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "缺少令牌"))
		return
	}

	newToken, err := util.RefreshToken(tokenString)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrUnauthorized, "刷新令牌失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"token": newToken}, "令牌刷新成功")
}

func isPasswordStrong(password string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	if len(password) < 8 {
		return false
	}
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
