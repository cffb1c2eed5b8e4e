package service

import (
	"fmt"
	"time"

	"github.com/Delerious28/Andrew-webshop2-sub000/config"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/repository/interfaces"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"go.uber.org/zap"

	"golang.org/x/crypto/bcrypt"
)

// 密码重置令牌有效期
const resetTokenTTL = time.Hour

// UserService 处理与用户相关的业务逻辑：
// 注册、登录、邮箱验证、自动登录、密码重置。
type UserService struct {
	userRepo     interfaces.UserRepository
	emailService *EmailService
	sessions     SessionStore
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository, emailService *EmailService, sessions SessionStore) *UserService {
	return &UserService{
		userRepo:     userRepo,
		emailService: emailService,
		sessions:     sessions,
	}
}

// Register 注册新用户。创建时邮箱未验证，并发送带验证令牌的邮件。
// 邮件发送失败只记录日志，不阻塞注册。
func (s *UserService) Register(user *model.User) error {
	existing, err := s.userRepo.FindByEmail(user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New(errors.ErrUserExists, "email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)
	user.Role = "user"

	token, err := util.GenerateOpaqueToken()
	if err != nil {
		return err
	}
	user.VerificationToken = &token
	if ttl := config.AppConfig.VerifyTokenTTLHours; ttl > 0 {
		expires := time.Now().Add(time.Duration(ttl) * time.Hour)
		user.VerificationExpiresAt = &expires
	}

	if err := s.userRepo.Create(user); err != nil {
		return err
	}

	if err := s.emailService.SendVerificationEmail(user.Email, user.Username, token); err != nil {
		util.Logger.Error("发送验证邮件失败", zap.Error(err), zap.Int("user_id", user.ID))
	}

	return nil
}

// Login 用户登录。未验证邮箱的用户不能建立会话。
func (s *UserService) Login(email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		util.Logger.Warn("用户登录失败，密码不正确", zap.Int("user_id", user.ID))
		return nil, errors.New(errors.ErrInvalidCredentials, "invalid email or password")
	}

	if !user.IsVerified() {
		return nil, errors.New(errors.ErrEmailNotVerified, "email not verified")
	}

	util.Logger.Info("用户登录成功", zap.Int("user_id", user.ID))
	return user, nil
}

// VerifyEmail 兑换邮箱验证令牌。成功时生成并返回一次性的
// 自动登录令牌；令牌不匹配（包括重复兑换）返回 NotFound。
func (s *UserService) VerifyEmail(token string) (*model.User, string, error) {
	autoLoginToken, err := util.GenerateOpaqueToken()
	if err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.RedeemVerificationToken(token, autoLoginToken)
	if err != nil {
		util.Logger.Error("兑换验证令牌失败", zap.Error(err))
		return nil, "", err
	}
	if user == nil {
		return nil, "", errors.New(errors.ErrResourceNotFound, "invalid verification token")
	}

	util.Logger.Info("邮箱验证成功", zap.Int("user_id", user.ID))
	return user, autoLoginToken, nil
}

// AutoLogin 兑换自动登录令牌，成功后令牌即失效
func (s *UserService) AutoLogin(token string) (*model.User, error) {
	user, err := s.userRepo.RedeemAutoLoginToken(token)
	if err != nil {
		util.Logger.Error("兑换自动登录令牌失败", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "invalid auto-login token")
	}
	util.Logger.Info("自动登录成功", zap.Int("user_id", user.ID))
	return user, nil
}

// RequestPasswordReset 签发密码重置令牌并发送邮件。
// 无论邮箱是否存在都返回成功，防止账号枚举；
// 邮件发送失败同样只记录日志。
func (s *UserService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		util.Logger.Info("密码重置请求的邮箱不存在", zap.String("email", email))
		return nil
	}

	token, err := util.GenerateOpaqueToken()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetResetToken(user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	if err := s.emailService.SendPasswordResetEmail(user.Email, token); err != nil {
		util.Logger.Error("发送密码重置邮件失败", zap.Error(err), zap.Int("user_id", user.ID))
	}
	return nil
}

// ResetPassword 兑换密码重置令牌并设置新密码。
// 密码更新与令牌清除由仓库层在同一条语句内完成。
func (s *UserService) ResetPassword(token, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ok, err := s.userRepo.RedeemResetToken(token, string(hashedPassword))
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrInvalidToken, "invalid or expired reset token")
	}

	util.Logger.Info("密码重置成功")
	return nil
}

// GetUserByID 通过ID获取用户信息
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return user, nil
}

// UpdateUser 更新用户信息（只允许修改用户名）
func (s *UserService) UpdateUser(user *model.User) error {
	existingUser, err := s.GetUserByID(user.ID)
	if err != nil {
		return err
	}

	existingUser.Username = user.Username
	if err := s.userRepo.Update(existingUser); err != nil {
		return fmt.Errorf("更新用户失败: %w", err)
	}
	return nil
}

// Logout 将当前会话令牌加入黑名单
func (s *UserService) Logout(userID int, token string) error {
	if err := s.sessions.Blacklist(token, 24*time.Hour); err != nil {
		return err
	}
	util.Logger.Info("用户注销，令牌已加入黑名单", zap.Int("user_id", userID))
	return nil
}

// IsTokenBlacklisted 判断令牌是否已被注销
func (s *UserService) IsTokenBlacklisted(token string) bool {
	return s.sessions.IsBlacklisted(token)
}

// IsAdmin 判断用户是否为管理员
func (s *UserService) IsAdmin(userID int) (bool, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return false, err
	}
	return user.Role == "admin", nil
}

// SaveAddress 保存用户收货地址（存在则更新）
func (s *UserService) SaveAddress(address *model.UserAddress) error {
	if err := validateAddress(address); err != nil {
		return err
	}
	return s.userRepo.UpsertAddress(address)
}

// GetCurrentAddress 返回用户当前收货地址
func (s *UserService) GetCurrentAddress(userID int) (*model.UserAddress, error) {
	return s.userRepo.GetCurrentAddress(userID)
}

func validateAddress(address *model.UserAddress) error {
	if address.ReceiverName == "" {
		return errors.New(errors.ErrValidation, "receiver name is required")
	}
	if address.Line1 == "" || address.City == "" || address.PostalCode == "" || address.Country == "" {
		return errors.New(errors.ErrValidation, "incomplete address")
	}
	return nil
}

// UserServiceInterface 供处理器层依赖与测试替身使用
type UserServiceInterface interface {
	Register(user *model.User) error
	Login(email, password string) (*model.User, error)
	VerifyEmail(token string) (*model.User, string, error)
	AutoLogin(token string) (*model.User, error)
	RequestPasswordReset(email string) error
	ResetPassword(token, newPassword string) error
	GetUserByID(id int) (*model.User, error)
	UpdateUser(user *model.User) error
	Logout(userID int, token string) error
	IsTokenBlacklisted(token string) bool
	IsAdmin(userID int) (bool, error)
	SaveAddress(address *model.UserAddress) error
	GetCurrentAddress(userID int) (*model.UserAddress, error)
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)
