package service

import (
	"os"
	"testing"
	"time"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	os.Exit(m.Run())
}

// MockUserRepository 是 UserRepository 接口的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepository) Count() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) FindAll(page, pageSize int) ([]*model.User, error) {
	args := m.Called(page, pageSize)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserRepository) SetVerificationToken(userID int, token string, expiresAt *time.Time) error {
	args := m.Called(userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) RedeemVerificationToken(token, autoLoginToken string) (*model.User, error) {
	args := m.Called(token, autoLoginToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) RedeemAutoLoginToken(token string) (*model.User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetResetToken(userID int, token string, expiresAt time.Time) error {
	args := m.Called(userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) RedeemResetToken(token, newPasswordHash string) (bool, error) {
	args := m.Called(token, newPasswordHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpsertAddress(address *model.UserAddress) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockUserRepository) GetAddressByID(id int) (*model.UserAddress, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserAddress), args.Error(1)
}

func (m *MockUserRepository) GetCurrentAddress(userID int) (*model.UserAddress, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserAddress), args.Error(1)
}

func newTestUserService(repo *MockUserRepository) *UserService {
	return NewUserService(repo, NewEmailService(), newMemorySessionStore())
}

// TestRegister 测试用户注册功能
func TestRegister(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestUserService(mockRepo)

	user := &model.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "StrongP@ssw0rd",
	}

	// 测试成功注册
	mockRepo.On("FindByEmail", "test@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.AnythingOfType("*model.User")).Return(nil)

	err := service.Register(user)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// 新用户角色为普通用户，邮箱未验证，带验证令牌
	assert.Equal(t, "user", user.Role)
	assert.False(t, user.IsVerified())
	assert.NotNil(t, user.VerificationToken)
	assert.Len(t, *user.VerificationToken, 64)

	// 密码已被哈希
	assert.NotEqual(t, "StrongP@ssw0rd", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("StrongP@ssw0rd")))

	// 测试邮箱已被注册
	mockRepo.On("FindByEmail", "existing@example.com").Return(&model.User{ID: 2}, nil)

	err = service.Register(&model.User{
		Username:     "another",
		Email:        "existing@example.com",
		PasswordHash: "StrongP@ssw0rd",
	})
	assert.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrUserExists, appErr.Code)
}

// TestLogin 测试用户登录功能
func TestLogin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestUserService(mockRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	now := time.Now()
	verified := &model.User{
		ID:              1,
		Email:           "verified@example.com",
		PasswordHash:    string(hash),
		EmailVerifiedAt: &now,
	}
	unverified := &model.User{
		ID:           2,
		Email:        "pending@example.com",
		PasswordHash: string(hash),
	}

	mockRepo.On("FindByEmail", "verified@example.com").Return(verified, nil)
	mockRepo.On("FindByEmail", "pending@example.com").Return(unverified, nil)
	mockRepo.On("FindByEmail", "nobody@example.com").Return(nil, nil)

	// 成功登录
	user, err := service.Login("verified@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, 1, user.ID)

	// 密码错误
	_, err = service.Login("verified@example.com", "wrongpassword")
	assert.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, errors.ErrInvalidCredentials, appErr.Code)

	// 邮箱不存在，返回与密码错误相同的错误
	_, err2 := service.Login("nobody@example.com", "password123")
	assert.Error(t, err2)
	appErr2 := err2.(*errors.AppError)
	assert.Equal(t, errors.ErrInvalidCredentials, appErr2.Code)
	assert.Equal(t, appErr.Message, appErr2.Message)

	// 未验证邮箱不能登录
	_, err = service.Login("pending@example.com", "password123")
	assert.Error(t, err)
	assert.Equal(t, errors.ErrEmailNotVerified, err.(*errors.AppError).Code)
}

// TestVerifyEmail 测试邮箱验证令牌兑换
func TestVerifyEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestUserService(mockRepo)

	now := time.Now()
	verified := &model.User{ID: 1, Email: "test@example.com", EmailVerifiedAt: &now}

	// 首次兑换成功，返回自动登录令牌
	mockRepo.On("RedeemVerificationToken", "valid-token", mock.AnythingOfType("string")).Return(verified, nil)

	user, autoLoginToken, err := service.VerifyEmail("valid-token")
	assert.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Len(t, autoLoginToken, 64)

	// 重复兑换（或无效令牌）返回 NotFound
	mockRepo.On("RedeemVerificationToken", "used-token", mock.AnythingOfType("string")).Return(nil, nil)

	_, _, err = service.VerifyEmail("used-token")
	assert.Error(t, err)
	assert.Equal(t, errors.ErrResourceNotFound, err.(*errors.AppError).Code)
}

// TestAutoLogin 测试自动登录令牌只能兑换一次
func TestAutoLogin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestUserService(mockRepo)

	now := time.Now()
	user := &model.User{ID: 1, EmailVerifiedAt: &now}

	mockRepo.On("RedeemAutoLoginToken", "one-shot").Return(user, nil).Once()
	mockRepo.On("RedeemAutoLoginToken", "one-shot").Return(nil, nil)

	got, err := service.AutoLogin("one-shot")
	assert.NoError(t, err)
	assert.Equal(t, 1, got.ID)

	// 第二次兑换同一令牌失败
	_, err = service.AutoLogin("one-shot")
	assert.Error(t, err)
	assert.Equal(t, errors.ErrResourceNotFound, err.(*errors.AppError).Code)
}

// TestRequestPasswordReset 测试密码重置请求不泄露账号是否存在
func TestRequestPasswordReset(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestUserService(mockRepo)

	user := &model.User{ID: 1, Email: "test@example.com"}
	mockRepo.On("FindByEmail", "test@example.com").Return(user, nil)
	mockRepo.On("SetResetToken", 1, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	err := service.RequestPasswordReset("test@example.com")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// 邮箱不存在同样返回成功，且不签发令牌
	mockRepo.On("FindByEmail", "nobody@example.com").Return(nil, nil)

	err = service.RequestPasswordReset("nobody@example.com")
	assert.NoError(t, err)
	mockRepo.AssertNumberOfCalls(t, "SetResetToken", 1)
}

// TestResetPassword 测试密码重置令牌兑换
func TestResetPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestUserService(mockRepo)

	mockRepo.On("RedeemResetToken", "valid-token", mock.AnythingOfType("string")).Return(true, nil)
	mockRepo.On("RedeemResetToken", "expired-token", mock.AnythingOfType("string")).Return(false, nil)

	err := service.ResetPassword("valid-token", "NewP@ssw0rd")
	assert.NoError(t, err)

	// 过期或已用令牌
	err = service.ResetPassword("expired-token", "NewP@ssw0rd")
	assert.Error(t, err)
	assert.Equal(t, errors.ErrInvalidToken, err.(*errors.AppError).Code)
}

// TestLogout 测试注销后令牌进入黑名单
func TestLogout(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestUserService(mockRepo)

	assert.False(t, service.IsTokenBlacklisted("session-token"))

	err := service.Logout(1, "session-token")
	assert.NoError(t, err)
	assert.True(t, service.IsTokenBlacklisted("session-token"))
}

// TestSaveAddress 测试地址校验
func TestSaveAddress(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestUserService(mockRepo)

	mockRepo.On("UpsertAddress", mock.AnythingOfType("*model.UserAddress")).Return(nil)

	err := service.SaveAddress(&model.UserAddress{
		UserID:       1,
		ReceiverName: "Jan Jansen",
		Line1:        "Hoofdstraat 1",
		City:         "Amsterdam",
		PostalCode:   "1011AB",
		Country:      "NL",
	})
	assert.NoError(t, err)

	// 缺少必填字段
	err = service.SaveAddress(&model.UserAddress{UserID: 1, ReceiverName: "Jan Jansen"})
	assert.Error(t, err)
	assert.Equal(t, errors.ErrValidation, err.(*errors.AppError).Code)
}
