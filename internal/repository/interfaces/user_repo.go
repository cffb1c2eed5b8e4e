package interfaces

import (
	"time"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
)

// UserRepository 接口定义了用户仓库应该实现的方法。
// 所有令牌兑换方法都必须以条件更新实现（只在令牌仍然匹配时生效），
// 保证并发兑换下的一次性语义。
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	Delete(id int) error
	Count() (int, error)
	FindAll(page, pageSize int) ([]*model.User, error)

	// 令牌流
	SetVerificationToken(userID int, token string, expiresAt *time.Time) error
	RedeemVerificationToken(token, autoLoginToken string) (*model.User, error)
	RedeemAutoLoginToken(token string) (*model.User, error)
	SetResetToken(userID int, token string, expiresAt time.Time) error
	RedeemResetToken(token, newPasswordHash string) (bool, error)

	// 收货地址：每个用户至多保留一条当前地址（存在则更新）
	UpsertAddress(address *model.UserAddress) error
	GetAddressByID(id int) (*model.UserAddress, error)
	GetCurrentAddress(userID int) (*model.UserAddress, error)
}
