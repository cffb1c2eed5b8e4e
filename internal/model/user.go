package model

import "time"

// User 结构体表示用户模型
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // 密码哈希不应在JSON中暴露
	Role         string `json:"role"`

	// 邮箱验证：EmailVerifiedAt 为空表示未验证。
	// 验证令牌与自动登录令牌是两个独立的一次性能力令牌，
	// 分开存储，互不复用。
	EmailVerifiedAt       *time.Time `json:"email_verified_at"`
	VerificationToken     *string    `json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`
	AutoLoginToken        *string    `json:"-"`

	// 密码重置令牌与过期时间成对出现
	ResetToken          *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// IsVerified 判断用户邮箱是否已验证
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}

// UserAddress 用户收货地址模型
type UserAddress struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	ReceiverName string    `json:"receiver_name"`
	Phone        string    `json:"phone"`
	Line1        string    `json:"line1"`
	Line2        string    `json:"line2"`
	City         string    `json:"city"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
