package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"go.uber.org/zap"
)

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

const userColumns = `id, username, email, password_hash, role,
	email_verified_at, verification_token, verification_expires_at, auto_login_token,
	reset_token, reset_token_expires_at, created_at, updated_at, deleted_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.EmailVerifiedAt, &user.VerificationToken, &user.VerificationExpiresAt, &user.AutoLoginToken,
		&user.ResetToken, &user.ResetTokenExpiresAt, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (username, email, password_hash, role, verification_token, verification_expires_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query, user.Username, user.Email, user.PasswordHash, user.Role,
		user.VerificationToken, user.VerificationExpiresAt)
	if err != nil {
		util.Logger.Error("创建用户失败", zap.Error(err), zap.String("email", user.Email))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新用户ID失败", zap.Error(err))
		return err
	}
	user.ID = int(id)
	util.Logger.Info("用户创建成功", zap.Int("user_id", user.ID))
	return nil
}

// FindByID 通过ID查找用户，未找到时返回 (nil, nil)
func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND deleted_at IS NULL`
	user, err := scanUser(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// FindByEmail 通过邮箱查找用户，未找到时返回 (nil, nil)
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND deleted_at IS NULL`
	user, err := scanUser(r.db.QueryRow(query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Update 更新用户信息
func (r *userRepository) Update(user *model.User) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET username = ?, email = ?, role = ?, deleted_at = ?, updated_at = ?
		WHERE id = ?`,
		user.Username, user.Email, user.Role, user.DeletedAt, time.Now(), user.ID)
	return err
}

// Delete 删除用户（管理员操作，硬删除）
func (r *userRepository) Delete(id int) error {
	_, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除用户失败", zap.Error(err), zap.Int("user_id", id))
		return err
	}
	util.Logger.Info("用户删除成功", zap.Int("user_id", id))
	return nil
}

// Count 返回用户总数
func (r *userRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE deleted_at IS NULL").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FindAll 返回分页的用户列表
func (r *userRepository) FindAll(page, pageSize int) ([]*model.User, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetVerificationToken 写入新的邮箱验证令牌（注册或重发验证邮件时）
func (r *userRepository) SetVerificationToken(userID int, token string, expiresAt *time.Time) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET verification_token = ?, verification_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		token, expiresAt, time.Now(), userID)
	return err
}

// RedeemVerificationToken 兑换邮箱验证令牌。
// 条件更新保证同一令牌只能兑换一次：匹配到令牌时一并写入
// 自动登录令牌并清除验证令牌，未匹配到任何行则返回 (nil, nil)。
func (r *userRepository) RedeemVerificationToken(token, autoLoginToken string) (*model.User, error) {
	result, err := r.db.Exec(`
		UPDATE users
		SET email_verified_at = NOW(),
		    verification_token = NULL,
		    verification_expires_at = NULL,
		    auto_login_token = ?,
		    updated_at = NOW()
		WHERE verification_token = ?
		  AND deleted_at IS NULL
		  AND (verification_expires_at IS NULL OR verification_expires_at > NOW())`,
		autoLoginToken, token)
	if err != nil {
		util.Logger.Error("兑换验证令牌失败", zap.Error(err))
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE auto_login_token = ?`
	user, err := scanUser(r.db.QueryRow(query, autoLoginToken))
	if err != nil {
		return nil, fmt.Errorf("读取已验证用户失败: %w", err)
	}
	util.Logger.Info("邮箱验证令牌兑换成功", zap.Int("user_id", user.ID))
	return user, nil
}

// RedeemAutoLoginToken 兑换自动登录令牌（真正的一次性：成功即清除）。
// 先读出用户，再以令牌仍然匹配为条件清除；并发兑换时
// 只有清除成功的一方视为兑换成功。
func (r *userRepository) RedeemAutoLoginToken(token string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE auto_login_token = ? AND email_verified_at IS NOT NULL AND deleted_at IS NULL`
	user, err := scanUser(r.db.QueryRow(query, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	result, err := r.db.Exec(`
		UPDATE users SET auto_login_token = NULL, updated_at = NOW()
		WHERE id = ? AND auto_login_token = ?`,
		user.ID, token)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// 另一个并发请求抢先兑换了
		return nil, nil
	}
	util.Logger.Info("自动登录令牌兑换成功", zap.Int("user_id", user.ID))
	return user, nil
}

// SetResetToken 写入密码重置令牌与过期时间
func (r *userRepository) SetResetToken(userID int, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET reset_token = ?, reset_token_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		token, expiresAt, time.Now(), userID)
	return err
}

// RedeemResetToken 兑换密码重置令牌：密码更新与令牌清除在同一条
// UPDATE 中完成，令牌不匹配或已过期时返回 false。
func (r *userRepository) RedeemResetToken(token, newPasswordHash string) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE users
		SET password_hash = ?, reset_token = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE reset_token = ?
		  AND reset_token_expires_at > NOW()
		  AND deleted_at IS NULL`,
		newPasswordHash, token)
	if err != nil {
		util.Logger.Error("兑换密码重置令牌失败", zap.Error(err))
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// UpsertAddress 保存收货地址：用户已有地址时就地更新，否则插入。
// 当前设计每个用户只保留一条地址。
func (r *userRepository) UpsertAddress(address *model.UserAddress) error {
	existing, err := r.GetCurrentAddress(address.UserID)
	if err != nil {
		return fmt.Errorf("查询现有地址失败: %w", err)
	}

	if existing != nil {
		address.ID = existing.ID
		_, err := r.db.Exec(`
			UPDATE user_addresses
			SET receiver_name = ?, phone = ?, line1 = ?, line2 = ?, city = ?, postal_code = ?, country = ?, updated_at = ?
			WHERE id = ? AND user_id = ?`,
			address.ReceiverName, address.Phone, address.Line1, address.Line2,
			address.City, address.PostalCode, address.Country, time.Now(),
			address.ID, address.UserID)
		if err != nil {
			util.Logger.Error("更新地址失败", zap.Error(err), zap.Int("address_id", address.ID))
			return err
		}
		return nil
	}

	result, err := r.db.Exec(`
		INSERT INTO user_addresses (user_id, receiver_name, phone, line1, line2, city, postal_code, country)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		address.UserID, address.ReceiverName, address.Phone, address.Line1, address.Line2,
		address.City, address.PostalCode, address.Country)
	if err != nil {
		util.Logger.Error("创建地址失败", zap.Error(err), zap.Int("user_id", address.UserID))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("获取新地址ID失败: %w", err)
	}
	address.ID = int(id)
	util.Logger.Info("地址创建成功",
		zap.Int("address_id", address.ID),
		zap.Int("user_id", address.UserID))
	return nil
}

// GetAddressByID 通过ID查找地址
func (r *userRepository) GetAddressByID(id int) (*model.UserAddress, error) {
	var address model.UserAddress
	query := `SELECT id, user_id, receiver_name, phone, line1, line2, city, postal_code, country, created_at, updated_at
              FROM user_addresses WHERE id = ?`
	err := r.db.QueryRow(query, id).Scan(
		&address.ID, &address.UserID, &address.ReceiverName, &address.Phone,
		&address.Line1, &address.Line2, &address.City, &address.PostalCode, &address.Country,
		&address.CreatedAt, &address.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// GetCurrentAddress 返回用户当前地址，没有时返回 (nil, nil)
func (r *userRepository) GetCurrentAddress(userID int) (*model.UserAddress, error) {
	var address model.UserAddress
	query := `SELECT id, user_id, receiver_name, phone, line1, line2, city, postal_code, country, created_at, updated_at
              FROM user_addresses WHERE user_id = ? ORDER BY updated_at DESC LIMIT 1`
	err := r.db.QueryRow(query, userID).Scan(
		&address.ID, &address.UserID, &address.ReceiverName, &address.Phone,
		&address.Line1, &address.Line2, &address.City, &address.PostalCode, &address.Country,
		&address.CreatedAt, &address.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}
