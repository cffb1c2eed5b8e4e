package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateOpaqueToken 生成一个32字节的随机令牌（64位十六进制字符串）。
// 用于邮箱验证、自动登录和密码重置等一次性能力令牌，
// 令牌本身不携带任何声明，有效性完全由数据库查询决定。
func GenerateOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("生成随机令牌失败: %w", err)
	}
	return hex.EncodeToString(b), nil
}
