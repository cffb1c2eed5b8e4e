package util

import (
	"github.com/go-playground/validator/v10"
)

// ValidatePriceCents 验证价格（最小货币单位）必须为正整数
func ValidatePriceCents(fl validator.FieldLevel) bool {
	price, ok := fl.Field().Interface().(int64)
	if !ok {
		return false
	}
	return price > 0
}

// ValidateOrderStatus 验证订单状态是否在允许的集合内
func ValidateOrderStatus(fl validator.FieldLevel) bool {
	status, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	switch status {
	case "pending", "paid", "shipped", "delivered", "cancelled":
		return true
	}
	return false
}
