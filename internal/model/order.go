package model

import "time"

// 订单状态集合。管理员可以在集合内任意设置状态，
// 不强制状态转移图。
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus 判断状态是否在允许的集合内
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order 订单模型。创建后即为购物车的不可变快照，
// CheckoutSessionID 对应支付处理器的会话ID，唯一，
// 用于 webhook 重复投递时的幂等去重。
type Order struct {
	ID                int          `json:"id"`
	OrderNumber       string       `json:"order_number"`
	UserID            int          `json:"user_id"`
	AddressID         *int         `json:"address_id,omitempty"`
	Address           *UserAddress `json:"address,omitempty"`
	TotalCents        int64        `json:"total_cents"`
	CheckoutSessionID string       `json:"checkout_session_id"`
	Status            string       `json:"status"`
	Items             []*OrderItem `json:"items,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// OrderItem 订单行项目，冻结下单时的商品标题和单价
type OrderItem struct {
	ID             int    `json:"id"`
	OrderID        int    `json:"order_id"`
	ProductID      int    `json:"product_id"`
	Title          string `json:"title"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}
