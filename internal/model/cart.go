package model

import "time"

// CartItem 购物车条目，(user_id, product_id) 唯一。
// 小计按读取时的商品现价计算，价格冻结只发生在订单创建时。
type CartItem struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subtotal 返回该条目的小计（现价 × 数量）
func (c *CartItem) Subtotal() int64 {
	if c.Product == nil {
		return 0
	}
	return c.Product.PriceCents * int64(c.Quantity)
}

// GuestCartItem 未登录用户在本地保存的购物车条目，
// 登录时通过合并接口并入服务端购物车
type GuestCartItem struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,min=1"`
}
