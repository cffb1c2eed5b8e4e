package model

import "time"

// Product 商品模型。价格以最小货币单位（分）存储。
// 库存仅用于展示，下单不会扣减。
type Product struct {
	ID           int             `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	PriceCents   int64           `json:"price_cents"`
	Category     string          `json:"category"`
	Stock        int             `json:"stock"`
	HeroImageURL string          `json:"hero_image_url"`
	Model3DURL   string          `json:"model3d_url,omitempty"`
	Images       []*ProductImage `json:"images,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductImage 商品图集条目，Position 决定展示顺序
type ProductImage struct {
	ID        int       `json:"id"`
	ProductID int       `json:"product_id"`
	ImageURL  string    `json:"image_url"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
