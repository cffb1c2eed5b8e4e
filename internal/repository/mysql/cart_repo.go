package mysql

import (
	"database/sql"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"go.uber.org/zap"
)

// cartRepository 实现了 CartRepository 接口
type cartRepository struct {
	db *sql.DB
}

// NewCartRepository 创建一个新的 cartRepository 实例
func NewCartRepository(db *sql.DB) *cartRepository {
	return &cartRepository{db}
}

// AddItem 加入购物车。(user_id, product_id) 上有唯一索引，
// 用 ON DUPLICATE KEY 在数据库内原子累加数量，
// 并发加购不会丢失增量。
func (r *cartRepository) AddItem(userID, productID, quantity int) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity), updated_at = NOW()`,
		userID, productID, quantity)
	if err != nil {
		util.Logger.Error("加入购物车失败",
			zap.Error(err),
			zap.Int("user_id", userID),
			zap.Int("product_id", productID))
		return err
	}
	return nil
}

// UpdateQuantity 直接替换数量
func (r *cartRepository) UpdateQuantity(userID, productID, quantity int) error {
	_, err := r.db.Exec(`
		UPDATE cart_items SET quantity = ?, updated_at = NOW()
		WHERE user_id = ? AND product_id = ?`,
		quantity, userID, productID)
	return err
}

// RemoveItem 移除条目。删除不存在的条目不算错误（幂等）。
func (r *cartRepository) RemoveItem(userID, productID int) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`,
		userID, productID)
	return err
}

// ListItems 返回用户购物车，关联商品现价
func (r *cartRepository) ListItems(userID int) ([]*model.CartItem, error) {
	rows, err := r.db.Query(`
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
		       p.id, p.title, p.description, p.price_cents, p.category, p.stock,
		       p.hero_image_url, p.model3d_url, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = ?
		ORDER BY ci.id`, userID)
	if err != nil {
		util.Logger.Error("查询购物车失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	var items []*model.CartItem
	for rows.Next() {
		var item model.CartItem
		var product model.Product
		err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
			&product.ID, &product.Title, &product.Description, &product.PriceCents,
			&product.Category, &product.Stock, &product.HeroImageURL, &product.Model3DURL,
			&product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, err
		}
		item.Product = &product
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Clear 清空用户购物车
func (r *cartRepository) Clear(userID int) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}
