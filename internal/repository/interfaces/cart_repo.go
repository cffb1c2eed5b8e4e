package interfaces

import "github.com/Delerious28/Andrew-webshop2-sub000/internal/model"

// CartRepository 接口定义了购物车仓库应该实现的方法。
// AddItem 必须是行级原子累加，并发加购不丢失数量。
type CartRepository interface {
	AddItem(userID, productID, quantity int) error
	UpdateQuantity(userID, productID, quantity int) error
	RemoveItem(userID, productID int) error
	ListItems(userID int) ([]*model.CartItem, error)
	Clear(userID int) error
}
