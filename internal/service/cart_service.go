package service

import (
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/repository/interfaces"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"go.uber.org/zap"
)

// CartService 处理购物车业务逻辑。
// 小计按读取时的商品现价计算；价格冻结发生在订单创建时，
// 不在购物车里。
type CartService struct {
	cartRepo    interfaces.CartRepository
	productRepo interfaces.ProductRepository
}

// NewCartService 创建一个新的 CartService 实例
func NewCartService(cartRepo interfaces.CartRepository, productRepo interfaces.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// AddItem 加入购物车，重复加购时数量累加
func (s *CartService) AddItem(userID, productID, quantity int) error {
	if quantity < 1 {
		return errors.New(errors.ErrValidation, "quantity must be at least 1")
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return errors.New(errors.ErrProductNotFound, "product not found")
	}

	if err := s.cartRepo.AddItem(userID, productID, quantity); err != nil {
		return err
	}
	util.Logger.Info("商品已加入购物车",
		zap.Int("user_id", userID),
		zap.Int("product_id", productID),
		zap.Int("quantity", quantity))
	return nil
}

// UpdateQuantity 更新条目数量。数量小于1按移除处理。
func (s *CartService) UpdateQuantity(userID, productID, quantity int) error {
	if quantity < 1 {
		return s.RemoveItem(userID, productID)
	}
	return s.cartRepo.UpdateQuantity(userID, productID, quantity)
}

// RemoveItem 移除条目，幂等
func (s *CartService) RemoveItem(userID, productID int) error {
	return s.cartRepo.RemoveItem(userID, productID)
}

// GetCart 返回购物车条目与按现价计算的小计
func (s *CartService) GetCart(userID int) ([]*model.CartItem, int64, error) {
	items, err := s.cartRepo.ListItems(userID)
	if err != nil {
		return nil, 0, err
	}
	var subtotal int64
	for _, item := range items {
		subtotal += item.Subtotal()
	}
	return items, subtotal, nil
}

// Merge 登录时合并游客本地购物车：按商品取并集，数量相加。
// 本地条目里已下架的商品跳过并记录日志，不让合并整体失败。
func (s *CartService) Merge(userID int, guestItems []model.GuestCartItem) error {
	for _, item := range guestItems {
		if item.Quantity < 1 {
			continue
		}
		product, err := s.productRepo.FindByID(item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			util.Logger.Warn("合并购物车时跳过不存在的商品",
				zap.Int("user_id", userID),
				zap.Int("product_id", item.ProductID))
			continue
		}
		if err := s.cartRepo.AddItem(userID, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	util.Logger.Info("游客购物车合并完成",
		zap.Int("user_id", userID),
		zap.Int("merged_items", len(guestItems)))
	return nil
}

// Clear 清空购物车
func (s *CartService) Clear(userID int) error {
	return s.cartRepo.Clear(userID)
}
