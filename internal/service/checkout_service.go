package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Delerious28/Andrew-webshop2-sub000/config"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/repository/interfaces"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// createCheckoutSession 包装 Stripe 会话创建，测试中可替换
var createCheckoutSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

// CheckoutItem 结账请求中的一个条目
type CheckoutItem struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,min=1"`
}

// sessionLine 冻结在支付会话元数据里的行项目快照，
// webhook 据此建单，商品后续调价不影响已创建的会话
type sessionLine struct {
	ProductID      int    `json:"product_id"`
	Title          string `json:"title"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

// CheckoutService 支付桥接：把购物车转换为支付处理器会话，
// 并把处理器的异步确认落成订单。
type CheckoutService struct {
	orderRepo    interfaces.OrderRepository
	cartRepo     interfaces.CartRepository
	productRepo  interfaces.ProductRepository
	userRepo     interfaces.UserRepository
	emailService *EmailService
}

// NewCheckoutService 创建一个新的 CheckoutService 实例
func NewCheckoutService(
	orderRepo interfaces.OrderRepository,
	cartRepo interfaces.CartRepository,
	productRepo interfaces.ProductRepository,
	userRepo interfaces.UserRepository,
	emailService *EmailService,
) *CheckoutService {
	return &CheckoutService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// CreateSession 创建支付会话并返回跳转地址。
// 逐个按现价解析商品，任一商品不存在即失败；
// 用户、地址和行项目快照作为元数据随会话带走，
// 供 webhook 建单时关联。
func (s *CheckoutService) CreateSession(userID, addressID int, items []CheckoutItem) (string, error) {
	if len(items) == 0 {
		return "", errors.New(errors.ErrCartEmpty, "cart is empty")
	}

	address, err := s.userRepo.GetAddressByID(addressID)
	if err != nil {
		return "", err
	}
	if address == nil || address.UserID != userID {
		return "", errors.New(errors.ErrAddressNotFound, "address not found")
	}

	var lines []sessionLine
	var lineItems []*stripe.CheckoutSessionLineItemParams
	for _, item := range items {
		product, err := s.productRepo.FindByID(item.ProductID)
		if err != nil {
			return "", err
		}
		if product == nil {
			return "", errors.New(errors.ErrProductNotFound,
				fmt.Sprintf("product %d not found", item.ProductID))
		}

		lines = append(lines, sessionLine{
			ProductID:      product.ID,
			Title:          product.Title,
			UnitPriceCents: product.PriceCents,
			Quantity:       item.Quantity,
		})
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("eur"),
				UnitAmount: stripe.Int64(product.PriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(product.Title),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	snapshot, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(config.AppConfig.FrontendURL + "/checkout/success"),
		CancelURL:  stripe.String(config.AppConfig.FrontendURL + "/cart"),
	}
	params.AddMetadata("user_id", strconv.Itoa(userID))
	params.AddMetadata("address_id", strconv.Itoa(addressID))
	params.AddMetadata("cart", string(snapshot))

	sess, err := createCheckoutSession(params)
	if err != nil {
		util.Logger.Error("创建支付会话失败", zap.Error(err), zap.Int("user_id", userID))
		return "", errors.Wrap(errors.ErrUpstream, "failed to create checkout session", err)
	}

	util.Logger.Info("支付会话创建成功",
		zap.Int("user_id", userID),
		zap.String("session_id", sess.ID))
	return sess.URL, nil
}

// HandleWebhook 处理支付处理器的异步回调。
// 签名校验失败直接拒绝且无任何副作用；
// 只处理 checkout.session.completed 事件。
func (s *CheckoutService) HandleWebhook(payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, config.AppConfig.StripeWebhookSecret)
	if err != nil {
		util.Logger.Warn("webhook 签名校验失败", zap.Error(err))
		return errors.Wrap(errors.ErrBadRequest, "invalid webhook signature", err)
	}

	if event.Type != "checkout.session.completed" {
		util.Logger.Info("忽略的 webhook 事件", zap.String("type", string(event.Type)))
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return errors.Wrap(errors.ErrBadRequest, "malformed webhook payload", err)
	}

	return s.HandleCheckoutCompleted(&sess)
}

// HandleCheckoutCompleted 把已完成的支付会话落成订单。
// 元数据缺失或损坏时确认收到（处理器停止重试）但记录错误日志，
// 绝不静默丢弃；建单以会话ID为幂等键，重复投递不会重复建单。
func (s *CheckoutService) HandleCheckoutCompleted(sess *stripe.CheckoutSession) error {
	userID, err1 := strconv.Atoi(sess.Metadata["user_id"])
	addressID, err2 := strconv.Atoi(sess.Metadata["address_id"])
	cartJSON := sess.Metadata["cart"]
	if err1 != nil || err2 != nil || cartJSON == "" {
		util.Logger.Error("webhook 元数据缺失，无法创建订单",
			zap.String("session_id", sess.ID),
			zap.Any("metadata", sess.Metadata))
		return nil
	}

	var lines []sessionLine
	if err := json.Unmarshal([]byte(cartJSON), &lines); err != nil || len(lines) == 0 {
		util.Logger.Error("webhook 购物车快照损坏，无法创建订单",
			zap.Error(err),
			zap.String("session_id", sess.ID))
		return nil
	}

	var total int64
	var orderItems []*model.OrderItem
	for _, line := range lines {
		total += line.UnitPriceCents * int64(line.Quantity)
		orderItems = append(orderItems, &model.OrderItem{
			ProductID:      line.ProductID,
			Title:          line.Title,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
		})
	}

	order := &model.Order{
		UserID:            userID,
		AddressID:         &addressID,
		TotalCents:        total,
		CheckoutSessionID: sess.ID,
		Status:            model.OrderStatusPaid,
		Items:             orderItems,
	}

	created, err := s.orderRepo.CreateIfAbsent(order)
	if err != nil {
		util.Logger.Error("webhook 创建订单失败",
			zap.Error(err),
			zap.String("session_id", sess.ID))
		return err
	}
	if !created {
		// 重复投递，订单已存在
		return nil
	}

	if err := s.cartRepo.Clear(userID); err != nil {
		util.Logger.Error("清空购物车失败", zap.Error(err), zap.Int("user_id", userID))
	}

	user, err := s.userRepo.FindByID(userID)
	if err == nil && user != nil {
		if err := s.emailService.SendOrderConfirmationEmail(user.Email, order.OrderNumber, order.TotalCents); err != nil {
			util.Logger.Error("发送订单确认邮件失败", zap.Error(err), zap.Int("order_id", order.ID))
		}
	}

	return nil
}

// GetOrder 返回用户自己的订单
func (s *CheckoutService) GetOrder(userID, orderID int) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, errors.New(errors.ErrOrderNotFound, "order not found")
	}
	return order, nil
}

// ListOrders 返回用户的订单列表
func (s *CheckoutService) ListOrders(userID int) ([]*model.Order, error) {
	return s.orderRepo.FindByUser(userID)
}
