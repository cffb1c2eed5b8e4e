package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"go.uber.org/zap"
)

// orderRepository 实现了 OrderRepository 接口
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository 创建一个新的 orderRepository 实例
func NewOrderRepository(db *sql.DB) *orderRepository {
	return &orderRepository{db}
}

// CreateIfAbsent 以 checkout_session_id 为幂等键创建订单。
// 同一支付会话的重复投递只会命中已有行，不会重复建单。
// 订单与行项目在同一事务内写入。
func (r *orderRepository) CreateIfAbsent(order *model.Order) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return false, err
	}
	defer tx.Rollback()

	// 锁住可能存在的同会话订单，防止并发投递各自建单
	var existingID int
	err = tx.QueryRow(`SELECT id FROM orders WHERE checkout_session_id = ? FOR UPDATE`,
		order.CheckoutSessionID).Scan(&existingID)
	if err == nil {
		util.Logger.Info("支付会话已有订单，跳过创建",
			zap.Int("order_id", existingID),
			zap.String("session_id", order.CheckoutSessionID))
		order.ID = existingID
		return false, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return false, err
	}

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = model.OrderStatusPaid
	}

	result, err := tx.Exec(`
		INSERT INTO orders (order_number, user_id, address_id, total_cents, checkout_session_id, status, created_at, updated_at)
		VALUES ('TEMP', ?, ?, ?, ?, ?, ?, ?)`,
		order.UserID, order.AddressID, order.TotalCents, order.CheckoutSessionID,
		order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		util.Logger.Error("创建订单失败", zap.Error(err), zap.Int("user_id", order.UserID))
		return false, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("获取订单ID失败: %w", err)
	}
	order.ID = int(id)

	order.OrderNumber = fmt.Sprintf("RMF-%d-%06d", now.Year(), order.ID)
	if _, err := tx.Exec(`UPDATE orders SET order_number = ? WHERE id = ?`,
		order.OrderNumber, order.ID); err != nil {
		return false, err
	}

	for _, item := range order.Items {
		item.OrderID = order.ID
		result, err := tx.Exec(`
			INSERT INTO order_items (order_id, product_id, title, unit_price_cents, quantity)
			VALUES (?, ?, ?, ?, ?)`,
			item.OrderID, item.ProductID, item.Title, item.UnitPriceCents, item.Quantity)
		if err != nil {
			util.Logger.Error("创建订单行项目失败", zap.Error(err), zap.Int("order_id", order.ID))
			return false, err
		}
		itemID, err := result.LastInsertId()
		if err != nil {
			return false, err
		}
		item.ID = int(itemID)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return false, err
	}

	util.Logger.Info("订单创建成功",
		zap.Int("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("session_id", order.CheckoutSessionID),
		zap.Int64("total_cents", order.TotalCents))
	return true, nil
}

const orderColumns = `id, order_number, user_id, address_id, total_cents, checkout_session_id, status, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.UserID, &order.AddressID,
		&order.TotalCents, &order.CheckoutSessionID, &order.Status,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByID 通过ID查找订单（含行项目），未找到时返回 (nil, nil)
func (r *orderRepository) FindByID(id int) (*model.Order, error) {
	order, err := scanOrder(r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	items, err := r.listItems(order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// FindBySessionID 通过支付会话ID查找订单
func (r *orderRepository) FindBySessionID(sessionID string) (*model.Order, error) {
	order, err := scanOrder(r.db.QueryRow(
		`SELECT `+orderColumns+` FROM orders WHERE checkout_session_id = ?`, sessionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	items, err := r.listItems(order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) listItems(orderID int) ([]*model.OrderItem, error) {
	rows, err := r.db.Query(`
		SELECT id, order_id, product_id, title, unit_price_cents, quantity
		FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Title, &item.UnitPriceCents, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// FindByUser 返回用户的订单列表，新的在前
func (r *orderRepository) FindByUser(userID int) ([]*model.Order, error) {
	rows, err := r.db.Query(`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// FindAll 返回分页的订单列表（管理员），status 为空时不过滤
func (r *orderRepository) FindAll(page, pageSize int, status string) ([]*model.Order, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// UpdateStatus 更新订单状态
func (r *orderRepository) UpdateStatus(orderID int, status string) error {
	result, err := r.db.Exec(`UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`,
		status, orderID)
	if err != nil {
		util.Logger.Error("更新订单状态失败", zap.Error(err), zap.Int("order_id", orderID))
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	util.Logger.Info("订单状态已更新",
		zap.Int("order_id", orderID),
		zap.String("status", status))
	return nil
}

// Count 返回订单总数
func (r *orderRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}

// CountByStatus 返回指定状态的订单数
func (r *orderRepository) CountByStatus(status string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM orders WHERE status = ?", status).Scan(&count)
	return count, err
}

// SumTotalCents 返回已支付及之后状态订单的总金额
func (r *orderRepository) SumTotalCents() (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRow(
		`SELECT SUM(total_cents) FROM orders WHERE status IN ('paid', 'shipped', 'delivered')`).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
