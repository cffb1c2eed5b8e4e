package interfaces

import "github.com/Delerious28/Andrew-webshop2-sub000/internal/model"

// OrderRepository 接口定义了订单仓库应该实现的方法。
// CreateIfAbsent 以 checkout_session_id 为幂等键：
// 会话已存在时不重复建单，返回已有订单。
type OrderRepository interface {
	CreateIfAbsent(order *model.Order) (created bool, err error)
	FindByID(id int) (*model.Order, error)
	FindBySessionID(sessionID string) (*model.Order, error)
	FindByUser(userID int) ([]*model.Order, error)
	FindAll(page, pageSize int, status string) ([]*model.Order, error)
	UpdateStatus(orderID int, status string) error
	Count() (int, error)
	CountByStatus(status string) (int, error)
	SumTotalCents() (int64, error)
}
