package model

// SystemStats 后台系统统计数据
type SystemStats struct {
	TotalUsers    int   `json:"total_users"`
	TotalProducts int   `json:"total_products"`
	TotalOrders   int   `json:"total_orders"`
	TotalCents    int64 `json:"total_cents"`
	PendingOrders int   `json:"pending_orders"`
	PaidOrders    int   `json:"paid_orders"`
}
