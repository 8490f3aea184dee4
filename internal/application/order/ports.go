package order

import (
	"context"
)

// TxManager 事务边界
// mysql.TxManager满足该接口；测试中用内存实现替代
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 领域事件发布端口
// pkg/mq.Publisher满足该接口；事件发布失败不影响主流程（只记日志）
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// 订单事件路由键
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status.changed"
	EventOrderCancelled     = "order.cancelled"
)

// OrderCreatedEvent 订单创建事件
type OrderCreatedEvent struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	UserID    uint   `json:"user_id"`
	Total     int64  `json:"total"`
	CreatedAt string `json:"created_at"`
}

// OrderStatusChangedEvent 订单状态流转事件
type OrderStatusChangedEvent struct {
	OrderID    uint   `json:"order_id"`
	OrderNo    string `json:"order_no"`
	UserID     uint   `json:"user_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ChangedAt  string `json:"changed_at"`
}

// OrderCancelledEvent 订单取消事件
type OrderCancelledEvent struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	UserID      uint   `json:"user_id"`
	Reason      string `json:"reason"`
	CancelledAt string `json:"cancelled_at"`
}
