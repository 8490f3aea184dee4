package review

import (
	"context"
)

// TxManager 事务边界
// mysql.TxManager满足该接口；测试中用内存实现替代
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 领域事件发布端口
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// 评价事件路由键
const (
	EventReviewCreated   = "review.created"
	EventReviewUpdated   = "review.updated"
	EventReviewDeleted   = "review.deleted"
	EventReviewModerated = "review.moderated"
)

// ReviewEvent 评价事件(创建/更新/删除/审核共用同一载荷)
type ReviewEvent struct {
	ReviewID  uint    `json:"review_id"`
	ProductID uint    `json:"product_id"`
	UserID    uint    `json:"user_id"`
	Rating    int     `json:"rating"`
	Approved  bool    `json:"approved"`
	AvgRating float64 `json:"avg_rating"` // 事件发生后商品的最新均分
	Count     int     `json:"count"`      // 事件发生后商品的最新有效评价数
}
