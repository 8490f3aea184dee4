package order

import (
	"context"
	"time"
)

// Repository 订单仓储接口（依赖倒置：接口在domain层，实现在infrastructure层）
// 事务通过context传递（见mysql.TxManager）
type Repository interface {
	// Create 创建订单（包含订单明细，必须在同一事务中落库）
	// 订单号唯一索引冲突时返回ErrOrderNoDuplicate
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单（包含明细）
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// LockByID 锁定并读取订单（SELECT FOR UPDATE）
	// 状态流转的检查-写入必须基于锁定后的最新行，不能用调用方传入的旧快照；
	// 只能在TxManager.Transaction内调用
	LockByID(ctx context.Context, id uint) (*Order, error)

	// Update 更新订单的可变字段（状态、支付、物流、取消信息）
	// 明细和金额快照在创建后不再更新
	Update(ctx context.Context, order *Order) error

	// ListByUserID 查询用户的订单列表（新订单在前）
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)

	// ListByStatus 按状态查询订单列表（新订单在前）
	ListByStatus(ctx context.Context, status Status, page, pageSize int) ([]*Order, int64, error)

	// ListPending 查询待履约订单（pending+processing），先到先得（旧订单在前）
	ListPending(ctx context.Context) ([]*Order, error)

	// SumRevenue 统计营收：delivered且paid、送达时间落在[start,end]内的订单Total之和
	// 必须对已存储的total求和，不得根据明细重算（明细单价只是历史快照）
	SumRevenue(ctx context.Context, start, end time.Time) (int64, error)

	// HasDeliveredProduct 判断用户是否存在包含该商品的已送达订单
	// 评价的"已购买"标记依据此查询
	HasDeliveredProduct(ctx context.Context, userID, productID uint) (bool, error)
}
