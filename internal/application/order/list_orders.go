package order

import (
	"context"

	"github.com/xiebiao/cocomart/internal/domain/order"
)

// ListOrdersUseCase 订单列表查询用例
// 三个入口:按用户(我的订单)、按状态(后台筛选)、待履约队列(后台工作台)
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建订单列表用例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// ListByUser 查询用户的订单列表(新订单在前)
func (uc *ListOrdersUseCase) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return uc.orderRepo.ListByUserID(ctx, userID, page, pageSize)
}

// ListByStatus 按状态查询订单列表(管理员,新订单在前)
func (uc *ListOrdersUseCase) ListByStatus(ctx context.Context, status order.Status, page, pageSize int) ([]*order.Order, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return uc.orderRepo.ListByStatus(ctx, status, page, pageSize)
}

// ListPending 查询待履约订单(管理员)
// pending+processing,先到先得(旧订单在前)
func (uc *ListOrdersUseCase) ListPending(ctx context.Context) ([]*order.Order, error) {
	return uc.orderRepo.ListPending(ctx)
}

// normalizePage 分页参数兜底
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
