package order

import (
	"context"

	"github.com/xiebiao/cocomart/internal/domain/order"
)

// GetOrderUseCase 查询订单详情用例
type GetOrderUseCase struct {
	orderRepo order.Repository
}

// NewGetOrderUseCase 创建订单详情用例
func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// Execute 查询订单详情
// 权限规则:订单作者或管理员可见
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID, actorID uint, isAdmin bool) (*order.Order, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && o.UserID != actorID {
		// 不泄露订单存在性:权限不足统一报"不存在"
		return nil, order.ErrOrderNotFound
	}

	return o, nil
}

// ExecuteByOrderNo 根据订单号查询订单详情
func (uc *GetOrderUseCase) ExecuteByOrderNo(ctx context.Context, orderNo string, actorID uint, isAdmin bool) (*order.Order, error) {
	o, err := uc.orderRepo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}

	if !isAdmin && o.UserID != actorID {
		return nil, order.ErrOrderNotFound
	}

	return o, nil
}
