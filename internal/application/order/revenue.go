package order

import (
	"context"
	"time"

	"github.com/xiebiao/cocomart/internal/domain/order"
)

// RevenueUseCase 营收统计用例(管理员)
//
// 统计口径:
// 1. 只计delivered且paid的订单
// 2. 按送达时间(而非下单时间)落入[start,end]区间
// 3. 对已存储的total求和,不根据明细重算
type RevenueUseCase struct {
	orderRepo order.Repository
}

// NewRevenueUseCase 创建营收统计用例
func NewRevenueUseCase(orderRepo order.Repository) *RevenueUseCase {
	return &RevenueUseCase{orderRepo: orderRepo}
}

// RevenueResult 营收统计结果
type RevenueResult struct {
	Start        time.Time
	End          time.Time
	TotalRevenue int64 // 分
}

// Execute 执行营收统计
func (uc *RevenueUseCase) Execute(ctx context.Context, start, end time.Time) (*RevenueResult, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, order.ErrInvalidRevenueRange
	}

	sum, err := uc.orderRepo.SumRevenue(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &RevenueResult{
		Start:        start,
		End:          end,
		TotalRevenue: sum,
	}, nil
}
