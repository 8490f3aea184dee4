package order

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/cocomart/internal/domain/order"
	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/pkg/metrics"
)

// CancelOrderUseCase 取消订单用例
//
// 业务规则:
// 1. 只有pending/processing的订单可以取消
// 2. 订单作者或管理员可以取消
// 3. 取消时回补库存(下单时扣减的库存原路返还)
// 4. 与状态推进并发时,行锁保证只有一方成功
type CancelOrderUseCase struct {
	orderRepo   order.Repository
	productRepo product.Repository
	txManager   TxManager
	publisher   EventPublisher
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(
	orderRepo order.Repository,
	productRepo product.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		txManager:   txManager,
		publisher:   publisher,
	}
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	OrderID uint
	ActorID uint // 发起人(从JWT提取)
	IsAdmin bool
	Reason  string // 可空,默认"用户取消订单"
}

// Execute 执行取消订单
func (uc *CancelOrderUseCase) Execute(ctx context.Context, req CancelOrderRequest) (*order.Order, error) {
	var result *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定订单行
		o, err := uc.orderRepo.LockByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}

		// 2. 权限校验:作者或管理员
		if !req.IsAdmin && o.UserID != req.ActorID {
			return order.ErrOrderPermissionDenied
		}

		// 3. 基于锁定后的最新状态校验可取消性并取消
		if err := o.Cancel(req.Reason); err != nil {
			return err
		}

		// 4. 落库
		if err := uc.orderRepo.Update(txCtx, o); err != nil {
			return err
		}

		// 5. 回补库存
		for _, item := range o.Items {
			if err := uc.productRepo.UpdateStock(txCtx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		result = o
		return nil
	})

	if err != nil {
		return nil, err
	}

	metrics.OrdersCancelledTotal.Inc()

	if uc.publisher != nil {
		event := OrderCancelledEvent{
			OrderID:     result.ID,
			OrderNo:     result.OrderNo,
			UserID:      result.UserID,
			Reason:      result.CancellationReason,
			CancelledAt: time.Now().Format(time.RFC3339),
		}
		if err := uc.publisher.Publish(ctx, EventOrderCancelled, event); err != nil {
			log.Printf("发布订单取消事件失败: order_no=%s, err=%v", result.OrderNo, err)
			metrics.MessagesPublishedTotal.WithLabelValues(EventOrderCancelled, "error").Inc()
		} else {
			metrics.MessagesPublishedTotal.WithLabelValues(EventOrderCancelled, "ok").Inc()
		}
	}

	return result, nil
}
