package order

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/cocomart/internal/domain/order"
	"github.com/xiebiao/cocomart/pkg/metrics"
)

// AdvanceStatusUseCase 推进订单状态用例(管理员)
//
// 并发安全说明:
// 两个并发请求同时推进同一订单时,先到者拿到行锁完成流转,
// 后到者基于流转后的最新状态重新校验,非法流转直接报错。
// 检查-写入必须基于SELECT FOR UPDATE后的行,不能用请求携带的旧快照。
type AdvanceStatusUseCase struct {
	orderRepo order.Repository
	txManager TxManager
	publisher EventPublisher
}

// NewAdvanceStatusUseCase 创建状态推进用例
func NewAdvanceStatusUseCase(orderRepo order.Repository, txManager TxManager, publisher EventPublisher) *AdvanceStatusUseCase {
	return &AdvanceStatusUseCase{
		orderRepo: orderRepo,
		txManager: txManager,
		publisher: publisher,
	}
}

// AdvanceStatusRequest 状态推进请求
type AdvanceStatusRequest struct {
	OrderID        uint
	TargetStatus   order.Status
	TrackingNumber string // 发货时可同时登记物流单号
}

// Execute 执行状态推进
// 流转到delivered时由实体同步记录送达时间并把支付状态置为已支付
func (uc *AdvanceStatusUseCase) Execute(ctx context.Context, req AdvanceStatusRequest) (*order.Order, error) {
	if !req.TargetStatus.IsValid() {
		return nil, order.ErrInvalidStatusTransition
	}
	// 取消不走通用推进,必须经由CancelOrderUseCase(强制带取消原因)
	if req.TargetStatus == order.StatusCancelled {
		return nil, order.ErrInvalidStatusTransition
	}

	var result *order.Order
	var fromStatus order.Status
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定订单行,基于最新状态校验
		o, err := uc.orderRepo.LockByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}
		fromStatus = o.Status

		// 2. 状态机校验并流转
		if err := o.AdvanceTo(req.TargetStatus); err != nil {
			return err
		}

		if req.TrackingNumber != "" {
			o.TrackingNumber = req.TrackingNumber
		}

		// 3. 落库
		if err := uc.orderRepo.Update(txCtx, o); err != nil {
			return err
		}

		result = o
		return nil
	})

	if err != nil {
		return nil, err
	}

	metrics.OrderStatusTransitionsTotal.WithLabelValues(result.Status.String()).Inc()

	if uc.publisher != nil {
		event := OrderStatusChangedEvent{
			OrderID:    result.ID,
			OrderNo:    result.OrderNo,
			UserID:     result.UserID,
			FromStatus: fromStatus.String(),
			ToStatus:   result.Status.String(),
			ChangedAt:  time.Now().Format(time.RFC3339),
		}
		if err := uc.publisher.Publish(ctx, EventOrderStatusChanged, event); err != nil {
			log.Printf("发布订单状态流转事件失败: order_no=%s, err=%v", result.OrderNo, err)
			metrics.MessagesPublishedTotal.WithLabelValues(EventOrderStatusChanged, "error").Inc()
		} else {
			metrics.MessagesPublishedTotal.WithLabelValues(EventOrderStatusChanged, "ok").Inc()
		}
	}

	return result, nil
}
