package order

import (
	"context"

	"github.com/xiebiao/cocomart/internal/domain/order"
)

// UpdatePaymentUseCase 更新支付信息用例(管理员)
// 支付状态允许自由流转(如pending→failed→pending重试),不走订单状态机
type UpdatePaymentUseCase struct {
	orderRepo order.Repository
	txManager TxManager
}

// NewUpdatePaymentUseCase 创建更新支付信息用例
func NewUpdatePaymentUseCase(orderRepo order.Repository, txManager TxManager) *UpdatePaymentUseCase {
	return &UpdatePaymentUseCase{
		orderRepo: orderRepo,
		txManager: txManager,
	}
}

// UpdatePaymentRequest 更新支付信息请求
type UpdatePaymentRequest struct {
	OrderID        uint
	PaymentStatus  *order.PaymentStatus // 可空:只更新详情
	PaymentDetails string               // 支付渠道回传的原始信息(JSON文本)
}

// Execute 执行支付信息更新
func (uc *UpdatePaymentUseCase) Execute(ctx context.Context, req UpdatePaymentRequest) (*order.Order, error) {
	var result *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}

		o.UpdatePayment(req.PaymentStatus, req.PaymentDetails)

		if err := uc.orderRepo.Update(txCtx, o); err != nil {
			return err
		}

		result = o
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}
