package order

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/cocomart/internal/domain/order"
	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/internal/domain/user"
	"github.com/xiebiao/cocomart/pkg/metrics"
)

// 订单号冲突时的最大重试次数
// 冲突概率极低(毫秒时间戳+随机后缀),重试是兜底而非常态
const maxOrderNoRetries = 3

// CreateOrderUseCase 创建订单用例
// 设计说明:这是订单侧最核心的用例
// 涉及:事务处理、悲观锁防超卖、价格快照、订单号冲突重试
type CreateOrderUseCase struct {
	orderRepo   order.Repository
	productRepo product.Repository
	userRepo    user.Repository
	txManager   TxManager
	publisher   EventPublisher
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	productRepo product.Repository,
	userRepo user.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		publisher:   publisher,
	}
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	UserID uint              // 买家用户ID(从JWT中提取)
	Items  []CreateOrderItem // 订单明细

	ShippingAddress order.Address  // 收货地址(必填)
	BillingAddress  *order.Address // 账单地址(可空,默认同收货地址)

	// 联系方式(可空,默认取用户资料快照)
	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	PaymentMethod string // cod | bank_transfer | online
	Notes         string
}

// CreateOrderItem 订单明细项
type CreateOrderItem struct {
	ProductID uint // 商品ID
	Quantity  int  // 购买数量
}

// Execute 执行下单用例
//
// 完整流程(单事务):
//  1. SELECT FOR UPDATE锁定商品行(防并发超卖)
//  2. 校验商品上架、库存充足
//  3. 以锁定时的价格做快照组装明细(防改价攻击)
//  4. 生成订单号并创建订单(唯一索引冲突则换号重试)
//  5. 扣减库存
//  6. COMMIT后发布order.created事件
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	// 1. 参数校验
	if len(req.Items) == 0 {
		return nil, order.ErrEmptyOrderItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, order.ErrInvalidQuantity
		}
	}
	if req.ShippingAddress.IsZero() {
		return nil, order.ErrMissingShippingAddress
	}

	// 2. 补齐联系方式快照
	// 请求未提供时取用户资料当前值
	contact := order.Contact{
		Name:  req.CustomerName,
		Email: req.CustomerEmail,
		Phone: req.CustomerPhone,
	}
	if contact.Name == "" || contact.Email == "" {
		u, err := uc.userRepo.FindByID(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		name, email, phone := u.Contact()
		if contact.Name == "" {
			contact.Name = name
		}
		if contact.Email == "" {
			contact.Email = email
		}
		if contact.Phone == "" {
			contact.Phone = phone
		}
	}

	var result *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 3. 锁定商品行(悲观锁,防止并发超卖)
		// SELECT FOR UPDATE会锁定查询的行,其他事务必须等待
		// 当前事务COMMIT或ROLLBACK后才能访问
		productMap := make(map[uint]*product.Product)
		for _, item := range req.Items {
			p, err := uc.productRepo.LockByID(txCtx, item.ProductID)
			if err != nil {
				return err
			}

			if !p.IsActive {
				return product.ErrProductInactive
			}

			// 必须在锁定后检查库存,否则可能并发扣减导致超卖
			if p.Stock < item.Quantity {
				return product.ErrInsufficientStock
			}

			productMap[item.ProductID] = p
		}

		// 4. 以锁定时的价格组装明细快照
		// 防改价攻击:不信任前端传递的价格
		orderItems := make([]order.Item, len(req.Items))
		for i, item := range req.Items {
			p := productMap[item.ProductID]
			orderItems[i] = order.Item{
				ProductID:   item.ProductID,
				ProductName: p.Name,
				Quantity:    item.Quantity,
				UnitPrice:   p.Price,
			}
		}

		// 5. 创建订单(订单号冲突则换号重试)
		var createErr error
		for i := 0; i < maxOrderNoRetries; i++ {
			orderNo := order.GenerateOrderNo()
			newOrder := order.NewOrder(orderNo, req.UserID, orderItems,
				req.ShippingAddress, req.BillingAddress, contact, req.PaymentMethod)
			newOrder.Notes = req.Notes

			createErr = uc.orderRepo.Create(txCtx, newOrder)
			if createErr == nil {
				result = newOrder
				break
			}
			if createErr != order.ErrOrderNoDuplicate {
				return createErr
			}
		}
		if createErr != nil {
			return createErr
		}

		// 6. 扣减库存
		// 扣减失败整个事务回滚:订单不会创建,库存不会减少
		for _, item := range req.Items {
			if err := uc.productRepo.UpdateStock(txCtx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	metrics.OrderAmountFen.Observe(float64(result.Total))

	// 7. 发布订单创建事件(事务已提交,失败只记日志)
	if uc.publisher != nil {
		event := OrderCreatedEvent{
			OrderID:   result.ID,
			OrderNo:   result.OrderNo,
			UserID:    result.UserID,
			Total:     result.Total,
			CreatedAt: result.CreatedAt.Format(time.RFC3339),
		}
		if err := uc.publisher.Publish(ctx, EventOrderCreated, event); err != nil {
			log.Printf("发布订单创建事件失败: order_no=%s, err=%v", result.OrderNo, err)
			metrics.MessagesPublishedTotal.WithLabelValues(EventOrderCreated, "error").Inc()
		} else {
			metrics.MessagesPublishedTotal.WithLabelValues(EventOrderCreated, "ok").Inc()
		}
	}

	return result, nil
}
