package order

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/cocomart/internal/domain/order"
	"github.com/xiebiao/cocomart/internal/domain/product"
)

func newCreateOrderFixture(products ...*product.Product) (*CreateOrderUseCase, *fakeOrderRepo, *fakeProductRepo, *fakePublisher) {
	orderRepo := newFakeOrderRepo()
	productRepo := newFakeProductRepo(products...)
	userRepo := newFakeUserRepo(testUser(1))
	publisher := &fakePublisher{}
	uc := NewCreateOrderUseCase(orderRepo, productRepo, userRepo, &fakeTxManager{}, publisher)
	return uc, orderRepo, productRepo, publisher
}

// TestCreateOrder_Success 测试正常下单流程
func TestCreateOrder_Success(t *testing.T) {
	uc, _, productRepo, publisher := newCreateOrderFixture(testProduct(1, 1500, 10))

	o, err := uc.Execute(context.Background(), CreateOrderRequest{
		UserID:          1,
		Items:           []CreateOrderItem{{ProductID: 1, Quantity: 3}},
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   "cod",
		Notes:           "下午送",
	})
	require.NoError(t, err)

	assert.NotZero(t, o.ID)
	assert.True(t, order.ValidateOrderNo(o.OrderNo))
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)

	// 金额推导:小计45元 + 税2.25元 + 运费50元
	assert.Equal(t, int64(4500), o.Subtotal)
	assert.Equal(t, int64(225), o.Tax)
	assert.Equal(t, int64(5000), o.ShippingCost)
	assert.Equal(t, int64(9725), o.Total)

	// 联系方式从用户资料取快照
	assert.Equal(t, "买家", o.CustomerName)
	assert.Equal(t, "buyer@example.com", o.CustomerEmail)

	// 库存已扣减
	p, err := productRepo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Stock)

	// 事务提交后发布事件
	assert.Equal(t, 1, publisher.eventCount(EventOrderCreated))
}

// TestCreateOrder_PriceSnapshot 测试价格快照:下单后改价不影响已有订单
func TestCreateOrder_PriceSnapshot(t *testing.T) {
	p := testProduct(1, 1500, 10)
	uc, orderRepo, productRepo, _ := newCreateOrderFixture(p)

	o, err := uc.Execute(context.Background(), CreateOrderRequest{
		UserID:          1,
		Items:           []CreateOrderItem{{ProductID: 1, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	// 商品涨价
	p2, _ := productRepo.FindByID(context.Background(), 1)
	p2.Price = 9999
	require.NoError(t, productRepo.Update(context.Background(), p2))

	// 已有订单的明细单价仍是下单时的价格
	stored, err := orderRepo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, int64(1500), stored.Items[0].UnitPrice)
	assert.Equal(t, "老椰子", stored.Items[0].ProductName)
}

// TestCreateOrder_Validation 测试参数校验
func TestCreateOrder_Validation(t *testing.T) {
	uc, _, _, _ := newCreateOrderFixture(testProduct(1, 1500, 10))

	tests := []struct {
		name    string
		req     CreateOrderRequest
		wantErr error
	}{
		{
			name:    "明细为空",
			req:     CreateOrderRequest{UserID: 1, ShippingAddress: testShippingAddress()},
			wantErr: order.ErrEmptyOrderItems,
		},
		{
			name: "数量为0",
			req: CreateOrderRequest{
				UserID: 1, Items: []CreateOrderItem{{ProductID: 1, Quantity: 0}},
				ShippingAddress: testShippingAddress(),
			},
			wantErr: order.ErrInvalidQuantity,
		},
		{
			name: "数量为负",
			req: CreateOrderRequest{
				UserID: 1, Items: []CreateOrderItem{{ProductID: 1, Quantity: -2}},
				ShippingAddress: testShippingAddress(),
			},
			wantErr: order.ErrInvalidQuantity,
		},
		{
			name: "缺少收货地址",
			req: CreateOrderRequest{
				UserID: 1, Items: []CreateOrderItem{{ProductID: 1, Quantity: 1}},
			},
			wantErr: order.ErrMissingShippingAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestCreateOrder_BusinessChecks 测试锁内业务校验
func TestCreateOrder_BusinessChecks(t *testing.T) {
	t.Run("商品不存在", func(t *testing.T) {
		uc, _, _, _ := newCreateOrderFixture()
		_, err := uc.Execute(context.Background(), CreateOrderRequest{
			UserID: 1, Items: []CreateOrderItem{{ProductID: 404, Quantity: 1}},
			ShippingAddress: testShippingAddress(),
		})
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})

	t.Run("商品已下架", func(t *testing.T) {
		p := testProduct(1, 1500, 10)
		p.IsActive = false
		uc, _, _, _ := newCreateOrderFixture(p)

		_, err := uc.Execute(context.Background(), CreateOrderRequest{
			UserID: 1, Items: []CreateOrderItem{{ProductID: 1, Quantity: 1}},
			ShippingAddress: testShippingAddress(),
		})
		assert.ErrorIs(t, err, product.ErrProductInactive)
	})

	t.Run("库存不足", func(t *testing.T) {
		uc, orderRepo, productRepo, _ := newCreateOrderFixture(testProduct(1, 1500, 2))

		_, err := uc.Execute(context.Background(), CreateOrderRequest{
			UserID: 1, Items: []CreateOrderItem{{ProductID: 1, Quantity: 3}},
			ShippingAddress: testShippingAddress(),
		})
		assert.ErrorIs(t, err, product.ErrInsufficientStock)

		// 下单失败:订单没创建、库存没扣
		assert.Empty(t, orderRepo.orders)
		p, _ := productRepo.FindByID(context.Background(), 1)
		assert.Equal(t, 2, p.Stock)
	})
}

// TestCreateOrder_OrderNoRetry 测试订单号冲突时换号重试
func TestCreateOrder_OrderNoRetry(t *testing.T) {
	t.Run("冲突2次后成功", func(t *testing.T) {
		uc, orderRepo, _, _ := newCreateOrderFixture(testProduct(1, 1500, 10))
		orderRepo.duplicateTimes = 2

		o, err := uc.Execute(context.Background(), CreateOrderRequest{
			UserID: 1, Items: []CreateOrderItem{{ProductID: 1, Quantity: 1}},
			ShippingAddress: testShippingAddress(),
		})
		require.NoError(t, err)
		assert.NotZero(t, o.ID)
	})

	t.Run("连续冲突超过上限则失败", func(t *testing.T) {
		uc, orderRepo, productRepo, _ := newCreateOrderFixture(testProduct(1, 1500, 10))
		orderRepo.duplicateTimes = maxOrderNoRetries

		_, err := uc.Execute(context.Background(), CreateOrderRequest{
			UserID: 1, Items: []CreateOrderItem{{ProductID: 1, Quantity: 1}},
			ShippingAddress: testShippingAddress(),
		})
		assert.ErrorIs(t, err, order.ErrOrderNoDuplicate)

		// 失败时库存不应扣减
		p, _ := productRepo.FindByID(context.Background(), 1)
		assert.Equal(t, 10, p.Stock)
	})
}

// TestCreateOrder_ConcurrentNoOversell 并发下单不超卖
// 库存5件,10个并发请求各买1件:恰好5单成功、5单因库存不足失败
func TestCreateOrder_ConcurrentNoOversell(t *testing.T) {
	uc, orderRepo, productRepo, _ := newCreateOrderFixture(testProduct(1, 1500, 5))

	const buyers = 10
	var wg sync.WaitGroup
	errs := make([]error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), CreateOrderRequest{
				UserID: 1, Items: []CreateOrderItem{{ProductID: 1, Quantity: 1}},
				ShippingAddress: testShippingAddress(),
				CustomerName:    "并发买家", CustomerEmail: "c@example.com",
			})
		}(i)
	}
	wg.Wait()

	success, soldOut := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case err == product.ErrInsufficientStock:
			soldOut++
		default:
			t.Fatalf("意外错误: %v", err)
		}
	}

	assert.Equal(t, 5, success, "成功单数应等于库存")
	assert.Equal(t, 5, soldOut)
	assert.Len(t, orderRepo.orders, 5)

	p, _ := productRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 0, p.Stock, "库存应恰好扣到0,不能为负")
}
