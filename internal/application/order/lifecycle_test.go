package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/cocomart/internal/domain/order"
)

// 订单生命周期用例测试:状态推进、取消回补库存、并发竞争

type lifecycleFixture struct {
	orderRepo   *fakeOrderRepo
	productRepo *fakeProductRepo
	publisher   *fakePublisher

	create  *CreateOrderUseCase
	advance *AdvanceStatusUseCase
	cancel  *CancelOrderUseCase
	get     *GetOrderUseCase
	revenue *RevenueUseCase
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	f := &lifecycleFixture{
		orderRepo:   newFakeOrderRepo(),
		productRepo: newFakeProductRepo(testProduct(1, 1500, 100)),
		publisher:   &fakePublisher{},
	}
	tx := &fakeTxManager{}
	userRepo := newFakeUserRepo(testUser(1))

	f.create = NewCreateOrderUseCase(f.orderRepo, f.productRepo, userRepo, tx, f.publisher)
	f.advance = NewAdvanceStatusUseCase(f.orderRepo, tx, f.publisher)
	f.cancel = NewCancelOrderUseCase(f.orderRepo, f.productRepo, tx, f.publisher)
	f.get = NewGetOrderUseCase(f.orderRepo)
	f.revenue = NewRevenueUseCase(f.orderRepo)
	return f
}

func (f *lifecycleFixture) placeOrder(t *testing.T, qty int) *order.Order {
	t.Helper()
	o, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID: 1, Items: []CreateOrderItem{{ProductID: 1, Quantity: qty}},
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)
	return o
}

// TestAdvanceStatus_FullLifecycle 测试完整的履约链路
func TestAdvanceStatus_FullLifecycle(t *testing.T) {
	f := newLifecycleFixture(t)
	o := f.placeOrder(t, 2)

	steps := []order.Status{
		order.StatusProcessing,
		order.StatusConfirmed,
		order.StatusShipped,
		order.StatusDelivered,
	}
	for _, target := range steps {
		result, err := f.advance.Execute(context.Background(), AdvanceStatusRequest{
			OrderID: o.ID, TargetStatus: target,
		})
		require.NoError(t, err, "流转到%s失败", target)
		assert.Equal(t, target, result.Status)
	}

	// 送达后:记录送达时间、确认收款
	final, err := f.orderRepo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.NotNil(t, final.DeliveredAt)
	assert.Equal(t, order.PaymentPaid, final.PaymentStatus)

	assert.Equal(t, 4, f.publisher.eventCount(EventOrderStatusChanged))
}

// TestAdvanceStatus_Rejections 测试推进用例的拒绝场景
func TestAdvanceStatus_Rejections(t *testing.T) {
	f := newLifecycleFixture(t)
	o := f.placeOrder(t, 1)

	t.Run("跳级推进被拒", func(t *testing.T) {
		_, err := f.advance.Execute(context.Background(), AdvanceStatusRequest{
			OrderID: o.ID, TargetStatus: order.StatusShipped,
		})
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("取消不走通用推进", func(t *testing.T) {
		_, err := f.advance.Execute(context.Background(), AdvanceStatusRequest{
			OrderID: o.ID, TargetStatus: order.StatusCancelled,
		})
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("订单不存在", func(t *testing.T) {
		_, err := f.advance.Execute(context.Background(), AdvanceStatusRequest{
			OrderID: 404, TargetStatus: order.StatusProcessing,
		})
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

// TestAdvanceStatus_TrackingNumber 发货时登记物流单号
func TestAdvanceStatus_TrackingNumber(t *testing.T) {
	f := newLifecycleFixture(t)
	o := f.placeOrder(t, 1)

	for _, target := range []order.Status{order.StatusProcessing, order.StatusConfirmed} {
		_, err := f.advance.Execute(context.Background(), AdvanceStatusRequest{OrderID: o.ID, TargetStatus: target})
		require.NoError(t, err)
	}

	result, err := f.advance.Execute(context.Background(), AdvanceStatusRequest{
		OrderID: o.ID, TargetStatus: order.StatusShipped, TrackingNumber: "SF123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, "SF123456789", result.TrackingNumber)
}

// TestCancelOrder 测试取消订单
func TestCancelOrder(t *testing.T) {
	t.Run("作者取消并回补库存", func(t *testing.T) {
		f := newLifecycleFixture(t)
		o := f.placeOrder(t, 3)

		p, _ := f.productRepo.FindByID(context.Background(), 1)
		require.Equal(t, 97, p.Stock)

		result, err := f.cancel.Execute(context.Background(), CancelOrderRequest{
			OrderID: o.ID, ActorID: 1, Reason: "不想要了",
		})
		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, result.Status)
		assert.Equal(t, "不想要了", result.CancellationReason)

		// 库存原路返还
		p, _ = f.productRepo.FindByID(context.Background(), 1)
		assert.Equal(t, 100, p.Stock)

		assert.Equal(t, 1, f.publisher.eventCount(EventOrderCancelled))
	})

	t.Run("他人取消被拒", func(t *testing.T) {
		f := newLifecycleFixture(t)
		o := f.placeOrder(t, 1)

		_, err := f.cancel.Execute(context.Background(), CancelOrderRequest{
			OrderID: o.ID, ActorID: 999,
		})
		assert.ErrorIs(t, err, order.ErrOrderPermissionDenied)
	})

	t.Run("管理员可以取消他人订单", func(t *testing.T) {
		f := newLifecycleFixture(t)
		o := f.placeOrder(t, 1)

		_, err := f.cancel.Execute(context.Background(), CancelOrderRequest{
			OrderID: o.ID, ActorID: 999, IsAdmin: true, Reason: "涉嫌刷单",
		})
		assert.NoError(t, err)
	})

	t.Run("已发货订单不可取消", func(t *testing.T) {
		f := newLifecycleFixture(t)
		o := f.placeOrder(t, 1)
		for _, target := range []order.Status{order.StatusProcessing, order.StatusConfirmed, order.StatusShipped} {
			_, err := f.advance.Execute(context.Background(), AdvanceStatusRequest{OrderID: o.ID, TargetStatus: target})
			require.NoError(t, err)
		}

		_, err := f.cancel.Execute(context.Background(), CancelOrderRequest{OrderID: o.ID, ActorID: 1})
		assert.ErrorIs(t, err, order.ErrOrderNotCancellable)

		// 取消失败不回补库存
		p, _ := f.productRepo.FindByID(context.Background(), 1)
		assert.Equal(t, 99, p.Stock)
	})
}

// TestAdvanceVsCancel_Concurrent 并发推进与取消只能有一方赢
// 行锁语义下后到者基于最新状态重新校验:
// 取消先赢→推进遇到终态报错;推进先赢且已过processing→取消报不可取消
func TestAdvanceVsCancel_Concurrent(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newLifecycleFixture(t)
		o := f.placeOrder(t, 1)

		// 先推到processing,此时推进(→confirmed)和取消都合法
		_, err := f.advance.Execute(context.Background(), AdvanceStatusRequest{
			OrderID: o.ID, TargetStatus: order.StatusProcessing,
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		var advanceErr, cancelErr error

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, advanceErr = f.advance.Execute(context.Background(), AdvanceStatusRequest{
				OrderID: o.ID, TargetStatus: order.StatusConfirmed,
			})
		}()
		go func() {
			defer wg.Done()
			_, cancelErr = f.cancel.Execute(context.Background(), CancelOrderRequest{
				OrderID: o.ID, ActorID: 1,
			})
		}()
		wg.Wait()

		final, err := f.orderRepo.FindByID(context.Background(), o.ID)
		require.NoError(t, err)

		switch {
		case advanceErr == nil && cancelErr != nil:
			assert.Equal(t, order.StatusConfirmed, final.Status)
			assert.ErrorIs(t, cancelErr, order.ErrOrderNotCancellable)
		case advanceErr != nil && cancelErr == nil:
			assert.Equal(t, order.StatusCancelled, final.Status)
			assert.ErrorIs(t, advanceErr, order.ErrInvalidStatusTransition)
		default:
			t.Fatalf("必须恰好一方成功: advanceErr=%v cancelErr=%v", advanceErr, cancelErr)
		}

		// 取消赢才回补库存
		p, _ := f.productRepo.FindByID(context.Background(), 1)
		if cancelErr == nil {
			assert.Equal(t, 100, p.Stock)
		} else {
			assert.Equal(t, 99, p.Stock)
		}
	}
}

// TestGetOrder_Permission 测试订单查询的越权防护
func TestGetOrder_Permission(t *testing.T) {
	f := newLifecycleFixture(t)
	o := f.placeOrder(t, 1)

	t.Run("作者可见", func(t *testing.T) {
		got, err := f.get.Execute(context.Background(), o.ID, 1, false)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	})

	t.Run("管理员可见", func(t *testing.T) {
		_, err := f.get.Execute(context.Background(), o.ID, 999, true)
		assert.NoError(t, err)
	})

	t.Run("他人不可见且不暴露订单存在性", func(t *testing.T) {
		_, err := f.get.Execute(context.Background(), o.ID, 999, false)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

// TestRevenue 测试营收统计
func TestRevenue(t *testing.T) {
	f := newLifecycleFixture(t)

	// 订单1:完整履约到送达(计入营收)
	o1 := f.placeOrder(t, 2)
	for _, target := range []order.Status{order.StatusProcessing, order.StatusConfirmed, order.StatusShipped, order.StatusDelivered} {
		_, err := f.advance.Execute(context.Background(), AdvanceStatusRequest{OrderID: o1.ID, TargetStatus: target})
		require.NoError(t, err)
	}

	// 订单2:停在pending(不计入)
	f.placeOrder(t, 1)

	// 订单3:已取消(不计入)
	o3 := f.placeOrder(t, 1)
	_, err := f.cancel.Execute(context.Background(), CancelOrderRequest{OrderID: o3.ID, ActorID: 1})
	require.NoError(t, err)

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)

	result, err := f.revenue.Execute(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, o1.Total, result.TotalRevenue, "只有已送达已支付的订单计入营收")

	t.Run("区间异常", func(t *testing.T) {
		_, err := f.revenue.Execute(context.Background(), end, start)
		assert.ErrorIs(t, err, order.ErrInvalidRevenueRange)

		_, err = f.revenue.Execute(context.Background(), time.Time{}, end)
		assert.ErrorIs(t, err, order.ErrInvalidRevenueRange)
	})
}
