package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/xiebiao/cocomart/internal/domain/order"
	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/internal/domain/user"
	"github.com/xiebiao/cocomart/pkg/metrics"
)

// 用例层测试用的内存仓储
//
// 事务语义的模拟:fakeTxManager用一把互斥锁串行化所有事务,
// 等价于"所有行锁都落在同一把锁上"——比MySQL的行级锁更粗,
// 但足以验证用例在"锁内检查-写入"约定下的并发正确性。
// 回滚不做模拟:测试用例自行保证失败路径不依赖回滚后的状态。

func initTestMetrics() {
	metrics.InitMetrics()
}

// fakeTxManager 内存事务管理器
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// fakeOrderRepo 内存订单仓储
type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]*order.Order

	// 可注入的钩子:让前N次Create返回订单号冲突
	duplicateTimes int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1, orders: make(map[uint]*order.Order)}
}

func (r *fakeOrderRepo) clone(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.Item(nil), o.Items...)
	return &cp
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.duplicateTimes > 0 {
		r.duplicateTimes--
		return order.ErrOrderNoDuplicate
	}
	for _, existing := range r.orders {
		if existing.OrderNo == o.OrderNo {
			return order.ErrOrderNoDuplicate
		}
	}

	o.ID = r.nextID
	r.nextID++
	r.orders[o.ID] = r.clone(o)
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return r.clone(o), nil
}

func (r *fakeOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNo == orderNo {
			return r.clone(o), nil
		}
	}
	return nil, order.ErrOrderNotFound
}

// LockByID 内存实现与FindByID一致
// 串行化由fakeTxManager的互斥锁保证
func (r *fakeOrderRepo) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeOrderRepo) Update(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	r.orders[o.ID] = r.clone(o)
	return nil
}

func (r *fakeOrderRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			result = append(result, r.clone(o))
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeOrderRepo) ListByStatus(ctx context.Context, status order.Status, page, pageSize int) ([]*order.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*order.Order
	for _, o := range r.orders {
		if o.Status == status {
			result = append(result, r.clone(o))
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeOrderRepo) ListPending(ctx context.Context) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*order.Order
	for _, o := range r.orders {
		if o.Status == order.StatusPending || o.Status == order.StatusProcessing {
			result = append(result, r.clone(o))
		}
	}
	return result, nil
}

func (r *fakeOrderRepo) SumRevenue(ctx context.Context, start, end time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, o := range r.orders {
		if o.Status != order.StatusDelivered || o.PaymentStatus != order.PaymentPaid || o.DeliveredAt == nil {
			continue
		}
		if o.DeliveredAt.Before(start) || o.DeliveredAt.After(end) {
			continue
		}
		sum += o.Total
	}
	return sum, nil
}

func (r *fakeOrderRepo) HasDeliveredProduct(ctx context.Context, userID, productID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UserID != userID || o.Status != order.StatusDelivered {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// fakeProductRepo 内存商品仓储
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uint]*product.Product
}

func newFakeProductRepo(products ...*product.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uint]*product.Product)}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) get(id uint) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *fakeProductRepo) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return product.ErrProductNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateRating(ctx context.Context, id uint, rating float64, reviewCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	p.Rating = rating
	p.ReviewCount = reviewCount
	return nil
}

func (r *fakeProductRepo) UpdateStock(ctx context.Context, id uint, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return product.ErrInsufficientStock
	}
	p.Stock += delta
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*product.Product
	for _, p := range r.products {
		cp := *p
		result = append(result, &cp)
	}
	return result, int64(len(result)), nil
}

// fakeUserRepo 内存用户仓储
type fakeUserRepo struct {
	users map[uint]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error { return nil }

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, order.ErrOrderNotFound // 测试中不会走到
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) error { return nil }

// fakePublisher 记录发布过的事件
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	routingKey string
	message    interface{}
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{routingKey, message})
	return nil
}

func (p *fakePublisher) eventCount(routingKey string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.routingKey == routingKey {
			n++
		}
	}
	return n
}

// 共享测试夹具

func testShippingAddress() order.Address {
	return order.Address{
		Street: "椰林路88号", City: "文昌", Province: "海南",
		PostalCode: "571300", Country: "CN",
	}
}

func testProduct(id uint, price int64, stock int) *product.Product {
	return &product.Product{
		ID: id, Name: "老椰子", Category: product.CategoryCoconut,
		Price: price, Stock: stock, SKU: "COCO-001", Unit: "piece", IsActive: true,
	}
}

func testUser(id uint) *user.User {
	return &user.User{
		ID: id, Email: "buyer@example.com", Name: "买家",
		Phone: "13900000000", Role: user.RoleCustomer,
	}
}

func TestMain(m *testing.M) {
	initTestMetrics()
	m.Run()
}
