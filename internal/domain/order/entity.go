package order

import (
	"time"
)

// Order 订单聚合根
//
// 设计说明：
// 1. 订单是聚合根，管理OrderItem集合与金额/状态的一致性
// 2. 订单号（OrderNo）vs 订单ID（ID）：
//   - ID：数据库主键（自增，对内）
//   - OrderNo：业务主键（对外展示，如"ORD-LQ3F8Z2K-7H2M"）
//
// 3. 金额一律存分（int64）而非元（float64），避免浮点精度问题；
//    Total永远由ComputeAmounts推导，任何代码不得单独改写Total
// 4. 客户联系方式（CustomerName/Email/Phone）和单价是下单时的快照，
//    用户后续修改资料或商品改价不影响历史订单
type Order struct {
	ID      uint
	OrderNo string
	UserID  uint

	Status        Status
	PaymentStatus PaymentStatus

	Items []Item

	// 金额字段（单位：分）
	Subtotal     int64
	Tax          int64
	Discount     int64
	ShippingCost int64
	Total        int64

	// 客户联系方式快照
	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	ShippingAddress Address
	BillingAddress  *Address

	PaymentMethod  string
	PaymentDetails string // 支付渠道回传的原始信息（JSON文本）

	Notes          string
	TrackingNumber string

	DeliveredAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item 订单明细（值对象）
// UnitPrice是下单时的价格快照，商品后续改价不影响已有订单
type Item struct {
	ProductID   uint
	ProductName string
	Quantity    int
	UnitPrice   int64 // 下单时单价（分）
}

// Address 收货/账单地址（值对象）
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// IsZero 判断地址是否为空
func (a Address) IsZero() bool {
	return a.Street == "" && a.City == "" && a.Province == "" &&
		a.PostalCode == "" && a.Country == ""
}

// Contact 客户联系方式快照
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Status 订单状态枚举
// 从1开始而非0：0是Go的零值，容易与"未设置"混淆
type Status int

const (
	StatusPending    Status = 1 // 待处理
	StatusProcessing Status = 2 // 处理中
	StatusConfirmed  Status = 3 // 已确认
	StatusShipped    Status = 4 // 已发货
	StatusDelivered  Status = 5 // 已送达（终态）
	StatusCancelled  Status = 6 // 已取消（终态）
)

// String 返回对外的状态标识
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusConfirmed:
		return "confirmed"
	case StatusShipped:
		return "shipped"
	case StatusDelivered:
		return "delivered"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseStatus 解析状态标识（用于HTTP层输入）
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "pending":
		return StatusPending, true
	case "processing":
		return StatusProcessing, true
	case "confirmed":
		return StatusConfirmed, true
	case "shipped":
		return StatusShipped, true
	case "delivered":
		return StatusDelivered, true
	case "cancelled":
		return StatusCancelled, true
	default:
		return 0, false
	}
}

// IsValid 检查状态值是否合法
func (s Status) IsValid() bool {
	return s >= StatusPending && s <= StatusCancelled
}

// PaymentStatus 支付状态枚举
// 支付状态不走状态机：允许pending→failed→pending这类重试流转
type PaymentStatus int

const (
	PaymentPending  PaymentStatus = 1 // 待支付
	PaymentPaid     PaymentStatus = 2 // 已支付
	PaymentFailed   PaymentStatus = 3 // 支付失败
	PaymentRefunded PaymentStatus = 4 // 已退款
)

// String 返回对外的支付状态标识
func (s PaymentStatus) String() string {
	switch s {
	case PaymentPending:
		return "pending"
	case PaymentPaid:
		return "paid"
	case PaymentFailed:
		return "failed"
	case PaymentRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// ParsePaymentStatus 解析支付状态标识
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch s {
	case "pending":
		return PaymentPending, true
	case "paid":
		return PaymentPaid, true
	case "failed":
		return PaymentFailed, true
	case "refunded":
		return PaymentRefunded, true
	default:
		return 0, false
	}
}

// 金额计算规则（单位：分）
const (
	taxRatePercent   = 5      // 税率5%
	flatShippingFen  = 5000   // 固定运费50元
	freeShippingOver = 100000 // 小计超过1000元免运费
)

// NewOrder 创建新订单（工厂方法）
// 初始状态固定为pending/pending，金额由明细推导
func NewOrder(orderNo string, userID uint, items []Item, shipping Address, billing *Address, contact Contact, paymentMethod string) *Order {
	now := time.Now()
	o := &Order{
		OrderNo:         orderNo,
		UserID:          userID,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		Items:           items,
		CustomerName:    contact.Name,
		CustomerEmail:   contact.Email,
		CustomerPhone:   contact.Phone,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		PaymentMethod:   paymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	o.ComputeAmounts()
	return o
}

// ComputeAmounts 推导订单金额
//
// 规则：
//   - subtotal = Σ(数量×单价)
//   - tax = subtotal×5%，四舍五入到分
//   - 运费：subtotal > 1000元免运费，否则固定50元
//   - total = subtotal + tax + shippingCost - discount
//
// Total只能经由本方法写入，保证"总额恒等于各项之和"的不变量
func (o *Order) ComputeAmounts() {
	var subtotal int64
	for _, item := range o.Items {
		subtotal += int64(item.Quantity) * item.UnitPrice
	}

	o.Subtotal = subtotal
	o.Tax = roundHalfUp(subtotal*taxRatePercent, 100)
	if subtotal > freeShippingOver {
		o.ShippingCost = 0
	} else {
		o.ShippingCost = flatShippingFen
	}
	o.Total = o.Subtotal + o.Tax + o.ShippingCost - o.Discount
}

// roundHalfUp 整数除法四舍五入
func roundHalfUp(numerator, denominator int64) int64 {
	return (numerator + denominator/2) / denominator
}

// CanTransitionTo 判断是否可以流转到目标状态
//
// 状态机：pending → processing → confirmed → shipped → delivered
// cancelled不在本表中：取消必须经由Cancel方法（强制带取消原因），
// 不能通过通用的状态推进到达
func (o *Order) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusPending:    {StatusProcessing},
		StatusProcessing: {StatusConfirmed},
		StatusConfirmed:  {StatusShipped},
		StatusShipped:    {StatusDelivered},
		// delivered和cancelled是终态，无后续流转
	}

	allowed, exists := transitions[o.Status]
	if !exists {
		return false
	}

	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// AdvanceTo 推进订单状态（带状态机校验）
//
// 业务规则：流转到delivered时同时记录送达时间并把支付状态置为已支付
// （货到付款场景：签收即确认收款）
func (o *Order) AdvanceTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}

	o.Status = target
	o.UpdatedAt = time.Now()

	if target == StatusDelivered {
		now := time.Now()
		o.DeliveredAt = &now
		o.PaymentStatus = PaymentPaid
	}

	return nil
}

// CanCancel 判断是否可以取消
// 业务规则：只有pending和processing的订单可以取消；
// 已确认（备货完成）、已发货、已送达的订单需走退货流程
func (o *Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusProcessing
}

// Cancel 取消订单
// reason为空时使用默认原因
func (o *Order) Cancel(reason string) error {
	if !o.CanCancel() {
		return ErrOrderNotCancellable
	}

	if reason == "" {
		reason = "用户取消订单"
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancellationReason = reason
	o.UpdatedAt = now
	return nil
}

// UpdatePayment 更新支付状态/支付详情
// 支付状态允许自由流转（如pending→failed→pending重试），不走状态机
func (o *Order) UpdatePayment(status *PaymentStatus, details string) {
	if status != nil {
		o.PaymentStatus = *status
	}
	if details != "" {
		o.PaymentDetails = details
	}
	o.UpdatedAt = time.Now()
}

// IsTerminal 判断是否处于终态
func (o *Order) IsTerminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}
