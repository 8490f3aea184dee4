package dto

import (
	"time"

	"github.com/xiebiao/cocomart/internal/domain/order"
)

// AddressDTO 地址
type AddressDTO struct {
	Street     string `json:"street" binding:"required,max=200"`
	City       string `json:"city" binding:"required,max=50"`
	Province   string `json:"province" binding:"required,max=50"`
	PostalCode string `json:"postal_code" binding:"omitempty,max=20"`
	Country    string `json:"country" binding:"omitempty,max=50"`
}

// toAddress DTO → 领域值对象
func (a *AddressDTO) toAddress() order.Address {
	return order.Address{
		Street:     a.Street,
		City:       a.City,
		Province:   a.Province,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// ToAddress 可空地址转换
func (a *AddressDTO) ToAddress() order.Address {
	if a == nil {
		return order.Address{}
	}
	return a.toAddress()
}

// ToAddressPtr 可空地址转换（保持nil语义）
func (a *AddressDTO) ToAddressPtr() *order.Address {
	if a == nil {
		return nil
	}
	addr := a.toAddress()
	return &addr
}

// fromAddress 领域值对象 → DTO
func fromAddress(a order.Address) *AddressDTO {
	return &AddressDTO{
		Street:     a.Street,
		City:       a.City,
		Province:   a.Province,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Items           []CreateOrderItemDTO `json:"items" binding:"required,min=1,max=50,dive"`
	ShippingAddress AddressDTO           `json:"shipping_address" binding:"required"`
	BillingAddress  *AddressDTO          `json:"billing_address,omitempty"`
	CustomerName    string               `json:"customer_name" binding:"omitempty,max=50"`
	CustomerEmail   string               `json:"customer_email" binding:"omitempty,email"`
	CustomerPhone   string               `json:"customer_phone" binding:"omitempty,max=20"`
	PaymentMethod   string               `json:"payment_method" binding:"required,oneof=cod bank_transfer online" example:"cod"`
	Notes           string               `json:"notes" binding:"omitempty,max=500"`
}

// CreateOrderItemDTO 下单明细项
type CreateOrderItemDTO struct {
	ProductID uint `json:"product_id" binding:"required" example:"1"`
	Quantity  int  `json:"quantity" binding:"required,gte=1,lte=999" example:"2"`
}

// AdvanceStatusRequest 状态推进请求（管理员）
type AdvanceStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=processing confirmed shipped delivered" example:"processing"`
	TrackingNumber string `json:"tracking_number" binding:"omitempty,max=50"`
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=200" example:"不想要了"`
}

// UpdatePaymentRequest 更新支付信息请求（管理员）
type UpdatePaymentRequest struct {
	PaymentStatus  string `json:"payment_status" binding:"omitempty,oneof=pending paid failed refunded"`
	PaymentDetails string `json:"payment_details" binding:"omitempty,max=2000"`
}

// OrderItemResponse 订单明细响应
type OrderItemResponse struct {
	ProductID     uint   `json:"product_id"`
	ProductName   string `json:"product_name"`
	Quantity      int    `json:"quantity"`
	UnitPrice     int64  `json:"unit_price"` // 下单时单价快照（分）
	UnitPriceYuan string `json:"unit_price_yuan"`
}

// OrderResponse 订单响应
type OrderResponse struct {
	ID            uint   `json:"id"`
	OrderNo       string `json:"order_no"`
	UserID        uint   `json:"user_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`

	Items []OrderItemResponse `json:"items"`

	Subtotal     int64  `json:"subtotal"`
	Tax          int64  `json:"tax"`
	Discount     int64  `json:"discount"`
	ShippingCost int64  `json:"shipping_cost"`
	Total        int64  `json:"total"`
	TotalYuan    string `json:"total_yuan"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone,omitempty"`

	ShippingAddress *AddressDTO `json:"shipping_address"`
	BillingAddress  *AddressDTO `json:"billing_address,omitempty"`

	PaymentMethod  string `json:"payment_method"`
	Notes          string `json:"notes,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`

	DeliveredAt        string `json:"delivered_at,omitempty"`
	CancelledAt        string `json:"cancelled_at,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`

	CreatedAt string `json:"created_at"`
}

// ToOrderResponse 领域实体 → 响应DTO
func ToOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			UnitPriceYuan: FormatYuan(item.UnitPrice),
		}
	}

	var billing *AddressDTO
	if o.BillingAddress != nil {
		billing = fromAddress(*o.BillingAddress)
	}

	return &OrderResponse{
		ID:                 o.ID,
		OrderNo:            o.OrderNo,
		UserID:             o.UserID,
		Status:             o.Status.String(),
		PaymentStatus:      o.PaymentStatus.String(),
		Items:              items,
		Subtotal:           o.Subtotal,
		Tax:                o.Tax,
		Discount:           o.Discount,
		ShippingCost:       o.ShippingCost,
		Total:              o.Total,
		TotalYuan:          FormatYuan(o.Total),
		CustomerName:       o.CustomerName,
		CustomerEmail:      o.CustomerEmail,
		CustomerPhone:      o.CustomerPhone,
		ShippingAddress:    fromAddress(o.ShippingAddress),
		BillingAddress:     billing,
		PaymentMethod:      o.PaymentMethod,
		Notes:              o.Notes,
		TrackingNumber:     o.TrackingNumber,
		DeliveredAt:        formatTimePtr(o.DeliveredAt),
		CancelledAt:        formatTimePtr(o.CancelledAt),
		CancellationReason: o.CancellationReason,
		CreatedAt:          o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ToOrderResponses 批量转换
func ToOrderResponses(orders []*order.Order) []*OrderResponse {
	out := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o)
	}
	return out
}

// RevenueResponse 营收统计响应
type RevenueResponse struct {
	Start            string `json:"start"`
	End              string `json:"end"`
	TotalRevenue     int64  `json:"total_revenue"` // 分
	TotalRevenueYuan string `json:"total_revenue_yuan"`
}

// formatTimePtr 可空时间格式化
func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
