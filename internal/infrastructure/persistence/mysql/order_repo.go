package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/cocomart/internal/domain/order"
	apperrors "github.com/xiebiao/cocomart/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 设计说明:
// 1. Order和OrderItem是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载明细,避免N+1问题
// 3. 地址值对象序列化为JSON文本存储
// 4. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
// 设计说明:
// 1. GORM会自动保存关联的Items(通过foreignKey)
// 2. 订单号唯一索引冲突转换为ErrOrderNoDuplicate,调用方换号重试
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model, err := toOrderModel(o)
	if err != nil {
		return err
	}

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return order.ErrOrderNoDuplicate
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID

	return nil
}

// FindByID 根据ID查找订单(包含明细)
// 使用Preload预加载Items,避免N+1查询
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	db := r.getDB(ctx)
	err := db.Preload("Items").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model)
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	db := r.getDB(ctx)
	err := db.Preload("Items").Where("order_no = ?", orderNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model)
}

// LockByID 悲观锁查询订单(SELECT FOR UPDATE)
// 状态流转的检查-写入必须基于锁定后的最新行
// 注意:必须使用getDB(ctx)从context获取事务DB
func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "锁定订单失败")
	}

	return toOrderEntity(&model)
}

// Update 更新订单的可变字段
// 明细和金额快照在创建后不再更新
func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	db := r.getDB(ctx)
	result := db.Model(&OrderModel{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"status":              int(o.Status),
		"payment_status":      int(o.PaymentStatus),
		"payment_details":     o.PaymentDetails,
		"tracking_number":     o.TrackingNumber,
		"delivered_at":        o.DeliveredAt,
		"cancelled_at":        o.CancelledAt,
		"cancellation_reason": o.CancellationReason,
		"updated_at":          o.UpdatedAt,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}

	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}

	return nil
}

// ListByUserID 查询用户的订单列表(新订单在前)
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&OrderModel{}).Where("user_id = ?", userID)
	return r.pageQuery(query, page, pageSize, "created_at DESC")
}

// ListByStatus 按状态查询订单列表(新订单在前)
func (r *orderRepository) ListByStatus(ctx context.Context, status order.Status, page, pageSize int) ([]*order.Order, int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&OrderModel{}).Where("status = ?", int(status))
	return r.pageQuery(query, page, pageSize, "created_at DESC")
}

// ListPending 查询待履约订单(pending+processing),先到先得(旧订单在前)
func (r *orderRepository) ListPending(ctx context.Context) ([]*order.Order, error) {
	var models []OrderModel
	db := r.getDB(ctx)
	err := db.Preload("Items").
		Where("status IN ?", []int{int(order.StatusPending), int(order.StatusProcessing)}).
		Order("created_at ASC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询待履约订单失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		o, err := toOrderEntity(&models[i])
		if err != nil {
			return nil, err
		}
		orders[i] = o
	}

	return orders, nil
}

// SumRevenue 统计营收
// 口径:delivered且paid、送达时间落在[start,end]内的订单total之和
// 注意:对已存储的total求和,不根据明细重算(明细单价只是历史快照)
func (r *orderRepository) SumRevenue(ctx context.Context, start, end time.Time) (int64, error) {
	var sum int64
	db := r.getDB(ctx)
	err := db.Model(&OrderModel{}).
		Select("COALESCE(SUM(total), 0)").
		Where("status = ?", int(order.StatusDelivered)).
		Where("payment_status = ?", int(order.PaymentPaid)).
		Where("delivered_at BETWEEN ? AND ?", start, end).
		Scan(&sum).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计营收失败")
	}

	return sum, nil
}

// HasDeliveredProduct 判断用户是否存在包含该商品的已送达订单
// 评价的"已购买"标记依据此查询
func (r *orderRepository) HasDeliveredProduct(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	db := r.getDB(ctx)
	err := db.Model(&OrderModel{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.user_id = ?", userID).
		Where("orders.status = ?", int(order.StatusDelivered)).
		Where("order_items.product_id = ?", productID).
		Count(&count).Error

	if err != nil {
		return false, apperrors.Wrap(err, "查询购买记录失败")
	}

	return count > 0, nil
}

// pageQuery 分页查询(含总数和明细预加载)
func (r *orderRepository) pageQuery(query *gorm.DB, page, pageSize int, orderBy string) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order(orderBy).
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		o, err := toOrderEntity(&models[i])
		if err != nil {
			return nil, 0, err
		}
		orders[i] = o
	}

	return orders, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toOrderModel 领域实体 → GORM模型
// 地址值对象序列化为JSON文本
func toOrderModel(o *order.Order) (*OrderModel, error) {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			OrderID:     o.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	shippingJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, apperrors.Wrap(err, "序列化收货地址失败")
	}

	var billingJSON *string
	if o.BillingAddress != nil {
		b, err := json.Marshal(o.BillingAddress)
		if err != nil {
			return nil, apperrors.Wrap(err, "序列化账单地址失败")
		}
		s := string(b)
		billingJSON = &s
	}

	return &OrderModel{
		ID:                 o.ID,
		OrderNo:            o.OrderNo,
		UserID:             o.UserID,
		Status:             int(o.Status),
		PaymentStatus:      int(o.PaymentStatus),
		Subtotal:           o.Subtotal,
		Tax:                o.Tax,
		Discount:           o.Discount,
		ShippingCost:       o.ShippingCost,
		Total:              o.Total,
		CustomerName:       o.CustomerName,
		CustomerEmail:      o.CustomerEmail,
		CustomerPhone:      o.CustomerPhone,
		ShippingAddress:    string(shippingJSON),
		BillingAddress:     billingJSON,
		PaymentMethod:      o.PaymentMethod,
		PaymentDetails:     o.PaymentDetails,
		Notes:              o.Notes,
		TrackingNumber:     o.TrackingNumber,
		DeliveredAt:        o.DeliveredAt,
		CancelledAt:        o.CancelledAt,
		CancellationReason: o.CancellationReason,
		Items:              items,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}, nil
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) (*order.Order, error) {
	items := make([]order.Item, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.Item{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	var shipping order.Address
	if model.ShippingAddress != "" {
		if err := json.Unmarshal([]byte(model.ShippingAddress), &shipping); err != nil {
			return nil, apperrors.Wrap(err, "解析收货地址失败")
		}
	}

	var billing *order.Address
	if model.BillingAddress != nil && *model.BillingAddress != "" {
		billing = &order.Address{}
		if err := json.Unmarshal([]byte(*model.BillingAddress), billing); err != nil {
			return nil, apperrors.Wrap(err, "解析账单地址失败")
		}
	}

	return &order.Order{
		ID:                 model.ID,
		OrderNo:            model.OrderNo,
		UserID:             model.UserID,
		Status:             order.Status(model.Status),
		PaymentStatus:      order.PaymentStatus(model.PaymentStatus),
		Items:              items,
		Subtotal:           model.Subtotal,
		Tax:                model.Tax,
		Discount:           model.Discount,
		ShippingCost:       model.ShippingCost,
		Total:              model.Total,
		CustomerName:       model.CustomerName,
		CustomerEmail:      model.CustomerEmail,
		CustomerPhone:      model.CustomerPhone,
		ShippingAddress:    shipping,
		BillingAddress:     billing,
		PaymentMethod:      model.PaymentMethod,
		PaymentDetails:     model.PaymentDetails,
		Notes:              model.Notes,
		TrackingNumber:     model.TrackingNumber,
		DeliveredAt:        model.DeliveredAt,
		CancelledAt:        model.CancelledAt,
		CancellationReason: model.CancellationReason,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}, nil
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
