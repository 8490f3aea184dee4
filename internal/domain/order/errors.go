package order

import "errors"

// 领域层错误定义
// 错误是业务规则的一部分，集中在domain层定义，
// 应用层和基础设施层都可以引用，避免循环依赖
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("订单不存在")

	// ErrInvalidStatusTransition 非法的状态流转
	// 场景：尝试把已送达的订单改回处理中
	ErrInvalidStatusTransition = errors.New("非法的订单状态流转")

	// ErrOrderNotCancellable 订单不可取消
	// 场景：已确认/已发货/已送达的订单不允许取消
	ErrOrderNotCancellable = errors.New("订单当前状态不可取消")

	// ErrEmptyOrderItems 订单明细为空
	ErrEmptyOrderItems = errors.New("订单明细不能为空")

	// ErrInvalidQuantity 商品数量异常
	ErrInvalidQuantity = errors.New("商品数量异常")

	// ErrInvalidUnitPrice 商品单价异常
	ErrInvalidUnitPrice = errors.New("商品单价异常")

	// ErrMissingShippingAddress 缺少收货地址
	ErrMissingShippingAddress = errors.New("收货地址不能为空")

	// ErrOrderNoDuplicate 订单号冲突
	// 场景：唯一索引冲突；创建用例会重新生成订单号再试，
	// 该错误不应该到达HTTP层
	ErrOrderNoDuplicate = errors.New("订单号已存在")

	// ErrOrderPermissionDenied 无权限操作订单
	// 场景：用户A尝试查看/取消用户B的订单
	ErrOrderPermissionDenied = errors.New("无权限操作该订单")

	// ErrInvalidRevenueRange 营收查询时间区间异常
	ErrInvalidRevenueRange = errors.New("查询时间区间异常")
)

// IsNotFoundError 判断是否为"未找到"类错误
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}
