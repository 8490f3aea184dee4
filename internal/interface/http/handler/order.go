package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/cocomart/internal/application/order"
	"github.com/xiebiao/cocomart/internal/domain/order"
	"github.com/xiebiao/cocomart/internal/interface/http/dto"
	"github.com/xiebiao/cocomart/internal/interface/http/middleware"
	"github.com/xiebiao/cocomart/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createUseCase        *apporder.CreateOrderUseCase
	advanceUseCase       *apporder.AdvanceStatusUseCase
	cancelUseCase        *apporder.CancelOrderUseCase
	updatePaymentUseCase *apporder.UpdatePaymentUseCase
	getUseCase           *apporder.GetOrderUseCase
	listUseCase          *apporder.ListOrdersUseCase
	revenueUseCase       *apporder.RevenueUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createUseCase *apporder.CreateOrderUseCase,
	advanceUseCase *apporder.AdvanceStatusUseCase,
	cancelUseCase *apporder.CancelOrderUseCase,
	updatePaymentUseCase *apporder.UpdatePaymentUseCase,
	getUseCase *apporder.GetOrderUseCase,
	listUseCase *apporder.ListOrdersUseCase,
	revenueUseCase *apporder.RevenueUseCase,
) *OrderHandler {
	return &OrderHandler{
		createUseCase:        createUseCase,
		advanceUseCase:       advanceUseCase,
		cancelUseCase:        cancelUseCase,
		updatePaymentUseCase: updatePaymentUseCase,
		getUseCase:           getUseCase,
		listUseCase:          listUseCase,
		revenueUseCase:       revenueUseCase,
	}
}

// CreateOrder 创建订单
// @Summary      创建订单
// @Description  用户下单（需要登录）。单价取下单时商品当前价格做快照，使用悲观锁防止超卖
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "订单信息"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "下单成功"
// @Failure      200 {object} response.Response "参数错误/商品不存在/库存不足"
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	items := make([]apporder.CreateOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress.ToAddress(),
		BillingAddress:  req.BillingAddress.ToAddressPtr(),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToOrderResponse(result))
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  查询订单详情（作者或管理员可见）
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "查询成功"
// @Failure      200 {object} response.Response "订单不存在"
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	o, err := h.getUseCase.Execute(c.Request.Context(), orderID, middleware.MustGetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToOrderResponse(o))
}

// GetOrderByNo 按订单号查询订单详情
// @Summary      按订单号查询订单
// @Description  用对外展示的订单号查询详情（作者或管理员可见）
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号" example(ORD-LX8F2K0A-7Q3Z)
// @Success      200 {object} response.Response{data=dto.OrderResponse} "查询成功"
// @Failure      200 {object} response.Response "订单不存在"
// @Router       /orders/no/{order_no} [get]
func (h *OrderHandler) GetOrderByNo(c *gin.Context) {
	orderNo := c.Param("order_no")
	if !order.ValidateOrderNo(orderNo) {
		response.ErrorWithCode(c, 40900, "订单号格式错误")
		return
	}

	o, err := h.getUseCase.ExecuteByOrderNo(c.Request.Context(), orderNo, middleware.MustGetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToOrderResponse(o))
}

// ListMyOrders 我的订单列表
// @Summary      我的订单
// @Description  查询当前用户的订单列表（新订单在前）
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页大小" default(20)
// @Success      200 {object} response.Response{data=response.PageData} "查询成功"
// @Router       /orders [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	userID := middleware.MustGetUserID(c)

	orders, total, err := h.listUseCase.ListByUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.SuccessWithPage(c, dto.ToOrderResponses(orders), total, page, pageSize)
}

// CancelOrder 取消订单
// @Summary      取消订单
// @Description  取消pending/processing的订单（作者或管理员），取消时回补库存
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.CancelOrderRequest false "取消原因"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "取消成功"
// @Failure      200 {object} response.Response "订单当前状态不可取消"
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CancelOrderRequest
	// 请求体可为空
	_ = c.ShouldBindJSON(&req)

	result, err := h.cancelUseCase.Execute(c.Request.Context(), apporder.CancelOrderRequest{
		OrderID: orderID,
		ActorID: middleware.MustGetUserID(c),
		IsAdmin: middleware.IsAdmin(c),
		Reason:  req.Reason,
	})
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToOrderResponse(result))
}

// AdvanceStatus 推进订单状态
// @Summary      推进订单状态
// @Description  管理员按状态机推进订单：pending→processing→confirmed→shipped→delivered；流转到delivered时自动记录送达时间并置为已支付
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.AdvanceStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "流转成功"
// @Failure      200 {object} response.Response "非法的状态流转"
// @Router       /admin/orders/{id}/status [put]
func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	target, valid := order.ParseStatus(req.Status)
	if !valid {
		response.ErrorWithCode(c, 40900, "无效的订单状态: "+req.Status)
		return
	}

	result, err := h.advanceUseCase.Execute(c.Request.Context(), apporder.AdvanceStatusRequest{
		OrderID:        orderID,
		TargetStatus:   target,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToOrderResponse(result))
}

// UpdatePayment 更新支付信息
// @Summary      更新支付信息
// @Description  管理员更新订单支付状态/支付详情（支付状态不走状态机，允许重试流转）
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdatePaymentRequest true "支付信息"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "更新成功"
// @Router       /admin/orders/{id}/payment [put]
func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	var paymentStatus *order.PaymentStatus
	if req.PaymentStatus != "" {
		ps, valid := order.ParsePaymentStatus(req.PaymentStatus)
		if !valid {
			response.ErrorWithCode(c, 40900, "无效的支付状态: "+req.PaymentStatus)
			return
		}
		paymentStatus = &ps
	}

	result, err := h.updatePaymentUseCase.Execute(c.Request.Context(), apporder.UpdatePaymentRequest{
		OrderID:        orderID,
		PaymentStatus:  paymentStatus,
		PaymentDetails: req.PaymentDetails,
	})
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToOrderResponse(result))
}

// ListOrdersByStatus 按状态查询订单
// @Summary      按状态查询订单
// @Description  管理员按状态筛选订单列表
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        status query string true "订单状态" Enums(pending, processing, confirmed, shipped, delivered, cancelled)
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页大小" default(20)
// @Success      200 {object} response.Response{data=response.PageData} "查询成功"
// @Router       /admin/orders [get]
func (h *OrderHandler) ListOrdersByStatus(c *gin.Context) {
	status, valid := order.ParseStatus(c.Query("status"))
	if !valid {
		response.ErrorWithCode(c, 40900, "无效的订单状态: "+c.Query("status"))
		return
	}

	page, pageSize := parsePageQuery(c)

	orders, total, err := h.listUseCase.ListByStatus(c.Request.Context(), status, page, pageSize)
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.SuccessWithPage(c, dto.ToOrderResponses(orders), total, page, pageSize)
}

// ListPendingOrders 待履约订单队列
// @Summary      待履约订单
// @Description  管理员工作台：pending+processing订单，先到先得（旧订单在前）
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.OrderResponse} "查询成功"
// @Router       /admin/orders/pending [get]
func (h *OrderHandler) ListPendingOrders(c *gin.Context) {
	orders, err := h.listUseCase.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToOrderResponses(orders))
}

// Revenue 营收统计
// @Summary      营收统计
// @Description  管理员统计区间营收：只计delivered且paid的订单，按送达时间过滤，对已存储的订单总额求和
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        start query string true "起始日期" example(2026-01-01)
// @Param        end query string true "结束日期" example(2026-01-31)
// @Success      200 {object} response.Response{data=dto.RevenueResponse} "统计成功"
// @Failure      200 {object} response.Response "时间区间异常"
// @Router       /admin/orders/revenue [get]
func (h *OrderHandler) Revenue(c *gin.Context) {
	start, err1 := time.ParseInLocation("2006-01-02", c.Query("start"), time.Local)
	end, err2 := time.ParseInLocation("2006-01-02", c.Query("end"), time.Local)
	if err1 != nil || err2 != nil {
		response.ErrorWithCode(c, 40900, "日期格式错误，应为YYYY-MM-DD")
		return
	}
	// end取当天末尾，使区间闭合到23:59:59.999999999
	end = end.Add(24*time.Hour - time.Nanosecond)

	result, err := h.revenueUseCase.Execute(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, &dto.RevenueResponse{
		Start:            result.Start.Format("2006-01-02"),
		End:              result.End.Format("2006-01-02"),
		TotalRevenue:     result.TotalRevenue,
		TotalRevenueYuan: dto.FormatYuan(result.TotalRevenue),
	})
}

// parsePageQuery 解析分页查询参数（非法值回落默认）
func parsePageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
