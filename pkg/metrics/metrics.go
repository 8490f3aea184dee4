// Package metrics 提供基于Prometheus的指标收集
//
// 核心概念：
// - Counter（计数器）：只增不减的累计值（请求总数、订单总数）
// - Gauge（仪表盘）：可增可减的瞬时值（处理中请求数）
// - Histogram（直方图）：观测值的分布，自动计算分位数（P50/P90/P99）
//
// 命名规范：
// - Counter以_total结尾（orders_created_total）
// - Histogram以单位结尾（http_request_duration_seconds）
// - 避免高基数标签（不要用user_id做标签）
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/v1/orders）、status（200/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 订单业务指标

	// OrdersCreatedTotal 订单创建总数（Counter）
	OrdersCreatedTotal prometheus.Counter

	// OrderStatusTransitionsTotal 订单状态流转总数（Counter）
	// 标签：to（目标状态）
	OrderStatusTransitionsTotal *prometheus.CounterVec

	// OrdersCancelledTotal 订单取消总数（Counter）
	OrdersCancelledTotal prometheus.Counter

	// OrderAmountFen 订单金额分布（Histogram，单位：分）
	OrderAmountFen prometheus.Histogram

	// 评价业务指标

	// ReviewsCreatedTotal 评价创建总数（Counter）
	ReviewsCreatedTotal prometheus.Counter

	// RatingRecomputeDuration 商品评分重算耗时（Histogram）
	RatingRecomputeDuration prometheus.Histogram

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：routing_key（路由键）、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，把所有指标注册到默认Registry，
// 再通过promhttp.Handler()暴露/metrics端点。
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cocomart_http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cocomart_http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cocomart_http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cocomart_orders_created_total",
			Help: "订单创建总数",
		},
	)

	OrderStatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cocomart_order_status_transitions_total",
			Help: "订单状态流转总数",
		},
		[]string{"to"},
	)

	OrdersCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cocomart_orders_cancelled_total",
			Help: "订单取消总数",
		},
	)

	OrderAmountFen = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "cocomart_order_amount_fen",
			Help: "订单金额分布（分）",
			// 10元、50元、100元、500元、1000元、5000元
			Buckets: []float64{1000, 5000, 10000, 50000, 100000, 500000},
		},
	)

	ReviewsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cocomart_reviews_created_total",
			Help: "评价创建总数",
		},
	)

	RatingRecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cocomart_rating_recompute_duration_seconds",
			Help:    "商品评分重算耗时（秒）",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cocomart_messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"routing_key", "result"},
	)
}
