package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OrderMetrics 订单服务指标
type OrderMetrics struct {
	// 下单相关指标
	OrderCreateTotal    *prometheus.CounterVec // 下单总数（按结果）
	OrderCreateDuration prometheus.Histogram   // 下单耗时
	OrderAmount         *prometheus.CounterVec // 订单金额（按订单类型）

	// 支付相关指标
	OrderPayTotal    *prometheus.CounterVec // 支付总数（按结果）
	OrderPayDuration prometheus.Histogram   // 支付耗时

	// 取消相关指标
	OrderCancelTotal *prometheus.CounterVec // 取消总数（按来源）

	// 扫描任务相关指标
	SweepTotal    *prometheus.CounterVec   // 扫描处理总数（按任务、结果）
	SweepDuration *prometheus.HistogramVec // 单次扫描耗时

	// 分布式锁相关指标
	SweepLockAcquireTotal *prometheus.CounterVec // 扫描锁获取总数（按结果）
}

// NewOrderMetrics 创建订单服务指标
func NewOrderMetrics() *OrderMetrics {
	return &OrderMetrics{
		// 下单指标
		OrderCreateTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_create_total",
				Help: "Total number of order creations",
			},
			[]string{"result"}, // result: success/failed
		),
		OrderCreateDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "order_create_duration_seconds",
				Help:    "Duration of order creation",
				Buckets: prometheus.DefBuckets,
			},
		),
		OrderAmount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_amount_total",
				Help: "Total amount of created orders",
			},
			[]string{"order_type"},
		),

		// 支付指标
		OrderPayTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_pay_total",
				Help: "Total number of order payments",
			},
			[]string{"result"}, // result: success/expired/conflict/failed
		),
		OrderPayDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "order_pay_duration_seconds",
				Help:    "Duration of order payment",
				Buckets: prometheus.DefBuckets,
			},
		),

		// 取消指标
		OrderCancelTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_cancel_total",
				Help: "Total number of order cancellations",
			},
			[]string{"kind"}, // kind: user/timeout
		),

		// 扫描任务指标
		SweepTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_sweep_total",
				Help: "Total number of orders processed by sweepers",
			},
			[]string{"sweep", "result"}, // sweep: expire/complete, result: success/skipped/failed
		),
		SweepDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "order_sweep_duration_seconds",
				Help:    "Duration of a sweep run",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"sweep"},
		),

		// 分布式锁指标
		SweepLockAcquireTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_sweep_lock_acquire_total",
				Help: "Total number of sweep lock acquisition attempts",
			},
			[]string{"result"}, // result: success/busy
		),
	}
}

// 全局指标实例
var defaultMetrics *OrderMetrics

// InitMetrics 初始化全局指标
func InitMetrics() {
	defaultMetrics = NewOrderMetrics()
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OrderMetrics {
	if defaultMetrics == nil {
		InitMetrics()
	}
	return defaultMetrics
}
