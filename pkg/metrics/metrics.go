// Package metrics 提供基于Prometheus的后台指标收集
//
// 指标设计原则：
// 1. Counter以_total结尾（status_transitions_total）
// 2. Histogram以单位结尾（http_request_duration_seconds）
// 3. 标签只用低基数维度（action、kind、result），禁止order_id这类高基数标签
//
// 使用方式：
//
//	metrics.Init()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//	...
//	metrics.StatusTransitionsTotal.WithLabelValues("order", "success").Inc()
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册panic）
	initialized bool

	// HTTP请求指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// 订单管理业务指标

	// StatusTransitionsTotal 状态流转总数（Counter）
	// 标签：kind（order/payment）、result（success/illegal/failure）
	StatusTransitionsTotal *prometheus.CounterVec

	// BulkActionsTotal 批量操作总数（Counter）
	// 标签：action（delete/restore/export）、result（success/failure）
	BulkActionsTotal *prometheus.CounterVec

	// BulkActionSize 单次批量操作覆盖的订单数（Histogram）
	BulkActionSize prometheus.Histogram

	// OrdersExportedTotal 导出订单行数（Counter）
	OrdersExportedTotal prometheus.Counter

	// 仪表盘指标

	// DashboardCacheHitsTotal 仪表盘快照缓存命中数（Counter）
	DashboardCacheHitsTotal prometheus.Counter

	// DashboardCacheMissesTotal 仪表盘快照缓存未命中数（Counter）
	DashboardCacheMissesTotal prometheus.Counter

	// DashboardQueryDuration 仪表盘聚合查询耗时（Histogram）
	DashboardQueryDuration prometheus.Histogram

	// 事件发布指标

	// EventsPublishedTotal 订单事件发布总数（Counter）
	// 标签：routing_key、result（success/failure/rejected）
	// rejected表示被熔断器拦截（MQ故障期间快速失败）
	EventsPublishedTotal *prometheus.CounterVec
)

// Init 初始化所有Prometheus指标
// 必须在程序启动时调用一次；promauto会把指标注册到默认Registry
func Init() {
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_transitions_total",
			Help: "订单/支付状态流转总数",
		},
		[]string{"kind", "result"},
	)

	BulkActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulk_actions_total",
			Help: "批量操作总数",
		},
		[]string{"action", "result"},
	)

	BulkActionSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "bulk_action_size",
			Help: "单次批量操作覆盖的订单数",
			// 后台单页最多100条，超过100说明前端出了问题
			Buckets: []float64{1, 5, 10, 20, 50, 100},
		},
	)

	OrdersExportedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_exported_total",
			Help: "导出订单行数",
		},
	)

	DashboardCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_cache_hits_total",
			Help: "仪表盘快照缓存命中数",
		},
	)

	DashboardCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_cache_misses_total",
			Help: "仪表盘快照缓存未命中数",
		},
	)

	DashboardQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_query_duration_seconds",
			Help:    "仪表盘聚合查询耗时（秒）",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "订单事件发布总数",
		},
		[]string{"routing_key", "result"},
	)
}
