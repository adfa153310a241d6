package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 下单失败原因（低基数标签）
const (
	OrderFailureOutOfStock  = "out_of_stock"
	OrderFailurePromo       = "promo_rejected"
	OrderFailureValidation  = "validation"
	OrderFailureDuplicate   = "duplicate"
	OrderFailureInternal    = "internal"
	PostCommitResultApplied = "applied"
	PostCommitResultFailed  = "failed"
	PostCommitResultQueued  = "queued"
)

// OrderMetrics 下单链路指标
type OrderMetrics struct {
	ordersCreated     *prometheus.CounterVec
	orderFailures     *prometheus.CounterVec
	createDuration    prometheus.Histogram
	idempotentReplays prometheus.Counter
	postCommit        *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	stockAdjustments  *prometheus.CounterVec
	loyaltyPoints     prometheus.Counter
}

var (
	orderMetricsOnce sync.Once
	orderMetrics     *OrderMetrics
)

// Orders 返回全局单例（注册到默认 Registerer）
func Orders() *OrderMetrics {
	orderMetricsOnce.Do(func() {
		orderMetrics = NewOrderMetrics(prometheus.DefaultRegisterer)
	})
	return orderMetrics
}

// NewOrderMetrics 创建并注册指标
func NewOrderMetrics(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := prometheus.Labels{"service": "leafcart"}

	m := &OrderMetrics{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "leafcart_orders_created_total",
			Help:        "Orders committed, by currency.",
			ConstLabels: constLabels,
		}, []string{"currency"}),
		orderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "leafcart_order_failures_total",
			Help:        "Order creations rolled back, by low-cardinality reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		createDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "leafcart_order_create_duration_seconds",
			Help:        "Latency of the atomic order creation transaction.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			ConstLabels: constLabels,
		}),
		idempotentReplays: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "leafcart_order_idempotent_replays_total",
			Help:        "Order requests answered with an existing order for the same idempotency key.",
			ConstLabels: constLabels,
		}),
		postCommit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "leafcart_order_post_commit_total",
			Help:        "Post-commit effect runs (promo usage + loyalty credit), by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "leafcart_order_status_transitions_total",
			Help:        "Admin order status transitions.",
			ConstLabels: constLabels,
		}, []string{"from", "to"}),
		stockAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "leafcart_inventory_adjustments_total",
			Help:        "Inventory adjustments, by change type.",
			ConstLabels: constLabels,
		}, []string{"change_type"}),
		loyaltyPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "leafcart_loyalty_points_awarded_total",
			Help:        "Loyalty points credited to customers.",
			ConstLabels: constLabels,
		}),
	}

	registerer.MustRegister(
		m.ordersCreated,
		m.orderFailures,
		m.createDuration,
		m.idempotentReplays,
		m.postCommit,
		m.statusTransitions,
		m.stockAdjustments,
		m.loyaltyPoints,
	)
	return m
}

// ObserveOrderCreated 记录成功下单
func (m *OrderMetrics) ObserveOrderCreated(currency string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ordersCreated.WithLabelValues(currency).Inc()
	m.createDuration.Observe(elapsed.Seconds())
}

// ObserveOrderFailure 记录下单失败
func (m *OrderMetrics) ObserveOrderFailure(reason string) {
	if m == nil {
		return
	}
	m.orderFailures.WithLabelValues(reason).Inc()
}

// ObserveIdempotentReplay 记录幂等重放
func (m *OrderMetrics) ObserveIdempotentReplay() {
	if m == nil {
		return
	}
	m.idempotentReplays.Inc()
}

// ObservePostCommit 记录提交后副作用结果
func (m *OrderMetrics) ObservePostCommit(result string) {
	if m == nil {
		return
	}
	m.postCommit.WithLabelValues(result).Inc()
}

// ObserveStatusTransition 记录状态流转
func (m *OrderMetrics) ObserveStatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// ObserveStockAdjustment 记录库存调整
func (m *OrderMetrics) ObserveStockAdjustment(changeType string) {
	if m == nil {
		return
	}
	m.stockAdjustments.WithLabelValues(changeType).Inc()
}

// ObserveLoyaltyPoints 记录积分入账
func (m *OrderMetrics) ObserveLoyaltyPoints(points int64) {
	if m == nil || points <= 0 {
		return
	}
	m.loyaltyPoints.Add(float64(points))
}
