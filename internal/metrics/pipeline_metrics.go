package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты публикации и записи событий для лейблов метрик.
const (
	ResultOK           = "ok"
	ResultError        = "error"
	ResultUnauthorized = "unauthorized"
)

// PipelineMetrics содержит метрики конвейера событий заказов.
type PipelineMetrics struct {
	// Счётчики операций над заказами
	ordersCreated prometheus.Counter
	ordersDeleted prometheus.Counter

	// Публикация в топик: двухфазный исход (committed, published)
	publishResults *prometheus.CounterVec

	// Записи журнала событий
	eventAppends *prometheus.CounterVec

	// Гистограмма времени создания заказа
	createDuration prometheus.Histogram
}

// NewPipelineMetrics создаёт новый экземпляр метрик конвейера.
func NewPipelineMetrics() *PipelineMetrics {
	return newPipelineMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newPipelineMetricsWithRegisterer(registerer prometheus.Registerer) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PipelineMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderlog_orders_created_total",
			Help: "Total number of orders committed to the order store",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderlog_orders_deleted_total",
			Help: "Total number of orders deleted from the order store",
		}),
		publishResults: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderlog_event_publish_total",
			Help: "Order event publish attempts grouped by result",
		}, []string{"result"}),
		eventAppends: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderlog_event_appends_total",
			Help: "Order event log append attempts grouped by result",
		}, []string{"result"}),
		createDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "orderlog_order_create_duration_seconds",
			Help:    "Duration of order creation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик зафиксированных заказов.
func (m *PipelineMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderDeleted увеличивает счётчик удалённых заказов.
func (m *PipelineMetrics) RecordOrderDeleted() {
	m.ordersDeleted.Inc()
}

// RecordPublish фиксирует исход публикации события.
func (m *PipelineMetrics) RecordPublish(result string) {
	m.publishResults.WithLabelValues(result).Inc()
}

// RecordEventAppend фиксирует исход записи в журнал событий.
func (m *PipelineMetrics) RecordEventAppend(result string) {
	m.eventAppends.WithLabelValues(result).Inc()
}

// ObserveCreateDuration записывает время создания заказа.
func (m *PipelineMetrics) ObserveCreateDuration(seconds float64) {
	m.createDuration.Observe(seconds)
}
