// Package metrics 提供 Prometheus helper，包含定价服务的 counter/histogram
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/optionsurface/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数，按 method/path/status 区分
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 报价次数，按期权类型区分
	QuotesTotal *prometheus.CounterVec
	// 曲面生成次数
	SurfacesTotal prometheus.Counter
	// 曲面生成耗时
	SurfaceBuildDuration prometheus.Histogram
	// 曲面单元格数
	SurfaceCells prometheus.Histogram
	// 参数校验失败次数，按字段区分
	RejectionsTotal *prometheus.CounterVec
	// 事件发布失败次数
	PublishFailuresTotal prometheus.Counter
	// 被限流的请求数
	RateLimitedTotal prometheus.Counter

	gatherer prometheus.Gatherer
}

// New 创建指标实例
func New(namespace, serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		QuotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "quotes_total",
			Help:      "Total option prices computed",
		}, []string{"option_type"}),
		SurfacesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "surfaces_total",
			Help:      "Total sensitivity surfaces built",
		}),
		SurfaceBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "surface_build_duration_seconds",
			Help:      "Sensitivity surface build duration in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}),
		SurfaceCells: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "surface_cells",
			Help:      "Number of cells per sensitivity surface",
			Buckets:   []float64{1, 25, 100, 400, 1000, 2500},
		}),
		RejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "rejections_total",
			Help:      "Pricing requests rejected by parameter validation",
		}, []string{"field"}),
		PublishFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "event_publish_failures_total",
			Help:      "Domain events that failed to publish",
		}),
		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// Register 注册所有指标。reg 为 nil 时使用默认注册器。
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.QuotesTotal,
		m.SurfacesTotal,
		m.SurfaceBuildDuration,
		m.SurfaceCells,
		m.RejectionsTotal,
		m.PublishFailuresTotal,
		m.RateLimitedTotal,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// Handler 返回 /metrics 的 HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil || m.gatherer == prometheus.DefaultGatherer {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path, status string, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordQuote 记录一次报价
func (m *Metrics) RecordQuote(optionType string) {
	m.QuotesTotal.WithLabelValues(optionType).Inc()
}

// RecordSurface 记录一次曲面生成
func (m *Metrics) RecordSurface(seconds float64, cells int) {
	m.SurfacesTotal.Inc()
	m.SurfaceBuildDuration.Observe(seconds)
	m.SurfaceCells.Observe(float64(cells))
}

// RecordRejection 记录一次参数校验失败
func (m *Metrics) RecordRejection(field string) {
	m.RejectionsTotal.WithLabelValues(field).Inc()
}

// RecordPublishFailure 记录事件发布失败
func (m *Metrics) RecordPublishFailure() {
	m.PublishFailuresTotal.Inc()
}

// RecordRateLimited 记录一次限流
func (m *Metrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}
