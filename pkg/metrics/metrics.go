package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics owns every collector the service exposes. Each instance has its own
// registry so several routers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	SalesTotal         prometheus.Counter
	SalesRevenue       prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	Inventory          *prometheus.GaugeVec
	RenderFailures     *prometheus.CounterVec
	DecrementFailures  prometheus.Counter
}

// New creates and registers the collectors.
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "path"}),
		SalesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pos_sales_total",
			Help:        "Number of finalized sales",
			ConstLabels: constLabels,
		}),
		SalesRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pos_sales_revenue_total",
			Help:        "Sum of finalized sale totals",
			ConstLabels: constLabels,
		}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pos_sale_validation_failures_total",
			Help:        "Finalize attempts rejected by validation",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		Inventory: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "pos_product_inventory",
			Help:        "Current stock level per product",
			ConstLabels: constLabels,
		}, []string{"product_id"}),
		RenderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pos_receipt_render_failures_total",
			Help:        "Receipt renditions that failed to generate",
			ConstLabels: constLabels,
		}, []string{"mode"}),
		DecrementFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pos_stock_decrement_failures_total",
			Help:        "Stock decrements that failed after a sale was recorded",
			ConstLabels: constLabels,
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.SalesTotal,
		m.SalesRevenue,
		m.ValidationFailures,
		m.Inventory,
		m.RenderFailures,
		m.DecrementFailures,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveSale counts a finalized sale and its revenue.
func (m *Metrics) ObserveSale(total decimal.Decimal) {
	if m == nil {
		return
	}
	m.SalesTotal.Inc()
	m.SalesRevenue.Add(total.InexactFloat64())
}

// ObserveValidationFailure counts a rejected finalize attempt.
func (m *Metrics) ObserveValidationFailure(reason string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(reason).Inc()
}

// ObserveDecrementFailure counts a stock decrement that could not be applied.
func (m *Metrics) ObserveDecrementFailure() {
	if m == nil {
		return
	}
	m.DecrementFailures.Inc()
}

// ObserveRenderFailure counts a failed receipt rendition.
func (m *Metrics) ObserveRenderFailure(mode string) {
	if m == nil {
		return
	}
	m.RenderFailures.WithLabelValues(mode).Inc()
}

// SetInventory publishes the stock level of a product.
func (m *Metrics) SetInventory(productID string, quantity int) {
	if m == nil {
		return
	}
	m.Inventory.WithLabelValues(productID).Set(float64(quantity))
}

// DeleteInventory drops the stock series of a removed product.
func (m *Metrics) DeleteInventory(productID string) {
	if m == nil {
		return
	}
	m.Inventory.DeleteLabelValues(productID)
}

// ResetInventory drops every stock series.
func (m *Metrics) ResetInventory() {
	if m == nil {
		return
	}
	m.Inventory.Reset()
}
