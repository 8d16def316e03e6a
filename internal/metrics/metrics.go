package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

// Metrics holds all Prometheus metrics for the detection service.
type Metrics struct {
	documentsTotal     *prometheus.CounterVec
	processingDuration *prometheus.HistogramVec
	amountsDetected    prometheus.Histogram
	guardrailHits      *prometheus.CounterVec
	aiFallbacks        prometheus.Counter
	ocrConfidence      prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates a metrics instance with its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		documentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "detector_documents_total",
				Help: "Total number of documents processed by input kind and terminal status",
			},
			[]string{"kind", "status"},
		),
		processingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "detector_processing_duration_seconds",
				Help:    "End-to-end document processing latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		amountsDetected: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "detector_amounts_per_document",
				Help:    "Number of classified amounts per document",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
			},
		),
		guardrailHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "detector_guardrail_violations_total",
				Help: "Total guardrail violations by rule and severity",
			},
			[]string{"rule", "severity"},
		),
		aiFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "detector_ai_fallbacks_total",
				Help: "Total classifications that fell back to rule-based scoring",
			},
		),
		ocrConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "detector_ocr_confidence",
				Help:    "Overall OCR confidence per image document",
				Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.documentsTotal,
		m.processingDuration,
		m.amountsDetected,
		m.guardrailHits,
		m.aiFallbacks,
		m.ocrConfidence,
	)
	return m
}

// ObserveDocument records one processed document.
func (m *Metrics) ObserveDocument(kind, status string, duration time.Duration, amountCount int) {
	m.documentsTotal.WithLabelValues(kind, status).Inc()
	m.processingDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.amountsDetected.Observe(float64(amountCount))
}

// ObserveGuardrailViolation records one guardrail hit.
func (m *Metrics) ObserveGuardrailViolation(rule, severity string) {
	m.guardrailHits.WithLabelValues(rule, severity).Inc()
}

// ObserveAIFallback records a classification that used the rule-based
// fallback.
func (m *Metrics) ObserveAIFallback() {
	m.aiFallbacks.Inc()
}

// ObserveOCRConfidence records the overall confidence of one OCR pass.
func (m *Metrics) ObserveOCRConfidence(conf float64) {
	m.ocrConfidence.Observe(conf)
}

// Handler returns a gin handler serving this registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
