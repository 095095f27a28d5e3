package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels attached to every instrument.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	WebhookEvents   *prometheus.CounterVec
	CardActions     *prometheus.CounterVec
	DedupHits       prometheus.Counter
	UpdateChunks    prometheus.Counter
	RecordsUpdated  prometheus.Counter
	UpdateFailures  prometheus.Counter
	ReportsSent     prometheus.Counter
	ReportsFailed   prometheus.Counter
	BackgroundTasks *prometheus.CounterVec
}

// New registers the application instruments on the given registerer.
func New(cfg Config, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{
		"service": orUnknown(cfg.ServiceName),
		"env":     orUnknown(cfg.Environment),
	}

	m := &Metrics{
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reportweek_webhook_events_total",
			Help:        "Inbound webhook events by classified type.",
			ConstLabels: constLabels,
		}, []string{"type"}),
		CardActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reportweek_card_actions_total",
			Help:        "Card button actions by action and outcome.",
			ConstLabels: constLabels,
		}, []string{"action", "outcome"}),
		DedupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reportweek_dedup_hits_total",
			Help:        "Events skipped because their key was already processed.",
			ConstLabels: constLabels,
		}),
		UpdateChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reportweek_record_update_chunks_total",
			Help:        "Batch update chunks issued to the table store.",
			ConstLabels: constLabels,
		}),
		RecordsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reportweek_records_updated_total",
			Help:        "Records whose approval status was written.",
			ConstLabels: constLabels,
		}),
		UpdateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reportweek_record_update_failures_total",
			Help:        "Record status writes that failed after the user was acknowledged.",
			ConstLabels: constLabels,
		}),
		ReportsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reportweek_reports_sent_total",
			Help:        "Report notifications delivered to approvers.",
			ConstLabels: constLabels,
		}),
		ReportsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reportweek_reports_failed_total",
			Help:        "Report notifications that failed per recipient.",
			ConstLabels: constLabels,
		}),
		BackgroundTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reportweek_background_tasks_total",
			Help:        "Background tasks by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.WebhookEvents,
		m.CardActions,
		m.DedupHits,
		m.UpdateChunks,
		m.RecordsUpdated,
		m.UpdateFailures,
		m.ReportsSent,
		m.ReportsFailed,
		m.BackgroundTasks,
	)
	return m
}

// HTTPMetrics instruments the HTTP surface.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers HTTP instruments on the given registerer.
func NewHTTPMetrics(cfg Config, reg prometheus.Registerer) *HTTPMetrics {
	constLabels := prometheus.Labels{
		"service": orUnknown(cfg.ServiceName),
		"env":     orUnknown(cfg.Environment),
	}
	h := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reportweek_http_requests_total",
			Help:        "HTTP requests by route, method and status.",
			ConstLabels: constLabels,
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "reportweek_http_request_duration_seconds",
			Help:        "HTTP request latency by route and method.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		}, []string{"route", "method"}),
	}
	reg.MustRegister(h.requests, h.duration)
	return h
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(h *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		h.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		h.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
