package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 流水线阶段计数，stage: grading/assessment, outcome: ok/timeout/error/malformed/skipped
	PipelineStageCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_pipeline_stage_total",
			Help: "Outcomes of quiz submission pipeline stages",
		},
		[]string{"stage", "outcome"},
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_pipeline_stage_duration_seconds",
			Help:    "Duration of quiz submission pipeline stages",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 45},
		},
		[]string{"stage"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(PipelineStageCounter)
	prometheus.MustRegister(PipelineStageDuration)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func ObserveStage(stage, outcome string, elapsed time.Duration) {
	PipelineStageCounter.WithLabelValues(stage, outcome).Inc()
	PipelineStageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
