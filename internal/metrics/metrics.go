package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.DefaultRegisterer

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by path/method/code.",
		},
		[]string{"path", "method", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests by path/method/code.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "code"},
	)

	teamRegistrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "team_registrations_total",
			Help: "Team registration attempts by result.",
		},
		[]string{"result"},
	)

	teamReviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "team_reviews_total",
			Help: "Team approve/reject operations by op and result.",
		},
		[]string{"op", "result"},
	)
)

func init() {
	registry.MustRegister(httpRequests, httpDuration, teamRegistrations, teamReviews)
}

func GinMiddleware(c *gin.Context) {
	start := time.Now()
	c.Next()
	code := strconv.Itoa(c.Writer.Status())
	path := c.FullPath()

	if path == "" {
		path = c.Request.URL.Path
	}

	if path == "/metrics" || strings.HasPrefix(path, "/debug/pprof/") {
		return
	}

	method := c.Request.Method

	httpRequests.WithLabelValues(path, method, code).Inc()
	httpDuration.WithLabelValues(path, method, code).Observe(time.Since(start).Seconds())
}

func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func ObserveRegistration(result string) {
	teamRegistrations.WithLabelValues(result).Inc()
}

func ObserveReview(op, result string) {
	teamReviews.WithLabelValues(op, result).Inc()
}
