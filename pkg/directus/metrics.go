package directus

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates calls to a single endpoint.
type Metrics struct {
	TotalRequests   int64
	TotalErrors     int64
	TotalLatency    time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time
}

// MetricsCollector collects API metrics per "METHOD route" endpoint and,
// optionally, exports them to Prometheus. Routes are path templates (see
// RouteTemplate) so item ids do not multiply series.
type MetricsCollector struct {
	mu       sync.Mutex
	metrics  map[string]*Metrics
	onChange func(endpoint string, metrics Metrics)

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsCollector creates an in-process metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metrics),
	}
}

// NewPrometheusMetricsCollector creates a collector that also registers
// request counters and latency histograms with reg.
func NewPrometheusMetricsCollector(reg prometheus.Registerer, namespace string) (*MetricsCollector, error) {
	collector := NewMetricsCollector()

	collector.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Directus API requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	collector.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Directus API request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	for _, c := range []prometheus.Collector{collector.requests, collector.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	return collector, nil
}

// SetOnChange sets a callback for when metrics change.
func (m *MetricsCollector) SetOnChange(fn func(endpoint string, metrics Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onChange = fn
}

// GetMetrics returns a snapshot of the metrics for an endpoint.
func (m *MetricsCollector) GetMetrics(endpoint string) *Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	if metrics, ok := m.metrics[endpoint]; ok {
		snapshot := *metrics

		return &snapshot
	}

	return nil
}

func (m *MetricsCollector) record(req *Request, resp *Response) {
	route := RouteTemplate(req.Path)
	endpoint := fmt.Sprintf("%s %s", req.Method, route)
	start, hasStart := requestStart(req)

	var latency time.Duration
	if hasStart {
		latency = time.Since(start)
	}

	m.mu.Lock()

	metrics, ok := m.metrics[endpoint]
	if !ok {
		metrics = &Metrics{}
		m.metrics[endpoint] = metrics
	}

	metrics.TotalRequests++
	metrics.LastRequestTime = time.Now()

	if hasStart {
		metrics.TotalLatency += latency
		metrics.AverageLatency = metrics.TotalLatency / time.Duration(metrics.TotalRequests)
	}

	if resp.Error != nil || resp.StatusCode >= 400 {
		metrics.TotalErrors++
	}

	snapshot := *metrics
	onChange := m.onChange

	m.mu.Unlock()

	if m.requests != nil {
		m.requests.WithLabelValues(req.Method, route, strconv.Itoa(resp.StatusCode)).Inc()
	}

	if m.duration != nil && hasStart {
		m.duration.WithLabelValues(req.Method, route).Observe(latency.Seconds())
	}

	if onChange != nil {
		onChange(endpoint, snapshot)
	}
}

// staticSegments are literal path segments of the Directus API.
var staticSegments = map[string]bool{
	"me": true, "invite": true, "accept": true, "tfa": true, "generate": true,
	"enable": true, "disable": true, "import": true, "comment": true,
	"ping": true, "info": true, "health": true, "specs": true, "oas": true,
	"login": true, "refresh": true, "logout": true, "password": true,
	"request": true, "reset": true, "random": true, "string": true,
	"hash": true, "verify": true, "sort": true, "revert": true, "system": true,
}

// RouteTemplate replaces the variable segments of an API path with
// placeholders, e.g. "/items/posts/7" becomes "/items/{collection}/{id}".
func RouteTemplate(path string) string {
	path, _, _ = strings.Cut(path, "?")

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "/"
	}

	resource := segments[0]

	for i := 1; i < len(segments); i++ {
		if staticSegments[segments[i]] {
			continue
		}

		segments[i] = placeholder(resource, segments[i-1], i)
	}

	return "/" + strings.Join(segments, "/")
}

func placeholder(resource, previous string, index int) string {
	switch {
	case previous == "revert":
		return "{revision}"
	case previous == "sort":
		return "{collection}"
	}

	switch resource {
	case "items", "collections":
		if index == 1 {
			return "{collection}"
		}
	case "fields", "relations":
		if index == 1 {
			return "{collection}"
		}

		return "{field}"
	}

	return "{id}"
}

// MetricsRequestInterceptor records request start time.
func MetricsRequestInterceptor(collector *MetricsCollector) RequestInterceptor {
	return func(ctx context.Context, hc *HookContext, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[startTimeKey] = time.Now()

		return nil
	}
}

// MetricsResponseInterceptor records response metrics.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		collector.record(req, resp)

		return nil
	}
}
