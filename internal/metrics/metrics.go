package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // OptimizeRuns counts optimization calls by outcome
    OptimizeRuns = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "optimize_runs_total", Help: "Route optimization runs by status."},
        []string{"status"},
    )
    // OptimizeDuration records end-to-end optimization latency in seconds
    OptimizeDuration = prometheus.NewHistogram(
        prometheus.HistogramOpts{Name: "optimize_duration_seconds", Help: "Route optimization duration in seconds.", Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}},
    )
    // SignalFallbacks counts scoring runs that fell back to a default signal value
    SignalFallbacks = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "signal_fallbacks_total", Help: "Scoring signal fallbacks by signal name."},
        []string{"signal"},
    )
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
    regOnce.Do(func(){
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(OptimizeRuns)
        Registry.MustRegister(OptimizeDuration)
        Registry.MustRegister(SignalFallbacks)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
