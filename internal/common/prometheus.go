package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_request_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
)

var PromCounters = map[string]*prometheus.CounterVec{
	HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: HTTPRequestTotal,
		Help: "Number of handled http requests, by path and error code.",
	}, []string{"path", "code"}),
}

var PromHistograms = map[string]*prometheus.HistogramVec{
	HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: HTTPRequestDurationSeconds,
		Help: "Duration of handled http requests, by path and error code.",
	}, []string{"path", "code"}),
}
