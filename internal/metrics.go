package internal

import (
	"github.com/prometheus/client_golang/prometheus"

	pkgerrs "github.com/jamesprial/go-aosmith-api-wrapper/pkg/errors"
)

const (
	outcomeSuccess            = "success"
	outcomeError              = "error"
	outcomeInvalidCredentials = "invalid_credentials"
	outcomeInvalidParameters  = "invalid_parameters"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aosmith_requests_total",
			Help: "GraphQL operations executed, by outcome",
		},
		[]string{"operation", "outcome"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aosmith_request_duration_seconds",
			Help:    "Wall time of GraphQL operations including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aosmith_logins_total",
			Help: "Login attempts, by outcome",
		},
		[]string{"outcome"},
	)
	sessionRenewals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aosmith_session_renewals_total",
			Help: "Responses rejected with 401 that triggered a session renewal",
		},
	)
)

// MetricsCollectors returns the collectors shared by every client.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		requestsTotal,
		requestDuration,
		loginsTotal,
		sessionRenewals,
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	switch pkgerrs.KindOf(err) {
	case pkgerrs.KindInvalidCredentials:
		return outcomeInvalidCredentials
	case pkgerrs.KindInvalidParameters:
		return outcomeInvalidParameters
	default:
		return outcomeError
	}
}
