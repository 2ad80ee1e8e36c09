package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/tair/wishlist-service/pkg/logger"
)

// Config tunes an upstream client
type Config struct {
	// Timeout bounds every RPC
	Timeout time.Duration
	// BreakerThreshold is the number of consecutive transport failures that opens the breaker
	BreakerThreshold uint32
	// BreakerTimeout is how long the breaker stays open before a trial call
	BreakerTimeout time.Duration
}

// DefaultConfig mirrors the external service rules: 10s timeout, breaker after 5 failures for 60s
func DefaultConfig() Config {
	return Config{
		Timeout:          10 * time.Second,
		BreakerThreshold: 5,
		BreakerTimeout:   60 * time.Second,
	}
}

var (
	circuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_service_upstream_requests_total",
			Help: "Total number of upstream RPC calls",
		},
		[]string{"service", "outcome"},
	)

	upstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wishlist_service_upstream_request_duration_seconds",
			Help:    "Duration of upstream RPC calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
)

func init() {
	prometheus.MustRegister(circuitBreakerState)
	prometheus.MustRegister(upstreamRequestsTotal)
	prometheus.MustRegister(upstreamRequestDuration)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// dial opens a lazily connecting, traced client connection
func dial(address string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
	conn, err := grpc.NewClient(address, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", address, err)
	}
	return conn, nil
}

func newBreaker[T any](name string, cfg Config) *gobreaker.CircuitBreaker[T] {
	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = DefaultConfig().BreakerThreshold
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransportFailure(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
			circuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	circuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[T](settings)
}

// isTransportFailure reports whether err means the upstream could not serve the call.
// Caller cancellation and application level statuses do not count.
func isTransportFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch status.Code(err) {
	case codes.Canceled, codes.NotFound, codes.InvalidArgument, codes.AlreadyExists,
		codes.FailedPrecondition, codes.PermissionDenied, codes.Unauthenticated:
		return false
	default:
		return true
	}
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func observe(service, outcome string, start time.Time) {
	upstreamRequestsTotal.WithLabelValues(service, outcome).Inc()
	upstreamRequestDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}
