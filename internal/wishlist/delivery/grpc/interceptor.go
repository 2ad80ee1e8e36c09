package grpc

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/tair/wishlist-service/pkg/auth"
	"github.com/tair/wishlist-service/pkg/logger"
)

// UserIDMetadataKey carries a caller identity already verified by a trusted gateway
const UserIDMetadataKey = "x-user-id"

var grpcTracer = otel.Tracer("grpc-wishlist-server")

// gRPC Prometheus metrics
var (
	grpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_service_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "status_code"},
	)

	grpcRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wishlist_service_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	grpcRequestSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "wishlist_service_grpc_request_duration_summary",
			Help: "Summary of gRPC request durations with percentiles",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.001,
			},
			MaxAge: 10 * time.Minute,
		},
		[]string{"method"},
	)

	grpcErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_service_grpc_errors_total",
			Help: "Total number of gRPC errors",
		},
		[]string{"method", "error_code"},
	)
)

func init() {
	prometheus.MustRegister(grpcRequestsTotal)
	prometheus.MustRegister(grpcRequestDuration)
	prometheus.MustRegister(grpcRequestSummary)
	prometheus.MustRegister(grpcErrorsTotal)
}

// ServerOptions returns the interceptor chain in the order tracing, metrics, logging, auth
func ServerOptions(tokens *auth.TokenValidator, trustUserHeader bool) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			TracingInterceptor,
			MetricsInterceptor,
			LoggingInterceptor,
			AuthInterceptor(tokens, trustUserHeader),
		),
	}
}

// TracingInterceptor adds distributed tracing to gRPC calls
func TracingInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	ctx, span := grpcTracer.Start(ctx, info.FullMethod,
		oteltrace.WithSpanKind(oteltrace.SpanKindServer),
		oteltrace.WithAttributes(
			attribute.String("rpc.system", "grpc"),
			attribute.String("rpc.service", info.FullMethod),
			attribute.String("service.name", "wishlist-service"),
		),
	)
	defer span.End()

	resp, err := handler(ctx, req)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if st, ok := status.FromError(err); ok {
			span.SetAttributes(attribute.String("rpc.grpc.status_code", st.Code().String()))
		}
	} else {
		span.SetStatus(codes.Ok, "success")
	}

	return resp, err
}

// MetricsInterceptor collects Prometheus metrics for gRPC calls
func MetricsInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	duration := time.Since(start).Seconds()

	statusCode := "OK"
	if err != nil {
		if st, ok := status.FromError(err); ok {
			statusCode = st.Code().String()
			grpcErrorsTotal.WithLabelValues(info.FullMethod, statusCode).Inc()
		} else {
			statusCode = "Unknown"
		}
	}

	grpcRequestsTotal.WithLabelValues(info.FullMethod, statusCode).Inc()
	grpcRequestDuration.WithLabelValues(info.FullMethod).Observe(duration)
	grpcRequestSummary.WithLabelValues(info.FullMethod).Observe(duration)

	return resp, err
}

// LoggingInterceptor logs gRPC requests with structured logging
func LoggingInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()

	logger.Info(ctx).
		Str("method", info.FullMethod).
		Str("protocol", "grpc").
		Msg("gRPC request started")

	resp, err := handler(ctx, req)

	duration := time.Since(start)

	if err != nil {
		grpcStatus := "unknown"
		if st, ok := status.FromError(err); ok {
			grpcStatus = st.Code().String()
		}

		logger.Error(ctx).
			Str("method", info.FullMethod).
			Str("protocol", "grpc").
			Dur("duration", duration).
			Int64("duration_ms", duration.Milliseconds()).
			Str("grpc_status", grpcStatus).
			Err(err).
			Msg("gRPC request failed")
	} else {
		logger.Info(ctx).
			Str("method", info.FullMethod).
			Str("protocol", "grpc").
			Dur("duration", duration).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("gRPC request completed")
	}

	return resp, err
}

// AuthInterceptor resolves the caller from a bearer token, or from the
// x-user-id metadata when trustUserHeader is set
func AuthInterceptor(tokens *auth.TokenValidator, trustUserHeader bool) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Errorf(grpccodes.Unauthenticated, "metadata not provided")
		}

		if values := md.Get("authorization"); len(values) > 0 {
			claims, err := tokens.ValidateHeader(values[0])
			if err != nil {
				logger.Warn(ctx).
					Err(err).
					Str("method", info.FullMethod).
					Msg("Invalid token")
				return nil, status.Errorf(grpccodes.Unauthenticated, "invalid token")
			}
			return handler(auth.ContextWithClaims(ctx, claims), req)
		}

		if values := md.Get(UserIDMetadataKey); trustUserHeader && len(values) > 0 && values[0] != "" {
			return handler(auth.ContextWithUserID(ctx, values[0]), req)
		}

		return nil, status.Errorf(grpccodes.Unauthenticated, "authorization token not provided")
	}
}
