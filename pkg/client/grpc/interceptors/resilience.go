// Package interceptors holds the unary client interceptors used by catalog gRPC clients.
package interceptors

import (
	"context"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultBreakerName = "catalog-client-cb"

// transientCodes are retried and count as failures for the circuit breaker.
var transientCodes = []codes.Code{codes.Unavailable, codes.ResourceExhausted, codes.Aborted}

// NewRetryInterceptor creates a gRPC unary client interceptor with retry logic.
func NewRetryInterceptor(cfg config.RetryConfig) grpc.UnaryClientInterceptor {
	opts := []retry.CallOption{
		retry.WithCodes(transientCodes...),
		retry.WithMax(cfg.MaxAttempts),
		retry.WithBackoff(retry.BackoffExponential(cfg.InitialBackoff)),
	}
	return retry.UnaryClientInterceptor(opts...)
}

// UnaryCircuitBreakerInterceptor returns a gRPC unary client interceptor that wraps calls in a Circuit Breaker.
// The CircuitBreaker instance should be configured with a custom `IsSuccessful` function
// to distinguish between system failures (which should trip the breaker) and other errors (like NotFound).
func UnaryCircuitBreakerInterceptor[T any](cb *gobreaker.CircuitBreaker[T]) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		// Only the error matters; the reply is filled in by the invoker.
		var zero T
		_, err := cb.Execute(func() (T, error) {
			err := invoker(ctx, method, req, reply, cc, opts...)
			return zero, err
		})
		return err
	}
}

// NewCircuitBreaker builds a breaker interceptor that trips on consecutive or
// proportional transient failures and stays open for cfg.OpenTimeout.
func NewCircuitBreaker(cfg config.CircuitBreakerConfig) grpc.UnaryClientInterceptor {
	name := cfg.Name
	if name == "" {
		name = defaultBreakerName
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: isSuccessful,
	}
	breaker := gobreaker.NewCircuitBreaker[any](st)
	return UnaryCircuitBreakerInterceptor(breaker)
}

// isSuccessful reports whether err should count as a success for the breaker.
// Data errors such as NotFound or InvalidArgument do not indicate an unhealthy server.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	for _, c := range transientCodes {
		if st.Code() == c {
			return false
		}
	}
	return true
}
