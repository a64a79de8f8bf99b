package middleware

import (
	"log/slog"
	"net/http"

	"github.com/IGDevX/marche-conclu-shop-service/pkg/logger"
)

// ProducerIDHeader identifies the producer acting on the request. The gateway
// sets it after authenticating the caller.
const ProducerIDHeader = "X-Producer-ID"

// RequestLogger stores a logger enriched with correlation_id, producer_id,
// trace_id and span_id in the request context. Mount it after RequestLogging
// and Tracing so those values exist.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if producerID := r.Header.Get(ProducerIDHeader); producerID != "" {
				ctx = logger.WithProducerID(ctx, producerID)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
