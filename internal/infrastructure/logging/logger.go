package logging

import (
	"context"

	"github.com/manorfm/tokenstore/internal/domain"
	"go.uber.org/zap"
)

// NewLogger creates a structured logger appropriate for the environment.
// Production uses JSON output at info level, anything else uses the development console encoder.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// FromContext returns logger annotated with the request ID carried by ctx, if any
func FromContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if requestID, ok := domain.GetRequestID(ctx); ok {
		return logger.With(zap.String("request_id", requestID))
	}
	return logger
}
