package llm

import (
	"context"
	"time"

	"studypath_backend/pkg/logger"

	"go.uber.org/zap"
)

// LoggingProvider decorates a Provider with structured request logging.
type LoggingProvider struct {
	inner Provider
}

// WithLogging wraps a Provider so every call is logged with latency,
// token usage and outcome.
func WithLogging(p Provider) Provider {
	return &LoggingProvider{inner: p}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	if logger.Log == nil {
		return resp, err
	}

	fields := []zap.Field{
		zap.String("model", l.inner.ModelID()),
		zap.Duration("elapsed", elapsed),
	}
	if req.Schema != nil {
		fields = append(fields, zap.String("schema", req.Schema.Name))
	}

	if err != nil {
		logger.Log.Warn("llm generate failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	fields = append(fields,
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.String("stop_reason", resp.StopReason),
	)
	logger.Log.Debug("llm generate ok", fields...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
