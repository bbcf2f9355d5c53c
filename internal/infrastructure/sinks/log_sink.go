package sinks

import (
	"context"

	"futurfounder/internal/core/domain"

	"go.uber.org/zap"
)

// LogSink writes every forwarded event to the structured log. Used in debug
// mode as a local stand-in for the remote sinks.
type LogSink struct {
	logger *zap.SugaredLogger
}

func NewLogSink(logger *zap.SugaredLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, event domain.Event) error {
	fields := []interface{}{
		"action", event.Action,
		"category", event.Category,
	}
	if event.Label != "" {
		fields = append(fields, "label", event.Label)
	}
	if event.Value != nil {
		fields = append(fields, "value", *event.Value)
	}
	if event.VisitorID != "" {
		fields = append(fields, "visitor_id", event.VisitorID)
	}
	for key, p := range event.Params {
		fields = append(fields, key, p.Interface())
	}

	s.logger.Debugw("analytics event", fields...)
	return nil
}

func (s *LogSink) SendConversion(ctx context.Context, conv domain.Conversion) error {
	fields := []interface{}{
		"name", conv.Name,
		"currency", conv.Currency,
	}
	if conv.Value != nil {
		fields = append(fields, "value", *conv.Value)
	}
	if conv.TransactionID != "" {
		fields = append(fields, "transaction_id", conv.TransactionID)
	}

	s.logger.Debugw("analytics conversion", fields...)
	return nil
}
