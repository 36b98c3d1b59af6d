package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes notifications to a zap logger.
type LogSink struct {
	logger *zap.SugaredLogger
}

var _ Sink = (*LogSink)(nil)

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Sugar()}
}

func (s *LogSink) Notify(_ context.Context, n Notification) error {
	s.logger.Infow("Event",
		"kind", n.Event.EventKind(),
		"height", n.Height,
		"tx_hash", n.TxHash.String(),
		"event", n.Event,
	)
	return nil
}
