package progress

import (
	"go.uber.org/zap"
)

// Sink consumes individual progress events. The run is sequential, so sinks
// are never invoked concurrently.
type Sink interface {
	Emit(evt Event)
}

// NopSink discards every event.
type NopSink struct{}

// Emit implements Sink.
func (NopSink) Emit(Event) {}

// LogSink emits each event as a structured log line.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Emit logs the event using structured fields. Empty fields are omitted so
// fetch events stay readable.
func (s *LogSink) Emit(evt Event) {
	fields := []zap.Field{
		zap.String("run_id", evt.RunID.String()),
		zap.String("stage", string(evt.Stage)),
		zap.String("endpoint", evt.Endpoint),
	}
	if evt.Attempt > 0 {
		fields = append(fields, zap.Int("attempt", evt.Attempt))
	}
	if evt.Stage == StagePageDone {
		fields = append(fields,
			zap.Int("page", evt.PageIndex),
			zap.Int("total_pages", evt.TotalPages),
		)
	}
	if evt.Stage == StagePageDone || evt.Stage == StageSourceDone {
		fields = append(fields, zap.Int("records", evt.Records))
	}
	if evt.StatusClass != "" {
		fields = append(fields, zap.String("status_class", string(evt.StatusClass)))
	}
	if evt.Note != "" {
		fields = append(fields, zap.String("note", evt.Note))
	}
	s.logger.Info("progress event", fields...)
}
