package jobqueue

import (
	"edushelf-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
)

const module = "JOB_QUEUE"

// watermillLogger routes watermill's internal logs into the injected ILogger.
type watermillLogger struct {
	log    logger.ILogger
	fields watermill.LogFields
}

func newWatermillLogger(log logger.ILogger) watermill.LoggerAdapter {
	return &watermillLogger{log: log, fields: watermill.LogFields{}}
}

func (w *watermillLogger) details(fields watermill.LogFields) map[string]interface{} {
	out := make(map[string]interface{}, len(w.fields)+len(fields))
	for k, v := range w.fields {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (w *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	d := w.details(fields)
	d["error"] = err
	w.log.Error(module, msg, d)
}

func (w *watermillLogger) Info(msg string, fields watermill.LogFields) {
	w.log.Info(module, msg, w.details(fields))
}

func (w *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.log.Debug(module, msg, w.details(fields))
}

// Trace is too chatty for the file sink, so it is folded into Debug.
func (w *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.log.Debug(module, msg, w.details(fields))
}

func (w *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{log: w.log, fields: w.fields.Add(fields)}
}
