// Package logging builds the service logrus logger and carries request ids
// through contexts.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// New returns a logger writing to stdout with every entry tagged by service.
// format is "json" or "text"; unknown levels fall back to info.
func New(service, level, format string) *logrus.Entry {
	return NewWithWriter(os.Stdout, service, level, format)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(w io.Writer, service, level, format string) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(w)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger.WithField("service", service)
}

// NewRequestID returns a fresh request id.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID stores id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// FromContext annotates base with the request id in ctx, if any.
func FromContext(ctx context.Context, base *logrus.Entry) *logrus.Entry {
	if id := RequestID(ctx); id != "" {
		return base.WithField("request_id", id)
	}
	return base
}

// Discard is a logger that drops everything. Handy in tests.
func Discard() *logrus.Entry {
	return NewWithWriter(io.Discard, "test", "panic", "json")
}
