package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey struct{}

// EchoKey is the echo.Context key holding the request-scoped logger.
const EchoKey = "logger"

// FromContext returns the logger carried by ctx, or the global one. Services
// log through this so their lines keep the request id and owner id.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*zap.Logger); ok {
			return l
		}
	}
	return GetLogger()
}

func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromEcho returns the handler's logger: the one set on c, then the one on
// the request context, then the global one.
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(EchoKey).(*zap.Logger); ok {
		return l
	}
	return FromContext(c.Request().Context())
}

// Attach makes l the request's logger for handlers and for the services they
// call. Later middleware narrows it by attaching l.With(...).
func Attach(c echo.Context, l *zap.Logger) {
	c.Set(EchoKey, l)
	req := c.Request()
	c.SetRequest(req.WithContext(WithContext(req.Context(), l)))
}
