package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextFallsBackToGlobal(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	global := zap.New(core)
	SetLogger(global)
	t.Cleanup(func() { SetLogger(nil) })

	if FromContext(context.Background()) != global {
		t.Fatalf("expected global logger")
	}

	scoped := global.With(zap.String("request_id", "abc"))
	ctx := WithContext(context.Background(), scoped)
	if FromContext(ctx) != scoped {
		t.Fatalf("expected scoped logger")
	}
}

func TestFromEchoLookupOrder(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	global := zap.New(core)
	SetLogger(global)
	t.Cleanup(func() { SetLogger(nil) })

	e := echo.New()
	newCtx := func(ctx context.Context) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		return e.NewContext(req, httptest.NewRecorder())
	}

	if FromEcho(newCtx(context.Background())) != global {
		t.Fatal("expected global logger")
	}

	fromRequest := global.With(zap.String("request_id", "r1"))
	if FromEcho(newCtx(WithContext(context.Background(), fromRequest))) != fromRequest {
		t.Fatal("expected the request context logger")
	}

	c := newCtx(context.Background())
	attached := global.With(zap.Uint("owner_id", 7))
	Attach(c, attached)
	if FromEcho(c) != attached || FromContext(c.Request().Context()) != attached {
		t.Fatal("attached logger should reach both contexts")
	}
}

func TestMiddlewareLogsRequests(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	e := echo.New()
	e.Use(Middleware())
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })

	for _, path := range []string{"/ok", "/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := logs.FilterMessage("HTTP Request").Len(); got != 1 {
		t.Fatalf("info entries = %d", got)
	}
	failed := logs.FilterMessage("HTTP request failed").All()
	if len(failed) != 1 {
		t.Fatalf("error entries = %d", len(failed))
	}
	if failed[0].ContextMap()["path"] != "/boom" {
		t.Fatalf("unexpected path field: %v", failed[0].ContextMap())
	}
}

func TestInitLoggerProduction(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	if err := InitLogger(&LogConfig{Level: "warn", Environment: "production", ServiceName: "test"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
}
