package middleware_test

import (
	"context"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"

	"Lavka/internal/middleware"
	"Lavka/pkg/metrics"
)

// 两个 bot 的启动顺序是先 metrics.InitMetrics 再挂路由，
// 这里按同样顺序冒烟一次，确保中间件的指标仪表随之就绪。
func TestOpenTelemetryMiddlewareRecordsRequest(t *testing.T) {
	if err := metrics.InitMetrics(); err != nil {
		t.Fatalf("InitMetrics failed: %v", err)
	}

	mw := middleware.OpenTelemetryMiddleware()

	c := app.NewContext(0)
	c.Request.Header.SetMethod("GET")
	c.Request.SetRequestURI("/v1/catalog/products")
	c.Request.Header.Set("X-Request-Id", "req-1")
	c.Response.SetStatusCode(200)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("middleware panicked: %v", r)
		}
	}()
	mw(context.Background(), c)
}

func TestOpenTelemetryMiddlewareErrorStatus(t *testing.T) {
	if err := metrics.InitMetrics(); err != nil {
		t.Fatalf("InitMetrics failed: %v", err)
	}

	mw := middleware.OpenTelemetryMiddleware()

	c := app.NewContext(0)
	c.Request.Header.SetMethod("POST")
	c.Request.SetRequestURI("/v1/cart/lines")
	c.Response.SetStatusCode(500)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("middleware panicked: %v", r)
		}
	}()
	mw(context.Background(), c)
}
