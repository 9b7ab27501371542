package middleware

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"

	"Lavka/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func TestGetUserInfoIncludesChatID(t *testing.T) {
	c := app.NewContext(0)
	c.Set(IdentityKey, int64(42))

	info := getUserInfo(context.Background(), c)
	if !strings.Contains(info, "ChatID: 42") {
		t.Fatalf("expected chat id in user info, got %q", info)
	}
}

func TestGetUserInfoAnonymous(t *testing.T) {
	c := app.NewContext(0)

	info := getUserInfo(context.Background(), c)
	if strings.Contains(info, "ChatID") {
		t.Fatalf("expected no chat id for anonymous request, got %q", info)
	}
}

func TestHandlePanicWritesServerError(t *testing.T) {
	c := app.NewContext(0)
	c.Set(IdentityKey, int64(7))
	c.Request.SetRequestURI("/v1/cart")
	c.Request.Header.SetMethod("GET")

	cfg := NewRecoverConfig()
	cfg.IsProduction = false

	handlePanic(context.Background(), c, "boom", cfg)

	if got := c.Response.StatusCode(); got != 500 {
		t.Fatalf("expected status 500 after panic, got %d", got)
	}
	if body := string(c.Response.Body()); !strings.Contains(body, "INTERNAL_SERVER_ERROR") {
		t.Fatalf("expected error envelope in body, got %q", body)
	}
}
