package gateway

import (
	"fmt"
	"net"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	bizerrors "Lavka/pkg/errors"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Outcome
	}{
		{
			"blocked by user",
			&tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"},
			OutcomeBlocked,
		},
		{
			"deleted account",
			&tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"},
			OutcomeBlocked,
		},
		{
			"other bad request",
			&tgbotapi.Error{Code: 400, Message: "Bad Request: message is too long"},
			OutcomeTransient,
		},
		{
			"flood control",
			&tgbotapi.Error{Code: 429, Message: "Too Many Requests: retry after 5"},
			OutcomeTransient,
		},
		{
			"server error",
			&tgbotapi.Error{Code: 502, Message: "Bad Gateway"},
			OutcomeTransient,
		},
		{
			"network error",
			&net.DNSError{Err: "no such host", Name: "api.telegram.org"},
			OutcomeTransient,
		},
		{
			"wrapped api error",
			fmt.Errorf("send failed: %w", &tgbotapi.Error{Code: 403, Message: "Forbidden"}),
			OutcomeBlocked,
		},
		{
			"pre-classified permanent failure",
			bizerrors.NewNonRetryableError("RECIPIENT_UNREACHABLE", "recipient cannot receive messages", "403"),
			OutcomeBlocked,
		},
		{
			"wrapped permanent failure",
			fmt.Errorf("send failed: %w", bizerrors.NewNonRetryableError("RECIPIENT_UNREACHABLE", "gone", "403")),
			OutcomeBlocked,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.err); got != tc.want {
				t.Fatalf("classify(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	flood := &tgbotapi.Error{
		Code:               429,
		Message:            "Too Many Requests: retry after 7",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7},
	}
	if got := RetryAfter(flood); got != 7*time.Second {
		t.Fatalf("expected 7s, got %s", got)
	}

	if got := RetryAfter(&tgbotapi.Error{Code: 502}); got != 0 {
		t.Fatalf("expected 0 for non-flood error, got %s", got)
	}
	if got := RetryAfter(nil); got != 0 {
		t.Fatalf("expected 0 for nil error, got %s", got)
	}
}
