package errors

import (
	"fmt"
	"testing"
)

func TestIsSkipMessageError(t *testing.T) {
	err := &SkipMessageError{Reason: "already processed"}
	if !IsSkipMessageError(err) {
		t.Fatal("expected SkipMessageError to be detected")
	}
	if !IsSkipMessageError(fmt.Errorf("consume: %w", err)) {
		t.Fatal("expected wrapped SkipMessageError to be detected")
	}
	if IsSkipMessageError(fmt.Errorf("plain failure")) {
		t.Fatal("plain errors must not be skippable")
	}
}

func TestDefinitionLookup(t *testing.T) {
	if got := Get("MAILING_NOT_FOUND"); got != MailingNotFound {
		t.Fatalf("unexpected definition: %+v", got)
	}
	if got := Get("NO_SUCH_CODE"); got.Code != "NO_SUCH_CODE" || got.Message != "Unexpected error" {
		t.Fatalf("unexpected fallback: %+v", got)
	}
}
