package snowflake

import (
	"strings"
	"testing"
)

func TestMessageIDCarriesKindPrefix(t *testing.T) {
	if err := Init(1, 1); err != nil {
		t.Fatalf("Init: %v", err)
	}

	id, err := NextMessageID("mailing_dispatch")
	if err != nil {
		t.Fatalf("NextMessageID: %v", err)
	}
	if !strings.HasPrefix(id, "mailing_dispatch_") {
		t.Fatalf("expected kind prefix, got %q", id)
	}

	id2, err := NextMessageID("mailing_dispatch")
	if err != nil {
		t.Fatalf("NextMessageID: %v", err)
	}
	if id == id2 {
		t.Fatalf("expected unique message ids, got %q twice", id)
	}
}
