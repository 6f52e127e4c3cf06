package xtelemetry_test

import (
	"strings"
	"testing"

	. "github.com/dogmatiq/atomkit/internal/x/xtelemetry"
	"github.com/google/uuid"
)

func TestHandleID(t *testing.T) {
	t.Parallel()

	name := "<table>." + uuid.NewString()

	for _, want := range []string{"#1 ", "#2 "} {
		id := HandleID(name)

		if !strings.HasPrefix(id, name+want) {
			t.Fatalf("unexpected handle ID: got %q, want prefix %q", id, name+want)
		}

		if _, err := uuid.Parse(strings.TrimPrefix(id, name+want)); err != nil {
			t.Fatalf("expected handle ID to end with a UUID: %s", err)
		}
	}
}
