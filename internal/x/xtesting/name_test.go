package xtesting_test

import (
	"strings"
	"testing"

	. "github.com/dogmatiq/atomkit/internal/x/xtesting"
)

func TestSequentialName(t *testing.T) {
	t.Parallel()

	prefix := UniqueName("prefix")

	for _, want := range []string{"-1", "-2", "-3"} {
		if got := SequentialName(prefix); got != prefix+want {
			t.Fatalf("unexpected name: got %q, want %q", got, prefix+want)
		}
	}
}

func TestUniqueName(t *testing.T) {
	t.Parallel()

	a := UniqueName("name")
	b := UniqueName("name")

	if a == b {
		t.Fatalf("expected unique names, got %q twice", a)
	}

	if !strings.HasPrefix(a, "name-") {
		t.Fatalf("unexpected name: %q", a)
	}
}
