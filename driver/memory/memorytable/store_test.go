package memorytable_test

import (
	"testing"

	. "github.com/dogmatiq/atomkit/driver/memory/memorytable"
	"github.com/dogmatiq/atomkit/table"
)

func TestStore(t *testing.T) {
	table.RunTests(
		t,
		&Store{},
	)
}

func BenchmarkStore(b *testing.B) {
	table.RunBenchmarks(
		b,
		&Store{},
	)
}
