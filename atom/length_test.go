package atom

import (
	"fmt"
	"testing"

	"github.com/dogmatiq/atomkit/table"
)

func TestCheckLength(t *testing.T) {
	t.Parallel()

	t.Run("it accepts text of the maximum length", func(t *testing.T) {
		t.Parallel()

		checkLength(table.MaxLength, "bytes")
	})

	t.Run("it panics if the text is too long", func(t *testing.T) {
		t.Parallel()

		defer func() {
			want := fmt.Sprintf(
				"cannot intern %d code units of text, the maximum is %d",
				uint64(table.MaxLength)+1,
				uint64(table.MaxLength),
			)

			if got := recover(); got != want {
				t.Fatalf("unexpected panic: got %v, want %q", got, want)
			}
		}()

		checkLength(uint64(table.MaxLength)+1, "code units")
	})
}
