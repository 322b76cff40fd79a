package watch_test

import (
	"fmt"
	"time"

	"github.com/steveyegge/csvwatch/internal/watch"
)

// ExampleDebouncer demonstrates coalescing a burst of notifications for the
// same path into a single trigger.
func ExampleDebouncer() {
	fired := make(chan string, 1)
	d := watch.NewDebouncer(50*time.Millisecond, func(path string) {
		fired <- path
	})

	// A file being written in chunks produces a burst of events.
	for i := 0; i < 5; i++ {
		d.Trigger("incoming/report.csv")
	}

	fmt.Println(<-fired)
	// Output: incoming/report.csv
}
