package metrics

import (
	gokit "github.com/go-kit/kit/metrics"
)

// Counter accumulates values monotonically, e.g. the number of delivered events.
type Counter = gokit.Counter

// Histogram takes repeated observations of the same kind of thing,
// e.g. how long a handler took to process a status change.
type Histogram = gokit.Histogram
