package driver

import (
	"weave/internal/observ"
)

// sumTimings folds the per-document phase timings of a build into one report
// with the phases in first-seen order.
func sumTimings(docs []Document) observ.Report {
	var total observ.Report
	for i := range docs {
		total.Add(docs[i].Timings)
	}
	return total
}
