// core/pair/report.go
package pair

import (
	"fmt"
	"io"
)

// Report summarizes the iteration counters as human-readable lines.
func (it *Iter) Report() []string {
	return []string{
		"paired iteration report:",
		fmt.Sprintf("  total read attempts:       %d", it.TotalReadAttempts),
		fmt.Sprintf("  hyb record read attempts:  %d", it.HybRecordReadAttempts),
		fmt.Sprintf("  fold record read attempts: %d", it.FoldRecordReadAttempts),
		fmt.Sprintf("  record pairs skipped:      %d", it.PairSkips),
	}
}

// PrintReport writes the report to w.
func (it *Iter) PrintReport(w io.Writer) {
	for _, line := range it.Report() {
		_, _ = fmt.Fprintln(w, line)
	}
}
