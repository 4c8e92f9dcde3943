// Package report reduces job results to the run summary.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mnishina/avif-converter/models"
)

// Summary is the aggregate outcome of one batch.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int

	// Byte totals cover successful jobs only; a failed job has no artifacts
	// and contributes nothing.
	OriginalBytes int64
	AvifBytes     int64
	FallbackBytes int64

	Elapsed  time.Duration // batch wall clock, set by the caller
	Failures []Failure
}

// Failure is one failed job as listed in the summary.
type Failure struct {
	InputPath string
	Message   string
}

// Summarize folds results into a Summary. The counts, totals and reductions
// are the same for any ordering of results; only the failure listing keeps
// the order given.
func Summarize(results []models.Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Failed() {
			s.Failed++
			s.Failures = append(s.Failures, Failure{InputPath: r.InputPath, Message: r.Err})
			continue
		}
		s.Succeeded++
		s.OriginalBytes += r.OriginalSize
		s.AvifBytes += r.AvifSize
		s.FallbackBytes += r.FallbackSize
	}
	return s
}

// AvifReduction is the percent saved by the AVIF artifacts against the
// originals. Negative when they grew.
func (s Summary) AvifReduction() int {
	return reduction(s.OriginalBytes, s.AvifBytes)
}

// FallbackReduction is the percent saved by the fallback artifacts.
func (s Summary) FallbackReduction() int {
	return reduction(s.OriginalBytes, s.FallbackBytes)
}

func reduction(original, artifact int64) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round(100 * (1 - float64(artifact)/float64(original))))
}

// Render returns the human-readable summary: headline, size table and the
// failure listing.
func Render(s Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d of %d converted in %s", s.Succeeded, s.Total, s.Elapsed.Round(100*time.Millisecond))
	if s.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", s.Failed)
	}
	b.WriteString("\n")

	if s.Succeeded > 0 {
		rows := [][]string{
			{"original", humanize.IBytes(uint64(s.OriginalBytes)), ""},
			{"avif", humanize.IBytes(uint64(s.AvifBytes)), fmt.Sprintf("%d%%", s.AvifReduction())},
			{"fallback", humanize.IBytes(uint64(s.FallbackBytes)), fmt.Sprintf("%d%%", s.FallbackReduction())},
		}
		b.WriteString(Table([]string{"ARTIFACT", "SIZE", "REDUCTION"}, rows, 2, 3))
		b.WriteString("\n")
	}

	if len(s.Failures) > 0 {
		b.WriteString("\nfailures:\n")
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "  %s: %s\n", f.InputPath, f.Message)
		}
	}
	return b.String()
}
