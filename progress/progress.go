package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/mnishina/avif-converter/logger"
	"github.com/mnishina/avif-converter/models"
)

// Reporter surfaces per-job completions. On a terminal it renders a bar on
// stderr, leaving stdout to the logger; otherwise each completion becomes a
// log line.
type Reporter struct {
	bar *progressbar.ProgressBar
}

// New builds a reporter for total jobs. disabled forces the log-line mode.
func New(total int, disabled bool) *Reporter {
	if disabled || !interactive() {
		return &Reporter{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(24),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
	return &Reporter{bar: bar}
}

func interactive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Observe records one completed job. Failures always get a warning line;
// the bar only ever shows the latest success.
func (r *Reporter) Observe(res models.Result) {
	if res.Failed() {
		logger.Warnf("failed: %s: %s", res.InputPath, res.Err)
	}
	if r.bar == nil {
		if !res.Failed() {
			logger.Infof("converted %s in %s (%s %s)",
				filepath.Base(res.InputPath),
				res.Duration.Round(time.Millisecond),
				humanize.IBytes(uint64(res.AvifSize)),
				sizeDelta(res))
		}
		return
	}
	if !res.Failed() {
		r.bar.Describe(fmt.Sprintf("%s %s", trimName(filepath.Base(res.InputPath)), sizeDelta(res)))
	}
	_ = r.bar.Add(1)
}

// Finish clears the bar so the summary prints on a clean line.
func (r *Reporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// sizeDelta renders the original → AVIF change with an explicit sign.
func sizeDelta(res models.Result) string {
	d := res.OriginalSize - res.AvifSize
	if d >= 0 {
		return "-" + humanize.IBytes(uint64(d))
	}
	return "+" + humanize.IBytes(uint64(-d))
}

func trimName(name string) string {
	const max = 32
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-1]) + "…"
}
