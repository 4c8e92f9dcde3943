package models

import (
	"time"

	"github.com/mnishina/avif-converter/config"
)

// Job is one discovered input file, fully described. Workers receive jobs by
// value and never mutate shared state through them.
type Job struct {
	InputPath  string        // absolute path of the source image
	InputRoot  string        // directory the batch was discovered under
	OutputRoot string        // directory artifacts are mirrored into
	Config     config.Config // encode settings, read-only
}

// Result is the outcome of one job. Err empty means both artifacts were
// written; otherwise only InputPath and Err are meaningful.
type Result struct {
	InputPath    string
	Format       SourceFormat // detected container of the source
	OriginalSize int64
	AvifPath     string
	AvifSize     int64
	FallbackPath string
	FallbackSize int64
	Duration     time.Duration // detection through fallback stat
	Err          string
}

func (r Result) Failed() bool {
	return r.Err != ""
}
