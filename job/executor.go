// Package job runs conversions: Execute turns one discovered file into its
// two artifacts, Run drives many Executes through a fixed-size worker pool.
package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mnishina/avif-converter/encoder"
	"github.com/mnishina/avif-converter/logger"
	"github.com/mnishina/avif-converter/models"
	"github.com/mnishina/avif-converter/upload"
)

// Execute converts one file into an AVIF artifact plus a compressed fallback
// in the source's own format, mirroring the input's directory structure under
// the output root. Execute is a pure function of the job; every failure is
// captured in the returned Result and nothing escapes to the pool.
func Execute(ctx context.Context, j models.Job) models.Result {
	rel, err := filepath.Rel(j.InputRoot, j.InputPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return failure(j, fmt.Errorf("input %s is outside root %s", j.InputPath, j.InputRoot))
	}
	outDir := filepath.Join(j.OutputRoot, filepath.Dir(rel))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return failure(j, fmt.Errorf("create output dir: %w", err))
	}

	info, err := os.Stat(j.InputPath)
	if err != nil {
		return failure(j, err)
	}
	originalSize := info.Size()

	start := time.Now()
	format, err := encoder.Detect(j.InputPath)
	if err != nil {
		return failure(j, err)
	}
	logger.Debugf("convert %s (%s)", rel, format)

	base := filepath.Base(rel)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	avifPath := filepath.Join(outDir, stem+".avif")
	fallbackPath := filepath.Join(outDir, base)

	opts := encoder.EncodeOptions{
		Quality: j.Config.Quality,
		Effort:  j.Config.Effort,
		Source:  format,
	}

	avifEnc, ok := encoder.Get("avif")
	if !ok {
		return failure(j, fmt.Errorf("avif encoder unavailable, is avifenc installed?"))
	}
	if err := avifEnc(ctx, j.InputPath, avifPath, opts); err != nil {
		return failure(j, fmt.Errorf("avif encode: %w", err))
	}
	avifInfo, err := os.Stat(avifPath)
	if err != nil {
		return failure(j, fmt.Errorf("stat avif artifact: %w", err))
	}

	fbName := encoder.FallbackName(format)
	fbEnc, ok := encoder.Get(fbName)
	if !ok {
		return failure(j, fmt.Errorf("%s encoder unavailable", fbName))
	}
	if err := fbEnc(ctx, j.InputPath, fallbackPath, opts); err != nil {
		return failure(j, fmt.Errorf("%s fallback encode: %w", fbName, err))
	}
	fbInfo, err := os.Stat(fallbackPath)
	if err != nil {
		return failure(j, fmt.Errorf("stat fallback artifact: %w", err))
	}
	duration := time.Since(start)

	for _, target := range j.Config.Uploads {
		for _, artifact := range []string{avifPath, fallbackPath} {
			relArtifact, err := filepath.Rel(j.OutputRoot, artifact)
			if err != nil {
				return failure(j, fmt.Errorf("upload key for %s: %w", artifact, err))
			}
			if err := upload.Push(ctx, target, filepath.ToSlash(relArtifact), artifact); err != nil {
				return failure(j, fmt.Errorf("upload to %s: %w", target.Type, err))
			}
		}
	}

	return models.Result{
		InputPath:    j.InputPath,
		Format:       format,
		OriginalSize: originalSize,
		AvifPath:     avifPath,
		AvifSize:     avifInfo.Size(),
		FallbackPath: fallbackPath,
		FallbackSize: fbInfo.Size(),
		Duration:     duration,
	}
}

// failure builds a Result carrying only the input path and the error.
func failure(j models.Job, err error) models.Result {
	return models.Result{InputPath: j.InputPath, Err: err.Error()}
}
