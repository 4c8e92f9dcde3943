// Package encoder shells out to the image tools that produce artifacts. The
// AVIF entry writes the primary artifact; the per-format entries write the
// compressed fallback in the source's own container.
package encoder

import (
	"context"
	"os/exec"

	"github.com/mnishina/avif-converter/logger"
	"github.com/mnishina/avif-converter/models"
)

// EncodeFunc is the function signature for any encoder
type EncodeFunc func(ctx context.Context, input, output string, opts EncodeOptions) error

type EncodeOptions struct {
	Quality int                 // 0-100 for every tool
	Effort  int                 // 0 (fastest) to 9 (slowest), AVIF only
	Source  models.SourceFormat // drives pre-decoding for formats avifenc cannot read
}

// Registry maps encoder name → encoder function. Written once at startup,
// read concurrently by workers afterwards.
var Registry = map[string]EncodeFunc{}

// Register adds an encoder if the underlying command exists, logs status
func Register(name string, cmdName string, fn EncodeFunc) {
	if _, err := exec.LookPath(cmdName); err != nil {
		logger.Warnf("encoder [%s] skipped: command '%s' not found in PATH", name, cmdName)
		return
	}
	Registry[name] = fn
	logger.Debugf("encoder [%s] registered (command: %s)", name, cmdName)
}

// RegisterCopy registers the copy encoder (no command dependency)
func RegisterCopy() {
	Registry["copy"] = EncodeCopy
	logger.Debugf("encoder [copy] registered (no command required)")
}

// Get looks an encoder up by name
func Get(name string) (EncodeFunc, bool) {
	fn, ok := Registry[name]
	return fn, ok
}

// RegisterDefaults wires the stock encoders. Call once before the first job.
func RegisterDefaults() {
	Register("avif", "avifenc", EncodeAVIF)
	Register("jpeg", "magick", EncodeJPEG)
	Register("png", "pngquant", EncodePNG)
	Register("webp", "cwebp", EncodeWebP)
	RegisterCopy()
}

// FallbackName maps a detected source format to the registry entry that
// writes its fallback artifact.
func FallbackName(f models.SourceFormat) string {
	switch f {
	case models.FormatJPEG:
		return "jpeg"
	case models.FormatPNG:
		return "png"
	case models.FormatWebP:
		return "webp"
	}
	return "copy"
}

// Tool is one external command the pipeline may invoke.
type Tool struct {
	Command string
	Purpose string
}

// RequiredTools lists every command the stock encoders depend on, for the
// doctor command.
func RequiredTools() []Tool {
	return []Tool{
		{Command: "avifenc", Purpose: "AVIF primary artifacts"},
		{Command: "magick", Purpose: "JPEG fallbacks, first-frame extraction"},
		{Command: "pngquant", Purpose: "PNG fallbacks"},
		{Command: "cwebp", Purpose: "WebP fallbacks"},
		{Command: "dwebp", Purpose: "decoding WebP sources"},
	}
}
