package encoder

import (
	"context"
	"strconv"

	"github.com/mnishina/avif-converter/models"
)

// EncodeWebP re-encodes a WebP source at the configured quality. cwebp does
// not read WebP input, so the source goes through dwebp first.
func EncodeWebP(ctx context.Context, in, out string, o EncodeOptions) error {
	src := in
	if o.Source == models.FormatWebP {
		tmp, cleanup, err := decodeToPNG(ctx, in, o.Source)
		if err != nil {
			return err
		}
		defer cleanup()
		src = tmp
	}
	return runCommand(ctx, "cwebp", webpArgs(src, out, o)...)
}

func webpArgs(in, out string, o EncodeOptions) []string {
	return []string{
		"-quiet",
		"-q", strconv.Itoa(o.Quality),
		in,
		"-o", out,
	}
}
