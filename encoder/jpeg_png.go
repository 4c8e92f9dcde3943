package encoder

import (
	"context"
	"fmt"
	"strconv"
)

// EncodeJPEG re-encodes a JPEG source at the configured quality using
// ImageMagick, stripped of metadata and written progressive.
func EncodeJPEG(ctx context.Context, in, out string, o EncodeOptions) error {
	return runCommand(ctx, "magick", jpegArgs(in, out, o)...)
}

func jpegArgs(in, out string, o EncodeOptions) []string {
	return []string{
		in,
		"-strip",
		"-interlace", "JPEG",
		"-quality", strconv.Itoa(o.Quality),
		"jpg:" + out,
	}
}

// EncodePNG quantizes a PNG source down to a palette via pngquant. The
// quality range bottoms out at zero so the tool always writes an output
// instead of bailing when the target quality is out of reach.
func EncodePNG(ctx context.Context, in, out string, o EncodeOptions) error {
	return runCommand(ctx, "pngquant", pngArgs(in, out, o)...)
}

func pngArgs(in, out string, o EncodeOptions) []string {
	return []string{
		"--quality", fmt.Sprintf("0-%d", o.Quality),
		"--speed", "1",
		"--strip",
		"--force",
		"--output", out,
		in,
	}
}
