package encoder

import (
	"context"
	"strconv"
)

// EncodeAVIF writes the primary artifact via avifenc. Sources avifenc cannot
// read natively are routed through a temporary PNG first.
func EncodeAVIF(ctx context.Context, in, out string, o EncodeOptions) error {
	src := in
	if needsPreDecode(o.Source) {
		tmp, cleanup, err := decodeToPNG(ctx, in, o.Source)
		if err != nil {
			return err
		}
		defer cleanup()
		src = tmp
	}
	return runCommand(ctx, "avifenc", avifArgs(src, out, o)...)
}

func avifArgs(in, out string, o EncodeOptions) []string {
	return []string{
		"-q", strconv.Itoa(o.Quality),
		"--speed", strconv.Itoa(avifSpeed(o.Effort)),
		"--yuv", "444",
		"--jobs", "1", // the worker pool owns parallelism, one thread per encode
		in, out,
	}
}

// avifSpeed inverts effort onto avifenc's speed scale, where 0 is slowest.
func avifSpeed(effort int) int {
	return 9 - effort
}
