package encoder

import (
	"context"
	"fmt"
	"os"

	"github.com/mnishina/avif-converter/models"
)

// needsPreDecode reports whether avifenc can read the source directly.
func needsPreDecode(f models.SourceFormat) bool {
	return f == models.FormatWebP || f == models.FormatOther
}

// decodeToPNG writes the source's pixels to a temporary PNG that every
// encoder here can read. WebP goes through dwebp; anything else through
// ImageMagick, taking only the first frame of animated containers. The
// caller removes the file via cleanup.
func decodeToPNG(ctx context.Context, in string, src models.SourceFormat) (string, func(), error) {
	tmp, err := os.CreateTemp("", "avifconv-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("temp png: %w", err)
	}
	tmp.Close()
	path := tmp.Name()
	cleanup := func() { os.Remove(path) }

	var runErr error
	if src == models.FormatWebP {
		runErr = runCommand(ctx, "dwebp", in, "-o", path)
	} else {
		runErr = runCommand(ctx, "magick", in+"[0]", "png:"+path)
	}
	if runErr != nil {
		cleanup()
		return "", nil, runErr
	}
	return path, cleanup, nil
}
