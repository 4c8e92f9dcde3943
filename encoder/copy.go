package encoder

import (
	"context"
	"io"
	"os"

	"github.com/mnishina/avif-converter/logger"
)

// EncodeCopy passes the source through untouched. Used as the fallback for
// formats without a dedicated re-encoder, animated containers included.
func EncodeCopy(ctx context.Context, input, output string, opts EncodeOptions) error {
	src, err := os.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(output)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	logger.Debugf("copied original file from %s to %s", input, output)
	return nil
}
