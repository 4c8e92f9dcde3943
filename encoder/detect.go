package encoder

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/mnishina/avif-converter/models"
)

// Detect reads just enough of the file header to identify the container.
// The file extension is never consulted. A readable file in a container
// without a dedicated fallback encoder comes back as FormatOther; open and
// decode errors propagate and fail the job.
func Detect(path string) (models.SourceFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	_, name, err := image.DecodeConfig(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return models.FormatOther, nil
		}
		return "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	switch name {
	case "jpeg":
		return models.FormatJPEG, nil
	case "png":
		return models.FormatPNG, nil
	case "webp":
		return models.FormatWebP, nil
	}
	return models.FormatOther, nil
}
