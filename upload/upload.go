// Package upload mirrors finished artifacts to remote stores. Each write
// destination has different credentials and its own write implementation;
// Push dispatches on the target type.
package upload

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/mnishina/avif-converter/config"
)

// Push copies one local artifact to the target. rel is the artifact's
// slash-separated path under the output root and becomes the object key,
// under the target's optional prefix.
func Push(ctx context.Context, target config.UploadTarget, rel, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	key := objectKey(target.Prefix, rel)
	switch target.Type {
	case "s3":
		return pushS3(ctx, target, key, f)
	case "gcs":
		return pushGCS(ctx, target, key, f)
	case "sftp":
		return pushSFTP(ctx, target, key, f)
	}
	return fmt.Errorf("unknown upload target type %q", target.Type)
}

func objectKey(prefix, rel string) string {
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}
