package upload

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/mnishina/avif-converter/config"
	"github.com/mnishina/avif-converter/logger"
)

// pushGCS streams one artifact to a Google Cloud Storage object. With no
// explicit credentials configured the client falls back to application
// default credentials.
func pushGCS(ctx context.Context, target config.UploadTarget, key string, reader io.Reader) error {
	var opts []option.ClientOption
	switch {
	case target.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(target.CredentialsFile))
	case target.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(target.CredentialsJSON)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create gcs client: %w", err)
	}
	defer client.Close()

	w := client.Bucket(target.Bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, reader); err != nil {
		w.Close()
		return fmt.Errorf("write object %s to bucket %s: %w", key, target.Bucket, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write object %s to bucket %s: %w", key, target.Bucket, err)
	}

	logger.Debugf("uploaded '%s' to gcs bucket '%s'", key, target.Bucket)
	return nil
}
