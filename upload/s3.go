package upload

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mnishina/avif-converter/config"
	"github.com/mnishina/avif-converter/logger"
)

// pushS3 streams one artifact to an S3 object, fully self-contained,
// initializing its own client from the target's static credentials.
func pushS3(ctx context.Context, target config.UploadTarget, key string, reader io.Reader) error {
	creds := credentials.NewStaticCredentialsProvider(target.AccessKey, target.SecretKey, "")
	client := s3.New(s3.Options{
		Region:      target.Region,
		Credentials: creds,
	})

	uploader := manager.NewUploader(client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(target.Bucket),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, target.Bucket, err)
	}

	logger.Debugf("uploaded '%s' to s3 bucket '%s'", key, target.Bucket)
	return nil
}
