package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Source reads the source file from an S3 bucket
type S3Source struct {
	client *s3.Client
}

// NewS3Source creates an S3 source, loading AWS config from the
// environment. Explicit AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY take
// precedence over the default credential chain.
func NewS3Source(ctx context.Context) (*S3Source, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")

	var awsCfg aws.Config
	var err error
	if accessKey != "" && secretKey != "" {
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				accessKey,
				secretKey,
				"",
			)),
		)
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Source{client: s3.NewFromConfig(awsCfg)}, nil
}

// Open fetches an object by its "s3://bucket/key" path
func (s *S3Source) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key := splitS3Path(path)
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 path: %s", path)
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", bucket, key, err)
	}
	return result.Body, nil
}
