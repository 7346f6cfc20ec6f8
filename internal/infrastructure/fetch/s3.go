package fetch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by the fetcher.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Fetcher downloads one object from an S3 bucket.
type S3Fetcher struct {
	client S3API
	bucket string
	key    string
}

// NewS3Fetcher creates a fetcher bound to one bucket/key.
func NewS3Fetcher(client S3API, bucket, key string) *S3Fetcher {
	return &S3Fetcher{client: client, bucket: bucket, key: key}
}

// NewS3Client builds an S3 client from the ambient AWS configuration.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Fetch downloads the whole object.
func (f *S3Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting s3://%s/%s: %w", f.bucket, f.key, err)
	}
	return drainAndClose(out.Body)
}

// Source returns the object URI.
func (f *S3Fetcher) Source() string {
	return fmt.Sprintf("s3://%s/%s", f.bucket, f.key)
}
