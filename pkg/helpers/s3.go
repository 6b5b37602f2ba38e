package helpers

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3 or S3-compatible (MinIO) client.
type S3Options struct {
	Region    string
	Endpoint  string // optional; empty uses AWS endpoints
	AccessKey string // optional; empty uses the default credential chain
	SecretKey string
}

// NewS3Client builds an S3 client. Custom endpoints use path-style addressing.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimSpace(o.Endpoint)
	return s3.NewFromConfig(cfg, func(opts *s3.Options) {
		if endpoint != "" {
			opts.BaseEndpoint = aws.String(endpoint)
			opts.UsePathStyle = true
		}
	}), nil
}
