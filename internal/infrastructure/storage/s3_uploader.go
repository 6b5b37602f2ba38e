package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/oksasatya/vidstream-accounts/internal/application"
)

// PutObjectAPI is the subset of *s3.Client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores account images in an S3 (or MinIO) bucket.
// PublicBaseURL is prepended to the object key to form the returned URL.
type S3Uploader struct {
	Client        PutObjectAPI
	Bucket        string
	PublicBaseURL string
}

func NewS3Uploader(client PutObjectAPI, bucket, publicBaseURL string) *S3Uploader {
	return &S3Uploader{Client: client, Bucket: bucket, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (u *S3Uploader) Upload(ctx context.Context, folder string, f *application.FileInput) (application.UploadResult, error) {
	if u == nil || u.Client == nil || u.Bucket == "" {
		return application.UploadResult{}, errors.New("s3 not configured")
	}
	if u.PublicBaseURL == "" {
		return application.UploadResult{}, errors.New("s3 public base url not configured")
	}
	// multipart parts are bounded by the upload limit, buffering gives the
	// SDK a seekable body for payload signing
	body, err := io.ReadAll(f.Body)
	if err != nil {
		return application.UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	key := ObjectKey(folder, f.Filename)
	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentTypeOr(f.ContentType)),
		CacheControl:  aws.String("public, max-age=86400"),
	})
	if err != nil {
		return application.UploadResult{}, fmt.Errorf("put s3 object: %w", err)
	}
	return application.UploadResult{URL: u.PublicBaseURL + "/" + key, ObjectKey: key}, nil
}
