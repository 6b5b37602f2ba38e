package storage

import (
	"context"
	"errors"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/vidstream-accounts/internal/application"
	"github.com/oksasatya/vidstream-accounts/pkg/helpers"
)

// GCSUploader stores account images in a Google Cloud Storage bucket.
type GCSUploader struct {
	Client *gcs.Client
	Bucket string
}

func NewGCSUploader(client *gcs.Client, bucket string) *GCSUploader {
	return &GCSUploader{Client: client, Bucket: bucket}
}

func (u *GCSUploader) Upload(ctx context.Context, folder string, f *application.FileInput) (application.UploadResult, error) {
	if u == nil || u.Client == nil || u.Bucket == "" {
		return application.UploadResult{}, errors.New("gcs not configured")
	}
	key := ObjectKey(folder, f.Filename)
	url, err := helpers.UploadObject(ctx, u.Client, u.Bucket, key, contentTypeOr(f.ContentType), f.Body)
	if err != nil {
		return application.UploadResult{}, err
	}
	return application.UploadResult{URL: url, ObjectKey: key}, nil
}
