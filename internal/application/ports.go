package application

import (
	"context"
	"io"

	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
)

// FileInput is an uploaded file handed to a service by the transport layer.
type FileInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult is what the asset host returns for a stored file.
type UploadResult struct {
	URL       string
	ObjectKey string
}

// Asset folders.
const (
	FolderAvatars = "avatars"
	FolderCovers  = "covers"
)

// AssetUploader stores a file under folder and returns its hosted URL.
type AssetUploader interface {
	Upload(ctx context.Context, folder string, f *FileInput) (UploadResult, error)
}

// IdentityCache holds sanitized accounts resolved by the auth gate.
type IdentityCache interface {
	Get(ctx context.Context, id string) (*entity.PublicAccount, bool, error)
	Set(ctx context.Context, a entity.PublicAccount) error
	Delete(ctx context.Context, id string) error
}

// AccountIndexer keeps the account search index in sync.
type AccountIndexer interface {
	Index(ctx context.Context, a entity.PublicAccount) error
	Search(ctx context.Context, query string, size int) ([]entity.PublicAccount, error)
}

// EventPublisher enqueues asynchronous jobs such as notification emails.
type EventPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}
