package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account with username or email already exists")
)

// AccountDetails is the set of fields replaced by a details update.
type AccountDetails struct {
	Fullname string
	Email    string
}

// AccountRepository defines the store operations used by the account services.
// Every mutation is a single statement so per-record atomicity is left to the store.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	// FindByUsernameOrEmail matches either field; an empty argument never matches.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.Account, error)
	SetRefreshToken(ctx context.Context, id string, token *string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateDetails(ctx context.Context, id string, d AccountDetails) (*entity.Account, error)
	UpdateAvatar(ctx context.Context, id, url string) (*entity.Account, error)
	UpdateCoverImage(ctx context.Context, id, url string) (*entity.Account, error)
}
