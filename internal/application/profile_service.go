package application

import (
	"context"
	"errors"
	"strings"

	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
	repo "github.com/oksasatya/vidstream-accounts/internal/domain/repository"
	"github.com/oksasatya/vidstream-accounts/pkg/apperror"
)

const maxSearchSize = 50

// ProfileService mutates profile fields of an already authenticated account.
type ProfileService struct {
	Deps
	Repo repo.AccountRepository
}

func NewProfileService(r repo.AccountRepository, deps Deps) *ProfileService {
	return &ProfileService{Deps: deps, Repo: r}
}

type AccountDetailsInput struct {
	Fullname string
	Email    string
}

// CurrentUser returns the identity resolved by the auth gate without touching the store.
func (s *ProfileService) CurrentUser(identity *entity.PublicAccount) (entity.PublicAccount, error) {
	if identity == nil || identity.ID == "" {
		return entity.PublicAccount{}, apperror.Auth("Unauthorized request")
	}
	return *identity, nil
}

// UpdateAccountDetails replaces fullname and email. Email uniqueness is only
// enforced by the store's unique index.
func (s *ProfileService) UpdateAccountDetails(ctx context.Context, accountID string, in AccountDetailsInput) (*entity.PublicAccount, error) {
	if blank(in.Fullname, in.Email) {
		return nil, apperror.Validation("All fields are required")
	}
	a, err := s.Repo.UpdateDetails(ctx, accountID, repo.AccountDetails{
		Fullname: strings.TrimSpace(in.Fullname),
		Email:    strings.TrimSpace(in.Email),
	})
	if err != nil {
		return nil, mapUpdateErr(err, "failed to update account")
	}
	return s.finish(ctx, a), nil
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, accountID string, f *FileInput) (*entity.PublicAccount, error) {
	if f == nil {
		return nil, apperror.Validation("Avatar file is missing")
	}
	url, err := s.upload(ctx, FolderAvatars, f)
	if err != nil {
		return nil, apperror.Upload("Error while uploading avatar", err)
	}
	a, err := s.Repo.UpdateAvatar(ctx, accountID, url)
	if err != nil {
		return nil, mapUpdateErr(err, "failed to update avatar")
	}
	return s.finish(ctx, a), nil
}

func (s *ProfileService) UpdateCoverImage(ctx context.Context, accountID string, f *FileInput) (*entity.PublicAccount, error) {
	if f == nil {
		return nil, apperror.Validation("Cover image file is missing")
	}
	url, err := s.upload(ctx, FolderCovers, f)
	if err != nil {
		return nil, apperror.Upload("Error while uploading cover image", err)
	}
	a, err := s.Repo.UpdateCoverImage(ctx, accountID, url)
	if err != nil {
		return nil, mapUpdateErr(err, "failed to update cover image")
	}
	return s.finish(ctx, a), nil
}

// SearchAccounts runs a full-text query over usernames and full names.
// Without a search index configured the result is always empty.
func (s *ProfileService) SearchAccounts(ctx context.Context, query string, size int) ([]entity.PublicAccount, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation("Search query is required")
	}
	if size <= 0 || size > maxSearchSize {
		size = 10
	}
	if s.Index == nil {
		return []entity.PublicAccount{}, nil
	}
	res, err := s.Index.Search(ctx, query, size)
	if err != nil {
		return nil, apperror.Internal("search failed", err)
	}
	return res, nil
}

func (s *ProfileService) finish(ctx context.Context, a *entity.Account) *entity.PublicAccount {
	pub := a.Public()
	s.syncProfile(ctx, pub)
	return &pub
}

func mapUpdateErr(err error, msg string) error {
	switch {
	case errors.Is(err, repo.ErrAccountNotFound):
		return apperror.NotFound("User does not exist")
	case errors.Is(err, repo.ErrDuplicateAccount):
		return apperror.Conflict("Email is already in use")
	default:
		return apperror.Internal(msg, err)
	}
}
