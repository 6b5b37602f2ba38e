package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
	repo "github.com/oksasatya/vidstream-accounts/internal/domain/repository"
	"github.com/oksasatya/vidstream-accounts/pkg/apperror"
	"github.com/oksasatya/vidstream-accounts/pkg/helpers"
	"github.com/oksasatya/vidstream-accounts/pkg/mailer"
)

const msgTokenFailure = "something went wrong while generating refresh and access token"

// AccountService registers accounts, verifies credentials and manages the
// single refresh-token slot of every account.
type AccountService struct {
	Deps
	Repo repo.AccountRepository
	JWT  *helpers.JWTManager
}

func NewAccountService(r repo.AccountRepository, jwt *helpers.JWTManager, deps Deps) *AccountService {
	return &AccountService{Deps: deps, Repo: r, JWT: jwt}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Session is the result of a successful login.
type Session struct {
	Account entity.PublicAccount
	Tokens  TokenPair
}

type RegisterInput struct {
	Fullname   string
	Username   string
	Email      string
	Password   string
	Avatar     *FileInput
	CoverImage *FileInput
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Register creates an account after checking uniqueness and uploading the avatar.
// The cover image is optional and a failed cover upload does not fail registration.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.PublicAccount, error) {
	if blank(in.Fullname, in.Username, in.Email, in.Password) {
		return nil, apperror.Validation("All fields are required")
	}
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)

	existing, err := s.Repo.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil && existing != nil:
		return nil, apperror.Conflict("User with email or username already exists")
	case err != nil && !errors.Is(err, repo.ErrAccountNotFound):
		return nil, apperror.Internal("failed to check existing user", err)
	}

	if in.Avatar == nil {
		return nil, apperror.Validation("Avatar file is required")
	}
	avatar, err := s.upload(ctx, FolderAvatars, in.Avatar)
	if err != nil {
		return nil, apperror.Upload("Error while uploading avatar", err)
	}
	var cover string
	if in.CoverImage != nil {
		if cover, err = s.upload(ctx, FolderCovers, in.CoverImage); err != nil {
			helpers.LogWarn(s.Logger, "cover image upload failed, continuing without cover", err, logrus.Fields{"username": username})
			cover = ""
		}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, helpers.ErrPasswordTooLong) {
			return nil, apperror.Validation("Password must be at most 72 bytes")
		}
		return nil, apperror.Internal("failed to hash password", err)
	}

	a := &entity.Account{
		Username:      username,
		Email:         email,
		Fullname:      strings.TrimSpace(in.Fullname),
		Password:      hash,
		AvatarURL:     avatar,
		CoverImageURL: cover,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		if errors.Is(err, repo.ErrDuplicateAccount) {
			return nil, apperror.Conflict("User with email or username already exists")
		}
		return nil, apperror.Internal("failed to create user", err)
	}

	created, err := s.Repo.GetByID(ctx, a.ID)
	if err != nil {
		return nil, apperror.Internal("Something went wrong while registering the user", err)
	}
	metrics.Add(metricRegistrations, 1)

	pub := created.Public()
	if s.Index != nil {
		if err := s.Index.Index(ctx, pub); err != nil {
			helpers.LogWarn(s.Logger, "account index failed", err, logrus.Fields{"account_id": pub.ID})
		}
	}
	s.notify(ctx, mailer.JobWelcome, created)
	return &pub, nil
}

// Login verifies credentials and rotates the account's refresh-token slot.
// An identifier (username or email) and a password are both required.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	if (username == "" && email == "") || blank(in.Password) {
		return nil, apperror.Validation("username or email and password are required")
	}

	a, err := s.Repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repo.ErrAccountNotFound) {
			return nil, apperror.NotFound("User does not exist")
		}
		return nil, apperror.Internal("failed to look up user", err)
	}
	if !helpers.CompareHashAndPassword(a.Password, in.Password) {
		metrics.Add(metricLoginFailures, 1)
		return nil, apperror.Auth("Invalid user credentials")
	}

	pair, err := s.issueTokens(ctx, a)
	if err != nil {
		return nil, err
	}
	metrics.Add(metricLogins, 1)

	pub := a.Public()
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, pub); err != nil {
			helpers.LogWarn(s.Logger, "identity cache update failed", err, logrus.Fields{"account_id": a.ID})
		}
	}
	return &Session{Account: pub, Tokens: pair}, nil
}

// Logout clears the refresh-token slot. Logging out twice is not an error.
func (s *AccountService) Logout(ctx context.Context, accountID string) error {
	if err := s.Repo.SetRefreshToken(ctx, accountID, nil); err != nil && !errors.Is(err, repo.ErrAccountNotFound) {
		return apperror.Internal("failed to log out", err)
	}
	s.dropIdentity(ctx, accountID)
	metrics.Add(metricLogouts, 1)
	return nil
}

// Refresh exchanges the current refresh token for a new pair. Any token that
// fails verification or differs from the stored slot yields the same AuthError.
func (s *AccountService) Refresh(ctx context.Context, token string) (TokenPair, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return TokenPair{}, apperror.Auth("Unauthorized request")
	}
	claims, err := s.JWT.ParseRefreshToken(token)
	if err != nil {
		metrics.Add(metricRefreshRejected, 1)
		return TokenPair{}, apperror.New(apperror.KindAuth, "Invalid refresh token", err)
	}

	a, err := s.Repo.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repo.ErrAccountNotFound) {
			metrics.Add(metricRefreshRejected, 1)
			return TokenPair{}, apperror.Auth("Invalid refresh token")
		}
		return TokenPair{}, apperror.Internal("failed to look up user", err)
	}
	if a.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*a.RefreshToken), []byte(token)) != 1 {
		metrics.Add(metricRefreshRejected, 1)
		return TokenPair{}, apperror.Auth("Refresh token is expired or used")
	}

	pair, err := s.issueTokens(ctx, a)
	if err != nil {
		return TokenPair{}, err
	}
	metrics.Add(metricRefreshes, 1)
	return pair, nil
}

// ChangePassword replaces the password hash. The active session stays valid.
func (s *AccountService) ChangePassword(ctx context.Context, accountID string, in ChangePasswordInput) error {
	if blank(in.OldPassword, in.NewPassword) {
		return apperror.Validation("Old and new password are required")
	}
	a, err := s.Repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repo.ErrAccountNotFound) {
			return apperror.NotFound("User does not exist")
		}
		return apperror.Internal("failed to look up user", err)
	}
	if !helpers.CompareHashAndPassword(a.Password, in.OldPassword) {
		return apperror.Auth("Invalid old password")
	}
	hash, err := helpers.HashPassword(in.NewPassword)
	if err != nil {
		if errors.Is(err, helpers.ErrPasswordTooLong) {
			return apperror.Validation("Password must be at most 72 bytes")
		}
		return apperror.Internal("failed to hash password", err)
	}
	if err := s.Repo.UpdatePassword(ctx, a.ID, hash); err != nil {
		return apperror.Internal("failed to change password", err)
	}
	s.notify(ctx, mailer.JobPasswordChanged, a)
	return nil
}

// ResolveIdentity returns the sanitized account behind an access token,
// preferring the identity cache over the store.
func (s *AccountService) ResolveIdentity(ctx context.Context, accountID string) (*entity.PublicAccount, error) {
	if s.Cache != nil {
		pub, found, err := s.Cache.Get(ctx, accountID)
		if err != nil {
			helpers.LogWarn(s.Logger, "identity cache read failed", err, logrus.Fields{"account_id": accountID})
		} else if found {
			return pub, nil
		}
	}
	a, err := s.Repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repo.ErrAccountNotFound) {
			return nil, apperror.Auth("Invalid access token")
		}
		return nil, apperror.Internal("failed to look up user", err)
	}
	pub := a.Public()
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, pub); err != nil {
			helpers.LogWarn(s.Logger, "identity cache update failed", err, logrus.Fields{"account_id": a.ID})
		}
	}
	return &pub, nil
}

// issueTokens mints a new pair and stores the refresh token in the account's
// single slot, replacing whatever was there.
func (s *AccountService) issueTokens(ctx context.Context, a *entity.Account) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(helpers.Identity{
		AccountID: a.ID,
		Email:     a.Email,
		Username:  a.Username,
		Fullname:  a.Fullname,
	})
	if err != nil {
		return TokenPair{}, apperror.Internal(msgTokenFailure, err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(a.ID)
	if err != nil {
		return TokenPair{}, apperror.Internal(msgTokenFailure, err)
	}
	if err := s.Repo.SetRefreshToken(ctx, a.ID, &refresh); err != nil {
		return TokenPair{}, apperror.Internal(msgTokenFailure, err)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}
