package entity

import (
	"time"
)

// Account is the aggregate root for the account domain.
// Password holds a bcrypt hash. RefreshToken is the single active refresh
// token slot; nil means no active session.
type Account struct {
	ID            string
	Username      string
	Email         string
	Fullname      string
	Password      string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicAccount is the sanitized view of an Account returned to clients.
type PublicAccount struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Fullname      string    `json:"fullname"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Public strips the password hash and refresh token.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		Fullname:      a.Fullname,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
