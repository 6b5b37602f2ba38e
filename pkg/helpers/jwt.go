package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTManager signs and verifies access and refresh tokens with distinct
// secrets and lifetimes.
type JWTManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

// AccessClaims carry the identity of the account for a single request window.
type AccessClaims struct {
	AccountID string `json:"uid"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Fullname  string `json:"fullname"`
	jwt.RegisteredClaims
}

// RefreshClaims are intentionally minimal.
type RefreshClaims struct {
	AccountID string `json:"uid"`
	jwt.RegisteredClaims
}

// Identity is the payload embedded in an access token.
type Identity struct {
	AccountID string
	Email     string
	Username  string
	Fullname  string
}

func registered(ttl time.Duration) (jwt.RegisteredClaims, time.Time) {
	now := time.Now()
	exp := now.Add(ttl)
	// jti keeps two tokens minted in the same second distinct
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}, exp
}

func (m *JWTManager) GenerateAccessToken(id Identity) (string, time.Time, error) {
	rc, exp := registered(m.AccessTTL)
	rc.Subject = id.AccountID
	claims := &AccessClaims{
		AccountID:        id.AccountID,
		Email:            id.Email,
		Username:         id.Username,
		Fullname:         id.Fullname,
		RegisteredClaims: rc,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.AccessSecret)
	return s, exp, err
}

func (m *JWTManager) GenerateRefreshToken(accountID string) (string, time.Time, error) {
	rc, exp := registered(m.RefreshTTL)
	rc.Subject = accountID
	claims := &RefreshClaims{AccountID: accountID, RegisteredClaims: rc}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.RefreshSecret)
	return s, exp, err
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parseToken(tokenStr, claims, m.AccessSecret); err != nil {
		return nil, err
	}
	if claims.AccountID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *JWTManager) ParseRefreshToken(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parseToken(tokenStr, claims, m.RefreshSecret); err != nil {
		return nil, err
	}
	if claims.AccountID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func parseToken(tokenStr string, claims jwt.Claims, secret []byte) error {
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return err
	}
	if !tkn.Valid {
		return ErrInvalidToken
	}
	return nil
}
