package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
	"github.com/oksasatya/vidstream-accounts/pkg/apperror"
	"github.com/oksasatya/vidstream-accounts/pkg/helpers"
	"github.com/oksasatya/vidstream-accounts/pkg/response"
)

const (
	CtxUserIDKey  = "userID"
	CtxAccountKey = "account"
)

// IdentityResolver loads the sanitized account behind a verified token.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accountID string) (*entity.PublicAccount, error)
}

// Auth verifies the access token from the accessToken cookie or an
// Authorization bearer header and stores the resolved account in the context.
// Store failures while resolving the account are logged and rendered as 500.
func Auth(jwt *helpers.JWTManager, resolver IdentityResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			response.Fail(c, apperror.Auth("Unauthorized request"))
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Fail(c, apperror.New(apperror.KindAuth, "Invalid access token", err))
			return
		}
		account, err := resolver.ResolveIdentity(c.Request.Context(), claims.AccountID)
		if err != nil {
			if apperror.From(err).Status() >= 500 {
				helpers.LogError(logger, "resolve identity failed", err, logrus.Fields{
					"request_id": c.GetString("request_id"),
					"method":     c.Request.Method,
					"path":       c.FullPath(),
					"account_id": claims.AccountID,
				})
			}
			response.Fail(c, err)
			return
		}
		c.Set(CtxUserIDKey, account.ID)
		c.Set(CtxAccountKey, account)
		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	if v, err := c.Cookie(helpers.AccessTokenCookie); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// CurrentAccount returns the account set by Auth, or nil outside protected routes.
func CurrentAccount(c *gin.Context) *entity.PublicAccount {
	v, ok := c.Get(CtxAccountKey)
	if !ok {
		return nil
	}
	a, _ := v.(*entity.PublicAccount)
	return a
}
