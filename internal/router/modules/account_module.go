package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/vidstream-accounts/internal/interface/http"
	"github.com/oksasatya/vidstream-accounts/internal/interface/middleware"
)

// RateLimits are requests per minute; zero disables a limiter.
type RateLimits struct {
	AuthPerMin    int
	RefreshPerMin int
	APIPerMin     int
}

// AccountModule wires account and profile handlers under /users.
// Public: register, login, refresh-token
// Protected: logout, change-password, current-user, update-account, avatar, cover-image, search
type AccountModule struct {
	Accounts *handlers.AccountHandler
	Profiles *handlers.ProfileHandler
	Auth     gin.HandlerFunc
	Redis    *redis.Client
	Logger   *logrus.Logger
	Limits   RateLimits
}

func NewAccountModule(a *handlers.AccountHandler, p *handlers.ProfileHandler, auth gin.HandlerFunc, rdb *redis.Client, logger *logrus.Logger, limits RateLimits) *AccountModule {
	return &AccountModule{Accounts: a, Profiles: p, Auth: auth, Redis: rdb, Logger: logger, Limits: limits}
}

func (m *AccountModule) limit(max int, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(m.Redis, m.Logger, max, time.Minute, key, nil)
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	h := func(fn handlers.HandlerFunc) gin.HandlerFunc { return handlers.Handle(m.Logger, fn) }
	users := rg.Group("/users")

	authLimiter := m.limit(m.Limits.AuthPerMin, middleware.KeyByIPAndPath())
	users.POST("/register", authLimiter, h(m.Accounts.Register))
	users.POST("/login", authLimiter, h(m.Accounts.Login))
	users.POST("/refresh-token", m.limit(m.Limits.RefreshPerMin, middleware.KeyByIP()), h(m.Accounts.Refresh))

	protected := users.Group("")
	protected.Use(m.Auth, m.limit(m.Limits.APIPerMin, middleware.KeyByAccount()))
	{
		protected.POST("/logout", h(m.Accounts.Logout))
		protected.POST("/change-password", h(m.Accounts.ChangePassword))
		protected.GET("/current-user", h(m.Profiles.CurrentUser))
		protected.PATCH("/update-account", h(m.Profiles.UpdateAccount))
		protected.PATCH("/avatar", h(m.Profiles.UpdateAvatar))
		protected.PATCH("/cover-image", h(m.Profiles.UpdateCoverImage))
		protected.GET("/search", h(m.Profiles.Search))
	}
}
