package router

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vidstream-accounts/config"
)

// ConfigureClientIP limits which peers may set forwarding headers. Rate limit
// keys are derived from c.ClientIP().
func ConfigureClientIP(e *gin.Engine, cfg *config.Config) error {
	if err := e.SetTrustedProxies(cfg.TrustedProxies()); err != nil {
		return err
	}
	if cfg.TrustCloudflare {
		e.TrustedPlatform = gin.PlatformCloudflare
	}
	return nil
}
