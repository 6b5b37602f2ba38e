package middleware

import (
	"github.com/gin-gonic/gin"
)

const CtxRealIPKey = "real_ip"

// RealIP stores the client IP under "real_ip". Forwarding headers are only
// honored when the engine trusts the peer (SetTrustedProxies, TrustedPlatform).
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRealIPKey, c.ClientIP())
		c.Next()
	}
}
