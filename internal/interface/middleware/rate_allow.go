package middleware

import (
	"github.com/gin-gonic/gin"
)

// AllowFunc reports whether a request bypasses rate limiting. Limiters on
// public routes pass nil.
type AllowFunc func(*gin.Context) bool
