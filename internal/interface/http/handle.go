package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidstream-accounts/pkg/apperror"
	"github.com/oksasatya/vidstream-accounts/pkg/helpers"
	"github.com/oksasatya/vidstream-accounts/pkg/response"
)

// HandlerFunc is a gin handler that reports failure by returning an error.
type HandlerFunc func(c *gin.Context) error

// Handle adapts fn to gin. Returned errors are rendered as the error envelope;
// server-side failures are logged with their cause.
func Handle(logger *logrus.Logger, fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := fn(c)
		if err == nil {
			return
		}
		ae := apperror.From(err)
		if ae.Status() >= 500 {
			helpers.LogError(logger, ae.Message, err, logrus.Fields{
				"request_id": c.GetString("request_id"),
				"method":     c.Request.Method,
				"path":       c.FullPath(),
			})
		}
		response.Fail(c, ae)
	}
}
