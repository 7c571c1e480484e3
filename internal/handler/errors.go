package handler

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/squid-app/squid-api/internal/model"
)

// respondError writes err as an ErrorResponse. Untyped errors are logged and
// reported as a generic internal error.
func respondError(c *gin.Context, err error) {
	appErr, typed := model.AsAppError(err)
	entry := log.WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"code":   appErr.Code.String(),
	})
	if typed {
		entry.WithError(err).Info("Request failed")
	} else {
		entry.WithError(err).Error("Request failed with an unexpected error")
	}
	c.JSON(appErr.Code.HTTPStatus(), appErr.Response())
}
