// Package handler adapts HTTP requests to service calls.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/model/response"
	"github.com/duccv/medrecords-api/pkg/logger"
)

// respondError writes the error envelope for err. Unexpected errors are
// logged with their detail, which never reaches the client.
func respondError(c *gin.Context, err error) {
	code, body := apperror.ToResponse(err)

	log := logger.FromContext(c.Request.Context()).With(
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", code),
	)
	if code >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.Error(err))
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(code, body)
}

func respond(c *gin.Context, code int, data any) {
	c.JSON(code, response.ResponseData{Ec: 0, Msg: "success", Data: data})
}

func respondPage(c *gin.Context, total int64, data any) {
	c.JSON(http.StatusOK, response.ResponseData{Ec: 0, Msg: "success", Total: &total, Data: data})
}
