package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/auth"
)

// RequireAuth rejects requests that reached it without an identity. An
// expired token is answered with "Token expired", a rejected one with
// "Unauthorized". A failure unrelated to the token itself is a 500.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.IdentityFromContext(c.Request.Context()); ok {
			c.Next()
			return
		}

		failure := auth.FailureFromContext(c.Request.Context())
		err := apperror.ErrInvalidToken
		switch {
		case errors.Is(failure, apperror.ErrExpiredToken):
			err = apperror.ErrExpiredToken
		case failure != nil && !errors.Is(failure, apperror.ErrInvalidToken):
			// the token could not be checked, e.g. the user store is down
			zap.L().Error("Identity resolution failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(failure))
			code, body := apperror.ToResponse(failure)
			c.AbortWithStatusJSON(code, body)
			return
		}

		zap.L().Warn("Authentication required",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.String("ip", getClientIP(c)),
			zap.String("reason", err.Error()))

		code, body := apperror.ToResponse(err)
		c.AbortWithStatusJSON(code, body)
	}
}
