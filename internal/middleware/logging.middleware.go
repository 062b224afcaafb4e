package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duccv/medrecords-api/internal/auth"
	"github.com/duccv/medrecords-api/internal/constant"
)

// LoggingMiddleware provides request logging functionality
type LoggingMiddleware struct {
	config *MiddlewareConfig
	logger *zap.Logger
}

func NewLoggingMiddleware(config *MiddlewareConfig) *LoggingMiddleware {
	return &LoggingMiddleware{
		config: config,
		logger: zap.L(),
	}
}

// RequestID sets a request id on the gin context and echoes it back.
func (l *LoggingMiddleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constant.HeaderRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		c.Set(constant.RequestIDKey, requestID)
		c.Header(constant.HeaderRequestID, requestID)
		c.Next()
	}
}

// RequestLogger logs one line per completed request. Query strings and
// headers are not logged since they may carry credentials.
func (l *LoggingMiddleware) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.config.LoggingEnabled {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		logger := l.requestLogger(c)
		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
			zap.Duration("duration", duration),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("Request completed", fields...)
		case status >= 400:
			logger.Warn("Request completed", fields...)
		default:
			logger.Info("Request completed", fields...)
		}

		if l.config.SlowRequestAfter > 0 && duration > l.config.SlowRequestAfter {
			logger.Warn("Slow request detected", zap.Duration("duration", duration))
		}
	}
}

func (l *LoggingMiddleware) requestLogger(c *gin.Context) *zap.Logger {
	fields := []zap.Field{
		zap.String("requestId", c.GetString(constant.RequestIDKey)),
		zap.String("correlation_id", CorrelationID(c.Request.Context())),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	}

	if l.config.LogIPAddress {
		fields = append(fields, zap.String("ip", getClientIP(c)))
	}
	if l.config.LogUserAgent {
		fields = append(fields, zap.String("userAgent", c.GetHeader("User-Agent")))
	}
	if id, ok := auth.IdentityFromContext(c.Request.Context()); ok {
		fields = append(fields, zap.String("userId", id.UserID))
	}

	return l.logger.With(fields...)
}
