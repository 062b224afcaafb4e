package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duccv/medrecords-api/config"
)

type MiddlewareConfig struct {
	// Rate Limiting
	RateLimitEnabled bool
	RateLimitWindow  time.Duration
	RateLimitMax     int

	// Logging Configuration
	LoggingEnabled   bool
	LogUserAgent     bool
	LogIPAddress     bool
	SlowRequestAfter time.Duration
}

func DefaultMiddlewareConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		RateLimitEnabled: true,
		RateLimitWindow:  time.Minute,
		RateLimitMax:     100,
		LoggingEnabled:   true,
		LogUserAgent:     true,
		LogIPAddress:     true,
		SlowRequestAfter: 5 * time.Second,
	}
}

// NewMiddlewareConfig derives the middleware settings from the loaded config.
func NewMiddlewareConfig(env *config.Env) *MiddlewareConfig {
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitEnabled = env.RateLimitConfig.Enabled
	if env.RateLimitConfig.Window > 0 {
		cfg.RateLimitWindow = env.RateLimitConfig.Window
	}
	if env.RateLimitConfig.Max > 0 {
		cfg.RateLimitMax = env.RateLimitConfig.Max
	}
	return cfg
}

// getClientIP returns the client address as resolved by gin, which honours
// X-Forwarded-For only from trusted proxies.
func getClientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
