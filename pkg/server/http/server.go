package http_server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/duccv/medrecords-api/config"
	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/constant"
	"github.com/duccv/medrecords-api/internal/middleware"
	"github.com/duccv/medrecords-api/pkg/logger"
	"github.com/duccv/medrecords-api/pkg/metrics"

	_ "github.com/duccv/medrecords-api/docs"
)

type Server struct {
	App    *gin.Engine
	http   *http.Server
	notify chan error

	address         string
	timeout         time.Duration
	shutdownTimeout time.Duration
	middleware      []gin.HandlerFunc
	routes          []func(*gin.RouterGroup)
	readiness       func(ctx context.Context) map[string]error
}

// New -.
func New(env *config.Env, opts ...Option) *Server {
	s := &Server{
		notify:          make(chan error, 1),
		address:         _defaultAddr,
		timeout:         _defaultTimeout,
		shutdownTimeout: _defaultShutdownTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.App = s.initGinServer(env)
	s.http = &http.Server{
		Addr:              s.address,
		Handler:           s.App,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// healthCheck godoc
//
//	@Summary		Health Check
//	@Description	Returns status 200 if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readyCheck godoc
//
//	@Summary		Readiness Check
//	@Description	Returns 200 when every backing store answers, 503 otherwise
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		503	{object}	map[string]any
//	@Router			/ready [get]
func readyCheck(check func(ctx context.Context) map[string]error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		code, status := http.StatusOK, "ok"
		checks := gin.H{}
		for name, err := range check(ctx) {
			if err == nil {
				checks[name] = "up"
				continue
			}
			logger.FromContext(c.Request.Context()).Warn("Readiness check failed",
				zap.String("component", name), zap.Error(err))
			checks[name] = "down"
			code, status = http.StatusServiceUnavailable, "unavailable"
		}
		c.JSON(code, gin.H{"status": status, "checks": checks})
	}
}

func timeoutResponse(c *gin.Context) {
	c.JSON(http.StatusRequestTimeout, apperror.NewErrorResponse(http.StatusRequestTimeout, constant.MsgRequestTimeout))
}

func timeoutMiddleware(to time.Duration) gin.HandlerFunc {
	return timeout.New(
		timeout.WithTimeout(to),
		timeout.WithResponse(timeoutResponse),
	)
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.FromContext(c.Request.Context()).Error("Panic recovered",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			apperror.NewErrorResponse(http.StatusInternalServerError, constant.MsgInternal))
	})
}

func (s *Server) initGinServer(env *config.Env) *gin.Engine {
	pathPrefix := env.AppConfig.PathPrefix
	if pathPrefix == "" {
		pathPrefix = _defaultPathPrefix
	}
	if env.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	mwConfig := middleware.NewMiddlewareConfig(env)
	logging := middleware.NewLoggingMiddleware(mwConfig)

	r := gin.New()
	r.Use(middleware.CorrelationIDMiddleware())
	r.Use(logging.RequestID())
	r.Use(logging.RequestLogger())
	r.Use(recovery())

	if env.CORSConfig.Enabled {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     env.CORSConfig.AllowedOrigins,
			AllowMethods:     env.CORSConfig.AllowedMethods,
			AllowHeaders:     env.CORSConfig.AllowedHeaders,
			ExposeHeaders:    env.CORSConfig.ExposedHeaders,
			AllowCredentials: env.CORSConfig.AllowCredentials,
			MaxAge:           time.Duration(env.CORSConfig.MaxAge) * time.Second,
		}))
	}

	if env.MetricsConfig.Enabled {
		path := env.MetricsConfig.Path
		if path == "" {
			path = "/metrics"
		}
		metrics.GetMonitor(path).Use(r)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apperror.NewErrorResponse(http.StatusNotFound, "Resource not found"))
	})

	r.GET("/health", healthCheck)
	if s.readiness != nil {
		r.GET("/ready", readyCheck(s.readiness))
	}

	r.GET(pathPrefix+"/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	api := r.Group(pathPrefix)
	if s.timeout > 0 {
		api.Use(timeoutMiddleware(s.timeout))
	}
	api.Use(s.middleware...)
	for _, register := range s.routes {
		register(api)
	}

	return r
}

// Start serves in the background. A failure to serve is delivered on Notify.
func (s *Server) Start() {
	go func() {
		zap.L().Info("HTTP server listening", zap.String("address", s.address))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.notify <- err
		}
		close(s.notify)
	}()
}

// Notify -.
func (s *Server) Notify() <-chan error {
	return s.notify
}

// Shutdown stops accepting connections and waits for in-flight requests,
// at most the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
