package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/duccv/medrecords-api/config"
	"github.com/duccv/medrecords-api/internal/auth"
	"github.com/duccv/medrecords-api/internal/handler"
	"github.com/duccv/medrecords-api/internal/middleware"
	"github.com/duccv/medrecords-api/internal/registry"
	"github.com/duccv/medrecords-api/internal/repository"
	"github.com/duccv/medrecords-api/internal/router"
	"github.com/duccv/medrecords-api/internal/service"
	"github.com/duccv/medrecords-api/pkg/cache"
	"github.com/duccv/medrecords-api/pkg/database"
	"github.com/duccv/medrecords-api/pkg/logger"
	"github.com/duccv/medrecords-api/pkg/metrics"
	httpserver "github.com/duccv/medrecords-api/pkg/server/http"
)

//	@title			MEDRECORDS SERVICE APIs
//	@version		1.0
//	@description	Drug record management Swagger APIs.
//	@termsOfService	http://swagger.io/terms/
//	@contact.name	DucCV
//	@contact.email	duccv@gviet.vn
//	@BasePath		/api

// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				JWT authorization header
func main() {
	env := config.GetEnv()

	zapLogger := logger.GetLogger(env.LoggerConfig)
	zap.ReplaceGlobals(zapLogger)
	defer zapLogger.Sync()

	if err := run(env); err != nil {
		zap.L().Error("Service stopped with error", zap.Error(err))
		_ = zapLogger.Sync()
		os.Exit(1)
	}
}

func run(env *config.Env) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	mongo := database.NewMongoDB(env.MongoConfig)
	if err := mongo.Connect(ctx); err != nil {
		return err
	}
	defer closeWithTimeout("mongo", mongo.Close)

	if err := repository.EnsureDrugRecordIndexes(ctx, mongo.WriteDB()); err != nil {
		return err
	}
	if err := repository.EnsureUserIndexes(ctx, mongo.WriteDB()); err != nil {
		return err
	}
	drugRepo := repository.NewDrugRecordRepository(mongo.ReadDB(), mongo.WriteDB())
	userRepo := repository.NewUserRepository(mongo.ReadDB(), mongo.WriteDB())

	// Registry
	client := registry.NewClient(env.RegistryConfig, registry.WithLogger(zap.L().Named("registry")))
	var search registry.Fetcher = client
	if env.CacheConfig.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, env.RedisConfig)
		if err != nil {
			return err
		}
		if redisClient != nil {
			defer func() {
				if err := redisClient.Close(); err != nil {
					zap.L().Warn("Failed to close redis client", zap.Error(err))
				}
			}()
		}

		mem := cache.NewCache(env.CacheConfig)
		defer mem.Stop()

		ml := cache.NewMultiLevel(mem, redisClient,
			cache.WithMemoryTTL(time.Duration(env.CacheConfig.DefaultTTL)*time.Second),
			cache.WithRedisTTL(time.Duration(env.CacheConfig.RedisTTL)*time.Second),
			cache.WithRedisTimeout(env.RedisConfig.Timeout),
			cache.WithResultHook(metrics.ObserveCacheLookup),
		)
		search = registry.NewCachedClient(client, ml)
	}

	// Services
	tokens := auth.NewTokenService([]byte(env.JWTConfig.Secret), env.JWTConfig.Expiry,
		auth.WithIssuer(env.JWTConfig.Issuer))
	authService := service.NewAuthService(userRepo, tokens, env.SecurityConfig.BcryptCost)
	drugService := service.NewDrugRecordService(drugRepo, client, search)

	// HTTP
	limiter := middleware.NewRateLimiter(middleware.NewMiddlewareConfig(env))
	defer limiter.Stop()
	authenticator := middleware.NewAuthenticator(tokens, authService)

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		DrugRecord: handler.NewDrugRecordHandler(drugService),
	}

	server := httpserver.New(env,
		httpserver.Readiness(mongo.HealthCheck),
		httpserver.Port(env.AppConfig.Port),
		httpserver.Timeout(env.AppConfig.RequestTimeout),
		httpserver.ShutdownTimeout(env.AppConfig.ShutdownTimeout),
		httpserver.Middleware(limiter.Middleware(), authenticator.Authenticate()),
		httpserver.Routes(func(api *gin.RouterGroup) { router.Register(api, handlers) }),
	)
	server.Start()

	var serveErr error
	select {
	case <-ctx.Done():
		zap.L().Info("Shutdown signal received")
	case serveErr = <-server.Notify():
		zap.L().Error("HTTP server failed", zap.Error(serveErr))
	}

	if err := server.Shutdown(context.Background()); err != nil {
		zap.L().Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
	zap.L().Info("HTTP server stopped")
	return serveErr
}

func closeWithTimeout(name string, closeFn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := closeFn(ctx); err != nil {
		zap.L().Warn("Failed to close "+name, zap.Error(err))
	}
}
