package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	AppConfig struct {
		Name            string        `mapstructure:"name"`
		Version         string        `mapstructure:"version"`
		Port            int           `mapstructure:"port"`
		Environment     string        `mapstructure:"environment"`
		PathPrefix      string        `mapstructure:"path_prefix"` // Optional, defaults to /api
		RequestTimeout  time.Duration `mapstructure:"request_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	}

	LoggerConfig struct {
		Level       string `mapstructure:"level"`
		Format      string `mapstructure:"format"`
		FilePath    string `mapstructure:"filepath"`
		MaxSize     int    `mapstructure:"max_size"`
		MaxAge      int    `mapstructure:"max_age"`
		MaxBackups  int    `mapstructure:"max_backups"`
		Compress    bool   `mapstructure:"compress"`
		LocalTime   bool   `mapstructure:"localTime"`
		Environment string
	}

	MongoConfig struct {
		URI             string   `mapstructure:"uri"`
		Type            string   `mapstructure:"type"` // single | replica_set
		Hosts           []string `mapstructure:"hosts"`
		Ports           []int    `mapstructure:"ports"`
		ReplicaSetName  string   `mapstructure:"replica_set_name"`
		Database        string   `mapstructure:"database"`
		AuthSource      string   `mapstructure:"auth_source"`
		Username        string   `mapstructure:"username"`
		Password        string   `mapstructure:"password"`
		ConnectTimeout  int      `mapstructure:"connect_timeout"`
		MaxPoolSize     uint64   `mapstructure:"max_pool_size"`
		MinPoolSize     uint64   `mapstructure:"min_pool_size"`
		MaxConnIdleTime int      `mapstructure:"max_conn_idle_time"`
	}

	JWTConfig struct {
		Secret string        `mapstructure:"secret"`
		Expiry time.Duration `mapstructure:"expiry"`
		Issuer string        `mapstructure:"issuer"`
	}

	RegistryConfig struct {
		BaseURL string        `mapstructure:"base_url"`
		APIKey  string        `mapstructure:"api_key"`
		Timeout time.Duration `mapstructure:"timeout"`
	}

	SecurityConfig struct {
		BcryptCost int `mapstructure:"bcrypt_cost"`
	}

	RedisConfig struct {
		Enabled    bool   `mapstructure:"enabled"`
		Type       string `mapstructure:"type"` // NORMAL | SENTINEL
		Addrs      string `mapstructure:"addrs"`
		MasterName string `mapstructure:"master_name"`
		Password   string `mapstructure:"password"`
		// Timeout bounds one cache round trip; slower replies count as a miss.
		Timeout time.Duration `mapstructure:"timeout"`
	}

	CacheConfig struct {
		Enabled    bool `mapstructure:"enabled"`
		Capacity   int  `mapstructure:"capacity"`
		DefaultTTL int  `mapstructure:"default_ttl"` // seconds, in-memory level
		RedisTTL   int  `mapstructure:"redis_ttl"`   // seconds, redis level
	}

	RateLimitConfig struct {
		Enabled bool          `mapstructure:"enabled"`
		Window  time.Duration `mapstructure:"window"`
		Max     int           `mapstructure:"max"`
	}

	MetricsConfig struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	}

	CORSConfig struct {
		Enabled          bool     `mapstructure:"enabled"`
		AllowedOrigins   []string `mapstructure:"allowed_origins"`
		AllowedMethods   []string `mapstructure:"allowed_methods"`
		AllowedHeaders   []string `mapstructure:"allowed_headers"`
		ExposedHeaders   []string `mapstructure:"exposed_headers"`
		AllowCredentials bool     `mapstructure:"allow_credentials"`
		MaxAge           int      `mapstructure:"max_age"`
	}
)

type Env struct {
	AppConfig       AppConfig       `mapstructure:"app"`
	LoggerConfig    LoggerConfig    `mapstructure:"logging"`
	MongoConfig     MongoConfig     `mapstructure:"mongo"`
	JWTConfig       JWTConfig       `mapstructure:"jwt"`
	RegistryConfig  RegistryConfig  `mapstructure:"registry"`
	SecurityConfig  SecurityConfig  `mapstructure:"security"`
	RedisConfig     RedisConfig     `mapstructure:"redis"`
	CacheConfig     CacheConfig     `mapstructure:"cache"`
	RateLimitConfig RateLimitConfig `mapstructure:"rate_limit"`
	MetricsConfig   MetricsConfig   `mapstructure:"metrics"`
	CORSConfig      CORSConfig      `mapstructure:"cors"`
}

const DefaultRegistryURL = "https://api.fda.gov/drug/drugsfda.json"

var env *Env

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "medrecords-api")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.path_prefix", "/api")
	v.SetDefault("app.request_timeout", "30s")
	v.SetDefault("app.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.filepath", "./logs/app.log")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	v.SetDefault("mongo.type", "single")
	v.SetDefault("mongo.database", "medrecords")
	v.SetDefault("mongo.connect_timeout", 30)

	v.SetDefault("jwt.expiry", "5h")
	v.SetDefault("jwt.issuer", "medrecords-api")

	v.SetDefault("registry.base_url", DefaultRegistryURL)
	v.SetDefault("registry.timeout", "5s")

	v.SetDefault("security.bcrypt_cost", 10)

	v.SetDefault("redis.type", "NORMAL")
	v.SetDefault("redis.timeout", "50ms")

	v.SetDefault("cache.capacity", 1000)
	v.SetDefault("cache.default_ttl", 60)
	v.SetDefault("cache.redis_ttl", 300)

	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.max", 100)

	v.SetDefault("metrics.path", "/metrics")
}

// Load reads config.yaml from the given directories (plus an optional .env file)
// and applies environment overrides. A missing config file is not an error;
// defaults and environment variables still apply.
func Load(paths ...string) (*Env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// app.port -> ENV_APP_PORT
	v.SetEnvPrefix("env")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Well-known variable names that do not follow the prefix convention.
	_ = v.BindEnv("app.name", "APP_NAME")
	_ = v.BindEnv("jwt.secret", "ENV_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("registry.api_key", "ENV_REGISTRY_API_KEY", "FDA_API_KEY")
	_ = v.BindEnv("mongo.uri", "ENV_MONGO_URI", "MONGO_URI")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var e Env
	if err := v.Unmarshal(&e); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	e.LoggerConfig.Environment = e.AppConfig.Environment
	if e.AppConfig.Environment == "production" {
		e.LoggerConfig.Level = "info" // Default to info level in production
	}

	if err := e.validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

func (e *Env) validate() error {
	if e.JWTConfig.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if e.JWTConfig.Expiry <= 0 {
		return errors.New("jwt.expiry must be positive")
	}
	if e.RegistryConfig.Timeout <= 0 {
		return errors.New("registry.timeout must be positive")
	}
	return nil
}

// GetEnv loads the configuration once from ./config and exits the process if it is invalid.
func GetEnv() *Env {
	if env != nil {
		return env
	}
	loaded, err := Load("./config")
	if err != nil {
		log.Fatalf("Unable to load configuration, %v", err)
	}
	env = loaded
	printStartupConfig(env)
	return env
}

func printStartupConfig(env *Env) {
	line := strings.Repeat("=", 40)
	fmt.Println(line)
	fmt.Println("🚀 Application Configuration")
	fmt.Println(line)

	fmt.Printf("%-15s: %s\n", "App Name", env.AppConfig.Name)
	fmt.Printf("%-15s: %s\n", "Version", env.AppConfig.Version)
	fmt.Printf("%-15s: %s\n", "Environment", env.AppConfig.Environment)
	fmt.Printf("%-15s: %d\n", "Port", env.AppConfig.Port)
	fmt.Printf("%-15s: %s\n", "Log Level", env.LoggerConfig.Level)
	fmt.Printf("%-15s: %s\n", "Registry", env.RegistryConfig.BaseURL)
	fmt.Printf("%-15s: %t\n", "Registry Key", env.RegistryConfig.APIKey != "")
	fmt.Printf("%-15s: %s\n", "Token TTL", env.JWTConfig.Expiry)

	fmt.Println(line)
}
