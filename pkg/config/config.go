package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Cache backends and codecs understood by the cache layer.
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"

	CacheCodecJSON    = "json"
	CacheCodecMsgpack = "msgpack"
	CacheCodecCBOR    = "cbor"
)

// DefaultCacheTTL applies to any cache region without an explicit policy.
const DefaultCacheTTL = time.Hour

// CacheRegionNames lists the regions with a dedicated TTL policy.
var CacheRegionNames = []string{"users", "compositions", "courses", "granules", "statistics", "search", "files"}

var defaultRegionTTLs = map[string]time.Duration{
	"users":        time.Hour,
	"compositions": 30 * time.Minute,
	"courses":      2 * time.Hour,
	"granules":     time.Hour,
	"statistics":   5 * time.Minute,
	"search":       15 * time.Minute,
	"files":        time.Hour,
}

// DefaultRegionTTLs returns a copy of the built-in region TTL table.
func DefaultRegionTTLs() map[string]time.Duration {
	ttls := make(map[string]time.Duration, len(defaultRegionTTLs))
	for region, ttl := range defaultRegionTTLs {
		ttls[region] = ttl
	}
	return ttls
}

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	QueryTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig drives the cache-aside layer. RegionTTLs is fixed at startup.
type CacheConfig struct {
	Enabled          bool
	Backend          string
	Codec            string
	DefaultTTL       time.Duration
	OperationTimeout time.Duration
	RegionTTLs       map[string]time.Duration
	MemoryMaxCost    int64
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		QueryTimeout: parseDuration(v.GetString("DB_QUERY_TIMEOUT"), 5*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	defaultTTL := millis(v.GetInt64("CACHE_DEFAULT_TTL_MS"), DefaultCacheTTL)
	regionTTLs := make(map[string]time.Duration, len(CacheRegionNames))
	for _, region := range CacheRegionNames {
		key := "CACHE_TTL_" + strings.ToUpper(region) + "_MS"
		regionTTLs[region] = millis(v.GetInt64(key), defaultRegionTTLs[region])
	}

	cfg.Cache = CacheConfig{
		Enabled:          v.GetBool("CACHE_ENABLED"),
		Backend:          strings.ToLower(v.GetString("CACHE_BACKEND")),
		Codec:            strings.ToLower(v.GetString("CACHE_CODEC")),
		DefaultTTL:       defaultTTL,
		OperationTimeout: parseDuration(v.GetString("CACHE_OPERATION_TIMEOUT"), 200*time.Millisecond),
		RegionTTLs:       regionTTLs,
		MemoryMaxCost:    v.GetInt64("CACHE_MEMORY_MAX_COST"),
	}
	if cfg.Cache.OperationTimeout >= cfg.Database.QueryTimeout {
		cfg.Cache.OperationTimeout = cfg.Database.QueryTimeout / 2
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "xccm")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_QUERY_TIMEOUT", "5s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_BACKEND", CacheBackendRedis)
	v.SetDefault("CACHE_CODEC", CacheCodecJSON)
	v.SetDefault("CACHE_DEFAULT_TTL_MS", DefaultCacheTTL.Milliseconds())
	v.SetDefault("CACHE_OPERATION_TIMEOUT", "200ms")
	v.SetDefault("CACHE_MEMORY_MAX_COST", 64<<20)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "xccm-backend")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func millis(raw int64, fallback time.Duration) time.Duration {
	if raw <= 0 {
		return fallback
	}
	return time.Duration(raw) * time.Millisecond
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
