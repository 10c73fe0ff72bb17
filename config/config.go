package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	AppName string
	Env     string // development, production
	Port    string
	GinMode string

	// Storage
	StorageDriver     string
	MongoURI          string
	MongoDatabase     string
	MongoTransactions bool

	// Auth
	JWTSecret string
	TokenTTL  time.Duration // zero issues tokens without an exp claim

	// Cloudinary (image hosting)
	CloudinaryURL    string
	CloudinaryFolder string

	// Web push
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string

	// Rate limiting; Redis is optional
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	RateLimitPerMinute     int
	AuthRateLimitPerMinute int

	RequestTimeout time.Duration

	// CORS
	CORSAllowedOrigins string // comma-separated

	MetricsEnabled bool
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if v == "0" {
			return 0
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "friendzone"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "6001"),
		GinMode: getenv("GIN_MODE", "debug"),

		StorageDriver:     strings.ToLower(getenv("STORAGE_DRIVER", DriverMongo)),
		MongoURI:          getenv("MONGODB_URI", ""),
		MongoDatabase:     getenv("MONGODB_DATABASE", "friendzone"),
		MongoTransactions: getbool("MONGO_TRANSACTIONS", false),

		JWTSecret: getenv("JWT_SECRET", ""),
		TokenTTL:  getdur("TOKEN_TTL", 24*time.Hour),

		CloudinaryURL:    getenv("CLOUDINARY_URL", ""),
		CloudinaryFolder: getenv("CLOUDINARY_FOLDER", "friendzone"),

		VAPIDPublicKey:  getenv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: getenv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubscriber: getenv("VAPID_SUBSCRIBER", "mailto:admin@friendzone.local"),

		RedisAddr:              getenv("REDIS_ADDR", ""),
		RedisPassword:          getenv("REDIS_PASSWORD", ""),
		RedisDB:                getint("REDIS_DB", 0),
		RateLimitPerMinute:     getint("RATE_LIMIT_PER_MINUTE", 120),
		AuthRateLimitPerMinute: getint("AUTH_RATE_LIMIT_PER_MINUTE", 10),

		RequestTimeout: getdur("REQUEST_TIMEOUT", 30*time.Second),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		MetricsEnabled: getbool("METRICS_ENABLED", true),
		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", true),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	switch c.StorageDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI must be set when STORAGE_DRIVER=mongo"))
		}
	case DriverMemory:
	default:
		errs = append(errs, errors.New("STORAGE_DRIVER must be mongo or memory"))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

// PushEnabled reports whether both VAPID keys are configured.
func (c *Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
