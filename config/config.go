package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kevinaaaquil/book-inventory/backend/models"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	defaultJWTSecret = "change-me-in-production"
)

type Config struct {
	Port         string
	MongoURI     string
	DBName       string
	StoreDriver  string
	StoreTimeout time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	AdminUsername   string
	AdminPassword   string
	AdminName       string
	SeedSampleBooks bool

	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string

	GeminiAPIKey string
	CORSOrigin   string
	LogLevel     string

	AuthRateLimit float64
	AuthRateBurst int
}

func Load() (*Config, error) {
	storeTimeout, err := getDuration("STORE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getDuration("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	seed, err := getBool("SEED_SAMPLE_BOOKS", false)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getFloat("AUTH_RATE_LIMIT", 2)
	if err != nil {
		return nil, err
	}
	rateBurst, err := getInt("AUTH_RATE_BURST", 5)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:            getEnv("PORT", "5000"),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("MONGODB_DB", "book_inventory"),
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		StoreTimeout:    storeTimeout,
		JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:        tokenTTL,
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		AdminName:       getEnv("ADMIN_NAME", "Administrator"),
		SeedSampleBooks: seed,
		S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		S3Region:        getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AuthRateLimit:   rateLimit,
		AuthRateBurst:   rateBurst,
	}, nil
}

// Validate rejects settings the server cannot start with. The default JWT
// secret is only accepted with the in-memory store.
func (c *Config) Validate() error {
	var problems []string
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" || c.DBName == "" {
			problems = append(problems, "MONGODB_URI and MONGODB_DB are required with STORE_DRIVER=mongo")
		}
		if c.JWTSecret == defaultJWTSecret {
			problems = append(problems, "JWT_SECRET must be set to a strong secret (not the default "+defaultJWTSecret+")")
		}
	case DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.StoreDriver))
	}
	if len(c.AdminPassword) > models.MaxPasswordBytes {
		problems = append(problems, fmt.Sprintf("ADMIN_PASSWORD must be at most %d bytes", models.MaxPasswordBytes))
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	if c.StoreTimeout <= 0 {
		problems = append(problems, "STORE_TIMEOUT must be positive")
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst < 1 {
		problems = append(problems, "AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, "LOG_LEVEL: "+err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LogSummary logs which optional integrations are enabled. Secret values are
// never logged.
func (c *Config) LogSummary(log logrus.FieldLogger) {
	log.WithFields(logrus.Fields{
		"port":          c.Port,
		"store":         c.StoreDriver,
		"db":            c.DBName,
		"token_ttl":     c.TokenTTL.String(),
		"s3_export":     c.S3Bucket != "",
		"gemini_lookup": c.GeminiAPIKey != "",
		"seed_admin":    c.AdminPassword != "",
		"seed_books":    c.SeedSampleBooks,
		"cors_origin":   c.CORSOrigin,
	}).Info("config loaded")
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
