package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	GoEnv string `mapstructure:"GO_ENV"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBPath     string `mapstructure:"DB_PATH"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSL_MODE"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`

	HTTPPort       string        `mapstructure:"HTTP_PORT"`
	AccessSecret   string        `mapstructure:"ACCESS_SECRET"`
	AccessTTL      time.Duration `mapstructure:"ACCESS_TTL"`
	AllowedOrigins string        `mapstructure:"ALLOWED_ORIGINS"`

	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3PublicURL string `mapstructure:"S3_PUBLIC_URL"`

	PaymentProvider string        `mapstructure:"PAYMENT_PROVIDER"`
	StripeSecretKey string        `mapstructure:"STRIPE_SECRET_KEY"`
	StripeAPIURL    string        `mapstructure:"STRIPE_API_URL"`
	PaymentTimeout  time.Duration `mapstructure:"PAYMENT_TIMEOUT"`

	CourseCacheTTL time.Duration `mapstructure:"COURSE_CACHE_TTL"`
	EnrollLockTTL  time.Duration `mapstructure:"ENROLL_LOCK_TTL"`
}

var keys = []string{
	"GO_ENV",
	"DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
	"REDIS_ADDR",
	"HTTP_PORT", "ACCESS_SECRET", "ACCESS_TTL", "ALLOWED_ORIGINS",
	"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_PUBLIC_URL",
	"PAYMENT_PROVIDER", "STRIPE_SECRET_KEY", "STRIPE_API_URL", "PAYMENT_TIMEOUT",
	"COURSE_CACHE_TTL", "ENROLL_LOCK_TTL",
}

func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("GO_ENV", "development")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_PATH", "teachhub.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("HTTP_PORT", ":8080")
	v.SetDefault("ACCESS_TTL", "15m")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("PAYMENT_PROVIDER", "simulated")
	v.SetDefault("STRIPE_API_URL", "https://api.stripe.com")
	v.SetDefault("PAYMENT_TIMEOUT", "30s")
	v.SetDefault("COURSE_CACHE_TTL", "10m")
	v.SetDefault("ENROLL_LOCK_TTL", "2m")

	v.AutomaticEnv()

	// Bind explicitly so environment-only deployments work without app.env.
	for _, key := range keys {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}

	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "production"
}
