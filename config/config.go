package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Configured reports whether enough is set to attempt a connection.
func (c DatabaseConfig) Configured() bool {
	return c.DBName != ""
}

type BrowserConfig struct {
	Headless   bool
	Timeout    time.Duration
	Screenshot bool
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// APIConfig points the fill command at a running jobfill server.
type APIConfig struct {
	URL   string
	Token string
}

type AppConfig struct {
	Port        string
	Database    DatabaseConfig
	JWTSecret   string
	Environment string
	LogLevel    string
	LogFormat   string
	Browser     BrowserConfig
	S3          S3Config
	API         APIConfig
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// LoadDotEnv loads a .env file from the working directory when there is one.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// SetDefaults registers every key with its default so env vars and the
// config file can override them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8081")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("environment", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
	v.SetDefault("headless", true)
	v.SetDefault("browser.timeout", 30*time.Second)
	v.SetDefault("browser.screenshot", false)
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.s3.bucket", "")
	v.SetDefault("aws.access.key.id", "")
	v.SetDefault("aws.secret.access.key", "")
	v.SetDefault("jobfill.api.url", "http://localhost:8081")
	v.SetDefault("jobfill.api.token", "")
}

// Load builds the AppConfig from v. Keys map onto the env names the
// server has always used: db.host is DB_HOST, aws.s3.bucket is AWS_S3_BUCKET.
func Load(v *viper.Viper) AppConfig {
	cfg := AppConfig{
		Port: v.GetString("port"),
		Database: DatabaseConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		JWTSecret:   v.GetString("jwt.secret"),
		Environment: v.GetString("environment"),
		LogLevel:    v.GetString("log.level"),
		LogFormat:   v.GetString("log.format"),
		Browser: BrowserConfig{
			Headless:   v.GetBool("headless"),
			Timeout:    v.GetDuration("browser.timeout"),
			Screenshot: v.GetBool("browser.screenshot"),
		},
		S3: S3Config{
			Region:          v.GetString("aws.region"),
			Bucket:          v.GetString("aws.s3.bucket"),
			AccessKeyID:     v.GetString("aws.access.key.id"),
			SecretAccessKey: v.GetString("aws.secret.access.key"),
		},
		API: APIConfig{
			URL:   strings.TrimRight(v.GetString("jobfill.api.url"), "/"),
			Token: v.GetString("jobfill.api.token"),
		},
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
		if cfg.IsProduction() {
			cfg.LogFormat = "json"
		}
	}
	return cfg
}

// NewViper returns a viper instance bound to the environment with every
// default registered.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// GetAppConfig reads the configuration from the environment alone.
func GetAppConfig() AppConfig {
	return Load(NewViper())
}
