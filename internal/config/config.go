package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Takeout  TakeoutConfig  `yaml:"takeout"`
	Feed     FeedConfig     `yaml:"feed"`
	JWT      JWTConfig      `yaml:"jwt"`
	AWS      AWSConfig      `yaml:"aws"`
	APNS     APNSConfig     `yaml:"apns"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// YouTubeConfig holds the YouTube Data API settings used for duration lookups
type YouTubeConfig struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

// TakeoutConfig holds watch-history ingestion policy
type TakeoutConfig struct {
	// MaxDurationSeconds is the shorts threshold; longer videos are discarded.
	MaxDurationSeconds int   `yaml:"max_duration_seconds"`
	LookupBatchSize    int   `yaml:"lookup_batch_size"`
	MaxUploadBytes     int64 `yaml:"max_upload_bytes"`
}

// FeedConfig holds feed selector settings
type FeedConfig struct {
	VideosPerBatch int `yaml:"videos_per_batch"`
}

// JWTConfig holds JWT configuration. An empty secret disables tokens.
type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Required   bool   `yaml:"required"`
	ExpiryDays int    `yaml:"expiry_days"`
}

// AWSConfig holds AWS configuration. An empty bucket disables takeout archiving.
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

// APNSConfig holds Apple push settings. An empty cert file disables push.
type APNSConfig struct {
	CertFile     string `yaml:"cert_file"`
	CertPassword string `yaml:"cert_password"`
	Topic        string `yaml:"topic"`
	Production   bool   `yaml:"production"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file, then applies variables from a
// .env file and the process environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.DBName, "DB_NAME")
	setString(&c.YouTube.APIKey, "YOUTUBE_API_KEY")
	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.Log.Level, "LOG_LEVEL")

	if err := setInt(&c.Database.Port, "DB_PORT"); err != nil {
		return err
	}
	if err := setInt(&c.Server.Port, "PORT"); err != nil {
		return err
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = "https://www.googleapis.com"
	}
	if c.YouTube.RequestsPerSecond == 0 {
		c.YouTube.RequestsPerSecond = 5
	}
	if c.YouTube.TimeoutSeconds == 0 {
		c.YouTube.TimeoutSeconds = 10
	}
	if c.Takeout.MaxDurationSeconds == 0 {
		c.Takeout.MaxDurationSeconds = 180
	}
	if c.Takeout.LookupBatchSize == 0 {
		c.Takeout.LookupBatchSize = 50
	}
	if c.Takeout.MaxUploadBytes == 0 {
		c.Takeout.MaxUploadBytes = 32 << 20
	}
	if c.Feed.VideosPerBatch == 0 {
		c.Feed.VideosPerBatch = 5
	}
	if c.JWT.ExpiryDays == 0 {
		c.JWT.ExpiryDays = 365
	}
	if c.AWS.Region == "" {
		c.AWS.Region = "us-east-1"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Takeout.MaxDurationSeconds < 0 {
		return fmt.Errorf("takeout.max_duration_seconds must be positive")
	}
	if c.Takeout.LookupBatchSize < 1 || c.Takeout.LookupBatchSize > 50 {
		return fmt.Errorf("takeout.lookup_batch_size must be between 1 and 50")
	}
	if c.Feed.VideosPerBatch < 1 {
		return fmt.Errorf("feed.videos_per_batch must be positive")
	}
	if c.JWT.Required && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.required needs jwt.secret")
	}
	if c.APNS.CertFile != "" && c.APNS.Topic == "" {
		return fmt.Errorf("apns.topic is required when apns.cert_file is set")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
