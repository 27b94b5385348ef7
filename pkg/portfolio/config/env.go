package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// settings is the externally visible shape of ServerConfig. Fields without an
// explicit value in the environment or the config file keep whatever the
// ServerConfig already holds.
type settings struct {
	Port        string `yaml:"port" json:"port" env:"PORT"`
	Environment string `yaml:"environment" json:"environment" env:"ENVIRONMENT"`

	DatabaseURL string `yaml:"database_url" json:"database_url" env:"DATABASE_URL"`
	DBSchema    string `yaml:"db_schema" json:"db_schema" env:"DB_SCHEMA"`
	AutoMigrate bool   `yaml:"auto_migrate" json:"auto_migrate" env:"AUTO_MIGRATE"`

	LogLevel string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`

	StorageBackend string `yaml:"storage_backend" json:"storage_backend" env:"STORAGE_BACKEND"`
	FSBaseDir      string `yaml:"fs_base_dir" json:"fs_base_dir" env:"FS_BASE_DIR"`
	FSURLPrefix    string `yaml:"fs_url_prefix" json:"fs_url_prefix" env:"FS_URL_PREFIX"`

	S3Region          string `yaml:"s3_region" json:"s3_region" env:"AWS_REGION"`
	S3Bucket          string `yaml:"s3_bucket" json:"s3_bucket" env:"S3_BUCKET"`
	S3Prefix          string `yaml:"s3_prefix" json:"s3_prefix" env:"S3_PREFIX"`
	S3AccessKeyID     string `yaml:"s3_access_key_id" json:"s3_access_key_id" env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key" json:"s3_secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	S3Endpoint        string `yaml:"s3_endpoint" json:"s3_endpoint" env:"S3_ENDPOINT"`
	S3UsePathStyle    bool   `yaml:"s3_use_path_style" json:"s3_use_path_style" env:"S3_USE_PATH_STYLE"`
	S3PresignSeconds  int    `yaml:"s3_presign_seconds" json:"s3_presign_seconds" env:"S3_PRESIGN_SECONDS"`
	S3PublicBaseURL   string `yaml:"s3_public_base_url" json:"s3_public_base_url" env:"S3_PUBLIC_BASE_URL"`
	S3CreateBucket    bool   `yaml:"s3_create_bucket" json:"s3_create_bucket" env:"S3_CREATE_BUCKET"`

	URLStrategy string `yaml:"url_strategy" json:"url_strategy" env:"URL_STRATEGY"`
	CDNBaseURL  string `yaml:"cdn_base_url" json:"cdn_base_url" env:"CDN_BASE_URL"`
	APIBaseURL  string `yaml:"api_base_url" json:"api_base_url" env:"API_BASE_URL"`

	AllowedOrigins  []string      `yaml:"allowed_origins" json:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:","`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" json:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" json:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout" env:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" json:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
	CacheMaxAge     int           `yaml:"cache_max_age" json:"cache_max_age" env:"CACHE_MAX_AGE"`

	EnableEventLogging bool `yaml:"enable_event_logging" json:"enable_event_logging" env:"ENABLE_EVENT_LOGGING"`
}

// WithEnv applies environment variable overrides.
//
// Environment variable mapping:
//
//	PORT, ENVIRONMENT, LOG_LEVEL
//	DATABASE_URL   "memory" (default), "postgres://...", "sqlite://path" or "sqlite::memory:"
//	DB_SCHEMA, AUTO_MIGRATE
//	STORAGE_BACKEND "memory" (default), "fs" or "s3"
//	FS_BASE_DIR, FS_URL_PREFIX
//	S3_BUCKET, S3_PREFIX, S3_ENDPOINT, S3_USE_PATH_STYLE, S3_PRESIGN_SECONDS,
//	S3_PUBLIC_BASE_URL, S3_CREATE_BUCKET, AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY
//	URL_STRATEGY, CDN_BASE_URL, API_BASE_URL
//	ALLOWED_ORIGINS (comma separated), RATE_LIMIT_RPS, RATE_LIMIT_BURST,
//	REQUEST_TIMEOUT, SHUTDOWN_TIMEOUT, MAX_UPLOAD_BYTES, CACHE_MAX_AGE,
//	ENABLE_EVENT_LOGGING
func WithEnv() Option {
	return func(c *ServerConfig) error {
		s := fromConfig(c)
		if err := cleanenv.ReadEnv(&s); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return s.apply(c)
	}
}

// WithConfigFile loads settings from a YAML, JSON or TOML file. Environment
// variables still take precedence over values in the file.
func WithConfigFile(path string) Option {
	return func(c *ServerConfig) error {
		s := fromConfig(c)
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return s.apply(c)
	}
}

// EnvUsage returns a description of every supported environment variable.
func EnvUsage() string {
	var s settings
	desc, err := cleanenv.GetDescription(&s, nil)
	if err != nil {
		return ""
	}
	return desc
}

func fromConfig(c *ServerConfig) settings {
	s := settings{
		Port:               c.Port,
		Environment:        c.Environment,
		DBSchema:           c.DBSchema,
		AutoMigrate:        c.AutoMigrate,
		LogLevel:           c.LogLevel,
		StorageBackend:     c.StorageBackend,
		FSBaseDir:          c.FSBaseDir,
		FSURLPrefix:        c.FSURLPrefix,
		S3Region:           c.S3.Region,
		S3Bucket:           c.S3.Bucket,
		S3Prefix:           c.S3.Prefix,
		S3AccessKeyID:      c.S3.AccessKeyID,
		S3SecretAccessKey:  c.S3.SecretAccessKey,
		S3Endpoint:         c.S3.Endpoint,
		S3UsePathStyle:     c.S3.UsePathStyle,
		S3PresignSeconds:   c.S3.PresignDuration,
		S3PublicBaseURL:    c.S3.PublicBaseURL,
		S3CreateBucket:     c.S3.CreateBucket,
		URLStrategy:        c.URLStrategy,
		CDNBaseURL:         c.CDNBaseURL,
		APIBaseURL:         c.APIBaseURL,
		AllowedOrigins:     append([]string(nil), c.AllowedOrigins...),
		RateLimitRPS:       c.RateLimitRPS,
		RateLimitBurst:     c.RateLimitBurst,
		RequestTimeout:     c.RequestTimeout,
		ShutdownTimeout:    c.ShutdownTimeout,
		MaxUploadBytes:     c.MaxUploadBytes,
		CacheMaxAge:        c.CacheMaxAge,
		EnableEventLogging: c.EnableEventLogging,
	}
	switch c.DatabaseType {
	case DatabasePostgres:
		s.DatabaseURL = c.DatabaseURL
	case DatabaseSQLite:
		if c.DatabaseURL == ":memory:" {
			s.DatabaseURL = "sqlite::memory:"
		} else {
			s.DatabaseURL = "sqlite://" + c.DatabaseURL
		}
	default:
		s.DatabaseURL = "memory"
	}
	return s
}

func (s settings) apply(c *ServerConfig) error {
	dbType, location, err := parseDatabaseURL(s.DatabaseURL)
	if err != nil {
		return err
	}

	c.Port = s.Port
	c.Environment = s.Environment
	c.DatabaseType = dbType
	c.DatabaseURL = location
	c.DBSchema = s.DBSchema
	c.AutoMigrate = s.AutoMigrate
	c.LogLevel = s.LogLevel
	c.StorageBackend = s.StorageBackend
	c.FSBaseDir = s.FSBaseDir
	c.FSURLPrefix = s.FSURLPrefix
	c.S3 = S3Config{
		Region:          s.S3Region,
		Bucket:          s.S3Bucket,
		Prefix:          s.S3Prefix,
		AccessKeyID:     s.S3AccessKeyID,
		SecretAccessKey: s.S3SecretAccessKey,
		Endpoint:        s.S3Endpoint,
		UsePathStyle:    s.S3UsePathStyle,
		PresignDuration: s.S3PresignSeconds,
		PublicBaseURL:   s.S3PublicBaseURL,
		CreateBucket:    s.S3CreateBucket,
	}
	c.URLStrategy = s.URLStrategy
	c.CDNBaseURL = s.CDNBaseURL
	c.APIBaseURL = s.APIBaseURL
	c.AllowedOrigins = s.AllowedOrigins
	c.RateLimitRPS = s.RateLimitRPS
	c.RateLimitBurst = s.RateLimitBurst
	c.RequestTimeout = s.RequestTimeout
	c.ShutdownTimeout = s.ShutdownTimeout
	c.MaxUploadBytes = s.MaxUploadBytes
	c.CacheMaxAge = s.CacheMaxAge
	c.EnableEventLogging = s.EnableEventLogging
	return nil
}
