// Package config loads server configuration and builds a portfolio service
// from it.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/api"
	"github.com/tendant/simple-portfolio/pkg/portfolio/repo/memory"
	repopg "github.com/tendant/simple-portfolio/pkg/portfolio/repo/postgres"
	reposqlite "github.com/tendant/simple-portfolio/pkg/portfolio/repo/sqlite"
	fsstorage "github.com/tendant/simple-portfolio/pkg/portfolio/storage/fs"
	memorystorage "github.com/tendant/simple-portfolio/pkg/portfolio/storage/memory"
	s3storage "github.com/tendant/simple-portfolio/pkg/portfolio/storage/s3"
	"github.com/tendant/simple-portfolio/pkg/portfolio/urlstrategy"
)

// Database types
const (
	DatabaseMemory   = "memory"
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageS3     = "s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		DatabaseType:       DatabaseMemory,
		DBSchema:           "public",
		AutoMigrate:        true,
		LogLevel:           "info",
		StorageBackend:     StorageMemory,
		FSBaseDir:          "./data/assets",
		S3:                 S3Config{Region: "us-east-1", PresignDuration: 3600},
		URLStrategy:        string(urlstrategy.TypeContentBased),
		APIBaseURL:         urlstrategy.DefaultAPIBaseURL,
		AllowedOrigins:     []string{"*"},
		RateLimitRPS:       20,
		RateLimitBurst:     40,
		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		MaxUploadBytes:     api.DefaultMaxUploadBytes,
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the portfolio service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseType string // "memory", "postgres", "sqlite"
	DatabaseURL  string // postgres connection string, or sqlite file path
	DBSchema     string // Postgres schema to use (default: public)
	AutoMigrate  bool

	LogLevel string // debug, info, warn, error

	// Asset storage configuration
	StorageBackend string // "memory", "fs", "s3"
	FSBaseDir      string
	FSURLPrefix    string
	S3             S3Config

	// Asset URL generation
	URLStrategy string // "content-based", "cdn", "storage-delegated"
	CDNBaseURL  string
	APIBaseURL  string

	// HTTP transport
	AllowedOrigins  []string
	RateLimitRPS    float64
	RateLimitBurst  int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	CacheMaxAge     int // seconds of public caching on read endpoints

	EnableEventLogging bool
}

// S3Config holds settings of the S3 asset backend
type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
	PresignDuration int
	PublicBaseURL   string
	CreateBucket    bool
}

// IsProduction reports whether the server runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Level returns the configured log level
func (c *ServerConfig) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case DatabaseMemory:
	case DatabasePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	case DatabaseSQLite:
		if c.DatabaseURL == "" {
			return errors.New("database path is required when using sqlite")
		}
	default:
		return fmt.Errorf("database_type must be 'memory', 'postgres' or 'sqlite', got %q", c.DatabaseType)
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StorageFS:
		if c.FSBaseDir == "" {
			return errors.New("filesystem base directory is required for fs storage")
		}
	case StorageS3:
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("storage_backend must be 'memory', 'fs' or 's3', got %q", c.StorageBackend)
	}

	switch urlstrategy.Type(c.URLStrategy) {
	case urlstrategy.TypeContentBased, urlstrategy.TypeStorageDelegated:
	case urlstrategy.TypeCDN:
		if c.CDNBaseURL == "" {
			return errors.New("cdn_base_url is required for the cdn url strategy")
		}
	default:
		return fmt.Errorf("unknown asset url strategy %q", c.URLStrategy)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	if c.RateLimitRPS < 0 {
		return errors.New("rate limit must not be negative")
	}
	if c.CacheMaxAge < 0 {
		return errors.New("cache max age must not be negative")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}

	return nil
}

// RouterConfig returns the HTTP transport settings
func (c *ServerConfig) RouterConfig(logger *slog.Logger) api.RouterConfig {
	return api.RouterConfig{
		Logger:         logger,
		AllowedOrigins: c.AllowedOrigins,
		RateLimitRPS:   c.RateLimitRPS,
		RateLimitBurst: c.RateLimitBurst,
		RequestTimeout: c.RequestTimeout,
		CacheMaxAge:    c.CacheMaxAge,
	}
}

// BuildService creates a Service instance from the server configuration.
// The returned cleanup function releases database connections.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (portfolio.Service, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	repo, closeRepo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildAssetStore(ctx)
	if err != nil {
		closeRepo()
		return nil, nil, fmt.Errorf("failed to build asset storage: %w", err)
	}

	urls, err := urlstrategy.New(urlstrategy.Config{
		Type:       urlstrategy.Type(c.URLStrategy),
		CDNBaseURL: c.CDNBaseURL,
		APIBaseURL: c.APIBaseURL,
		Store:      store,
	})
	if err != nil {
		closeRepo()
		return nil, nil, fmt.Errorf("failed to build url strategy: %w", err)
	}

	options := []portfolio.Option{
		portfolio.WithRepository(repo),
		portfolio.WithAssetStore(store),
		portfolio.WithURLStrategy(urls),
		portfolio.WithLogger(logger),
	}
	if c.EnableEventLogging {
		options = append(options, portfolio.WithEventSink(portfolio.NewLoggingEventSink(logger)))
	}

	svc, err := portfolio.New(options...)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}
	return svc, closeRepo, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (portfolio.Repository, func(), error) {
	switch c.DatabaseType {
	case DatabaseMemory:
		return memory.New(), func() {}, nil

	case DatabasePostgres:
		pool, err := c.openPostgres(ctx)
		if err != nil {
			return nil, nil, err
		}
		if c.AutoMigrate {
			if err := c.migratePostgres(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return repopg.NewWithPool(pool), pool.Close, nil

	case DatabaseSQLite:
		db, err := reposqlite.Open(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if c.AutoMigrate {
			if err := reposqlite.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return reposqlite.New(db), func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) openPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema := c.DBSchema; schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

func (c *ServerConfig) migratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	if c.DBSchema != "" && c.DBSchema != "public" {
		if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{c.DBSchema}.Sanitize()); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return repopg.Migrate(ctx, pool)
}

// buildAssetStore creates an AssetStore based on the configuration
func (c *ServerConfig) buildAssetStore(ctx context.Context) (portfolio.AssetStore, error) {
	switch c.StorageBackend {
	case StorageMemory:
		return memorystorage.New(), nil

	case StorageFS:
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.FSBaseDir,
			URLPrefix: c.FSURLPrefix,
		})

	case StorageS3:
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			Prefix:                 c.S3.Prefix,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PresignDuration:        c.S3.PresignDuration,
			PublicBaseURL:          c.S3.PublicBaseURL,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.StorageBackend)
	}
}

// parseDatabaseURL maps DATABASE_URL onto a database type and location.
//
//	"" or "memory"                     -> memory
//	postgres://... or postgresql://... -> postgres
//	sqlite://path/to/file.db           -> sqlite file
//	sqlite::memory:                    -> private in-memory sqlite
func parseDatabaseURL(raw string) (dbType, location string, err error) {
	switch {
	case raw == "" || raw == "memory":
		return DatabaseMemory, "", nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return DatabasePostgres, raw, nil
	case raw == "sqlite::memory:":
		return DatabaseSQLite, ":memory:", nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" {
			return "", "", errors.New("sqlite path cannot be empty in DATABASE_URL")
		}
		return DatabaseSQLite, path, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgres://...' or 'sqlite://...')", raw)
	}
}
