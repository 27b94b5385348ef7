package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case DatabaseMemory:
		case DatabasePostgres, DatabaseSQLite:
			if url == "" {
				return fmt.Errorf("database URL is required for %s", dbType)
			}
		default:
			return fmt.Errorf("database type must be 'memory', 'postgres' or 'sqlite', got: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate toggles schema migrations at startup
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithMemoryStorage keeps uploaded assets in process memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.StorageBackend = StorageMemory
		return nil
	}
}

// WithFilesystemStorage stores assets below baseDir
func WithFilesystemStorage(baseDir, urlPrefix string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.StorageBackend = StorageFS
		c.FSBaseDir = baseDir
		c.FSURLPrefix = urlPrefix
		return nil
	}
}

// WithS3Storage stores assets in an S3 bucket
func WithS3Storage(s3 S3Config) Option {
	return func(c *ServerConfig) error {
		if s3.Bucket == "" {
			return fmt.Errorf("s3 bucket cannot be empty")
		}
		if s3.Region == "" {
			s3.Region = c.S3.Region
		}
		if s3.PresignDuration == 0 {
			s3.PresignDuration = c.S3.PresignDuration
		}
		c.StorageBackend = StorageS3
		c.S3 = s3
		return nil
	}
}

// WithURLStrategy selects how asset URLs are generated
func WithURLStrategy(strategy, cdnBaseURL, apiBaseURL string) Option {
	return func(c *ServerConfig) error {
		c.URLStrategy = strategy
		c.CDNBaseURL = cdnBaseURL
		if apiBaseURL != "" {
			c.APIBaseURL = apiBaseURL
		}
		return nil
	}
}

// WithAllowedOrigins sets the CORS origin allow-list
func WithAllowedOrigins(origins ...string) Option {
	return func(c *ServerConfig) error {
		c.AllowedOrigins = origins
		return nil
	}
}

// WithRateLimit configures the per-client request rate. An rps of 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *ServerConfig) error {
		if rps < 0 || burst < 0 {
			return fmt.Errorf("rate limit values must not be negative")
		}
		c.RateLimitRPS = rps
		c.RateLimitBurst = burst
		return nil
	}
}

// WithRequestTimeout bounds the duration of each API request
func WithRequestTimeout(d time.Duration) Option {
	return func(c *ServerConfig) error {
		c.RequestTimeout = d
		return nil
	}
}

// WithMaxUploadBytes limits the size of an uploaded asset
func WithMaxUploadBytes(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("max upload bytes must be positive")
		}
		c.MaxUploadBytes = n
		return nil
	}
}

// WithLogLevel sets the log level
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		c.LogLevel = level
		return nil
	}
}

// WithEventLogging enables or disables event logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}
