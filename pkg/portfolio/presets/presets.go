// Package presets builds ready-to-use portfolio services for common setups.
package presets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	memoryrepo "github.com/tendant/simple-portfolio/pkg/portfolio/repo/memory"
	sqliterepo "github.com/tendant/simple-portfolio/pkg/portfolio/repo/sqlite"
	fsstorage "github.com/tendant/simple-portfolio/pkg/portfolio/storage/fs"
	memorystorage "github.com/tendant/simple-portfolio/pkg/portfolio/storage/memory"
	"github.com/tendant/simple-portfolio/pkg/portfolio/urlstrategy"
)

// NewDevelopment creates a service configured for local development.
//
// Features:
//   - SQLite database at ./dev-data/portfolio.db (persistent across restarts)
//   - Filesystem asset storage at ./dev-data/assets/
//   - Content-based asset URLs (/api/v1/assets/{key})
//   - Event logging
//
// The returned cleanup function closes the database and removes the data
// directory.
//
// Example:
//
//	svc, cleanup, err := presets.NewDevelopment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
func NewDevelopment(opts ...DevelopmentOption) (portfolio.Service, func(), error) {
	cfg := &devConfig{
		dataDir:    "./dev-data",
		apiBaseURL: urlstrategy.DefaultAPIBaseURL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx := context.Background()
	if err := os.MkdirAll(cfg.dataDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sqliterepo.Open(ctx, filepath.Join(cfg.dataDir, "portfolio.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqliterepo.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	assets, err := fsstorage.New(fsstorage.Config{BaseDir: filepath.Join(cfg.dataDir, "assets")})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create filesystem storage: %w", err)
	}

	svc, err := portfolio.New(
		portfolio.WithRepository(sqliterepo.New(db)),
		portfolio.WithAssetStore(assets),
		portfolio.WithURLStrategy(urlstrategy.NewContentBasedStrategy(cfg.apiBaseURL)),
		portfolio.WithEventSink(portfolio.NewLoggingEventSink(cfg.logger)),
		portfolio.WithLogger(cfg.logger),
	)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(cfg.dataDir)
	}

	return svc, cleanup, nil
}

// NewTesting creates a service for unit and integration tests: in-memory
// repository and asset store, no event logging, isolated per call.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    svc := presets.NewTesting(t)
//	    // ...
//	}
func NewTesting(t testing.TB, opts ...TestingOption) portfolio.Service {
	t.Helper()

	cfg := &testConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	options := []portfolio.Option{
		portfolio.WithRepository(memoryrepo.New()),
		portfolio.WithAssetStore(memorystorage.New()),
		portfolio.WithURLStrategy(urlstrategy.NewContentBasedStrategy(urlstrategy.DefaultAPIBaseURL)),
	}
	options = append(options, cfg.options...)

	svc, err := portfolio.New(options...)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}

	if cfg.fixtures {
		if err := LoadFixtures(context.Background(), svc); err != nil {
			t.Fatalf("failed to load fixtures: %v", err)
		}
	}

	return svc
}

// devConfig holds development preset configuration
type devConfig struct {
	dataDir    string
	apiBaseURL string
	logger     *slog.Logger
}

// testConfig holds testing preset configuration
type testConfig struct {
	fixtures bool
	options  []portfolio.Option
}

// DevelopmentOption is a functional option for NewDevelopment
type DevelopmentOption func(*devConfig)

// WithDevDataDir sets the directory holding the database and assets
func WithDevDataDir(dir string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.dataDir = dir
	}
}

// WithDevAPIBaseURL sets the base URL asset links are built from
func WithDevAPIBaseURL(url string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.apiBaseURL = url
	}
}

// WithDevLogger sets the logger used for events
func WithDevLogger(logger *slog.Logger) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.logger = logger
	}
}

// TestingOption is a functional option for NewTesting
type TestingOption func(*testConfig)

// WithTestFixtures seeds the service with sample content
func WithTestFixtures() TestingOption {
	return func(cfg *testConfig) {
		cfg.fixtures = true
	}
}

// WithServiceOptions passes extra options through to portfolio.New
func WithServiceOptions(opts ...portfolio.Option) TestingOption {
	return func(cfg *testConfig) {
		cfg.options = append(cfg.options, opts...)
	}
}
