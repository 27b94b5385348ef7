// Package urlstrategy builds the public URLs stored on content records for
// uploaded assets (profile pictures, project images).
package urlstrategy

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// Type represents the type of URL strategy
type Type string

const (
	// CDN strategy for direct CDN URLs
	TypeCDN Type = "cdn"

	// Content-based strategy for application-routed URLs
	TypeContentBased Type = "content-based"

	// Storage-delegated strategy asks the asset store for its own URL
	TypeStorageDelegated Type = "storage-delegated"
)

// DefaultAPIBaseURL is where the API serves assets when nothing else is configured.
const DefaultAPIBaseURL = "/api/v1"

// ContentBasedStrategy routes asset URLs through the application server
type ContentBasedStrategy struct {
	APIBaseURL string // e.g., "https://api.example.com/api/v1" or "/api/v1"
}

// NewContentBasedStrategy creates a new content-based URL strategy
func NewContentBasedStrategy(apiBaseURL string) *ContentBasedStrategy {
	return &ContentBasedStrategy{APIBaseURL: strings.TrimSuffix(apiBaseURL, "/")}
}

func (s *ContentBasedStrategy) AssetURL(ctx context.Context, key string) (string, error) {
	if s.APIBaseURL == "" {
		return "", fmt.Errorf("API base URL not configured")
	}
	return fmt.Sprintf("%s/assets/%s", s.APIBaseURL, url.PathEscape(key)), nil
}

// CDNStrategy points asset URLs directly at a CDN fronting the asset bucket
type CDNStrategy struct {
	CDNBaseURL string // e.g., "https://cdn.example.com"
}

// NewCDNStrategy creates a new CDN URL strategy
func NewCDNStrategy(cdnBaseURL string) *CDNStrategy {
	return &CDNStrategy{CDNBaseURL: strings.TrimSuffix(cdnBaseURL, "/")}
}

func (s *CDNStrategy) AssetURL(ctx context.Context, key string) (string, error) {
	if s.CDNBaseURL == "" {
		return "", fmt.Errorf("CDN base URL not configured")
	}
	return fmt.Sprintf("%s/%s", s.CDNBaseURL, url.PathEscape(key)), nil
}

// StorageDelegatedStrategy delegates URL generation to the asset store
type StorageDelegatedStrategy struct {
	Store portfolio.AssetStore
}

// NewStorageDelegatedStrategy creates a new storage-delegated URL strategy
func NewStorageDelegatedStrategy(store portfolio.AssetStore) *StorageDelegatedStrategy {
	return &StorageDelegatedStrategy{Store: store}
}

func (s *StorageDelegatedStrategy) AssetURL(ctx context.Context, key string) (string, error) {
	u, err := s.Store.GetDownloadURL(ctx, key)
	if err != nil {
		return "", err
	}
	if u == "" {
		return "", fmt.Errorf("asset store has no direct URL for %s", key)
	}
	return u, nil
}

// Config holds configuration for URL strategy creation
type Config struct {
	Type       Type
	CDNBaseURL string               // For CDN strategy
	APIBaseURL string               // For content-based strategy
	Store      portfolio.AssetStore // For storage-delegated strategy
}

// New creates a URL strategy based on the configuration
func New(config Config) (portfolio.URLStrategy, error) {
	switch config.Type {
	case TypeCDN:
		if config.CDNBaseURL == "" {
			return nil, fmt.Errorf("CDN base URL is required for CDN strategy")
		}
		return NewCDNStrategy(config.CDNBaseURL), nil

	case TypeContentBased, "":
		if config.APIBaseURL == "" {
			config.APIBaseURL = DefaultAPIBaseURL
		}
		return NewContentBasedStrategy(config.APIBaseURL), nil

	case TypeStorageDelegated:
		if config.Store == nil {
			return nil, fmt.Errorf("asset store is required for storage-delegated strategy")
		}
		return NewStorageDelegatedStrategy(config.Store), nil

	default:
		return nil, fmt.Errorf("unknown URL strategy type: %s", config.Type)
	}
}

// NewRecommended picks a strategy for the environment: a CDN in production
// when one is configured, application-routed URLs otherwise.
func NewRecommended(environment, cdnURL, apiURL string) portfolio.URLStrategy {
	if environment == "production" && cdnURL != "" {
		return NewCDNStrategy(cdnURL)
	}
	if apiURL == "" {
		apiURL = DefaultAPIBaseURL
	}
	return NewContentBasedStrategy(apiURL)
}
