package portfolio

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var assetKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// NewAssetKey returns a random key that keeps the file's extension.
func NewAssetKey(fileName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
}

// ValidAssetKey reports whether key is safe to use as a storage key.
func ValidAssetKey(key string) bool {
	return assetKeyPattern.MatchString(key) && !strings.Contains(key, "..")
}

// detectContentType prefers a declared type over the file extension. The
// generic octet-stream type counts as undeclared.
func detectContentType(fileName, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); t != "" {
		return t
	}
	return "application/octet-stream"
}

func (s *service) assetStore() (AssetStore, error) {
	if s.assets == nil {
		return nil, ErrAssetsDisabled
	}
	return s.assets, nil
}

func (s *service) assetURL(ctx context.Context, key string) string {
	if s.urls != nil {
		url, err := s.urls.AssetURL(ctx, key)
		if err == nil {
			return url
		}
		s.logger.WarnContext(ctx, "asset url strategy failed", "key", key, "err", err)
	}
	url, err := s.assets.GetDownloadURL(ctx, key)
	if err != nil {
		return ""
	}
	return url
}

func (s *service) describeAsset(ctx context.Context, meta *AssetMeta) *Asset {
	return &Asset{
		Key:         meta.Key,
		URL:         s.assetURL(ctx, meta.Key),
		ContentType: meta.ContentType,
		Size:        meta.Size,
		ETag:        meta.ETag,
		UpdatedAt:   meta.UpdatedAt,
	}
}

func (s *service) UploadAsset(ctx context.Context, req UploadAssetRequest) (*Asset, error) {
	store, err := s.assetStore()
	if err != nil {
		return nil, err
	}
	if req.Reader == nil {
		return nil, &ValidationError{Field: "file", Message: "is required"}
	}

	key := s.newKey(req.FileName)
	contentType := detectContentType(req.FileName, req.ContentType)
	if err := store.Upload(ctx, key, req.Reader, contentType); err != nil {
		return nil, wrapStore("upload asset", err)
	}

	meta, err := store.Stat(ctx, key)
	if err != nil {
		return nil, wrapStore("stat asset", err)
	}

	asset := s.describeAsset(ctx, meta)
	s.notify(ctx, "asset.uploaded", func() error { return s.eventSink.AssetUploaded(ctx, asset) })
	return asset, nil
}

func (s *service) GetAsset(ctx context.Context, key string) (*Asset, error) {
	store, err := s.assetStore()
	if err != nil {
		return nil, err
	}
	if !ValidAssetKey(key) {
		return nil, &NotFoundError{Entity: entityAsset, ID: key}
	}

	meta, err := store.Stat(ctx, key)
	if err != nil {
		return nil, wrapStore("stat asset", notFound(entityAsset, key, err))
	}
	return s.describeAsset(ctx, meta), nil
}

func (s *service) DownloadAsset(ctx context.Context, key string) (io.ReadCloser, *Asset, error) {
	asset, err := s.GetAsset(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.assets.Download(ctx, key)
	if err != nil {
		return nil, nil, wrapStore("download asset", notFound(entityAsset, key, err))
	}
	return reader, asset, nil
}

func (s *service) DeleteAsset(ctx context.Context, key string) error {
	store, err := s.assetStore()
	if err != nil {
		return err
	}
	if !ValidAssetKey(key) {
		return &NotFoundError{Entity: entityAsset, ID: key}
	}

	if err := store.Delete(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Entity: entityAsset, ID: key}
		}
		return wrapStore("delete asset", err)
	}

	s.notify(ctx, "asset.deleted", func() error { return s.eventSink.AssetDeleted(ctx, key) })
	return nil
}
