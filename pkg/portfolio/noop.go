package portfolio

import (
	"context"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) ProfileUpdated(ctx context.Context, profile *Profile) error { return nil }
func (n *NoopEventSink) ProjectCreated(ctx context.Context, project *Project) error { return nil }
func (n *NoopEventSink) ProjectUpdated(ctx context.Context, project *Project) error { return nil }
func (n *NoopEventSink) ProjectDeleted(ctx context.Context, id int64) error          { return nil }
func (n *NoopEventSink) PostCreated(ctx context.Context, post *Post) error          { return nil }
func (n *NoopEventSink) PostUpdated(ctx context.Context, post *Post) error          { return nil }
func (n *NoopEventSink) PostDeleted(ctx context.Context, id int64) error            { return nil }
func (n *NoopEventSink) AssetUploaded(ctx context.Context, asset *Asset) error      { return nil }
func (n *NoopEventSink) AssetDeleted(ctx context.Context, key string) error         { return nil }

// LoggingEventSink writes one structured record per content change.
// Useful for development and audit trails.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink. A nil logger uses slog.Default().
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger.With("component", "events")}
}

func (l *LoggingEventSink) ProfileUpdated(ctx context.Context, profile *Profile) error {
	l.logger.InfoContext(ctx, "profile updated", "name", profile.Name)
	return nil
}

func (l *LoggingEventSink) ProjectCreated(ctx context.Context, project *Project) error {
	l.logger.InfoContext(ctx, "project created", "id", project.ID, "title", project.Title, "display_order", project.DisplayOrder)
	return nil
}

func (l *LoggingEventSink) ProjectUpdated(ctx context.Context, project *Project) error {
	l.logger.InfoContext(ctx, "project updated", "id", project.ID, "title", project.Title)
	return nil
}

func (l *LoggingEventSink) ProjectDeleted(ctx context.Context, id int64) error {
	l.logger.InfoContext(ctx, "project deleted", "id", id)
	return nil
}

func (l *LoggingEventSink) PostCreated(ctx context.Context, post *Post) error {
	l.logger.InfoContext(ctx, "post created", "id", post.ID, "slug", post.Slug, "published", post.IsPublished)
	return nil
}

func (l *LoggingEventSink) PostUpdated(ctx context.Context, post *Post) error {
	l.logger.InfoContext(ctx, "post updated", "id", post.ID, "slug", post.Slug, "published", post.IsPublished)
	return nil
}

func (l *LoggingEventSink) PostDeleted(ctx context.Context, id int64) error {
	l.logger.InfoContext(ctx, "post deleted", "id", id)
	return nil
}

func (l *LoggingEventSink) AssetUploaded(ctx context.Context, asset *Asset) error {
	l.logger.InfoContext(ctx, "asset uploaded", "key", asset.Key, "size", asset.Size, "content_type", asset.ContentType)
	return nil
}

func (l *LoggingEventSink) AssetDeleted(ctx context.Context, key string) error {
	l.logger.InfoContext(ctx, "asset deleted", "key", key)
	return nil
}
