package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/growthzi/apiserver/types"
)

// ObjectStore defines the object operations snapshot publishing needs.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Bucket() string
}

// Publisher renders a website's content and uploads the snapshot to
// object storage under a stable per-site key.
type Publisher struct {
	store ObjectStore
}

// NewPublisher constructs a Publisher for the provided backend.
func NewPublisher(store ObjectStore) *Publisher {
	return &Publisher{store: store}
}

// SnapshotKey returns the object key a website's snapshot is stored
// under.
func SnapshotKey(websiteID string) string {
	return fmt.Sprintf("sites/%s/index.html", websiteID)
}

// Publish renders the site and uploads it, returning the object key.
func (p *Publisher) Publish(ctx context.Context, site types.Website) (string, error) {
	html, err := RenderSite(site.Content)
	if err != nil {
		return "", fmt.Errorf("render site %s: %w", site.ID, err)
	}

	key := SnapshotKey(site.ID)
	if err := p.store.Put(ctx, key, bytes.NewReader(html), int64(len(html)), "text/html; charset=utf-8"); err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", key, err)
	}
	return key, nil
}
