package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/growthzi/apiserver/internal/events"
	"github.com/growthzi/apiserver/types"
	"github.com/rs/zerolog"
)

// ErrSnapshotsDisabled is returned when publishing is requested but no
// snapshot storage backend is configured.
var ErrSnapshotsDisabled = errors.New("snapshot storage is not configured")

// WebsiteRepository defines persistence operations for websites.
type WebsiteRepository interface {
	Get(ctx context.Context, id string) (types.Website, error)
	List(ctx context.Context, ownerID string) ([]types.Website, error)
	Create(ctx context.Context, site types.Website) (types.Website, error)
	UpdateContent(ctx context.Context, id string, content []byte) (types.Website, error)
	Delete(ctx context.Context, id string) error
}

// ContentGenerator produces site content from a business description.
type ContentGenerator interface {
	Generate(ctx context.Context, businessType, industry string) (types.SiteContent, error)
}

// SnapshotPublisher uploads a rendered site snapshot.
type SnapshotPublisher interface {
	Publish(ctx context.Context, site types.Website) (string, error)
}

// WebsiteService encapsulates website use-cases.
type WebsiteService struct {
	repo      WebsiteRepository
	generator ContentGenerator
	snapshots SnapshotPublisher
	events    *events.Publisher
	logger    zerolog.Logger
}

func NewWebsiteService(repo WebsiteRepository, generator ContentGenerator, snapshots SnapshotPublisher, publisher *events.Publisher, logger zerolog.Logger) *WebsiteService {
	return &WebsiteService{
		repo:      repo,
		generator: generator,
		snapshots: snapshots,
		events:    publisher,
		logger:    logger,
	}
}

func (s *WebsiteService) Get(ctx context.Context, id string) (types.Website, error) {
	return s.repo.Get(ctx, id)
}

func (s *WebsiteService) List(ctx context.Context, ownerID string) ([]types.Website, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *WebsiteService) Create(ctx context.Context, ownerID string, content json.RawMessage) (types.Website, error) {
	return s.repo.Create(ctx, types.Website{
		OwnerID: ownerID,
		Content: content,
	})
}

// Generate asks the content generator for site content and persists
// the result as a new website owned by ownerID. Nothing is persisted
// when generation fails.
func (s *WebsiteService) Generate(ctx context.Context, ownerID, businessType, industry string) (types.Website, error) {
	content, err := s.generator.Generate(ctx, businessType, industry)
	if err != nil {
		return types.Website{}, err
	}

	payload, err := json.Marshal(content)
	if err != nil {
		return types.Website{}, err
	}

	site, err := s.repo.Create(ctx, types.Website{
		OwnerID: ownerID,
		Content: payload,
	})
	if err != nil {
		return types.Website{}, err
	}

	s.emit(ctx, events.WebsiteGenerated, map[string]string{
		"website_id": site.ID,
		"owner_id":   site.OwnerID,
	})
	return site, nil
}

func (s *WebsiteService) UpdateContent(ctx context.Context, id string, content json.RawMessage) (types.Website, error) {
	return s.repo.UpdateContent(ctx, id, content)
}

func (s *WebsiteService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// PublishSnapshot renders the site and uploads the snapshot to object
// storage, returning the object key.
func (s *WebsiteService) PublishSnapshot(ctx context.Context, site types.Website) (string, error) {
	if s.snapshots == nil {
		return "", ErrSnapshotsDisabled
	}
	key, err := s.snapshots.Publish(ctx, site)
	if err != nil {
		return "", err
	}
	s.emit(ctx, events.WebsitePublished, map[string]string{
		"website_id": site.ID,
		"object_key": key,
	})
	return key, nil
}

func (s *WebsiteService) emit(ctx context.Context, name string, data any) {
	if err := s.events.Publish(ctx, name, data); err != nil {
		s.logger.Warn().Err(err).Str("event", name).Msg("failed to publish event")
	}
}
