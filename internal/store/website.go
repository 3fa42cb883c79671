package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/growthzi/apiserver/types"
)

// WebsiteRepository handles persistence for websites.
type WebsiteRepository struct {
	db *sql.DB
}

func NewWebsiteRepository(db *sql.DB) *WebsiteRepository {
	return &WebsiteRepository{db: db}
}

func (r *WebsiteRepository) Get(ctx context.Context, id string) (types.Website, error) {
	const query = `
		SELECT id, owner_id, content, created_at, updated_at
		FROM websites
		WHERE id = $1`
	var site types.Website
	var content []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&site.ID,
		&site.OwnerID,
		&content,
		&site.CreatedAt,
		&site.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Website{}, ErrNotFound
		}
		return types.Website{}, err
	}
	site.Content = content
	return site, nil
}

// List returns all websites, or only those owned by ownerID when it is
// non-empty.
func (r *WebsiteRepository) List(ctx context.Context, ownerID string) ([]types.Website, error) {
	query := `
		SELECT id, owner_id, content, created_at, updated_at
		FROM websites
		ORDER BY created_at DESC`
	args := []any{}
	if ownerID != "" {
		query = `
		SELECT id, owner_id, content, created_at, updated_at
		FROM websites
		WHERE owner_id = $1
		ORDER BY created_at DESC`
		args = append(args, ownerID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := make([]types.Website, 0)
	for rows.Next() {
		var site types.Website
		var content []byte
		if err := rows.Scan(
			&site.ID,
			&site.OwnerID,
			&content,
			&site.CreatedAt,
			&site.UpdatedAt,
		); err != nil {
			return nil, err
		}
		site.Content = content
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *WebsiteRepository) Create(ctx context.Context, site types.Website) (types.Website, error) {
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	now := time.Now()
	site.CreatedAt = now
	site.UpdatedAt = now

	const query = `
		INSERT INTO websites (id, owner_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		site.ID,
		site.OwnerID,
		[]byte(site.Content),
		site.CreatedAt,
		site.UpdatedAt,
	); err != nil {
		return types.Website{}, mapDBError(err)
	}
	return site, nil
}

// UpdateContent replaces the content payload. The owner reference is
// immutable and never part of an update.
func (r *WebsiteRepository) UpdateContent(ctx context.Context, id string, content []byte) (types.Website, error) {
	const query = `
		UPDATE websites
		SET content = $1, updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, content, time.Now(), id)
	if err != nil {
		return types.Website{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Website{}, err
	}
	if affected == 0 {
		return types.Website{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *WebsiteRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM websites WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
