package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAssetStore persists asset records in the media service's own
// database.
type PostgresAssetStore struct {
	pool *pgxpool.Pool
}

func NewPostgresAssetStore(pool *pgxpool.Pool) *PostgresAssetStore {
	return &PostgresAssetStore{pool: pool}
}

const assetColumns = `id, storage_path, listing_id, file_name, content_type, file_size, uploaded_by, created_at`

func (s *PostgresAssetStore) Save(ctx context.Context, asset *Asset) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO assets (id, storage_path, listing_id, file_name, content_type, file_size, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			storage_path = EXCLUDED.storage_path,
			listing_id = EXCLUDED.listing_id,
			file_name = EXCLUDED.file_name,
			content_type = EXCLUDED.content_type,
			file_size = EXCLUDED.file_size`,
		asset.ID,
		asset.StoragePath,
		asset.ListingID,
		asset.FileName,
		asset.ContentType,
		asset.FileSize,
		asset.UploadedBy,
		asset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}
	return nil
}

func (s *PostgresAssetStore) FindByID(ctx context.Context, id string) (*Asset, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)

	asset, err := scanAsset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset: %w", err)
	}
	return asset, nil
}

func (s *PostgresAssetStore) FindByListing(ctx context.Context, listingID string) ([]Asset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE listing_id = $1 ORDER BY created_at`, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets by listing: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

func (s *PostgresAssetStore) FindByUploader(ctx context.Context, userID string) ([]Asset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE uploaded_by = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets by uploader: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

func (s *PostgresAssetStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

func scanAsset(row pgx.Row) (*Asset, error) {
	var asset Asset
	err := row.Scan(
		&asset.ID,
		&asset.StoragePath,
		&asset.ListingID,
		&asset.FileName,
		&asset.ContentType,
		&asset.FileSize,
		&asset.UploadedBy,
		&asset.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func collectAssets(rows pgx.Rows) ([]Asset, error) {
	var assets []Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assets: %w", err)
	}
	return assets, nil
}
